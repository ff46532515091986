package boundary

import (
	"context"
	"densitymap/pkg/domain"
	"densitymap/pkg/logger"
	"densitymap/pkg/serrors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Progress receives one step per shard written. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(n int) error
}

// BuildOptions configures WriteShards.
type BuildOptions struct {
	// Ranges defaults to DefaultRanges.
	Ranges []Range
	// MaxShardBytes rejects the build when a shard is larger. Zero disables
	// the check.
	MaxShardBytes int64
	Progress      Progress
}

// ShardInfo describes one written shard.
type ShardInfo struct {
	Name  string
	Units int
	Bytes int
}

// Partition assigns every unit to its shard range. It fails when a code
// appears twice or falls outside every range, listing the offending codes.
func Partition(units []domain.AdministrativeUnit, ranges []Range) ([][]domain.AdministrativeUnit, error) {
	ranges, err := ValidateRanges(ranges)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(units))
	var duplicates, uncovered []string
	parts := make([][]domain.AdministrativeUnit, len(ranges))
	for _, u := range units {
		if _, dup := seen[u.Code]; dup {
			duplicates = append(duplicates, u.Code)

			continue
		}
		seen[u.Code] = struct{}{}

		i, err := RangeFor(ranges, u.Code)
		if err != nil {
			uncovered = append(uncovered, u.Code)

			continue
		}
		parts[i] = append(parts[i], u)
	}

	if len(duplicates) > 0 {
		return nil, serrors.With(serrors.ErrValidation, "%d duplicate codes in boundary source: %s",
			len(duplicates), sample(duplicates))
	}
	if len(uncovered) > 0 {
		return nil, serrors.With(serrors.ErrValidation, "%d codes outside every shard range: %s",
			len(uncovered), sample(uncovered))
	}

	return parts, nil
}

func sample(codes []string) string {
	const maxListed = 10
	slices.Sort(codes)
	if len(codes) > maxListed {
		return strings.Join(codes[:maxListed], ", ") + ", ..."
	}

	return strings.Join(codes, ", ")
}

// WriteShards partitions units and writes one file per range into dir.
// The shards are first written to a temporary sibling directory which
// replaces dir only once every shard has been encoded, checked and written.
func WriteShards(ctx context.Context, dir string, units []domain.AdministrativeUnit, opts BuildOptions) ([]ShardInfo, error) {
	ranges := opts.Ranges
	if len(ranges) == 0 {
		ranges = DefaultRanges
	}
	ranges, err := ValidateRanges(ranges)
	if err != nil {
		return nil, err
	}
	parts, err := Partition(units, ranges)
	if err != nil {
		return nil, err
	}

	encoded := make([][]byte, len(parts))
	infos := make([]ShardInfo, len(parts))
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build interrupted: %w", err)
		}
		b, err := EncodeShard(part)
		if err != nil {
			return nil, err
		}
		name := ranges[i].FileName()
		if opts.MaxShardBytes > 0 && int64(len(b)) > opts.MaxShardBytes {
			return nil, serrors.With(serrors.ErrValidation, "shard %s is %d bytes, above the %d bytes limit",
				name, len(b), opts.MaxShardBytes)
		}
		encoded[i] = b
		infos[i] = ShardInfo{Name: name, Units: len(part), Bytes: len(b)}
	}

	parent := filepath.Dir(filepath.Clean(dir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("could not create %s: %w", parent, err)
	}
	tmp, err := os.MkdirTemp(parent, ".boundaries-build-*")
	if err != nil {
		return nil, fmt.Errorf("could not create build directory: %w", err)
	}
	defer os.RemoveAll(tmp) //nolint: errcheck

	if err := os.Chmod(tmp, 0o755); err != nil { //nolint: gosec
		return nil, fmt.Errorf("could not prepare build directory: %w", err)
	}

	for i, info := range infos {
		if err := os.WriteFile(filepath.Join(tmp, info.Name), encoded[i], 0o644); err != nil { //nolint: gosec
			return nil, fmt.Errorf("could not write shard %s: %w", info.Name, err)
		}
		if opts.Progress != nil {
			_ = opts.Progress.Add(1)
		}
		logger.Debug(ctx, "shard written", zap.String("shard", info.Name), zap.Int("units", info.Units),
			zap.Int("bytes", info.Bytes))
	}

	if err := swapDir(tmp, dir); err != nil {
		return nil, err
	}

	return infos, nil
}

// swapDir moves src into dst's place, keeping dst intact if the move fails.
func swapDir(src, dst string) error {
	old := ""
	if _, err := os.Stat(dst); err == nil {
		old = dst + ".old"
		_ = os.RemoveAll(old)
		if err := os.Rename(dst, old); err != nil {
			return fmt.Errorf("could not move previous shards aside: %w", err)
		}
	}
	if err := os.Rename(src, dst); err != nil {
		if old != "" {
			_ = os.Rename(old, dst)
		}

		return fmt.Errorf("could not move shards into place: %w", err)
	}
	if old != "" {
		_ = os.RemoveAll(old)
	}

	return nil
}
