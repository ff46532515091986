package boundary

import (
	"cmp"
	"densitymap/pkg/serrors"
	"fmt"
	"slices"
	"strconv"
)

// Range is an inclusive range of department prefix numbers stored in one
// shard.
type Range struct {
	From int
	To   int
}

// DefaultRanges splits metropolitan and overseas departments into five
// shards, each well under common per-file hosting limits.
var DefaultRanges = []Range{ //nolint: gochecknoglobals
	{From: 1, To: 19},
	{From: 20, To: 39},
	{From: 40, To: 59},
	{From: 60, To: 79},
	{From: 80, To: 99},
}

// FileName is the shard file holding r.
func (r Range) FileName() string {
	return fmt.Sprintf("boundaries-%02d-%02d.json", r.From, r.To)
}

func (r Range) contains(n int) bool { return n >= r.From && n <= r.To }

// DepartmentNumber maps the two-character department prefix of an INSEE
// code to a number. Corsica ("2A", "2B") maps to 20.
func DepartmentNumber(code string) (int, error) {
	if len(code) < 2 {
		return 0, serrors.With(serrors.ErrValidation, "code %q is too short", code)
	}
	prefix := code[:2]
	switch prefix {
	case "2A", "2B", "2a", "2b":
		return 20, nil
	}
	n, err := strconv.Atoi(prefix)
	if err != nil || n < 0 {
		return 0, serrors.With(serrors.ErrValidation, "code %q has no numeric department prefix", code)
	}

	return n, nil
}

// ValidateRanges sorts ranges and rejects empty, inverted or overlapping
// ones, so that every department number belongs to at most one shard.
func ValidateRanges(ranges []Range) ([]Range, error) {
	if len(ranges) == 0 {
		return nil, serrors.With(serrors.ErrValidation, "no shard range configured")
	}
	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(a, b Range) int { return cmp.Compare(a.From, b.From) })

	for i, r := range sorted {
		if r.From < 0 || r.To > 99 || r.From > r.To {
			return nil, serrors.With(serrors.ErrValidation, "invalid shard range %02d-%02d", r.From, r.To)
		}
		if i > 0 && r.From <= sorted[i-1].To {
			return nil, serrors.With(serrors.ErrValidation, "shard ranges %02d-%02d and %02d-%02d overlap",
				sorted[i-1].From, sorted[i-1].To, r.From, r.To)
		}
	}

	return sorted, nil
}

// RangeFor returns the index of the range holding code in ranges, which
// must have passed ValidateRanges.
func RangeFor(ranges []Range, code string) (int, error) {
	n, err := DepartmentNumber(code)
	if err != nil {
		return -1, err
	}
	for i, r := range ranges {
		if r.contains(n) {
			return i, nil
		}
	}

	return -1, serrors.With(serrors.ErrValidation, "code %s (department %02d) is outside every shard range", code, n)
}
