package boundary

import (
	"context"
	"densitymap/pkg/domain"
	"densitymap/pkg/logger"
	"densitymap/pkg/serrors"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// Property names tried, in order, for the code and the name of a commune.
var (
	DefaultCodeProperties = []string{"code", "insee", "INSEE_COM", "codgeo", "com_code"} //nolint: gochecknoglobals
	DefaultNameProperties = []string{"nom", "name", "NOM_COM", "libgeo", "com_name"}     //nolint: gochecknoglobals
)

// Feature rejection reasons, used in logs and metrics.
const (
	RejectInvalidFeature  = "invalid_feature"
	RejectMissingCode     = "missing_code"
	RejectMissingName     = "missing_name"
	RejectInvalidGeometry = "invalid_geometry"
)

// inseeCodeLength is used to restore leading zeros of codes stored as numbers.
const inseeCodeLength = 5

// SourceOptions configures DecodeSource.
type SourceOptions struct {
	CodeProperties []string
	NameProperties []string
	// OnReject is called once per rejected feature.
	OnReject func(ctx context.Context, reason string)
}

// SourceReport counts the features of a source.
type SourceReport struct {
	Features int
	Accepted int
	Rejected map[string]int
}

// propertyAccessor reads the first candidate property holding a usable value.
type propertyAccessor []string

func (a propertyAccessor) lookup(props geojson.Properties) (string, bool) {
	for _, key := range a {
		raw, ok := props[key]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, true
			}
		case float64:
			if v == math.Trunc(v) && v >= 0 {
				s := strconv.FormatInt(int64(v), 10)
				if len(s) < inseeCodeLength {
					s = strings.Repeat("0", inseeCodeLength-len(s)) + s
				}

				return s, true
			}
		}
	}

	return "", false
}

// DecodeSource decodes a GeoJSON FeatureCollection into administrative
// units. Every feature that cannot be used is logged with its index and
// reason, counted in the report and reported to opts.OnReject. Only a
// document that is not a FeatureCollection fails the decode.
func DecodeSource(ctx context.Context, data []byte, opts SourceOptions) ([]domain.AdministrativeUnit, SourceReport, error) {
	codeProps := propertyAccessor(opts.CodeProperties)
	if len(codeProps) == 0 {
		codeProps = DefaultCodeProperties
	}
	nameProps := propertyAccessor(opts.NameProperties)
	if len(nameProps) == 0 {
		nameProps = DefaultNameProperties
	}
	report := SourceReport{Rejected: map[string]int{}}

	var doc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, report, serrors.Wrap(serrors.ErrSourceRead, err, "decoding boundary source")
	}
	if doc.Type != "FeatureCollection" {
		return nil, report, serrors.With(serrors.ErrSourceRead, "boundary source is a %q, not a FeatureCollection", doc.Type)
	}

	reject := func(i int, reason string, fields ...zap.Field) {
		report.Rejected[reason]++
		logger.Warn(ctx, "rejecting boundary feature",
			append(fields, zap.Int("feature", i), zap.String("reason", reason))...)
		if opts.OnReject != nil {
			opts.OnReject(ctx, reason)
		}
	}

	units := make([]domain.AdministrativeUnit, 0, len(doc.Features))
	for i, raw := range doc.Features {
		report.Features++
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, report, fmt.Errorf("decode interrupted: %w", err)
			}
		}

		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			reject(i, RejectInvalidFeature, zap.Error(err))

			continue
		}
		code, ok := codeProps.lookup(f.Properties)
		if !ok {
			reject(i, RejectMissingCode, zap.Strings("tried", []string(codeProps)))

			continue
		}
		name, ok := nameProps.lookup(f.Properties)
		if !ok {
			reject(i, RejectMissingName, zap.String("code", code), zap.Strings("tried", []string(nameProps)))

			continue
		}
		unit, err := domain.NewAdministrativeUnit(code, name, f.Geometry)
		if err != nil {
			reject(i, RejectInvalidGeometry, zap.String("code", code), zap.Error(err))

			continue
		}
		units = append(units, unit)
		report.Accepted++
	}

	logger.Info(ctx, "decoded boundary source",
		zap.Int("features", report.Features),
		zap.Int("accepted", report.Accepted),
		zap.Any("rejected", report.Rejected))

	return units, report, nil
}
