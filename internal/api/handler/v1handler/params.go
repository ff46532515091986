package v1handler

import (
	"densitymap/pkg/domain"
	"densitymap/pkg/serrors"
	"net/url"
	"strconv"
	"strings"
)

var viewportParams = [...]string{"north", "south", "east", "west"} //nolint: gochecknoglobals

// parseViewport reads the four viewport edges. All four or none must be set.
func parseViewport(q url.Values) (*domain.Viewport, error) {
	var edges [len(viewportParams)]float64
	set := 0
	for i, name := range viewportParams {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, serrors.With(serrors.ErrValidation, "%s must be a number, got %q", name, raw)
		}
		edges[i] = v
		set++
	}
	switch set {
	case 0:
		return nil, nil //nolint: nilnil
	case len(viewportParams):
	default:
		return nil, serrors.With(serrors.ErrValidation, "viewport requires north, south, east and west")
	}

	vp := &domain.Viewport{North: edges[0], South: edges[1], East: edges[2], West: edges[3]}
	if err := vp.Validate(); err != nil {
		return nil, err
	}

	return vp, nil
}

// parseInt reads a non-negative integer parameter, zero when absent.
func parseInt(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, serrors.With(serrors.ErrValidation, "%s must be a non-negative integer, got %q", name, raw)
	}

	return v, nil
}

// parseTier reads an optional tier parameter.
func parseTier(q url.Values) (domain.Tier, error) {
	raw := q.Get("tier")
	if strings.TrimSpace(raw) == "" {
		return domain.TierUnknown, nil
	}

	return domain.ParseTier(raw)
}

// parseCodes splits a comma separated list, dropping blanks and duplicates.
func parseCodes(q url.Values) []string {
	var codes []string
	seen := map[string]bool{}
	for _, raw := range q["codes"] {
		for c := range strings.SplitSeq(raw, ",") {
			c = strings.TrimSpace(c)
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			codes = append(codes, c)
		}
	}

	return codes
}
