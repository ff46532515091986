package domain

import (
	"densitymap/pkg/serrors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tier is a zoning level describing how well a commune is served by a
// profession. The zero value is TierUnknown and is never stored.
type Tier uint8

const (
	TierUnknown Tier = iota
	TierVeryUnderserved
	TierUnderserved
	TierIntermediate
	TierWellServed
	TierOverserved
	TierPriorityIntervention
	TierComplementaryAction
	TierVigilance
	TierOutsideZoning

	numTiers
)

// NotAvailable is the source marker for communes without a computed tier.
// Rows carrying it are dropped when the dataset is built.
const NotAvailable = "N/A - résultat non disponible"

// Presentation is how a tier is rendered on the map.
type Presentation struct {
	Color string
	Label string
	// Score ranks the tier from the most under-served (highest) to the most
	// over-served (lowest) within its zoning scheme.
	Score int
}

type tierInfo struct {
	code string
	Presentation
}

var tiers = [...]tierInfo{ //nolint: gochecknoglobals
	TierUnknown:              {code: ""},
	TierVeryUnderserved:      {code: "Zone tres sous-dotee", Presentation: Presentation{Color: "#d7191c", Label: "Zone très sous-dotée", Score: 5}},
	TierUnderserved:          {code: "Zone sous-dotee", Presentation: Presentation{Color: "#fdae61", Label: "Zone sous-dotée", Score: 4}},
	TierIntermediate:         {code: "Zone intermediaire", Presentation: Presentation{Color: "#ffffbf", Label: "Zone intermédiaire", Score: 3}},
	TierWellServed:           {code: "Zone tres dotee", Presentation: Presentation{Color: "#a6d96a", Label: "Zone très dotée", Score: 2}},
	TierOverserved:           {code: "Zone sur-dotee", Presentation: Presentation{Color: "#1a9641", Label: "Zone sur-dotée", Score: 1}},
	TierPriorityIntervention: {code: "Zone d'intervention prioritaire", Presentation: Presentation{Color: "#b2182b", Label: "Zone d'intervention prioritaire", Score: 4}},
	TierComplementaryAction:  {code: "Zone d'action complementaire", Presentation: Presentation{Color: "#ef8a62", Label: "Zone d'action complémentaire", Score: 3}},
	TierVigilance:            {code: "Zone de vigilance", Presentation: Presentation{Color: "#fddbc7", Label: "Zone de vigilance", Score: 2}},
	TierOutsideZoning:        {code: "Hors zonage", Presentation: Presentation{Color: "#bababa", Label: "Hors zonage", Score: 1}},
}

// A tier added to the enumeration without a table row fails to compile here.
var _ [numTiers]tierInfo = tiers

var tierByKey = func() map[string]Tier { //nolint: gochecknoglobals
	m := make(map[string]Tier, numTiers)
	for t := TierUnknown + 1; t < numTiers; t++ {
		m[tierKey(tiers[t].code)] = t
	}

	return m
}()

// Tiers returns every known tier in enumeration order.
func Tiers() []Tier {
	out := make([]Tier, 0, numTiers-1)
	for t := TierUnknown + 1; t < numTiers; t++ {
		out = append(out, t)
	}

	return out
}

// ParseTier matches s against the tier codes ignoring case, accents,
// apostrophe style and repeated whitespace, so "Zone très sous-dotée" and
// "zone tres sous-dotee" are the same tier.
func ParseTier(s string) (Tier, error) {
	if t, ok := tierByKey[tierKey(s)]; ok {
		return t, nil
	}
	if strings.TrimSpace(s) == "" {
		return TierUnknown, serrors.With(serrors.ErrValidation, "tier is required, allowed values: %s", tierList())
	}

	return TierUnknown, serrors.With(serrors.ErrValidation,
		"invalid tier %q, allowed values: %s", s, tierList())
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool { return t > TierUnknown && t < numTiers }

// String returns the canonical ASCII code, or "" for an invalid tier.
func (t Tier) String() string {
	if !t.Valid() {
		return ""
	}

	return tiers[t].code
}

// Presentation returns the map presentation of t. Invalid tiers get the
// zero Presentation.
func (t Tier) Presentation() Presentation {
	if !t.Valid() {
		return Presentation{}
	}

	return tiers[t].Presentation
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, serrors.With(serrors.ErrValidation, "cannot encode unknown tier %d", uint8(t))
	}

	return []byte(tiers[t].code), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed

	return nil
}

func tierKey(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, s)
	if err != nil {
		stripped = s
	}
	stripped = strings.NewReplacer("’", "'", "‘", "'", "`", "'").Replace(stripped)

	return strings.ToLower(strings.Join(strings.Fields(stripped), " "))
}

func tierList() string {
	codes := make([]string, 0, numTiers-1)
	for t := TierUnknown + 1; t < numTiers; t++ {
		codes = append(codes, tiers[t].code)
	}

	return strings.Join(codes, ", ")
}
