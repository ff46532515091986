package domain

import (
	"densitymap/pkg/serrors"
	"strings"
)

// Profession is a medical profession covered by the zoning dataset.
type Profession string

const (
	ProfessionNurse               Profession = "infirmier"
	ProfessionPhysiotherapist     Profession = "masseur-kinesitherapeute"
	ProfessionMidwife             Profession = "sage-femme"
	ProfessionDentist             Profession = "chirurgien-dentiste"
	ProfessionSpeechTherapist     Profession = "orthophoniste"
	ProfessionGeneralPractitioner Profession = "medecin-generaliste"
)

var professions = []Profession{ //nolint: gochecknoglobals
	ProfessionNurse,
	ProfessionPhysiotherapist,
	ProfessionMidwife,
	ProfessionDentist,
	ProfessionSpeechTherapist,
	ProfessionGeneralPractitioner,
}

// Professions returns every supported profession in declaration order.
func Professions() []Profession {
	out := make([]Profession, len(professions))
	copy(out, professions)

	return out
}

// ParseProfession returns the profession named s. The error enumerates the
// allowed values.
func ParseProfession(s string) (Profession, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", serrors.With(serrors.ErrValidation,
			"profession is required, allowed values: %s", professionList())
	}
	for _, p := range professions {
		if string(p) == s {
			return p, nil
		}
	}

	return "", serrors.With(serrors.ErrValidation,
		"invalid profession %q, allowed values: %s", s, professionList())
}

// Valid reports whether p is one of the supported professions.
func (p Profession) Valid() bool {
	for _, known := range professions {
		if p == known {
			return true
		}
	}

	return false
}

func (p Profession) String() string { return string(p) }

func professionList() string {
	names := make([]string, len(professions))
	for i, p := range professions {
		names[i] = string(p)
	}

	return strings.Join(names, ", ")
}
