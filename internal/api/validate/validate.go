package validate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/strfmt"

	"github.com/q-pitt/Medilense-3bros/internal/model"
)

// MaxNameLen bounds a medication name in runes.
const MaxNameLen = 100

func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", model.ErrValidation, field)
	}
	return nil
}

// Date parses a required YYYY-MM-DD value.
func Date(field, v string) (strfmt.Date, error) {
	if err := NonEmpty(field, v); err != nil {
		return strfmt.Date{}, err
	}
	d, err := model.ParseDate(strings.TrimSpace(v))
	if err != nil {
		return strfmt.Date{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", model.ErrValidation, field)
	}
	return d, nil
}

// OptionalDate parses v, or returns fallback when v is blank.
func OptionalDate(field, v string, fallback strfmt.Date) (strfmt.Date, error) {
	if strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	return Date(field, v)
}

// MedicationName checks a name taken from a path or body.
func MedicationName(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if utf8.RuneCountInString(v) > MaxNameLen {
		return fmt.Errorf("%w: name exceeds %d characters", model.ErrValidation, MaxNameLen)
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: name contains control characters", model.ErrValidation)
		}
	}
	return nil
}
