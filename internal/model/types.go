package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-openapi/strfmt"
)

// MaxCourseDays bounds a course length (about ten years).
const MaxCourseDays = 3650

// MedicationRecord is one registered drug with its treatment window.
// The active window is the closed range [StartDate, StartDate+Days-1].
type MedicationRecord struct {
	ID        string      `json:"id"`
	BatchID   string      `json:"batchId"`
	Name      string      `json:"name"`
	Info      string      `json:"info"`
	FoodNotes string      `json:"foodNotes"`
	Color     string      `json:"color"`
	StartDate strfmt.Date `json:"startDate"`
	Days      int         `json:"days"`
	UsageTime string      `json:"usageTime"`
	Dosage    string      `json:"dosage,omitempty"`
	Frequency string      `json:"frequency,omitempty"`
}

// LastDay returns the final day of the active window.
func (m MedicationRecord) LastDay() strfmt.Date {
	return AddDays(m.StartDate, m.Days-1)
}

// Validate enforces 1 <= Days <= MaxCourseDays and a non-empty name.
func (m MedicationRecord) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: medication name is required", ErrValidation)
	}
	if m.Days < 1 {
		return fmt.Errorf("%w: days must be >= 1, got %d", ErrValidation, m.Days)
	}
	if m.Days > MaxCourseDays {
		return fmt.Errorf("%w: days must be <= %d, got %d", ErrValidation, MaxCourseDays, m.Days)
	}
	return nil
}

// AdherenceEntry records whether the dose of Name was taken on Date.
// A missing entry means not taken.
type AdherenceEntry struct {
	Date  strfmt.Date `json:"date"`
	Name  string      `json:"name"`
	Taken bool        `json:"taken"`
}

// RawEntry is one drug line as extracted from a prescription image.
// Fields arrive as strings but models frequently emit numbers for days,
// so decoding accepts any JSON scalar.
type RawEntry struct {
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Days         string `json:"days"`
	Usage        string `json:"usage"`
}

func (r *RawEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := map[string]*string{
		"medicine_name": &r.MedicineName,
		"dosage":        &r.Dosage,
		"frequency":     &r.Frequency,
		"days":          &r.Days,
		"usage":         &r.Usage,
	}
	for key, dst := range fields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		s, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		*dst = s
	}
	return nil
}

func scalarString(v json.RawMessage) (string, error) {
	var val interface{}
	if err := json.Unmarshal(v, &val); err != nil {
		return "", err
	}
	switch t := val.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%g", t), ".0"), nil
	case bool:
		return fmt.Sprintf("%t", t), nil
	default:
		return "", fmt.Errorf("unsupported value %s", string(v))
	}
}
