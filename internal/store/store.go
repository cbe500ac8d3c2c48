package store

import (
	"context"

	"github.com/go-openapi/strfmt"

	"github.com/q-pitt/Medilense-3bros/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
type Store interface {
	Medications() Medications
	Adherence() Adherence
	// Reset removes every medication and all adherence history.
	Reset(ctx context.Context) error
	Close() error
}

// Medications holds the current medication set. List returns records in the
// order they were registered.
type Medications interface {
	// ReplaceAll atomically swaps the whole set for recs. Every record is
	// validated before anything is written.
	ReplaceAll(ctx context.Context, recs []model.MedicationRecord) error
	List(ctx context.Context) ([]model.MedicationRecord, error)
	// DeleteByName removes every record named name and returns how many went.
	// It returns model.ErrNotFound when none matched.
	DeleteByName(ctx context.Context, name string) (int, error)
}

// Adherence holds taken flags keyed by (date, name). A missing key reads as
// not taken.
type Adherence interface {
	IsTaken(ctx context.Context, date strfmt.Date, name string) (bool, error)
	SetTaken(ctx context.Context, date strfmt.Date, name string, taken bool) error
	// Range returns stored entries with from <= date <= to, ordered by date then name.
	Range(ctx context.Context, from, to strfmt.Date) ([]model.AdherenceEntry, error)
}

// ValidateBatch checks every record of a replace-all batch.
func ValidateBatch(recs []model.MedicationRecord) error {
	for i := range recs {
		if err := recs[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
