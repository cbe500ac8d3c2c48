// Package sqlite is the embedded local store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-openapi/strfmt"

	"github.com/q-pitt/Medilense-3bros/internal/localstate"
	"github.com/q-pitt/Medilense-3bros/internal/model"
	"github.com/q-pitt/Medilense-3bros/internal/store"
)

// New opens the database at path, ensures the schema and returns a Store.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	s, err := NewWithDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an already opened database.
func NewWithDB(db *sql.DB) (store.Store, error) {
	if err := localstate.EnsureSQLiteSchema(db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Medications() store.Medications { return &medications{db: s.db} }
func (s *sqliteStore) Adherence() store.Adherence     { return &adherence{db: s.db} }
func (s *sqliteStore) Close() error                   { return s.db.Close() }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM medications`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM adherence`); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Medications ---
type medications struct{ db *sql.DB }

func (m *medications) ReplaceAll(ctx context.Context, recs []model.MedicationRecord) error {
	if err := store.ValidateBatch(recs); err != nil {
		return err
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM medications`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO medications (id, batch_id, position, name, info, food_notes, color, start_date, days, usage_time, dosage, frequency)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.ID, r.BatchID, i, r.Name, r.Info, r.FoodNotes, r.Color,
			r.StartDate.String(), r.Days, r.UsageTime, r.Dosage, r.Frequency); err != nil {
			return fmt.Errorf("insert %s: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

func (m *medications) List(ctx context.Context) ([]model.MedicationRecord, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT id, batch_id, name, info, food_notes, color, start_date, days, usage_time, dosage, frequency
        FROM medications ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.MedicationRecord{}
	for rows.Next() {
		var r model.MedicationRecord
		if err := rows.Scan(&r.ID, &r.BatchID, &r.Name, &r.Info, &r.FoodNotes, &r.Color,
			&r.StartDate, &r.Days, &r.UsageTime, &r.Dosage, &r.Frequency); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (m *medications) DeleteByName(ctx context.Context, name string) (int, error) {
	res, err := m.db.ExecContext(ctx, `DELETE FROM medications WHERE name = ?`, name)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("medication %q: %w", name, model.ErrNotFound)
	}
	return int(n), nil
}

// --- Adherence ---
type adherence struct{ db *sql.DB }

func (a *adherence) IsTaken(ctx context.Context, date strfmt.Date, name string) (bool, error) {
	var taken bool
	err := a.db.QueryRowContext(ctx, `SELECT taken FROM adherence WHERE date = ? AND name = ?`,
		date.String(), name).Scan(&taken)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return taken, err
}

func (a *adherence) SetTaken(ctx context.Context, date strfmt.Date, name string, taken bool) error {
	_, err := a.db.ExecContext(ctx, `
        INSERT INTO adherence (date, name, taken) VALUES (?,?,?)
        ON CONFLICT(date, name) DO UPDATE SET taken = excluded.taken, updated_at = CURRENT_TIMESTAMP`,
		date.String(), name, taken)
	return err
}

func (a *adherence) Range(ctx context.Context, from, to strfmt.Date) ([]model.AdherenceEntry, error) {
	rows, err := a.db.QueryContext(ctx, `
        SELECT date, name, taken FROM adherence
        WHERE date >= ? AND date <= ? ORDER BY date, name`, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AdherenceEntry{}
	for rows.Next() {
		var e model.AdherenceEntry
		if err := rows.Scan(&e.Date, &e.Name, &e.Taken); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
