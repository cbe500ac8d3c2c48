package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-openapi/strfmt"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/q-pitt/Medilense-3bros/internal/model"
	"github.com/q-pitt/Medilense-3bros/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens dsn, ensures the schema and returns a Store.
func New(ctx context.Context, dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
// The schema must already exist.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Medications() store.Medications { return &medications{db: s.db} }
func (s *pgStore) Adherence() store.Adherence     { return &adherence{db: s.db} }
func (s *pgStore) Close() error                   { return s.db.Close() }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *pgStore) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE medications, adherence`)
	return err
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
	for i, r := range recs {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO medications (id, batch_id, position, name, info, food_notes, color, start_date, days, usage_time, dosage, frequency)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8::date,$9,$10,$11,$12)`,
			r.ID, r.BatchID, i, r.Name, r.Info, r.FoodNotes, r.Color,
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
	res, err := m.db.ExecContext(ctx, `DELETE FROM medications WHERE name = $1`, name)
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
	err := a.db.QueryRowContext(ctx, `SELECT taken FROM adherence WHERE date = $1::date AND name = $2`,
		date.String(), name).Scan(&taken)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return taken, err
}

func (a *adherence) SetTaken(ctx context.Context, date strfmt.Date, name string, taken bool) error {
	_, err := a.db.ExecContext(ctx, `
        INSERT INTO adherence (date, name, taken) VALUES ($1::date,$2,$3)
        ON CONFLICT (date, name) DO UPDATE SET taken = EXCLUDED.taken, updated_at = now()`,
		date.String(), name, taken)
	return err
}

func (a *adherence) Range(ctx context.Context, from, to strfmt.Date) ([]model.AdherenceEntry, error) {
	rows, err := a.db.QueryContext(ctx, `
        SELECT date, name, taken FROM adherence
        WHERE date BETWEEN $1::date AND $2::date ORDER BY date, name`, from.String(), to.String())
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
