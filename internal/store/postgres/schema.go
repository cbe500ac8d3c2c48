package postgres

import (
	"context"
	"database/sql"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS medications (
        id TEXT PRIMARY KEY,
        batch_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        name TEXT NOT NULL,
        info TEXT NOT NULL DEFAULT '',
        food_notes TEXT NOT NULL DEFAULT '',
        color TEXT NOT NULL,
        start_date DATE NOT NULL,
        days INTEGER NOT NULL CHECK (days >= 1),
        usage_time TEXT NOT NULL DEFAULT '',
        dosage TEXT NOT NULL DEFAULT '',
        frequency TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_medications_name ON medications(name)`,
	`CREATE TABLE IF NOT EXISTS adherence (
        date DATE NOT NULL,
        name TEXT NOT NULL,
        taken BOOLEAN NOT NULL DEFAULT false,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (date, name)
    )`,
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, s := range schema {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
