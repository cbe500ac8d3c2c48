package localstate

import (
	"database/sql"
)

// EnsureSQLiteSchema creates the medication and adherence tables if they do
// not exist. Dates are stored as YYYY-MM-DD text so they sort correctly.
func EnsureSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS medications (
            id TEXT PRIMARY KEY,
            batch_id TEXT NOT NULL,
            position INTEGER NOT NULL,
            name TEXT NOT NULL,
            info TEXT NOT NULL DEFAULT '',
            food_notes TEXT NOT NULL DEFAULT '',
            color TEXT NOT NULL,
            start_date TEXT NOT NULL,
            days INTEGER NOT NULL CHECK (days >= 1),
            usage_time TEXT NOT NULL DEFAULT '',
            dosage TEXT NOT NULL DEFAULT '',
            frequency TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_medications_name ON medications(name);`,
		`CREATE TABLE IF NOT EXISTS adherence (
            date TEXT NOT NULL,
            name TEXT NOT NULL,
            taken BOOLEAN NOT NULL DEFAULT 0,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY(date, name)
        );`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
