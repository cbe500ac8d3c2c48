package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-process database.
const MemoryPath = ":memory:"

// Open opens (or creates) a SQLite database at the given path with WAL
// journaling and foreign keys enabled. The pool is capped at one connection:
// all writes go through a single writer and in-memory databases stay shared.
func Open(path string) (*sql.DB, error) {
	dsn := "file::memory:?_pragma=foreign_keys(ON)"
	if path != MemoryPath {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
