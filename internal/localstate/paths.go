// Package localstate owns the on-disk layout of local mode: the data
// directory under the user's home and the SQLite schema kept there.
package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome    = "MEDILENS_HOME"
	dirName    = ".medilens"
	dbFilename = "medilens.db"
)

// DataDir returns $MEDILENS_HOME, or ~/.medilens, creating it 0700 if needed.
func DataDir() (string, error) {
	dir := os.Getenv(envHome)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return dir, nil
}

// DBPath is the SQLite file inside DataDir.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFilename), nil
}
