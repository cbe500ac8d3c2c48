package localstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataDir_EnvOverrideIsCreated(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "state")
	t.Setenv(envHome, want)

	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, want, dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDataDir_DefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(envHome, "")
	t.Setenv("HOME", home)

	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, dirName), dir)
}

func TestDBPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(envHome, tmp)

	p, err := DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "medilens.db"), p)
}
