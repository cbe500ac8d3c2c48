package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/q-pitt/Medilense-3bros/internal/model"
	"github.com/q-pitt/Medilense-3bros/internal/store"
	"github.com/q-pitt/Medilense-3bros/internal/store/storetest"
)

func makeSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "medilens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeSQLiteStore)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := New(MemoryPath)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "medilens.db")
	d, _ := model.ParseDate("2024-01-10")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Medications().ReplaceAll(ctx, []model.MedicationRecord{
		{ID: "1", BatchID: "b", Name: "세레온캡슐", Color: "#FF6B6B", StartDate: d, Days: 14, UsageTime: "식후 30분"},
	}))
	require.NoError(t, s.Adherence().SetTaken(ctx, d, "세레온캡슐", true))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Medications().List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-23", got[0].LastDay().String())

	taken, err := s.Adherence().IsTaken(ctx, d, "세레온캡슐")
	require.NoError(t, err)
	assert.True(t, taken)
}
