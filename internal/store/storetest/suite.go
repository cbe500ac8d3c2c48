package storetest

import (
	"context"
	"testing"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/q-pitt/Medilense-3bros/internal/model"
	"github.com/q-pitt/Medilense-3bros/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// makeStore must return a clean, isolated store for each call.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("ReplaceAllAndList", func(t *testing.T) { testReplaceAll(t, makeStore(t)) })
	t.Run("ReplaceAllRejectsInvalid", func(t *testing.T) { testReplaceAllInvalid(t, makeStore(t)) })
	t.Run("DeleteByName", func(t *testing.T) { testDeleteByName(t, makeStore(t)) })
	t.Run("Adherence", func(t *testing.T) { testAdherence(t, makeStore(t)) })
	t.Run("Reset", func(t *testing.T) { testReset(t, makeStore(t)) })
}

func date(t *testing.T, s string) strfmt.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func record(t *testing.T, batch, name, start string, days int) model.MedicationRecord {
	return model.MedicationRecord{
		ID:        uuid.NewString(),
		BatchID:   batch,
		Name:      name,
		Info:      name + " info",
		FoodNotes: name + " notes",
		Color:     "#4ECDC4",
		StartDate: date(t, start),
		Days:      days,
		UsageTime: "식후 30분",
		Dosage:    "1정",
		Frequency: "3회",
	}
}

func testReplaceAll(t *testing.T, s store.Store) {
	ctx := context.Background()

	got, err := s.Medications().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	first := []model.MedicationRecord{
		record(t, "b1", "세레온캡슐", "2024-01-10", 14),
		record(t, "b1", "바이겔크림", "2024-01-10", 14),
		record(t, "b1", "알마겔정", "2024-01-10", 7),
	}
	require.NoError(t, s.Medications().ReplaceAll(ctx, first))

	got, err = s.Medications().List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range first {
		assert.Equal(t, first[i].ID, got[i].ID)
		assert.Equal(t, first[i].Name, got[i].Name)
		assert.Equal(t, first[i].Info, got[i].Info)
		assert.Equal(t, first[i].FoodNotes, got[i].FoodNotes)
		assert.Equal(t, first[i].Color, got[i].Color)
		assert.Equal(t, first[i].StartDate.String(), got[i].StartDate.String())
		assert.Equal(t, first[i].Days, got[i].Days)
		assert.Equal(t, first[i].UsageTime, got[i].UsageTime)
		assert.Equal(t, first[i].Dosage, got[i].Dosage)
		assert.Equal(t, first[i].Frequency, got[i].Frequency)
		assert.Equal(t, "b1", got[i].BatchID)
	}

	second := []model.MedicationRecord{record(t, "b2", "타이레놀정", "2024-02-01", 3)}
	require.NoError(t, s.Medications().ReplaceAll(ctx, second))
	got, err = s.Medications().List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "타이레놀정", got[0].Name)
}

func testReplaceAllInvalid(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Medications().ReplaceAll(ctx, []model.MedicationRecord{
		record(t, "b1", "keep", "2024-01-10", 3),
	}))

	bad := []model.MedicationRecord{
		record(t, "b2", "ok", "2024-01-10", 3),
		record(t, "b2", "broken", "2024-01-10", 0),
	}
	err := s.Medications().ReplaceAll(ctx, bad)
	require.ErrorIs(t, err, model.ErrValidation)

	// same bound on every backend, well below the INTEGER column limit
	tooLong := []model.MedicationRecord{record(t, "b3", "forever", "2024-01-10", model.MaxCourseDays+1)}
	require.ErrorIs(t, s.Medications().ReplaceAll(ctx, tooLong), model.ErrValidation)

	got, err := s.Medications().List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].Name)
}

func testDeleteByName(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Medications().ReplaceAll(ctx, []model.MedicationRecord{
		record(t, "b1", "A", "2024-01-10", 3),
		record(t, "b1", "B", "2024-01-10", 3),
		record(t, "b1", "A", "2024-01-10", 5),
	}))
	d := date(t, "2024-01-10")
	require.NoError(t, s.Adherence().SetTaken(ctx, d, "A", true))

	n, err := s.Medications().DeleteByName(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Medications().List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Name)

	_, err = s.Medications().DeleteByName(ctx, "A")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// adherence history for a deleted name is left in place
	taken, err := s.Adherence().IsTaken(ctx, d, "A")
	require.NoError(t, err)
	assert.True(t, taken)
}

func testAdherence(t *testing.T, s store.Store) {
	ctx := context.Background()
	d1 := date(t, "2024-01-10")
	d2 := date(t, "2024-01-11")
	d3 := date(t, "2024-01-12")

	taken, err := s.Adherence().IsTaken(ctx, d1, "A")
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, s.Adherence().SetTaken(ctx, d1, "A", true))
	require.NoError(t, s.Adherence().SetTaken(ctx, d1, "A", true))
	taken, err = s.Adherence().IsTaken(ctx, d1, "A")
	require.NoError(t, err)
	assert.True(t, taken)

	require.NoError(t, s.Adherence().SetTaken(ctx, d1, "A", false))
	taken, err = s.Adherence().IsTaken(ctx, d1, "A")
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, s.Adherence().SetTaken(ctx, d1, "B", true))
	require.NoError(t, s.Adherence().SetTaken(ctx, d2, "A", true))
	require.NoError(t, s.Adherence().SetTaken(ctx, d3, "A", true))

	entries, err := s.Adherence().Range(ctx, d1, d2)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2024-01-10", entries[0].Date.String())
	assert.Equal(t, "A", entries[0].Name)
	assert.False(t, entries[0].Taken)
	assert.Equal(t, "B", entries[1].Name)
	assert.True(t, entries[1].Taken)
	assert.Equal(t, "2024-01-11", entries[2].Date.String())

	entries, err = s.Adherence().Range(ctx, d3, d3)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func testReset(t *testing.T, s store.Store) {
	ctx := context.Background()
	d := date(t, "2024-01-10")
	require.NoError(t, s.Medications().ReplaceAll(ctx, []model.MedicationRecord{record(t, "b1", "A", "2024-01-10", 3)}))
	require.NoError(t, s.Adherence().SetTaken(ctx, d, "A", true))

	require.NoError(t, s.Reset(ctx))

	got, err := s.Medications().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	taken, err := s.Adherence().IsTaken(ctx, d, "A")
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, s.Reset(ctx))
}
