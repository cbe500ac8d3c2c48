package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawEntry_DecodesMixedScalars(t *testing.T) {
	in := `[{"medicine_name":"세레온캡슐","dosage":"1캡슐","frequency":"3","days":14,"usage":"식후 30분"},
	        {"medicine_name":"바이겔크림","days":"1"},
	        {"medicine_name":"X","days":null}]`
	var entries []RawEntry
	require.NoError(t, json.Unmarshal([]byte(in), &entries))
	require.Len(t, entries, 3)

	assert.Equal(t, "세레온캡슐", entries[0].MedicineName)
	assert.Equal(t, "14", entries[0].Days)
	assert.Equal(t, "식후 30분", entries[0].Usage)
	assert.Equal(t, "1", entries[1].Days)
	assert.Equal(t, "", entries[1].Usage)
	assert.Equal(t, "", entries[2].Days)
}

func TestRawEntry_RejectsNestedValues(t *testing.T) {
	var e RawEntry
	err := json.Unmarshal([]byte(`{"medicine_name":{"a":1}}`), &e)
	assert.Error(t, err)
}

func TestMedicationRecord_Window(t *testing.T) {
	start, err := ParseDate("2024-01-10")
	require.NoError(t, err)

	rec := MedicationRecord{Name: "세레온캡슐", StartDate: start, Days: 14}
	require.NoError(t, rec.Validate())
	assert.Equal(t, "2024-01-23", rec.LastDay().String())

	rec.Days = 0
	assert.True(t, errors.Is(rec.Validate(), ErrValidation))

	rec.Days = MaxCourseDays
	require.NoError(t, rec.Validate())
	rec.Days = MaxCourseDays + 1
	assert.True(t, errors.Is(rec.Validate(), ErrValidation))
	rec.Days = 1
	rec.Name = "  "
	assert.True(t, errors.Is(rec.Validate(), ErrValidation))
}

func TestDateHelpers(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	require.NoError(t, err)

	assert.Equal(t, "2024-02-29", AddDays(d, 1).String())
	assert.Equal(t, "2024-03-01", AddDays(d, 2).String())
	assert.Equal(t, "2024-02-27", AddDays(d, -1).String())

	later, _ := ParseDate("2024-03-10")
	assert.Equal(t, 11, DaysBetween(d, later))
	assert.Equal(t, -11, DaysBetween(later, d))
	assert.True(t, SameDay(AddDays(d, 11), later))

	_, err = ParseDate("2024/01/01")
	assert.True(t, errors.Is(err, ErrValidation))
}
