package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/q-pitt/Medilense-3bros/internal/druginfo"
	"github.com/q-pitt/Medilense-3bros/internal/model"
	"github.com/q-pitt/Medilense-3bros/internal/schedule"
)

func mustDate(t *testing.T, s string) strfmt.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func lookupReturning(item *druginfo.Item, err error) druginfo.Lookup {
	return druginfo.LookupFunc(func(context.Context, string) (*druginfo.Item, error) { return item, err })
}

func seqIDs() func() string {
	var n atomic.Int32
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

func TestReconcile_DayCorrection(t *testing.T) {
	reg := mustDate(t, "2024-01-10")
	r := New(lookupReturning(nil, druginfo.ErrNoData), zerolog.Nop())

	recs := r.Reconcile(context.Background(), []model.RawEntry{
		{MedicineName: "A", Days: "14"},
		{MedicineName: "B", Days: "1"},
		{MedicineName: "C", Days: "14"},
	}, reg)

	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, 14, rec.Days, rec.Name)
	}
}

func TestReconcile_NeedsConfiguration(t *testing.T) {
	reg := mustDate(t, "2024-01-10")
	r := New(lookupReturning(nil, druginfo.ErrNotConfigured), zerolog.Nop())

	recs := r.Reconcile(context.Background(), []model.RawEntry{
		{MedicineName: "A", Days: "3"},
		{MedicineName: "B(10mg)", Days: "3"},
	}, reg)

	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, NeedKeyInfo, rec.Info)
		assert.Equal(t, NeedKeyFood, rec.FoodNotes)
	}
}

func TestReconcile_EndToEndScenario(t *testing.T) {
	reg := mustDate(t, "2024-01-10")
	r := New(lookupReturning(nil, druginfo.ErrNoData), zerolog.Nop())

	recs := r.Reconcile(context.Background(), []model.RawEntry{
		{MedicineName: "세레온캡슐", Days: "14"},
		{MedicineName: "바이겔크림", Days: "1"},
	}, reg)

	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, 14, rec.Days)
		assert.Equal(t, "2024-01-10", rec.StartDate.String())
		assert.Equal(t, "2024-01-23", rec.LastDay().String())
	}
	assert.Equal(t, "세레온캡슐", recs[0].Name)
	assert.Equal(t, "바이겔크림", recs[1].Name)

	last, _ := model.ParseDate("2024-01-23")
	after, _ := model.ParseDate("2024-01-24")
	assert.Len(t, schedule.ActiveOn(recs, last), 2)
	assert.Empty(t, schedule.ActiveOn(recs, after))
}

func TestReconcile_RecordFields(t *testing.T) {
	reg := mustDate(t, "2024-05-01")
	var seen []string
	var mu sync.Mutex
	lookup := druginfo.LookupFunc(func(_ context.Context, name string) (*druginfo.Item, error) {
		mu.Lock()
		seen = append(seen, name)
		mu.Unlock()
		return &druginfo.Item{Efficacy: "해열", Precaution: "음주 주의"}, nil
	})

	r := New(lookup, zerolog.Nop(),
		WithColorPicker(func(int) int { return 2 }),
		WithIDGenerator(seqIDs()),
		WithParallelism(1),
	)
	recs := r.Reconcile(context.Background(), []model.RawEntry{
		{MedicineName: "  타이레놀정(500mg) ", Dosage: "1정", Frequency: "3회", Days: "5", Usage: "식후 즉시"},
		{MedicineName: "무코스타정", Days: ""},
	}, reg)

	require.Len(t, recs, 2)
	assert.Equal(t, []string{"타이레놀정", "무코스타정"}, seen)

	first := recs[0]
	assert.Equal(t, "id-2", first.ID)
	assert.Equal(t, "id-1", first.BatchID)
	assert.Equal(t, recs[1].BatchID, first.BatchID)
	assert.Equal(t, "타이레놀정", first.Name)
	assert.Equal(t, "해열", first.Info)
	assert.Equal(t, "음주 주의", first.FoodNotes)
	assert.Equal(t, Palette[2].Hex, first.Color)
	assert.Equal(t, 5, first.Days)
	assert.Equal(t, "식후 즉시", first.UsageTime)
	assert.Equal(t, "1정", first.Dosage)
	assert.Equal(t, "3회", first.Frequency)

	assert.Equal(t, 5, recs[1].Days, "missing days falls back to the longest course")
	assert.Equal(t, DefaultUsage, recs[1].UsageTime)
}

func TestReconcile_LookupFailureNeverAborts(t *testing.T) {
	reg := mustDate(t, "2024-01-10")
	lookup := druginfo.LookupFunc(func(_ context.Context, name string) (*druginfo.Item, error) {
		if name == "boom" {
			return nil, errors.New("registry request: connection refused")
		}
		return &druginfo.Item{Efficacy: "ok"}, nil
	})

	r := New(lookup, zerolog.Nop())
	recs := r.Reconcile(context.Background(), []model.RawEntry{
		{MedicineName: "boom"}, {MedicineName: "fine"},
	}, reg)

	require.Len(t, recs, 2)
	assert.Equal(t, NoInfo, recs[0].Info)
	assert.Equal(t, NoInfo, recs[0].FoodNotes)
	assert.Equal(t, "ok", recs[1].Info)
	assert.Equal(t, NoPrecautionInfo, recs[1].FoodNotes)
}

func TestReconcile_BoundedParallelism(t *testing.T) {
	reg := mustDate(t, "2024-01-10")
	var inflight, peak atomic.Int32
	lookup := druginfo.LookupFunc(func(context.Context, string) (*druginfo.Item, error) {
		cur := inflight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inflight.Add(-1)
		return nil, druginfo.ErrNoData
	})

	entries := make([]model.RawEntry, 8)
	for i := range entries {
		entries[i] = model.RawEntry{MedicineName: fmt.Sprintf("drug-%d", i), Days: "7"}
	}
	recs := New(lookup, zerolog.Nop(), WithParallelism(3)).Reconcile(context.Background(), entries, reg)

	require.Len(t, recs, 8)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	for i, rec := range recs {
		assert.Equal(t, fmt.Sprintf("drug-%d", i), rec.Name)
	}
}

func TestReconcile_Empty(t *testing.T) {
	reg := mustDate(t, "2024-01-10")
	recs := New(lookupReturning(nil, nil), zerolog.Nop()).Reconcile(context.Background(), nil, reg)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestReconcile_DropsUnnamedEntries(t *testing.T) {
	reg := mustDate(t, "2024-01-10")
	recs := New(lookupReturning(nil, druginfo.ErrNoData), zerolog.Nop()).Reconcile(context.Background(), []model.RawEntry{
		{MedicineName: "(100mg)", Days: "30"},
		{MedicineName: "무코스타정", Days: "7"},
	}, reg)

	require.Len(t, recs, 1)
	assert.Equal(t, "무코스타정", recs[0].Name)
	assert.Equal(t, 7, recs[0].Days)
}

func TestReconcile_ColorsFromPalette(t *testing.T) {
	reg := mustDate(t, "2024-01-10")
	entries := make([]model.RawEntry, 25)
	for i := range entries {
		entries[i] = model.RawEntry{MedicineName: fmt.Sprintf("d%d", i)}
	}
	for _, rec := range New(lookupReturning(nil, druginfo.ErrNoData), zerolog.Nop()).Reconcile(context.Background(), entries, reg) {
		assert.True(t, IsPaletteColor(rec.Color), rec.Color)
	}
}

func TestMaxDays(t *testing.T) {
	cases := []struct {
		name string
		days []string
		want int
	}{
		{"none declared", []string{"", ""}, 3},
		{"max", []string{"14", "1", "7"}, 14},
		{"suffix", []string{"10일", "3"}, 10},
		{"all single", []string{"1", "1"}, 1},
		{"zero only", []string{"0"}, 3},
		{"garbage ignored", []string{"abc", "5"}, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries := make([]model.RawEntry, len(tc.days))
			for i, d := range tc.days {
				entries[i].Days = d
			}
			assert.Equal(t, tc.want, MaxDays(entries, 3))
		})
	}
	assert.Equal(t, 3, MaxDays(nil, 3))
}

func TestCorrectDays(t *testing.T) {
	assert.Equal(t, 14, CorrectDays("1", 14))
	assert.Equal(t, 14, CorrectDays("0", 14))
	assert.Equal(t, 14, CorrectDays("", 14))
	assert.Equal(t, 14, CorrectDays("하루", 14))
	assert.Equal(t, 7, CorrectDays("7", 14))
	assert.Equal(t, 2, CorrectDays("2", 14))
}

func TestParseDays_ClampsToMaxCourse(t *testing.T) {
	for _, in := range []string{"20000000", "3651", "99999999999999999999999"} {
		n, ok := ParseDays(in)
		assert.True(t, ok, in)
		assert.Equal(t, model.MaxCourseDays, n, in)
	}
	n, ok := ParseDays("3650일")
	assert.True(t, ok)
	assert.Equal(t, 3650, n)

	assert.Equal(t, model.MaxCourseDays, CorrectDays("20000000", 3))
	assert.Equal(t, model.MaxCourseDays, MaxDays([]model.RawEntry{{Days: "20000000"}, {Days: "1"}}, 3))
}

func TestDescribe(t *testing.T) {
	info, food, outcome := Describe(nil, druginfo.ErrNotConfigured)
	assert.Equal(t, []string{NeedKeyInfo, NeedKeyFood, OutcomeNotConfigured}, []string{info, food, outcome})

	info, food, outcome = Describe(nil, fmt.Errorf("wrapped: %w", druginfo.ErrNoData))
	assert.Equal(t, []string{NotRegisteredInfo, NotRegisteredFood, OutcomeNoData}, []string{info, food, outcome})

	info, food, outcome = Describe(nil, context.DeadlineExceeded)
	assert.Equal(t, []string{NoInfo, NoInfo, OutcomeError}, []string{info, food, outcome})

	info, food, outcome = Describe(&druginfo.Item{}, nil)
	assert.Equal(t, []string{NoEfficacyInfo, NoPrecautionInfo, OutcomeOK}, []string{info, food, outcome})
}
