// Package reconcile merges vision-extracted drug lines with registry metadata
// into persistable medication records.
package reconcile

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/q-pitt/Medilense-3bros/internal/druginfo"
	"github.com/q-pitt/Medilense-3bros/internal/drugname"
	"github.com/q-pitt/Medilense-3bros/internal/metrics"
	"github.com/q-pitt/Medilense-3bros/internal/model"
)

// Placeholder texts stored when the registry has nothing usable.
const (
	NeedKeyInfo = "⚠️ 식약처 API 키 설정이 필요합니다."
	NeedKeyFood = "MEDILENS_KFDA_API_KEY 환경 변수를 확인해주세요."

	NotRegisteredInfo = "❓ 정보 없음 (식약처 미등록)"
	NotRegisteredFood = "정보 없음"

	NoEfficacyInfo   = "효능 정보가 없습니다."
	NoPrecautionInfo = "주의사항 정보가 없습니다."

	NoInfo = "정보 없음"
)

const (
	DefaultCourseDays = 3
	DefaultUsage      = "식후 30분"
	DefaultParallel   = 4
)

// Lookup outcomes, also used as metric labels.
const (
	OutcomeOK            = "ok"
	OutcomeNotConfigured = "not_configured"
	OutcomeNoData        = "no_data"
	OutcomeError         = "error"
)

// Reconciler turns one prescription's raw entries into a registration batch.
type Reconciler struct {
	lookup      druginfo.Lookup
	log         zerolog.Logger
	defaultDays int
	usage       string
	parallel    int
	pick        func(n int) int
	newID       func() string
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithDefaultCourseDays sets the duration used when no entry declares one.
func WithDefaultCourseDays(n int) Option {
	return func(r *Reconciler) {
		if n >= 1 {
			r.defaultDays = n
		}
	}
}

// WithDefaultUsage sets the dosing instruction used when an entry has none.
func WithDefaultUsage(s string) Option {
	return func(r *Reconciler) {
		if strings.TrimSpace(s) != "" {
			r.usage = s
		}
	}
}

// WithParallelism bounds concurrent registry lookups. 1 means sequential.
func WithParallelism(n int) Option {
	return func(r *Reconciler) {
		if n >= 1 {
			r.parallel = n
		}
	}
}

// WithColorPicker replaces the random palette index source.
func WithColorPicker(pick func(n int) int) Option {
	return func(r *Reconciler) { r.pick = pick }
}

// WithIDGenerator replaces uuid-based record and batch IDs.
func WithIDGenerator(gen func() string) Option {
	return func(r *Reconciler) { r.newID = gen }
}

// New creates a Reconciler backed by lookup.
func New(lookup druginfo.Lookup, log zerolog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		lookup:      lookup,
		log:         log,
		defaultDays: DefaultCourseDays,
		usage:       DefaultUsage,
		parallel:    DefaultParallel,
		pick:        randomIndex,
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Reconcile builds one record per entry, all starting on registrationDate and
// sharing a batch ID. Registry failures never abort the batch; each one is
// replaced by placeholder text. Records keep the order of entries; entries
// whose name normalizes to nothing are dropped.
func (r *Reconciler) Reconcile(ctx context.Context, entries []model.RawEntry, registrationDate strfmt.Date) []model.MedicationRecord {
	if len(entries) == 0 {
		return []model.MedicationRecord{}
	}

	maxDays := MaxDays(entries, r.defaultDays)
	batchID := r.newID()

	records := make([]model.MedicationRecord, 0, len(entries))
	for _, e := range entries {
		name := drugname.Normalize(e.MedicineName)
		if name == "" {
			r.log.Warn().Str("raw_name", e.MedicineName).Msg("skipping entry without a usable name")
			continue
		}
		usage := strings.TrimSpace(e.Usage)
		if usage == "" {
			usage = r.usage
		}
		records = append(records, model.MedicationRecord{
			ID:        r.newID(),
			BatchID:   batchID,
			Name:      name,
			Color:     Palette[r.pick(len(Palette))].Hex,
			StartDate: registrationDate,
			Days:      CorrectDays(e.Days, maxDays),
			UsageTime: usage,
			Dosage:    strings.TrimSpace(e.Dosage),
			Frequency: strings.TrimSpace(e.Frequency),
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i := range records {
		i := i
		g.Go(func() error {
			item, err := r.lookup.Lookup(gctx, records[i].Name)
			info, food, outcome := Describe(item, err)
			records[i].Info = info
			records[i].FoodNotes = food
			metrics.RegistryLookups.WithLabelValues(outcome).Inc()

			ev := r.log.Debug()
			if outcome == OutcomeError {
				ev = r.log.Warn().Err(err)
			}
			ev.Str("drug", records[i].Name).Str("outcome", outcome).Msg("registry lookup")
			return nil
		})
	}
	// lookup errors become placeholder text, so no goroutine returns one
	g.Wait()

	r.log.Info().
		Str("batch_id", batchID).
		Int("count", len(records)).
		Int("max_days", maxDays).
		Str("date", registrationDate.String()).
		Msg("prescription reconciled")
	return records
}

// Describe maps a lookup result to the (info, food notes) pair stored on a
// record, plus the outcome label.
func Describe(item *druginfo.Item, err error) (info, food, outcome string) {
	switch {
	case errors.Is(err, druginfo.ErrNotConfigured):
		return NeedKeyInfo, NeedKeyFood, OutcomeNotConfigured
	case errors.Is(err, druginfo.ErrNoData):
		return NotRegisteredInfo, NotRegisteredFood, OutcomeNoData
	case err != nil || item == nil:
		return NoInfo, NoInfo, OutcomeError
	}
	info = strings.TrimSpace(item.Efficacy)
	if info == "" {
		info = NoEfficacyInfo
	}
	food = strings.TrimSpace(item.Precaution)
	if food == "" {
		food = NoPrecautionInfo
	}
	return info, food, OutcomeOK
}

// ParseDays reads a declared day count such as "14", "14일" or " 7 ".
// ok is false when s carries no leading number. Counts above
// model.MaxCourseDays are clamped to it.
func ParseDays(s string) (days int, ok bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n > model.MaxCourseDays {
		// only overflow can fail here, the prefix is all digits
		return model.MaxCourseDays, true
	}
	return n, true
}

// MaxDays is the longest declared course in entries, or fallback when none
// declares one. The result is never below 1.
func MaxDays(entries []model.RawEntry, fallback int) int {
	best, found := 0, false
	for _, e := range entries {
		if n, ok := ParseDays(e.Days); ok {
			if !found || n > best {
				best = n
			}
			found = true
		}
	}
	if !found || best < 1 {
		best = fallback
	}
	if best < 1 {
		best = 1
	}
	return best
}

// CorrectDays returns the declared count, or maxDays when the declared value
// is missing or <= 1. A lone single-day line is assumed to share the course
// of the rest of the prescription.
func CorrectDays(declared string, maxDays int) int {
	n, ok := ParseDays(declared)
	if !ok || n <= 1 {
		return maxDays
	}
	return n
}
