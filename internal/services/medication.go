package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"

	"github.com/q-pitt/Medilense-3bros/internal/metrics"
	"github.com/q-pitt/Medilense-3bros/internal/model"
	"github.com/q-pitt/Medilense-3bros/internal/reconcile"
	"github.com/q-pitt/Medilense-3bros/internal/schedule"
	"github.com/q-pitt/Medilense-3bros/internal/store"
	"github.com/q-pitt/Medilense-3bros/internal/vision"
)

// MaxCalendarDays bounds a single calendar query.
const MaxCalendarDays = 400

// MedicationService registers prescriptions and serves the medication views.
// Mutations hold the shared write lock so replace-all, delete, reset and
// adherence writes never interleave.
type MedicationService struct {
	store      store.Store
	extractor  vision.Extractor
	reconciler *reconcile.Reconciler
	writeMu    *sync.Mutex
	provider   string
	loc        *time.Location
	now        func() time.Time
	log        zerolog.Logger
}

// MedicationOption configures a MedicationService.
type MedicationOption func(*MedicationService)

// WithLocation sets the zone used to evaluate "today".
func WithLocation(loc *time.Location) MedicationOption {
	return func(s *MedicationService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MedicationOption {
	return func(s *MedicationService) { s.now = now }
}

// WithProviderName labels vision metrics.
func WithProviderName(name string) MedicationOption {
	return func(s *MedicationService) { s.provider = name }
}

// NewMedicationService wires the registration pipeline. writeMu is shared
// with the AdherenceService over the same store; nil allocates a private one.
func NewMedicationService(s store.Store, ex vision.Extractor, rec *reconcile.Reconciler, writeMu *sync.Mutex, log zerolog.Logger, opts ...MedicationOption) *MedicationService {
	if writeMu == nil {
		writeMu = &sync.Mutex{}
	}
	svc := &MedicationService{
		store:      s,
		extractor:  ex,
		reconciler: rec,
		writeMu:    writeMu,
		provider:   "unknown",
		loc:        time.UTC,
		now:        time.Now,
		log:        log,
	}
	for _, o := range opts {
		o(svc)
	}
	return svc
}

// Today returns the current calendar date in the configured zone.
func (s *MedicationService) Today() strfmt.Date {
	return model.DateOf(s.now().In(s.loc))
}

// Register analyzes a prescription image and replaces the whole medication
// set with the result. Nothing is written unless every step succeeds.
func (s *MedicationService) Register(ctx context.Context, image []byte, date strfmt.Date) (*RegisterResult, error) {
	mime, err := vision.DetectImage(image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}

	entries, err := s.extractor.Extract(ctx, image, mime)
	if err == nil && len(entries) == 0 {
		err = vision.ErrNoEntries
	}
	if err != nil {
		metrics.VisionExtractions.WithLabelValues(s.provider, "error").Inc()
		s.log.Error().Stack().Err(err).Str("provider", s.provider).Msg("prescription analysis failed")
		return nil, fmt.Errorf("%w: %w", model.ErrAnalysisFailed, err)
	}
	metrics.VisionExtractions.WithLabelValues(s.provider, "ok").Inc()

	recs := s.reconciler.Reconcile(ctx, entries, date)
	if len(recs) == 0 {
		metrics.VisionExtractions.WithLabelValues(s.provider, "unnamed").Inc()
		return nil, fmt.Errorf("%w: %w", model.ErrAnalysisFailed, vision.ErrNoEntries)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.store.Medications().ReplaceAll(ctx, recs); err != nil {
		metrics.StorageFailures.WithLabelValues("replace_all").Inc()
		s.log.Error().Stack().Err(err).Int("count", len(recs)).Msg("saving medications failed")
		return nil, fmt.Errorf("%w: %w", model.ErrSaveFailed, err)
	}
	metrics.MedicationsRegistered.Add(float64(len(recs)))

	s.log.Info().Int("count", len(recs)).Str("date", date.String()).Msg("prescription registered")
	return &RegisterResult{Count: len(recs), Medications: viewsOf(recs)}, nil
}

// List returns every stored medication in registration order.
func (s *MedicationService) List(ctx context.Context) ([]MedicationView, error) {
	recs, err := s.store.Medications().List(ctx)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("list").Inc()
		return nil, err
	}
	return viewsOf(recs), nil
}

// Delete removes every medication named name. Adherence history for the
// name is kept.
func (s *MedicationService) Delete(ctx context.Context, name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: medication name is required", model.ErrValidation)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	n, err := s.store.Medications().DeleteByName(ctx, name)
	if err != nil {
		if !isNotFound(err) {
			metrics.StorageFailures.WithLabelValues("delete").Inc()
			s.log.Error().Stack().Err(err).Str("drug", name).Msg("deleting medication failed")
			return 0, fmt.Errorf("%w: %w", model.ErrSaveFailed, err)
		}
		return 0, err
	}
	s.log.Info().Str("drug", name).Int("count", n).Msg("medication deleted")
	return n, nil
}

// Reset removes all medications and all adherence history.
func (s *MedicationService) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.store.Reset(ctx); err != nil {
		metrics.StorageFailures.WithLabelValues("reset").Inc()
		s.log.Error().Stack().Err(err).Msg("reset failed")
		return fmt.Errorf("%w: %w", model.ErrSaveFailed, err)
	}
	s.log.Info().Msg("all data reset")
	return nil
}

// Checklist lists the medications due on date with their taken flags.
func (s *MedicationService) Checklist(ctx context.Context, date strfmt.Date) (*Checklist, error) {
	recs, err := s.store.Medications().List(ctx)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("list").Inc()
		return nil, err
	}
	active := schedule.ActiveOn(recs, date)
	taken, err := s.takenOn(ctx, date)
	if err != nil {
		return nil, err
	}

	items := make([]ChecklistItem, 0, len(active))
	for _, r := range active {
		items = append(items, ChecklistItem{
			MedicationView: viewOf(r),
			RemainingDays:  schedule.RemainingDays(r, date),
			Taken:          taken[r.Name],
		})
	}
	required := schedule.RequiredNames(recs, date)
	return &Checklist{
		Date:     date,
		Items:    items,
		AllTaken: schedule.AllTaken(required, func(n string) bool { return taken[n] }),
	}, nil
}

// Calendar builds bars, per-day events and fully-adherent days for [from, to].
func (s *MedicationService) Calendar(ctx context.Context, from, to strfmt.Date) (*Calendar, error) {
	span := model.DaysBetween(from, to)
	if span < 0 {
		return nil, fmt.Errorf("%w: from %s is after to %s", model.ErrValidation, from, to)
	}
	if span >= MaxCalendarDays {
		return nil, fmt.Errorf("%w: range of %d days exceeds %d", model.ErrValidation, span+1, MaxCalendarDays)
	}

	recs, err := s.store.Medications().List(ctx)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("list").Inc()
		return nil, err
	}
	entries, err := s.store.Adherence().Range(ctx, from, to)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("adherence_range").Inc()
		return nil, err
	}
	taken := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Taken {
			taken[adherenceKey(e.Date, e.Name)] = true
		}
	}
	takenFn := func(d strfmt.Date, name string) bool { return taken[adherenceKey(d, name)] }

	events := schedule.DayEvents(recs, from, to, takenFn)
	if events == nil {
		events = []schedule.DayEvent{}
	}
	days := schedule.FullyAdherentDays(recs, from, to, takenFn)
	if days == nil {
		days = []strfmt.Date{}
	}
	return &Calendar{
		From:         from,
		To:           to,
		Bars:         schedule.CalendarBars(recs),
		Events:       events,
		AdherentDays: days,
	}, nil
}

func (s *MedicationService) takenOn(ctx context.Context, date strfmt.Date) (map[string]bool, error) {
	entries, err := s.store.Adherence().Range(ctx, date, date)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("adherence_range").Inc()
		return nil, err
	}
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Taken
	}
	return out, nil
}

func adherenceKey(d strfmt.Date, name string) string {
	return d.String() + "|" + name
}
