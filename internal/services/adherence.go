package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"

	"github.com/q-pitt/Medilense-3bros/internal/metrics"
	"github.com/q-pitt/Medilense-3bros/internal/model"
	"github.com/q-pitt/Medilense-3bros/internal/schedule"
	"github.com/q-pitt/Medilense-3bros/internal/store"
)

// AdherenceService reads and writes daily taken checkmarks. Every SetTaken
// is written through to the store before it returns.
type AdherenceService struct {
	store   store.Store
	writeMu *sync.Mutex
	log     zerolog.Logger
}

func NewAdherenceService(s store.Store, writeMu *sync.Mutex, log zerolog.Logger) *AdherenceService {
	if writeMu == nil {
		writeMu = &sync.Mutex{}
	}
	return &AdherenceService{store: s, writeMu: writeMu, log: log}
}

// IsTaken reports the stored flag; unknown keys read as false.
func (s *AdherenceService) IsTaken(ctx context.Context, date strfmt.Date, name string) (bool, error) {
	return s.store.Adherence().IsTaken(ctx, date, name)
}

// SetTaken upserts the flag for (date, name). Repeating a call is a no-op.
func (s *AdherenceService) SetTaken(ctx context.Context, date strfmt.Date, name string, taken bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: medication name is required", model.ErrValidation)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Adherence().SetTaken(ctx, date, name, taken); err != nil {
		metrics.StorageFailures.WithLabelValues("set_taken").Inc()
		s.log.Error().Stack().Err(err).Str("drug", name).Str("date", date.String()).Msg("saving adherence failed")
		return fmt.Errorf("%w: %w", model.ErrSaveFailed, err)
	}
	metrics.AdherenceToggles.WithLabelValues(strconv.FormatBool(taken)).Inc()
	s.log.Debug().Str("drug", name).Str("date", date.String()).Bool("taken", taken).Msg("adherence updated")
	return nil
}

// AllTakenOn is true iff required is non-empty and every name in it is taken on date.
func (s *AdherenceService) AllTakenOn(ctx context.Context, date strfmt.Date, required []string) (bool, error) {
	taken, err := s.takenMap(ctx, date)
	if err != nil {
		return false, err
	}
	return schedule.AllTaken(required, func(n string) bool { return taken[n] }), nil
}

// Day reports the flags stored for date together with the names due that day.
func (s *AdherenceService) Day(ctx context.Context, date strfmt.Date) (*DayStatus, error) {
	recs, err := s.store.Medications().List(ctx)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("list").Inc()
		return nil, err
	}
	taken, err := s.takenMap(ctx, date)
	if err != nil {
		return nil, err
	}
	required := schedule.RequiredNames(recs, date)
	if required == nil {
		required = []string{}
	}
	return &DayStatus{
		Date:     date,
		Required: required,
		Taken:    taken,
		AllTaken: schedule.AllTaken(required, func(n string) bool { return taken[n] }),
	}, nil
}

func (s *AdherenceService) takenMap(ctx context.Context, date strfmt.Date) (map[string]bool, error) {
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

func isNotFound(err error) bool { return errors.Is(err, model.ErrNotFound) }
