package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/q-pitt/Medilense-3bros/internal/model"
)

type listOnlyMeds struct{ fail atomic.Bool }

func (m *listOnlyMeds) ReplaceAll(context.Context, []model.MedicationRecord) error { return nil }
func (m *listOnlyMeds) DeleteByName(context.Context, string) (int, error)          { return 0, nil }
func (m *listOnlyMeds) List(context.Context) ([]model.MedicationRecord, error) {
	if m.fail.Load() {
		return nil, errors.New("database is locked")
	}
	return nil, nil
}

type fakeStore struct{ meds *listOnlyMeds }

func (s *fakeStore) Medications() Medications    { return s.meds }
func (s *fakeStore) Adherence() Adherence        { return nopAdherence{} }
func (s *fakeStore) Reset(context.Context) error { return nil }
func (s *fakeStore) Close() error                { return nil }

type pingStore struct {
	fakeStore
	err error
}

func (s *pingStore) HealthPing(context.Context) error { return s.err }

type nopAdherence struct{}

func (nopAdherence) IsTaken(context.Context, strfmt.Date, string) (bool, error) { return false, nil }
func (nopAdherence) SetTaken(context.Context, strfmt.Date, string, bool) error  { return nil }
func (nopAdherence) Range(context.Context, strfmt.Date, strfmt.Date) ([]model.AdherenceEntry, error) {
	return nil, nil
}

func TestStoreHealthChecker_FallbackList(t *testing.T) {
	s := &fakeStore{meds: &listOnlyMeds{}}
	hc := NewStoreHealthChecker(s, zerolog.Nop(), time.Second)
	assert.Equal(t, "store", hc.Name())
	assert.False(t, hc.IsHealthy())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hc.Start(ctx, 10*time.Millisecond)

	assert.Eventually(t, hc.IsHealthy, time.Second, 10*time.Millisecond)
	s.meds.fail.Store(true)
	assert.Eventually(t, func() bool { return !hc.IsHealthy() }, time.Second, 10*time.Millisecond)
}

func TestStoreHealthChecker_PrefersPing(t *testing.T) {
	s := &pingStore{fakeStore: fakeStore{meds: &listOnlyMeds{}}, err: errors.New("connection refused")}
	hc := NewStoreHealthChecker(s, zerolog.Nop(), time.Second)
	assert.False(t, hc.Probe(context.Background()))

	// list failures are ignored once the store can ping itself
	s.err = nil
	s.meds.fail.Store(true)
	assert.True(t, hc.Probe(context.Background()))
	assert.True(t, hc.IsHealthy())
}
