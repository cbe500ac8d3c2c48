package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/q-pitt/Medilense-3bros/internal/health"
)

// NewStoreHealthChecker probes s with its own HealthPing when it has one and
// with a medication list read otherwise.
func NewStoreHealthChecker(s Store, log zerolog.Logger, probeTimeout time.Duration) *health.PingChecker {
	return health.NewPingChecker("store", storePinger(s), log, probeTimeout)
}

func storePinger(s Store) health.HealthPinger {
	if p, ok := s.(health.HealthPinger); ok {
		return p
	}
	return listPinger{s}
}

type listPinger struct{ s Store }

func (l listPinger) HealthPing(ctx context.Context) error {
	_, err := l.s.Medications().List(ctx)
	return err
}
