package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthPinger can be implemented by components to expose a specialized
// health check. HealthPing must return nil when the component is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

const defaultProbeTimeout = 2 * time.Second

// PingChecker polls a HealthPinger and caches the result.
type PingChecker struct {
	name         string
	pinger       HealthPinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewPingChecker returns a checker that starts unhealthy until its first
// successful probe.
func NewPingChecker(name string, p HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	c := &PingChecker{name: name, pinger: p, log: log, probeTimeout: probeTimeout}
	c.healthy.Store(0)
	return c
}

func (c *PingChecker) Name() string    { return c.name }
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Probe runs a single check and records the result.
func (c *PingChecker) Probe(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()
	if err := c.pinger.HealthPing(checkCtx); err != nil {
		if c.healthy.Swap(0) == 1 {
			c.log.Error().Stack().Str("checker", c.name).Err(err).Msg("health check failed")
		}
		return false
	}
	if c.healthy.Swap(1) == 0 {
		c.log.Info().Str("checker", c.name).Msg("health check passed")
	}
	return true
}

func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Probe(ctx)
		}
	}
}
