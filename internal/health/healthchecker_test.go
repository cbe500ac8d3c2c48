package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	name    string
	healthy atomic.Int32
}

func (f *fakeChecker) Name() string                               { return f.name }
func (f *fakeChecker) IsHealthy() bool                            { return f.healthy.Load() == 1 }
func (f *fakeChecker) Start(ctx context.Context, _ time.Duration) {}

type fakePinger struct{ fail atomic.Bool }

func (p *fakePinger) HealthPing(context.Context) error {
	if p.fail.Load() {
		return errors.New("down")
	}
	return nil
}

func TestServiceHealthChecker_Transitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &fakeChecker{name: "a"}
	b := &fakeChecker{name: "b"}
	a.healthy.Store(1)
	b.healthy.Store(1)

	svc := NewServiceHealthChecker(zerolog.Nop(), a, b)
	go svc.Start(ctx, 10*time.Millisecond)

	waitTrue(t, func() bool { return svc.IsHealthy() })

	b.healthy.Store(0)
	waitTrue(t, func() bool { return !svc.IsHealthy() })
	assert.Equal(t, map[string]bool{"a": true, "b": false}, svc.Components())

	b.healthy.Store(1)
	waitTrue(t, func() bool { return svc.IsHealthy() })
}

func TestServiceHealthChecker_AdvisoryDoesNotGate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeChecker{name: "store"}
	store.healthy.Store(1)
	vision := &fakeChecker{name: "vision"}

	svc := NewServiceHealthChecker(zerolog.Nop(), store)
	svc.Advise(vision)
	go svc.Start(ctx, 10*time.Millisecond)

	waitTrue(t, svc.IsHealthy)
	assert.Equal(t, map[string]bool{"store": true, "vision": false}, svc.Components())
}

func TestPingChecker(t *testing.T) {
	p := &fakePinger{}
	c := NewPingChecker("vision", p, zerolog.Nop(), 0)
	assert.Equal(t, "vision", c.Name())
	assert.False(t, c.IsHealthy())

	assert.True(t, c.Probe(context.Background()))
	assert.True(t, c.IsHealthy())

	p.fail.Store(true)
	assert.False(t, c.Probe(context.Background()))
	assert.False(t, c.IsHealthy())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.fail.Store(false)
	go c.Start(ctx, 10*time.Millisecond)
	waitTrue(t, c.IsHealthy)
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}
