package vision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/q-pitt/Medilense-3bros/internal/model"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("vision provider temporarily unavailable")

// Breaker wraps an Extractor and stops calling it after consecutive failures
// until cooldown has elapsed. Bad model output does not count as a failure.
type Breaker struct {
	next Extractor
	cb   *gobreaker.CircuitBreaker[[]model.RawEntry]
}

// NewBreaker trips after failures consecutive errors. failures == 0 selects 5.
func NewBreaker(name string, next Extractor, failures uint32, cooldown time.Duration, log zerolog.Logger) *Breaker {
	if failures == 0 {
		failures = 5
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNoEntries) ||
				errors.Is(err, ErrMalformedResponse) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("vision breaker state changed")
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[[]model.RawEntry](st)}
}

func (b *Breaker) Extract(ctx context.Context, image []byte, mimeType string) ([]model.RawEntry, error) {
	entries, err := b.cb.Execute(func() ([]model.RawEntry, error) {
		return b.next.Extract(ctx, image, mimeType)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return entries, err
}

// State reports the breaker state name ("closed", "open", "half-open").
func (b *Breaker) State() string { return b.cb.State().String() }
