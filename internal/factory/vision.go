package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/q-pitt/Medilense-3bros/internal/config"
	"github.com/q-pitt/Medilense-3bros/internal/health"
	"github.com/q-pitt/Medilense-3bros/internal/vision"
	"github.com/q-pitt/Medilense-3bros/internal/vision/gemini"
	"github.com/q-pitt/Medilense-3bros/internal/vision/ollama"
)

// VisionProvider is an extractor that can also report its own health.
type VisionProvider interface {
	vision.Extractor
	health.HealthPinger
}

// NewVisionProvider creates the extractor named by cfg.VisionProvider.
// Launches an async reachability check; returns the provider immediately for fast startup.
func NewVisionProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) (VisionProvider, error) {
	var p VisionProvider
	switch cfg.VisionProvider {
	case "", "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Warn().Msg("MEDILENS_GEMINI_API_KEY not set; prescription analysis will fail")
		}
		p = gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.VisionModel, cfg.VisionRequestTimeout(), log)
	case "ollama":
		p = ollama.New(cfg.OllamaURL, cfg.VisionModel, cfg.VisionRequestTimeout(), log)
	default:
		return nil, fmt.Errorf("unknown VISION_PROVIDER: %s", cfg.VisionProvider)
	}

	go func() {
		warmupCtx, cancel := context.WithTimeout(ctx, cfg.VisionRequestTimeout())
		defer cancel()
		if err := p.HealthPing(warmupCtx); err != nil {
			log.Warn().Err(err).Str("provider", cfg.VisionProvider).Str("model", cfg.VisionModel).
				Msg("vision provider warmup failed")
		} else {
			log.Debug().Str("provider", cfg.VisionProvider).Str("model", cfg.VisionModel).
				Msg("vision provider warmup completed")
		}
	}()

	if cfg.VisionBreakerFailures <= 0 {
		return p, nil
	}
	breaker := vision.NewBreaker(cfg.VisionProvider, p, uint32(cfg.VisionBreakerFailures),
		time.Duration(cfg.VisionBreakerCooldownSeconds)*time.Second, log)
	return &guardedProvider{Breaker: breaker, HealthPinger: p}, nil
}

// guardedProvider routes extraction through the breaker and pings the provider directly.
type guardedProvider struct {
	*vision.Breaker
	health.HealthPinger
}
