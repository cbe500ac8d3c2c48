package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/q-pitt/Medilense-3bros/internal/config"
	storepkg "github.com/q-pitt/Medilense-3bros/internal/store"
	storepg "github.com/q-pitt/Medilense-3bros/internal/store/postgres"
	storesqlite "github.com/q-pitt/Medilense-3bros/internal/store/sqlite"
)

// NewStore returns the store.Store selected by cfg.DBDriver. Schemas are
// ensured synchronously since health checks need the store immediately.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		s, err := storesqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return s, nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("MEDILENS_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		s, err := storepg.New(initCtx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("postgres store ready")
		return s, nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
