package factory

import (
	"github.com/rs/zerolog"

	"github.com/q-pitt/Medilense-3bros/internal/config"
	"github.com/q-pitt/Medilense-3bros/internal/druginfo"
	"github.com/q-pitt/Medilense-3bros/internal/druginfo/kfda"
)

// NewDrugLookup returns the registry client. A missing or placeholder key
// yields a client that reports druginfo.ErrNotConfigured per lookup.
func NewDrugLookup(cfg *config.Config, log zerolog.Logger) druginfo.Lookup {
	key := cfg.KFDAAPIKey
	if !cfg.RegistryConfigured() {
		log.Warn().Msg("drug registry key not configured; medication info will show a configuration notice")
		key = ""
	}
	return kfda.New(cfg.KFDABaseURL, key, cfg.LookupTimeout(), log,
		kfda.WithRateLimit(cfg.LookupRatePerSecond))
}
