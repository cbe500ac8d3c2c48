package medilensservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/q-pitt/Medilense-3bros/internal/api"
	"github.com/q-pitt/Medilense-3bros/internal/config"
	"github.com/q-pitt/Medilense-3bros/internal/factory"
	"github.com/q-pitt/Medilense-3bros/internal/health"
	"github.com/q-pitt/Medilense-3bros/internal/logger"
	"github.com/q-pitt/Medilense-3bros/internal/reconcile"
	"github.com/q-pitt/Medilense-3bros/internal/services"
	"github.com/q-pitt/Medilense-3bros/internal/store"
)

// Run starts the medilens HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("medilens-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	logger.SetLevel(cfg.LogLevel)

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("vision_provider", cfg.VisionProvider).
		Str("vision_model", cfg.VisionModel).
		Bool("registry_configured", cfg.RegistryConfigured()).
		Msg("Medilens service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, vp, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, st, vp)

	router := buildRouter(cfg, log, st, vp, svcHealth)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, factory.VisionProvider, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, err
	}
	vp, err := factory.NewVisionProvider(ctx, cfg, log)
	if err != nil {
		_ = st.Close()
		log.Error().Stack().Err(err).Msg("Vision provider unavailable")
		return nil, nil, err
	}
	return st, vp, nil
}

// buildRouter wires services into the HTTP router.
func buildRouter(cfg *config.Config, log zerolog.Logger, st store.Store, vp factory.VisionProvider, svcHealth *health.ServiceHealthChecker) *mux.Router {
	rec := reconcile.New(factory.NewDrugLookup(cfg, log), log,
		reconcile.WithDefaultCourseDays(cfg.DefaultCourseDays),
		reconcile.WithDefaultUsage(cfg.DefaultUsage),
		reconcile.WithParallelism(cfg.LookupConcurrency),
	)

	// one writer lock shared by every mutation over the same store
	writeMu := &sync.Mutex{}
	medSvc := services.NewMedicationService(st, vp, rec, writeMu, log,
		services.WithLocation(cfg.Location()),
		services.WithProviderName(cfg.VisionProvider),
	)
	adhSvc := services.NewAdherenceService(st, writeMu, log)

	return api.NewRouter(api.Deps{
		Medications:    medSvc,
		Adherence:      adhSvc,
		Health:         api.NewHealthHandler(svcHealth.IsHealthy, svcHealth.Components),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Log:            log,
	})
}

// startHealthCheckers starts the store and vision checkers; only the store gates readiness.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, vp factory.VisionProvider) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	// checklists and calendars work without the vision provider, so it is
	// reported but does not hold back readiness
	visionChecker := health.NewPingChecker("vision", vp, log, probeTimeout)
	go visionChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	svcHealth.Advise(visionChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	// vision calls can take well over a minute; keep writes open past that
	writeTimeout := cfg.VisionRequestTimeout() + 30*time.Second
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	err := pollHealthy(ctx, svcHealth.IsHealthy, time.Duration(timeoutSeconds)*time.Second)
	if errors.Is(err, errNotHealthy) {
		return fmt.Errorf("startup aborted: %w within %d seconds", err, timeoutSeconds)
	}
	return err
}

var errNotHealthy = errors.New("dependencies not healthy")

// pollHealthy rereads the cached health flag with growing gaps until it
// reports healthy or the window runs out.
func pollHealthy(ctx context.Context, isHealthy func() bool, window time.Duration) error {
	poll := backoff.NewExponentialBackOff()
	poll.InitialInterval = 100 * time.Millisecond
	poll.MaxInterval = 2 * time.Second
	poll.MaxElapsedTime = window
	return backoff.Retry(func() error {
		if isHealthy() {
			return nil
		}
		return errNotHealthy
	}, backoff.WithContext(poll, ctx))
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
