package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "gameroom/internal/adapters/http"
	pusheradapter "gameroom/internal/adapters/pusher"
	"gameroom/internal/app"
	"gameroom/internal/config"
	"gameroom/internal/core"
	"gameroom/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.SweepToken == config.DefaultSweepToken {
		log.Warn().Msg("INACTIVITY_CHECK_TOKEN unset, using the default token")
	}

	store := core.NewStore()
	registry := core.NewRegistry()

	provider := pusheradapter.New(cfg.PusherAppID, cfg.PusherKey, cfg.PusherSecret, cfg.PusherCluster)
	gateway := app.NewGateway(store, provider, domain.NewEventCatalog())
	authority := app.NewAuthority(provider)
	monitor := app.NewMonitor(store, gateway)
	limiter := newLimiter(cfg)

	h := router.NewHandler(store, registry, monitor, gateway, authority, limiter, cfg.SweepToken)
	r := router.SetupRouter(cfg.Mode, h)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go runSweeper(ctx, monitor, cfg.SweepInterval)

	go func() {
		log.Info().Str("addr", addr).Msg("game room server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func newLimiter(cfg *config.Config) app.Limiter {
	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL unset, publish rate limiting disabled")
		return app.NewAllowAllLimiter()
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error().Err(err).Msg("invalid REDIS_URL, publish rate limiting disabled")
		return app.NewAllowAllLimiter()
	}
	return app.NewRedisLimiter(redis.NewClient(opts), cfg.RateLimit)
}

// runSweeper drives the monitor on a fixed interval. The HTTP trigger
// stays available for external schedulers; overlapping sweeps are safe.
func runSweeper(ctx context.Context, monitor *app.Monitor, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			monitor.Sweep(time.Now())
		}
	}
}
