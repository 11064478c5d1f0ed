package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"salonbook/internal/api"
	"salonbook/internal/backup"
	"salonbook/internal/booking"
	"salonbook/internal/config"
	"salonbook/internal/events"
	"salonbook/internal/metrics"
	"salonbook/internal/notify"
	"salonbook/internal/service"
	"salonbook/internal/storage"
	"salonbook/internal/storage/cache"
	"salonbook/internal/storage/memory"
	"salonbook/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load(os.Getenv("SALON_CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, &logger); err != nil {
		logger.Fatal().Err(err).Msg("salon service stopped")
	}
	logger.Info().Msg("salon service stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Logging.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	seed, err := config.LoadSeed(cfg.Seed.Path)
	if err != nil {
		return err
	}

	base, db, err := openStore(ctx, cfg, seed, logger)
	if err != nil {
		return err
	}
	defer base.Close()

	store := base
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		store = cache.New(base, rdb, cfg.CacheTTL(), logger)
		logger.Info().Str("address", cfg.Redis.Address).Dur("ttl", cfg.CacheTTL()).Msg("catalog cache enabled")
	}

	bus := events.NewEventBus(logger)
	notifiers := []notify.Notifier{notify.NewLogNotifier(logger)}
	if cfg.Telegram.BotToken != "" {
		bot, err := notify.NewBot(cfg.Telegram.BotToken)
		if err != nil {
			return err
		}
		notifiers = append(notifiers, notify.NewTelegramNotifier(bot, cfg.Telegram.AdminChats, notify.DefaultRetryConfig(), logger))
		logger.Info().Str("bot", bot.Self.UserName).Int("chats", len(cfg.Telegram.AdminChats)).Msg("telegram notifications enabled")
	}
	dispatcher := notify.NewDispatcher(30*time.Second, notify.DefaultQueueSize, logger, notifiers...)
	dispatcher.Subscribe(bus)
	notifyCtx, stopNotify := context.WithCancel(ctx)
	go dispatcher.Start(notifyCtx)
	defer func() {
		stopNotify()
		select {
		case <-dispatcher.Done():
		case <-time.After(30 * time.Second):
			logger.Warn().Msg("pending notifications abandoned")
		}
	}()

	appointments := service.NewAppointmentService(store, store, bus, cfg.Booking.DefaultClientID, logger)
	catalog := service.NewCatalogService(store, store, logger)
	settings := service.NewSettingsService(store, logger)

	flow := booking.NewFlow(catalog, settings, appointments, appointments, booking.FlowConfig{
		HoursSource:          cfg.Booking.HoursSource,
		PreventDoubleBooking: cfg.Booking.PreventDoubleBooking,
	}, logger)
	sessions := booking.NewSessionStore(cfg.SessionTimeout())
	go cleanupSessions(ctx, sessions, logger)

	if cfg.Seed.Path != "" {
		watcher := config.NewSeedWatcher(cfg.Seed.Path, cfg.SeedWatchInterval(), logger)
		if _, err := watcher.Load(); err != nil {
			return fmt.Errorf("watch seed: %w", err)
		}
		go watcher.Run(ctx, func(s *config.Seed) {
			if err := catalog.ImportSeed(ctx, s); err != nil {
				logger.Error().Err(err).Msg("seed reload failed")
			}
		})
	}

	if cfg.Backup.Enabled {
		if db == nil {
			logger.Warn().Str("backend", cfg.Storage.Backend).Msg("backups need the sqlite backend, skipping")
		} else {
			svc, err := backup.NewService(db, backup.Config{
				Schedule:      cfg.Backup.Schedule,
				Dir:           cfg.Backup.Path,
				RetentionDays: cfg.Backup.RetentionDays,
			}, logger)
			if err != nil {
				return err
			}
			logger.Info().Str("database", db.Path()).Msg("scheduled backups enabled")
			go svc.Start(ctx)
		}
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	handler := api.NewServer(api.Deps{
		Flow:         flow,
		Sessions:     sessions,
		Catalog:      catalog,
		Appointments: appointments,
		Settings:     settings,
		Store:        store,
		HoursSource:  cfg.Booking.HoursSource,
		RateLimit: api.RateLimit{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		},
		Metrics: cfg.Monitoring.PrometheusEnabled,
		Logger:  logger,
	})
	return serve(ctx, cfg, handler, logger)
}

// openStore returns the configured backend, seeded when empty. db is set
// only for the sqlite backend.
func openStore(ctx context.Context, cfg *config.Config, seed *config.Seed, logger *zerolog.Logger) (storage.Store, *sqlite.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.Storage.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		seeded, err := db.Seed(ctx, seed, time.Now())
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if seeded {
			logger.Info().Int("appointments", len(seed.Appointments)).Msg("database seeded")
		}
		return db, db, nil
	default:
		logger.Info().Msg("using in-memory store")
		return memory.NewSeeded(seed, time.Now()), nil, nil
	}
}

func cleanupSessions(ctx context.Context, sessions *booking.SessionStore, logger *zerolog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Cleanup(); n > 0 {
				logger.Debug().Int("removed", n).Msg("expired wizard sessions removed")
			}
			metrics.SetActiveSessions(sessions.Len())
		}
	}
}

func serve(ctx context.Context, cfg *config.Config, handler http.Handler, logger *zerolog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("address", srv.Addr).Msg("http server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
