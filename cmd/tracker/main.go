// Package main is the entry point of the internship progress tracker.
//
// The tracker keeps the curriculum catalog, records step results per
// internship session and derives trainee progress. Session transitions are
// mirrored into the external schedule and announced through the outbox.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/alem-hub/internship-hub/config"

	// Application layer
	"github.com/alem-hub/internship-hub/internal/application/command"
	"github.com/alem-hub/internship-hub/internal/application/query"
	"github.com/alem-hub/internship-hub/internal/application/saga"

	// Domain
	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/outbox"
	"github.com/alem-hub/internship-hub/internal/domain/progress"
	"github.com/alem-hub/internship-hub/internal/domain/schedule"

	// Infrastructure layer
	"github.com/alem-hub/internship-hub/internal/infrastructure/messaging"
	"github.com/alem-hub/internship-hub/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/internship-hub/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/internship-hub/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/alem-hub/internship-hub/internal/interface/http"
	"github.com/alem-hub/internship-hub/internal/interface/http/handlers"

	"github.com/alem-hub/internship-hub/pkg/timeutil"
)

const version = "v1"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// repositories bundles the store implementations chosen at startup.
type repositories struct {
	curriculum curriculum.Repository
	progress   progress.Repository
	internship internship.Repository
	schedule   schedule.Repository
	outbox     outbox.Repository
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING AND TIMEZONE
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting internship tracker",
		"env", cfg.App.Environment,
		"timezone", cfg.App.Timezone,
	)

	if err := timeutil.SetLocation(cfg.App.Timezone); err != nil {
		return fmt.Errorf("failed to set timezone: %w", err)
	}

	health := handlers.NewCompositeHealthChecker(version, handlers.DefaultCheckTimeout)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORAGE (PostgreSQL or in-memory)
	// ─────────────────────────────────────────────────────────────────────────
	var repos repositories
	if cfg.UseMemoryStore() {
		log.Warn("DATABASE_URL is empty, using in-memory store")
		store := memory.NewStore()
		repos = repositories{
			curriculum: store.Curriculum(),
			progress:   store.Progress(),
			internship: store.Internship(),
			schedule:   store.Schedule(),
			outbox:     store.Outbox(),
		}
	} else {
		log.Info("connecting to database...")
		opts := postgres.DefaultPoolOptions()
		opts.MaxConns = cfg.Database.MaxConns
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, opts)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()
		log.Info("database connection established")

		if cfg.Database.Migrate {
			log.Info("running database migrations...")
			if err := postgres.NewMigrator(dbConn).Migrate(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		health.AddCheck("database", dbConn.Ping)
		repos = repositories{
			curriculum: postgres.NewCurriculumRepository(dbConn),
			progress:   postgres.NewProgressRepository(dbConn),
			internship: postgres.NewInternshipRepository(dbConn),
			schedule:   postgres.NewScheduleRepository(dbConn),
			outbox:     postgres.NewOutboxRepository(dbConn),
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional curriculum cache)
	// ─────────────────────────────────────────────────────────────────────────
	var treeCache curriculum.TreeCache
	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCache, err := redis.NewCacheFromURL(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			treeCache = redis.NewCurriculumCache(redisCache)
			health.AddCheck("redis", redisCache.Ping)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION LAYER (Commands, Queries, Sagas)
	// ─────────────────────────────────────────────────────────────────────────
	publisher := messaging.NewOutboxPublisher(repos.outbox, log)

	lifecycle := command.LifecycleDeps{
		Internship:  repos.internship,
		Publisher:   publisher,
		Destination: cfg.Lifecycle.OutboxDestination,
		Logger:      log,
	}
	if cfg.Lifecycle.ScheduleSyncEnabled {
		lifecycle.Schedule = saga.NewScheduleSynchronizer(repos.schedule, log)
	}

	curriculumHandler := command.NewCurriculumHandler(repos.curriculum, treeCache, log)
	importHandler := command.NewImportCurriculumHandler(repos.curriculum, curriculumHandler, log)
	treeHandler := query.NewGetCurriculumTreeHandler(repos.curriculum, treeCache, cfg.Curriculum.CacheTTL, log)

	deps := httpserver.Dependencies{
		Curriculum:       curriculumHandler,
		Reorder:          command.NewReorderHandler(repos.curriculum, treeCache, log),
		ImportCurriculum: importHandler,
		StartInternship:  command.NewStartInternshipHandler(lifecycle),
		FinishInternship: command.NewFinishInternshipHandler(lifecycle),
		CancelInternship: command.NewCancelInternshipHandler(lifecycle),
		CompleteTraining: command.NewCompleteTrainingHandler(lifecycle, repos.curriculum),
		RecordStep:       command.NewRecordStepHandler(repos.progress, repos.curriculum, repos.internship, log, nil),
		CurriculumTree:   treeHandler,
		Progress:         query.NewGetProgressHandler(repos.progress, repos.internship, treeHandler, log),
		ListSessions:     query.NewListSessionsHandler(repos.internship),
		HealthChecker:    health,
		Logger:           log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. CURRICULUM IMPORT (optional)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Curriculum.ImportFile != "" {
		if err := importCurriculum(ctx, importHandler, cfg.Curriculum.ImportFile); err != nil {
			return err
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpserver.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	server := httpserver.NewServer(httpCfg, deps)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. RUN AND GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	published, failed := publisher.Stats()
	log.Info("shutdown complete", "events_published", published, "events_failed", failed)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func importCurriculum(ctx context.Context, h *command.ImportCurriculumHandler, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read curriculum file: %w", err)
	}
	if _, err := h.Handle(ctx, command.ImportCurriculumCommand{Data: data, OnlyIfEmpty: true}); err != nil {
		return fmt.Errorf("failed to import curriculum: %w", err)
	}
	return nil
}

// setupLogger configures structured logging.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Observability.LogLevel)}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler).With("app", cfg.App.Name)
	slog.SetDefault(log)
	return log
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
