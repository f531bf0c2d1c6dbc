package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/dillanmilo/railcore/internal/config"
	emailsvc "github.com/dillanmilo/railcore/internal/email/service"
	evsvc "github.com/dillanmilo/railcore/internal/events/service"
	"github.com/dillanmilo/railcore/internal/logger"
	"github.com/dillanmilo/railcore/internal/metrics"
	"github.com/dillanmilo/railcore/internal/platform/ratelimit"
	"github.com/dillanmilo/railcore/internal/platform/validation"
	"github.com/dillanmilo/railcore/internal/reports"
	"github.com/dillanmilo/railcore/internal/reports/domain"
	"github.com/dillanmilo/railcore/internal/reports/repository"
	"github.com/dillanmilo/railcore/internal/scheduler"
	sdomain "github.com/dillanmilo/railcore/internal/settings/domain"
	srepo "github.com/dillanmilo/railcore/internal/settings/repository"
	ssvc "github.com/dillanmilo/railcore/internal/settings/service"
	"github.com/dillanmilo/railcore/internal/storage"
	"github.com/dillanmilo/railcore/internal/version"
)

// @title           Railcore Reports API
// @version         1.0
// @description     Document exports and daily report distribution for rail construction projects.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

func main() {
	if handleCLICommand(os.Args[1:]) {
		return
	}
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)
	log.Info().Str("addr", cfg.AppAddr).Str("version", version.String()).Str("config", cfg.String()).Msg("starting api server")

	ctx := context.Background()

	var (
		store        domain.Store
		settingsRepo sdomain.Repository
		pingDB       func(context.Context) error
	)
	switch cfg.Store {
	case "postgres":
		pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid DATABASE_URL")
		}
		pgPool, err := pgxpool.NewWithConfig(ctx, pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("unable to create pg pool")
		}
		defer pgPool.Close()
		store = repository.NewPG(pgPool).Store()
		settingsRepo = srepo.New(pgPool)
		pingDB = pgPool.Ping
	default:
		store = repository.NewMemory().Store()
		seed, err := repository.Seed(ctx, store, time.Now(), cfg.DemoRecipients)
		if err != nil {
			log.Fatal().Err(err).Msg("seed memory store")
		}
		log.Info().
			Str("project_id", seed.ProjectID.String()).
			Str("report_id", seed.ReportIDs[0].String()).
			Str("submission_id", seed.SubmissionID.String()).
			Msg("memory store seeded with demo project")
		settingsRepo = srepo.NewMemory()
	}

	// Init Redis/Valkey; without it documents and rate limits stay in process.
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer redisClient.Close()

	var (
		blobs   storage.Store
		rlStore ratelimit.Store
	)
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-process document store")
		blobs = storage.NewMemory(cfg.BlobTTL)
	} else {
		blobs = storage.NewRedis(redisClient, cfg.BlobTTL)
		rlStore = ratelimit.NewRedisStore(redisClient)
	}
	cancel()

	settings := ssvc.New(settingsRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middlewares
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Secure())
	e.Use(metrics.HTTPMiddleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return matchCORSOrigin(origin, cfg.CORSAllowedOrigins), nil
		},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))

	// Validator
	e.Validator = validation.New()

	reportsSvc := reports.Register(e, reports.Deps{
		Config:    cfg,
		Log:       log,
		Store:     store,
		Blobs:     blobs,
		Settings:  settings,
		Mailer:    emailsvc.NewRouter(settings, cfg),
		Publisher: evsvc.NewLogger(logger.For(log, "events")),
		RateLimit: rlStore,
	})

	var sched *scheduler.DailyDistribution
	if cfg.DistributionSchedule != "" {
		sched = scheduler.New(store.Projects, reportsSvc, cfg.Location(), logger.For(log, "scheduler"))
		if err := sched.Start(cfg.DistributionSchedule); err != nil {
			log.Fatal().Err(err).Msg("invalid DISTRIBUTION_SCHEDULE")
		}
		log.Info().Time("next", sched.Next()).Msg("next daily distribution")
	}

	// Health endpoint pings DB and Redis
	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
		defer cancel()

		dbStatus := "memory"
		if pingDB != nil {
			dbStatus = metrics.CheckDependency(ctx, "postgres", pingDB)
		}
		cacheStatus := metrics.CheckDependency(ctx, "redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})

		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"version": version.String(),
			"db":      dbStatus,
			"cache":   cacheStatus,
		})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Start server
	go func() {
		if err := e.Start(cfg.AppAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	log.Info().Msg("server stopped")
}
