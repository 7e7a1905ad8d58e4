package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dtca-portal/dtca-portal/cmd/portal/cli"
	"github.com/dtca-portal/dtca-portal/internal/analytics"
	"github.com/dtca-portal/dtca-portal/internal/analytics/svg"
	"github.com/dtca-portal/dtca-portal/internal/app"
	dashboardhttp "github.com/dtca-portal/dtca-portal/internal/dashboard/http"
	"github.com/dtca-portal/dtca-portal/internal/fixtures"
	"github.com/dtca-portal/dtca-portal/internal/observability"
	"github.com/dtca-portal/dtca-portal/internal/platform/cache"
	"github.com/dtca-portal/dtca-portal/internal/shared"
	"github.com/dtca-portal/dtca-portal/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "validate-fixtures" {
		fs := flag.NewFlagSet("validate-fixtures", flag.ExitOnError)
		jsonOut := fs.Bool("json", false, "print a JSON summary")
		_ = fs.Parse(os.Args[2:])
		os.Exit(cli.ValidateFixturesCommand(cli.FixturesValidateOptions{
			Path:       fs.Arg(0),
			JSONOutput: *jsonOut,
		}))
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("portal stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *app.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.Connect(ctx, cache.Options{Addr: cfg.RedisAddr})
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store, err := fixtures.NewStore(cfg.FixturesPath, logger)
	if err != nil {
		return err
	}

	dashboardCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	if err := dashboardCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	renderer := svg.Renderer{}
	service := analytics.NewService(store, dashboardCache, analytics.Renderers{
		Donut: renderer,
		Ring:  renderer,
		Bars:  renderer,
	})

	sessionManager := shared.NewSessionManager(redisClient, "dtca_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()

	dashboardHandler := dashboardhttp.NewHandler(logger, service, templates, csrfManager, metrics)
	dashboardHandler.WithAllowedOrigins(cfg.CORSAllowedOrigins)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		DashboardHandler: dashboardHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		reloadFixtures(gctx, logger, store, dashboardCache, metrics)
		return nil
	})
	return group.Wait()
}

// reloadFixtures re-reads the fixture file on SIGHUP until ctx is done.
func reloadFixtures(ctx context.Context, logger *slog.Logger, store *fixtures.Store, dashboardCache *analytics.Cache, metrics *observability.Metrics) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			err := store.Reload()
			metrics.RecordFixtureReload(err)
			if err != nil {
				continue
			}
			if err := dashboardCache.Bump(ctx); err != nil {
				logger.Warn("bump dashboard cache", slog.Any("error", err))
			}
		}
	}
}
