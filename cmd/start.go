package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rank-api/core/config"
	"rank-api/core/loader"
	"rank-api/core/logger"
	"rank-api/core/metrics"
	"rank-api/core/middleware/auth"
	"rank-api/core/middleware/rayid"
	"rank-api/core/storage"
	"rank-api/core/tracing"

	"rank-api/feature/export"
	"rank-api/feature/rank"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "rank-api/docs/swagger"
)

// @title Rank API
// @version 1.0
// @description API for ranking items inside projects.
// @host localhost:3000
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

const shutdownTimeout = 10 * time.Second

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the rank API server",
	Long:  `Starts the HTTP API, the metrics server and every enabled feature.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx := context.Background()

		// 3. Tracing
		shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
		if err != nil {
			logg.Fatal("Failed to set up tracing", zap.Error(err))
		}

		// 4. Metrics
		var m *metrics.Metrics
		if cfg.Metrics.Enabled {
			m = metrics.New(cfg.Metrics.Namespace)
		}

		// 5. Rank storage
		repo, closeRepo, err := openRepository(ctx, cfg, logg)
		if err != nil {
			logg.Fatal("Failed to open rank storage", zap.String("backend", cfg.Rank.Backend), zap.Error(err))
		}
		rankService := rank.NewService(repo, logg, m, cfg.Rank.CacheTTL)

		// 6. Export storage (Optional)
		var exportService *export.Service
		if cfg.Storage.Enabled {
			store, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Warn("Export storage unavailable, exports disabled", zap.Error(err))
			} else {
				exportService = export.NewService(rankService, store, cfg.Storage, logg, m)
			}
		}

		// 7. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimitBytes,
		})

		// RayID must be first to trace everything
		app.Use(rayid.New())
		app.Use(logger.Middleware(logg))
		app.Use(m.Middleware())

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 8. Load Features
		mgr := loader.NewManager(logg)
		mgr.Register(rank.NewFeature(rankService))
		mgr.Register(export.NewFeature(exportService))
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start Servers
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()), zap.Strings("features", mgr.Enabled()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		var metricsApp *fiber.App
		if m != nil {
			metricsApp = metrics.NewApp(cfg.Metrics, m)
			addr := cfg.Metrics.Address()
			go func() {
				logg.Info("Starting metrics server", zap.String("address", addr))
				if err := metricsApp.Listen(addr); err != nil {
					logg.Fatal("Metrics server failed to start", zap.Error(err))
				}
			}()
		}

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")

		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logg.Warn("API shutdown failed", zap.Error(err))
		}
		if metricsApp != nil {
			if err := metricsApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
				logg.Warn("Metrics shutdown failed", zap.Error(err))
			}
		}
		if err := closeRepo(); err != nil {
			logg.Warn("Failed to close rank storage", zap.Error(err))
		}

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logg.Warn("Failed to flush traces", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
