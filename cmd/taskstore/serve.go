package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kandev/taskboard/internal/common/config"
	"github.com/kandev/taskboard/internal/common/httpmw"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/common/tracing"
	"github.com/kandev/taskboard/internal/events"
	"github.com/kandev/taskboard/internal/events/bus"
	"github.com/kandev/taskboard/internal/task/handlers"
	"github.com/kandev/taskboard/internal/task/seed"
	"github.com/kandev/taskboard/internal/task/service"
)

const (
	serviceName     = "taskstore"
	shutdownTimeout = 30 * time.Second
)

func serveCmd(configDir *string) *cobra.Command {
	var (
		memory   bool
		seedFile string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the task store HTTP server",
		Long: `Run the task store HTTP server.

Examples:
  taskstore serve
  taskstore serve --memory --seed fixtures/tasks.yaml
  TASKBOARD_SERVER_PORT=4100 taskstore serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configDir)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, memory, seedFile, log)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "keep tasks in memory instead of the database")
	cmd.Flags().StringVar(&seedFile, "seed", "", "load fixtures from this YAML file before serving")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, memory bool, seedFile string, log *logger.Logger) error {
	log.Info("Starting task store...")
	tracing.SetServiceName(serviceName)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			log.Error("Tracing shutdown error", zap.Error(err))
		}
	}()

	provided, closeBus, err := events.Provide(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeBus() }()

	if _, err := events.SubscribeAudit(provided.Bus, events.AllTaskEvents, log); err != nil {
		log.Warn("Failed to subscribe task audit log", zap.Error(err))
	}

	repo, closeRepo, err := provideRepository(ctx, cfg, memory, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := service.NewService(repo, provided.Bus, log)
	if seedFile != "" {
		if _, err := seed.LoadFile(ctx, seedFile, svc, log); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newRouter(cfg, svc, provided.Bus, log),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Task store listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down task store...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Task store stopped")
	return nil
}

func newRouter(cfg *config.Config, svc *service.Service, eventBus bus.EventBus, log *logger.Logger) *gin.Engine {
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestID())
	router.Use(httpmw.OtelTracing(serviceName))
	router.Use(httpmw.RequestLogger(log, serviceName))
	router.Use(corsMiddleware())

	handlers.RegisterTaskRoutes(router, svc, log)
	handlers.RegisterHealthRoutes(router, eventBus)
	return router
}

// corsMiddleware lets a browser board on another origin call the store.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
