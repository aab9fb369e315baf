package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-evaluasi-api/api/swagger"
	"github.com/noah-isme/sma-evaluasi-api/internal/handler"
	"github.com/noah-isme/sma-evaluasi-api/internal/middleware"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/repository"
	"github.com/noah-isme/sma-evaluasi-api/internal/service"
	"github.com/noah-isme/sma-evaluasi-api/internal/workspace"
	"github.com/noah-isme/sma-evaluasi-api/pkg/cache"
	"github.com/noah-isme/sma-evaluasi-api/pkg/config"
	"github.com/noah-isme/sma-evaluasi-api/pkg/database"
	"github.com/noah-isme/sma-evaluasi-api/pkg/jobs"
	"github.com/noah-isme/sma-evaluasi-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-evaluasi-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-evaluasi-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-evaluasi-api/pkg/storage"
)

// @title Dashboard Evaluasi API
// @version 1.0.0
// @description Evaluation dashboard for school problems, programs and student discipline.
// @BasePath /api/v1
// @schemes http

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	loc := cfg.Dashboard.Location()
	checks := map[string]handler.ReadinessCheck{}

	var (
		stores repository.Stores
		sqlDB  *sqlx.DB
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background()) //nolint:errcheck
		stores = repository.NewMongoStores(db, loc)
		checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	default:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		sqlDB = db
		stores = repository.NewPostgresStores(db)
		checks["postgres"] = db.PingContext
	}
	logr.Info("record store ready", zap.String("driver", cfg.StoreDriver))

	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
			checks["redis"] = redisRepo.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	dashboardSvc := service.NewDashboardService(stores.Problems, stores.Programs, stores.Logs, cacheSvc, metrics,
		service.DashboardConfig{CacheTTL: cfg.Dashboard.CacheTTL, Location: loc}, logr)
	problemSvc := service.NewProblemService(stores.Problems, dashboardSvc, metrics, validate, logr)
	programSvc := service.NewProgramService(stores.Programs, dashboardSvc, metrics, validate, logr)
	disciplineSvc := service.NewDisciplineService(stores.Logs, dashboardSvc, metrics, validate, logr)

	sessions := workspace.NewManager(workspace.Stores{
		Problems: problemSvc,
		Programs: programSvc,
		Logs:     disciplineSvc,
	}, workspace.Options{
		KeepModalOpenOnFailure: cfg.Workspace.KeepModalOpenOnFailure,
		Location:               loc,
		Logger:                 logr,
	}, cfg.Workspace.SessionTTL, metrics)
	sessions.StartJanitor(ctx, janitorInterval)

	exportHandler, err := setupExports(ctx, cfg, sqlDB, dashboardSvc, metrics, validate, logr)
	if err != nil {
		return err
	}

	router := newRouter(cfg, logr, metrics, routes{
		problems:   handler.NewProblemHandler(problemSvc),
		programs:   handler.NewProgramHandler(programSvc),
		discipline: handler.NewDisciplineHandler(disciplineSvc),
		dashboard:  handler.NewDashboardHandler(dashboardSvc),
		exports:    exportHandler,
		workspaces: handler.NewWorkspaceHandler(sessions),
		system:     handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupExports wires the export pipeline. Jobs live in Postgres, so exports
// answer 503 with the Mongo driver or when disabled.
func setupExports(ctx context.Context, cfg *config.Config, db *sqlx.DB, dashboard *service.DashboardService, metrics *service.MetricsService, validate *validator.Validate, logr *zap.Logger) (*handler.ExportHandler, error) {
	if !cfg.Exports.Enabled {
		return handler.NewExportHandler(nil), nil
	}
	if db == nil {
		logr.Warn("exports need the postgres store driver, disabling")
		return handler.NewExportHandler(nil), nil
	}

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exporter := service.NewExportService(dashboard, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)

	jobRepo := repository.NewExportJobRepository(db)
	worker := service.NewExportWorker(jobRepo, exporter, metrics, cfg.Exports.WorkerRetries, logr)
	queue := jobs.NewQueue[models.ExportDataset]("dashboard-exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	queue.Start(ctx)
	go func() {
		<-ctx.Done()
		queue.Stop()
	}()

	jobSvc := service.NewExportJobService(jobRepo, queue, exporter, metrics, validate, logr, service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	jobSvc.RecoverPendingJobs(ctx)
	jobSvc.StartCleanup(ctx)

	return handler.NewExportHandler(jobSvc), nil
}

type routes struct {
	problems   *handler.ProblemHandler
	programs   *handler.ProgramHandler
	discipline *handler.DisciplineHandler
	dashboard  *handler.DashboardHandler
	exports    *handler.ExportHandler
	workspaces *handler.WorkspaceHandler
	system     *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.system.Health)
	r.GET("/ready", h.system.Ready)
	r.GET("/metrics", h.system.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	problems := api.Group("/problems")
	problems.GET("", h.problems.List)
	problems.POST("", h.problems.Create)
	problems.GET("/:id", h.problems.Get)
	problems.PUT("/:id", h.problems.Update)
	problems.DELETE("/:id", h.problems.Delete)
	problems.POST("/:id/clone", h.problems.Clone)

	programs := api.Group("/programs")
	programs.GET("", h.programs.List)
	programs.POST("", h.programs.Create)
	programs.GET("/:id", h.programs.Get)
	programs.PUT("/:id", h.programs.Update)
	programs.DELETE("/:id", h.programs.Delete)
	programs.POST("/:id/clone", h.programs.Clone)

	logs := api.Group("/discipline-logs")
	logs.GET("", h.discipline.List)
	logs.POST("", h.discipline.Create)
	logs.DELETE("/:id", h.discipline.Delete)
	logs.GET("/students/:name", h.discipline.History)

	dashboard := api.Group("/dashboard")
	dashboard.GET("", h.dashboard.Summary)
	dashboard.GET("/suggestions", h.dashboard.Suggestions)
	dashboard.POST("/exports", h.exports.Create)
	dashboard.GET("/exports/:id", h.exports.Status)
	api.GET("/exports/:token", h.exports.Download)

	ws := api.Group("/workspaces")
	ws.POST("", h.workspaces.Open)
	ws.GET("/:id", h.workspaces.Get)
	ws.DELETE("/:id", h.workspaces.Close)
	ws.POST("/:id/reload", h.workspaces.Reload)
	ws.POST("/:id/view", h.workspaces.View)
	ws.POST("/:id/meeting-mode", h.workspaces.MeetingMode)
	ws.POST("/:id/modal/new", h.workspaces.ModalNew)
	ws.POST("/:id/modal/edit", h.workspaces.ModalEdit)
	ws.POST("/:id/modal/type", h.workspaces.ModalType)
	ws.POST("/:id/modal/draft", h.workspaces.ModalDraft)
	ws.POST("/:id/modal/submit", h.workspaces.ModalSubmit)
	ws.POST("/:id/modal/cancel", h.workspaces.ModalCancel)
	ws.POST("/:id/escalate", h.workspaces.Escalate)
	ws.POST("/:id/records/:entity/:recordId/clone", h.workspaces.CloneRecord)
	ws.DELETE("/:id/records/:entity/:recordId", h.workspaces.DeleteRecord)

	api.GET("/metrics/summary", h.system.Summary)

	return r
}
