package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/msu-tj/schedule-desk-api/api/swagger"
	"github.com/msu-tj/schedule-desk-api/internal/handler"
	"github.com/msu-tj/schedule-desk-api/internal/middleware"
	"github.com/msu-tj/schedule-desk-api/internal/repository"
	"github.com/msu-tj/schedule-desk-api/internal/service"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
	"github.com/msu-tj/schedule-desk-api/pkg/cache"
	"github.com/msu-tj/schedule-desk-api/pkg/config"
	"github.com/msu-tj/schedule-desk-api/pkg/database"
	"github.com/msu-tj/schedule-desk-api/pkg/logger"
	corsmiddleware "github.com/msu-tj/schedule-desk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/msu-tj/schedule-desk-api/pkg/middleware/requestid"
)

// @title Schedule Desk API
// @version 1.0.0
// @description Gateway serving the university scheduling dashboard
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr, metricsSvc)
		defer cacheRepo.Close() //nolint:errcheck
	} else {
		cacheRepo = repository.NewCacheRepository(nil, logr, metricsSvc)
	}

	client := upstream.New(cfg.Upstream.BaseURL, &http.Client{Timeout: cfg.Upstream.Timeout}, logr)
	client.SetMetrics(metricsSvc)

	viewStateRepo := repository.NewViewStateRepository(db)

	sessionSvc := service.NewSessionService(client, nil, logr, cfg.Session.RefreshLeeway)
	boardSvc := service.NewBoardService(client, cacheRepo, nil, logr, service.BoardConfig{
		LessonsTTL: cfg.Cache.LessonsTTL,
	})
	summarySvc := service.NewSummaryService(client, cacheRepo, logr, service.SummaryConfig{
		ConflictsTTL: cfg.Cache.ConflictsTTL,
		WarningsTTL:  cfg.Cache.WarningsTTL,
		GroupsTTL:    cfg.Cache.GroupsTTL,
	})
	exportSvc := service.NewExportService(client, summarySvc, nil, logr, service.ExportConfig{
		DefaultFormat: cfg.Export.DefaultFormat,
	})
	viewStateSvc := service.NewViewStateService(viewStateRepo, nil, logr)
	filterSvc := service.NewFilterSetService(client, logr)

	sessionHandler := handler.NewSessionHandler(sessionSvc)
	boardHandler := handler.NewBoardHandler(boardSvc)
	summaryHandler := handler.NewSummaryHandler(summarySvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	viewStateHandler := handler.NewViewStateHandler(viewStateSvc)
	entityHandler := handler.NewEntityHandler(client)
	filtersHandler := handler.NewFiltersHandler(filterSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, metricsSvc.Snapshot())
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	api.POST("/auth/login", sessionHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.Session(sessionSvc))
	{
		authed.GET("/auth/me", sessionHandler.Me)
		authed.POST("/auth/logout", sessionHandler.Logout)

		authed.GET("/board", boardHandler.View)
		authed.POST("/board/lessons/move", boardHandler.Move)
		authed.POST("/board/lessons/resize", boardHandler.Resize)
		authed.POST("/board/navigate", summaryHandler.Navigate)

		authed.GET("/schedules/:id/conflicts", summaryHandler.Conflicts)
		authed.GET("/schedules/:id/warnings", summaryHandler.Warnings)
		authed.GET("/schedules/:id/groups", summaryHandler.Groups)
		authed.GET("/schedules/:id/health", summaryHandler.Health)

		authed.POST("/export", exportHandler.Export)
		if cfg.Export.LocalReports {
			authed.GET("/schedules/:id/report", exportHandler.Report)
		}

		authed.GET("/view-states", viewStateHandler.List)
		authed.GET("/view-states/:tableKey", viewStateHandler.Get)
		authed.PUT("/view-states/:tableKey", viewStateHandler.Save)
		authed.DELETE("/view-states/:tableKey", viewStateHandler.Reset)

		authed.GET("/filters", filtersHandler.Tables)
		authed.GET("/filters/:tableKey", filtersHandler.Schema)

		authed.GET("/entities/:entity", entityHandler.List)
		authed.POST("/entities/:entity", entityHandler.Create)
		authed.GET("/entities/:entity/:id", entityHandler.Get)
		authed.PATCH("/entities/:entity/:id", entityHandler.Update)
		authed.DELETE("/entities/:entity/:id", entityHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting",
		"addr", addr,
		"env", cfg.Env,
		"upstream", cfg.Upstream.BaseURL,
		"cache", cfg.Cache.Enabled,
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
