package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/study-crew/peer-assist-api/api/swagger"
	"github.com/study-crew/peer-assist-api/internal/handler"
	"github.com/study-crew/peer-assist-api/internal/middleware"
	"github.com/study-crew/peer-assist-api/internal/repository"
	"github.com/study-crew/peer-assist-api/internal/service"
	"github.com/study-crew/peer-assist-api/pkg/cache"
	"github.com/study-crew/peer-assist-api/pkg/config"
	"github.com/study-crew/peer-assist-api/pkg/database"
	"github.com/study-crew/peer-assist-api/pkg/logger"
	corsmiddleware "github.com/study-crew/peer-assist-api/pkg/middleware/cors"
	reqidmiddleware "github.com/study-crew/peer-assist-api/pkg/middleware/requestid"
	"github.com/study-crew/peer-assist-api/pkg/storage"
)

// @title Peer Assist API
// @version 1.0.0
// @description Assistant roster reconciliation and availability service
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without roster cache", "error", err)
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	rosterSvc := service.NewRosterService(userRepo, courseRepo, assignmentRepo, availabilityRepo, cacheRepo, metricsSvc, cfg.Roster.CacheTTL, logr)
	reconcileSvc := service.NewReconcileService(userRepo, courseRepo, assignmentRepo, availabilityRepo, db, rosterSvc, validate, logr)
	exportSvc := service.NewExportService(rosterSvc, logr)
	if cfg.Exports.Enabled && cfg.Exports.ArchiveDir != "" {
		store, err := storage.NewLocalStorage(cfg.Exports.ArchiveDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export archive", "error", err)
		}
		exportSvc.EnableArchive(context.Background(), store, cfg.Exports.ArchiveTTL)
		defer exportSvc.Close()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	rosterHandler := handler.NewRosterHandler(reconcileSvc, rosterSvc, metricsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		}

		assistants := api.Group("/assistants/:assistantId", middleware.JWT(authSvc))
		{
			assistants.GET("/roster", rosterHandler.List)
			assistants.POST("/roster", middleware.RBAC("SELF"), rosterHandler.Reconcile)
			assistants.GET("/roster/:courseRef", rosterHandler.AssignmentDetails)
			if cfg.Exports.Enabled {
				assistants.GET("/schedule/export", exportHandler.Schedule)
			}
		}

		api.GET("/courses/:courseRef/assistants", middleware.JWT(authSvc), rosterHandler.AssistantsForCourse)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
