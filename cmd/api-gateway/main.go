package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/trainbase/evaluation-api/api/swagger"
	"github.com/trainbase/evaluation-api/internal/handler"
	"github.com/trainbase/evaluation-api/internal/middleware"
	"github.com/trainbase/evaluation-api/internal/repository"
	"github.com/trainbase/evaluation-api/internal/service"
	"github.com/trainbase/evaluation-api/pkg/cache"
	"github.com/trainbase/evaluation-api/pkg/config"
	"github.com/trainbase/evaluation-api/pkg/database"
	"github.com/trainbase/evaluation-api/pkg/logger"
	corsmiddleware "github.com/trainbase/evaluation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/trainbase/evaluation-api/pkg/middleware/requestid"
)

// @title Training Center Evaluation API
// @version 1.0.0
// @description Dynamic evaluation criteria and student scoring
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

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Analytics.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, cacheRepo != nil)

	validate := validator.New()

	groupRepo := repository.NewGroupRepository(db)
	criteriaRepo := repository.NewCriteriaRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	tokens := service.NewTokenService(cfg.JWT.Secret)
	criteriaSvc := service.NewCriteriaService(criteriaRepo, validate, logr)
	resolver := service.NewCriteriaResolver(criteriaRepo, groupRepo, logr)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, resolver, cacheSvc, metrics, validate, logr)
	analyticsSvc := service.NewAnalyticsService(evaluationRepo, cacheSvc, metrics, logr)
	reportSvc := service.NewReportService(evaluationRepo, groupRepo, logr)

	criteriaHandler := handler.NewCriteriaHandler(criteriaSvc, resolver)
	evaluationHandler := handler.NewEvaluationHandler(evaluationSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	auth := middleware.JWT(tokens)

	criteria := api.Group("/criteria")
	{
		criteria.GET("", criteriaHandler.List)
		criteria.GET("/:id", criteriaHandler.Get)
		criteria.POST("", auth, criteriaHandler.Create)
		criteria.PUT("/:id", auth, criteriaHandler.Update)
		criteria.PATCH("/:id/status", auth, criteriaHandler.UpdateStatus)
		criteria.POST("/:id/archive", auth, criteriaHandler.Archive)
		criteria.POST("/validate-weights", auth, criteriaHandler.ValidateWeights)
	}

	evaluations := api.Group("/evaluations")
	{
		evaluations.GET("", evaluationHandler.List)
		evaluations.GET("/:id", evaluationHandler.Get)
		evaluations.POST("", auth, evaluationHandler.Create)
		evaluations.PUT("/:id", auth, evaluationHandler.Update)
		evaluations.POST("/:id/share", auth, evaluationHandler.Share)
	}

	groups := api.Group("/groups")
	{
		groups.GET("/:groupId/criteria", criteriaHandler.Resolve)
		groups.DELETE("/:groupId/evaluations", auth, evaluationHandler.DeleteByGroup)
		if cfg.Reports.Enabled {
			groups.GET("/:groupId/report", auth, reportHandler.GroupReport)
		}
	}

	analytics := api.Group("/analytics")
	{
		analytics.GET("/evaluations", analyticsHandler.Stats)
		analytics.GET("/system", analyticsHandler.SystemMetrics)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
