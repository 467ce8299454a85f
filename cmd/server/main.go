package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/obscura-collective/obscura-score/internal/attribution"
	"github.com/obscura-collective/obscura-score/internal/cache"
	"github.com/obscura-collective/obscura-score/internal/collector"
	"github.com/obscura-collective/obscura-score/internal/config"
	"github.com/obscura-collective/obscura-score/internal/database"
	"github.com/obscura-collective/obscura-score/internal/economic"
	"github.com/obscura-collective/obscura-score/internal/errors"
	"github.com/obscura-collective/obscura-score/internal/features"
	"github.com/obscura-collective/obscura-score/internal/monitoring"
	"github.com/obscura-collective/obscura-score/internal/pipeline"
	"github.com/obscura-collective/obscura-score/internal/predictor"
	"github.com/obscura-collective/obscura-score/internal/ratelimit"
	"github.com/obscura-collective/obscura-score/internal/scoring"
	"github.com/obscura-collective/obscura-score/internal/security"
	"github.com/obscura-collective/obscura-score/internal/types"
)

// application bundles the wired components the router depends on.
type application struct {
	cfg        *config.Config
	db         *database.DB
	repo       *database.Repository
	redis      *ratelimit.RedisClient
	limiter    *ratelimit.RateLimiter
	cache      *cache.Cache
	normalizer *scoring.Normalizer
	svc        *pipeline.Service
	metrics    *monitoring.Metrics
	logger     *monitoring.Logger
}

// newApplication wires every component from configuration.
func newApplication(cfg *config.Config) (*application, error) {
	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	redisClient, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("Redis unavailable, continuing with in-memory rate limiting", "error", err)
	}

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.IPLimitPerMin = cfg.IPLimitPerMin
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig, appMetrics)

	normalizer, err := scoring.NewNormalizer(scoring.DefaultConfig(), appLogger.Logger)
	if err != nil {
		return nil, err
	}

	obsCollector := collector.NewHTTPCollector(cfg.CollectorBaseURL, appMetrics)
	climateModel := predictor.NewHTTPPredictor("climate_model", cfg.ClimateModelURL, appMetrics)
	geographicModel := predictor.NewHTTPPredictor("geographic_model", cfg.GeographicModelURL, appMetrics)

	svc := pipeline.NewService(
		features.NewBuilder(obsCollector, appLogger.Logger),
		climateModel,
		geographicModel,
		economic.NewEstimator(economic.DefaultProfiles(), appLogger.Logger),
		normalizer,
		attribution.NewAnalyzer(attribution.DefaultAnalyzerConfig()),
		attribution.NewDecomposer(attribution.DefaultMinChainStrength),
		attribution.NewStoryGenerator(0),
		appLogger,
		appMetrics,
	)

	return &application{
		cfg:        cfg,
		db:         db,
		repo:       database.NewRepository(db),
		redis:      redisClient,
		limiter:    limiter,
		cache:      cache.NewCache(cfg.CacheTTL),
		normalizer: normalizer,
		svc:        svc,
		metrics:    appMetrics,
		logger:     appLogger,
	}, nil
}

func (a *application) close() {
	a.redis.Close()
	a.db.Close()
}

// router assembles the middleware chain and routes.
func (a *application) router() *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(a.metrics, a.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(security.HeadersMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = a.cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.Use(a.limiter.IPRateLimitMiddleware())
	r.Use(a.cache.Middleware(a.metrics))

	r.GET("/healthz", a.handleHealth)
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	api := r.Group("/api/v1")
	api.POST("/predict", a.handlePredict)
	api.POST("/explain", a.handleExplain)
	api.GET("/history", a.handleHistory)
	api.PUT("/admin/score-ranges", a.handleScoreRanges)

	return r
}

func (a *application) handleHealth(c *gin.Context) {
	status := "ok"
	checks := gin.H{"database": "ok", "redis": "disabled"}

	if err := a.db.Ping(); err != nil {
		status = "degraded"
		checks["database"] = err.Error()
	}
	if a.redis.IsEnabled() {
		checks["redis"] = "ok"
		if err := a.redis.HealthCheck(c.Request.Context()); err != nil {
			status = "degraded"
			checks["redis"] = err.Error()
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *application) handlePredict(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	var req types.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError("invalid request body", err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	pred, err := a.svc.Predict(ctx, *req.Latitude, *req.Longitude, req.Month)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	// History write is best-effort and off the request path
	go func(p pipeline.Prediction) {
		if err := a.repo.SavePrediction(p); err != nil {
			slog.Error("Failed to save prediction", "error", err, "id", p.ID)
		}
	}(pred)

	c.JSON(http.StatusOK, pred)
}

func (a *application) handleExplain(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	var req types.ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError("invalid request body", err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	explanation, err := a.svc.Explain(ctx, *req.Latitude, *req.Longitude, req.Month)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.JSON(http.StatusOK, explanation)
}

func (a *application) handleHistory(c *gin.Context) {
	q := types.HistoryQuery{Limit: 50}
	if err := c.ShouldBindQuery(&q); err != nil || q.Limit <= 0 || q.Limit > 500 {
		q.Limit = 50
	}

	records, err := a.repo.ListRecent(q.Limit)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": records,
		"count":       len(records),
	})
}

func (a *application) handleScoreRanges(c *gin.Context) {
	var req types.ScoreRangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError("invalid request body", err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	updates := make(map[scoring.Dimension]scoring.Range, len(req.Ranges))
	for name, r := range req.Ranges {
		updates[scoring.Dimension(name)] = scoring.Range{Min: r.Min, Max: r.Max}
	}

	next, err := a.normalizer.UpdateScoreRanges(updates)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	a.metrics.ConfigSwapsTotal.Inc()
	a.cache.Clear()

	c.JSON(http.StatusOK, types.ScoreRangesResponse{
		Version: next.Version,
		Message: "score ranges updated",
	})
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)

	app, err := newApplication(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.close()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: app.router(),
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
