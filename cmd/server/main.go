package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cmzlocks/value-props-model/internal/api"
	"github.com/cmzlocks/value-props-model/internal/api/handlers"
	"github.com/cmzlocks/value-props-model/internal/api/middleware"
	"github.com/cmzlocks/value-props-model/internal/dashboard"
	"github.com/cmzlocks/value-props-model/internal/props"
	"github.com/cmzlocks/value-props-model/internal/providers"
	"github.com/cmzlocks/value-props-model/internal/services"
	"github.com/cmzlocks/value-props-model/pkg/config"
	"github.com/cmzlocks/value-props-model/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	log := logger.InitLogger(os.Getenv("LOG_LEVEL"), cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.OddsAPIKey == "" {
		log.Warn("ODDS_API_KEY not set; prop fetches will fail")
	}

	// Cache: Redis when configured, in-memory otherwise
	var cache props.CacheProvider
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		cache = services.NewCacheService(redisClient)
		log.Info("Using Redis cache")
	} else {
		cache = services.NewMemoryCache()
		log.Info("Using in-memory cache")
	}

	// Initialize services
	model := config.DefaultModelConfig()
	breaker := services.NewCircuitBreakerService(cfg.CircuitBreakerThreshold, 30*time.Second, log)

	oddsClient := providers.NewOddsAPIClient(cfg, cache, log)
	statsClient := providers.NewBallDontLieClient(cfg, cache, log)

	analyzer := services.NewPropAnalyzer(model, log)
	selector := services.NewPropSelector(model)
	tracker := services.NewPickTracker(statsClient, cfg.StatsRateInterval, log)
	store := services.NewDocumentStore(cfg.TrackingFile, cfg.PerformanceFile, cfg.PropsHistoryFile, log)
	dash := dashboard.NewGenerator(cfg, log)

	pipeline := services.NewPipeline(cfg, model, oddsClient, statsClient, analyzer, selector, tracker, store, breaker, dash, cache, log)

	// First run before the server accepts traffic makes the dashboard and
	// API useful immediately.
	if cfg.RunOnStartup {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			if _, err := pipeline.Run(ctx); err != nil {
				log.Warnf("Startup run failed: %v", err)
			}
		}()
	}

	if err := pipeline.StartScheduler(); err != nil {
		log.Errorf("Failed to start scheduler: %v", err)
	}
	defer pipeline.StopScheduler()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	router.GET("/health", handlers.NewHealthHandler(pipeline, breaker).GetHealth)

	// Serve the generated dashboard at the root
	router.StaticFile("/", cfg.DashboardFile)

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, pipeline, store, breaker)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
