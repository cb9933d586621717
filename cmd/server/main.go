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

	"github.com/fantasy-tools/fpl-optimizer/internal/api/handlers"
	"github.com/fantasy-tools/fpl-optimizer/internal/cache"
	"github.com/fantasy-tools/fpl-optimizer/internal/config"
	"github.com/fantasy-tools/fpl-optimizer/internal/fpl"
	"github.com/fantasy-tools/fpl-optimizer/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger("", cfg.IsDevelopment())
	logger.WithService("fpl-optimizer").WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting FPL optimizer service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis is optional; without it every request fetches from the API.
	var redisClient *redis.Client
	var payloadCache fpl.Cache
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithService("fpl-optimizer").Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			logger.WithService("fpl-optimizer").Fatalf("Failed to connect to Redis: %v", err)
		}
		cancel()
		defer redisClient.Close()
		payloadCache = cache.NewRedisCache(redisClient, time.Duration(cfg.CacheTTLSeconds)*time.Second, structuredLogger)
	}

	fplClient := fpl.NewClient(cfg.FPLBaseURL, payloadCache, structuredLogger)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	optimizeHandler := handlers.NewOptimizeHandler(fplClient, cfg, structuredLogger)
	healthHandler := handlers.NewHealthHandler(redisClient, structuredLogger)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/optimize", optimizeHandler.Optimize)
	}
	router.GET("/health", healthHandler.GetHealth)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.WithService("fpl-optimizer").WithField("port", cfg.Port).Info("Service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("fpl-optimizer").Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("fpl-optimizer").Info("Shutting down service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithService("fpl-optimizer").Fatalf("Service forced to shutdown: %v", err)
	}

	logger.WithService("fpl-optimizer").Info("Service exited")
}
