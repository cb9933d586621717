// Command optimize fetches the current FPL player pool, selects the optimal
// squad, starting lineup and captain, and prints a report.
package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fantasy-tools/fpl-optimizer/internal/cache"
	"github.com/fantasy-tools/fpl-optimizer/internal/catalog"
	"github.com/fantasy-tools/fpl-optimizer/internal/config"
	"github.com/fantasy-tools/fpl-optimizer/internal/fpl"
	"github.com/fantasy-tools/fpl-optimizer/internal/pipeline"
	"github.com/fantasy-tools/fpl-optimizer/internal/report"
	"github.com/fantasy-tools/fpl-optimizer/internal/solver"
	"github.com/fantasy-tools/fpl-optimizer/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger("", cfg.IsDevelopment())
	log := logger.WithService("fpl-optimizer")

	ctx := context.Background()

	var payloadCache fpl.Cache
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		client := redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, continuing without cache")
		} else {
			defer client.Close()
			payloadCache = cache.NewRedisCache(client, time.Duration(cfg.CacheTTLSeconds)*time.Second, structuredLogger)
		}
	}

	fplClient := fpl.NewClient(cfg.FPLBaseURL, payloadCache, structuredLogger)
	records, err := fplClient.FetchRecords(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch player data: %v", err)
	}

	cat, err := catalog.Load(records, catalog.DeriveConfig{FormWeight: cfg.FormWeight})
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	p := pipeline.New(solver.Options{
		TimeLimit: time.Duration(cfg.SolveTimeoutSeconds) * time.Second,
		Workers:   cfg.SolverWorkers,
	})
	result, err := p.Run(ctx, cat, pipeline.RulesFromConfig(cfg))
	if err != nil {
		log.Fatalf("Optimization failed: %v", err)
	}

	report.Write(os.Stdout, result)
}
