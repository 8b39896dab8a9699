package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tarun-khatri/competitor-metrics/internal/aggregator"
	"github.com/tarun-khatri/competitor-metrics/internal/api"
	"github.com/tarun-khatri/competitor-metrics/internal/api/handlers"
	"github.com/tarun-khatri/competitor-metrics/internal/cache"
	"github.com/tarun-khatri/competitor-metrics/internal/config"
	"github.com/tarun-khatri/competitor-metrics/internal/fetcher"
	"github.com/tarun-khatri/competitor-metrics/internal/registry"
	"github.com/tarun-khatri/competitor-metrics/internal/worker"
	"github.com/tarun-khatri/competitor-metrics/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}

	reg, err := registry.Open(cfg.PostgresDSN, cfg.MigrationsDir)
	if err != nil {
		log.Fatalln(err)
	}

	store := selectStore(cfg)

	httpClient := fetcher.NewClient(cfg.HTTPTimeout)
	adapters := []fetcher.Adapter{
		fetcher.NewTwitter(httpClient, cfg.RapidAPIKey),
		fetcher.NewLinkedIn(httpClient, cfg.RapidAPIKey),
		fetcher.NewMedium(),
		fetcher.NewOnchain(httpClient),
	}

	agg := aggregator.New(store, adapters, config.TTLFor, reg)

	broadcaster := ws.NewBroadcaster()

	w := worker.NewWorker(reg, agg, broadcaster, cfg)
	w.Start(cfg.WorkerInterval)

	h := handlers.NewHandler(reg, agg, cfg, w, broadcaster)

	r := gin.Default()
	api.RegisterRoutes(r, h)

	log.Printf("Main: listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalln(err)
	}
}

// selectStore prefers Redis when configured so cache entries survive
// restarts; a dead Redis degrades to the in-process store instead of
// blocking startup.
func selectStore(cfg *config.AppConfig) cache.Store {
	if cfg.RedisAddr == "" {
		log.Println("Main: REDIS_ADDR not set, using in-memory cache store")
		return cache.NewMemoryStore()
	}

	redisStore := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := redisStore.Ping(ctx); err != nil {
		log.Printf("Main: Redis unreachable (%v), falling back to in-memory cache store", err)
		return cache.NewMemoryStore()
	}

	log.Printf("Main: using Redis cache store at %s", cfg.RedisAddr)
	return redisStore
}
