package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tarun-khatri/competitor-metrics/internal/model"
)

// Cache TTLs per platform. LinkedIn company data moves slowly and the
// provider is the most rate-limited, so it gets a day; everything else
// refreshes on a 6 hour cycle. The company list sits in between.
const (
	DefaultTTL       = 6 * time.Hour
	LinkedInTTL      = 24 * time.Hour
	CompanyListTTL   = 12 * time.Hour
	DefaultPort      = "8080"
	DefaultInterval  = 6 * time.Hour
	DefaultCacheTime = 60 * time.Second
)

type AppConfig struct {
	Port          string
	PostgresDSN   string
	MigrationsDir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RapidAPIKey string

	HTTPTimeout    time.Duration
	WorkerInterval time.Duration
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:           envOr("PORT", DefaultPort),
		MigrationsDir:  envOr("MIGRATIONS_DIR", "./sql/schema"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RapidAPIKey:    os.Getenv("RAPIDAPI_KEY"),
		HTTPTimeout:    durationOr("HTTP_TIMEOUT", DefaultCacheTime),
		WorkerInterval: durationOr("WORKER_INTERVAL", DefaultInterval),
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %v", v, err)
		}
		cfg.RedisDB = db
	}

	dbName := os.Getenv("POSTGRES_DB")
	dbUserName := os.Getenv("POSTGRES_USER")
	dbPassword := os.Getenv("POSTGRES_PASSWORD")
	dbHost := envOr("POSTGRES_HOST", "localhost:5432")

	if dbName == "" || dbUserName == "" || dbPassword == "" {
		return nil, fmt.Errorf("missing Postgres environment configuration")
	}

	cfg.PostgresDSN = fmt.Sprintf("postgres://%v:%v@%v/%v?sslmode=disable", dbUserName, dbPassword, dbHost, dbName)

	return cfg, nil
}

// TTLFor returns the cache expiration for a platform's entries.
func TTLFor(platform string) time.Duration {
	if platform == model.PlatformLinkedIn {
		return LinkedInTTL
	}
	return DefaultTTL
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
