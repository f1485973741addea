package config

import (
	"fmt"
	"os"
	"strconv"
)

// Repository backends
const (
	RepositoryMemory = "memory"
	RepositoryRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	Redis RedisConfig
	Sim   SimConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SimConfig holds simulation run configuration
type SimConfig struct {
	// Seed drives dice and tactics; 0 means time-seeded
	Seed int64

	// Encounters is how many encounters to run concurrently
	Encounters int

	// MaxRounds caps each encounter before it is called off
	MaxRounds int

	// Repository selects the storage backend: memory or redis
	Repository string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Sim: SimConfig{
			Seed:       getEnvAsInt64OrDefault("SIM_SEED", 0),
			Encounters: getEnvAsIntOrDefault("SIM_ENCOUNTERS", 1),
			MaxRounds:  getEnvAsIntOrDefault("SIM_MAX_ROUNDS", 50),
			Repository: getEnvOrDefault("SIM_REPOSITORY", RepositoryMemory),
		},
	}

	if cfg.Sim.Encounters < 1 {
		return nil, fmt.Errorf("SIM_ENCOUNTERS must be at least 1")
	}
	if cfg.Sim.MaxRounds < 1 {
		return nil, fmt.Errorf("SIM_MAX_ROUNDS must be at least 1")
	}
	if cfg.Sim.Repository != RepositoryMemory && cfg.Sim.Repository != RepositoryRedis {
		return nil, fmt.Errorf("SIM_REPOSITORY must be %q or %q", RepositoryMemory, RepositoryRedis)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
