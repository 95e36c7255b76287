// Package config reads server settings from the environment, loading a .env
// file first when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/sleepingqueens/engine"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server needs at startup.
type Config struct {
	ListenAddr string

	// DatabaseURL and RedisAddr are optional; an empty value disables the
	// corresponding store.
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	JWTSecret string
	// AllowedOrigins are websocket origin patterns; empty means same-origin.
	AllowedOrigins []string

	LogLevel  logrus.Level
	LogFormat string // "text" or "json"

	DefenseWindow time.Duration
	HandSize      int
	// ShuffleSeed makes deals reproducible when non-zero.
	ShuffleSeed uint64
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		LogFormat:     getenv("LOG_FORMAT", "text"),
	}
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	lvl, err := logrus.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = lvl

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("LOG_FORMAT: want text or json, got %q", cfg.LogFormat)
	}

	rules := engine.DefaultRules()
	ms, err := intEnv("DEFENSE_WINDOW_MS", int(rules.DefenseWindow))
	if err != nil {
		return Config{}, err
	}
	if ms <= 0 {
		return Config{}, fmt.Errorf("DEFENSE_WINDOW_MS must be positive, got %d", ms)
	}
	cfg.DefenseWindow = time.Duration(ms) * time.Millisecond

	if cfg.HandSize, err = intEnv("HAND_SIZE", rules.HandSize); err != nil {
		return Config{}, err
	}
	// A full table must still be dealable from one deck.
	if limit := engine.DeckSize() / rules.MaxPlayers; cfg.HandSize < 1 || cfg.HandSize > limit {
		return Config{}, fmt.Errorf("HAND_SIZE must be between 1 and %d, got %d", limit, cfg.HandSize)
	}

	if s := os.Getenv("SHUFFLE_SEED"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("SHUFFLE_SEED: %w", err)
		}
		cfg.ShuffleSeed = seed
	}
	return cfg, nil
}

// Rules converts the table settings into engine rules.
func (c Config) Rules() engine.Rules {
	r := engine.DefaultRules()
	r.HandSize = c.HandSize
	r.DefenseWindow = c.DefenseWindow.Milliseconds()
	return r
}

// ConfigureLogging applies the level and format to the standard logrus logger.
func (c Config) ConfigureLogging() {
	logrus.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
