package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr   = ":8080"
	defaultDBPath       = "algolab.db"
	defaultCacheTTL     = 30 * time.Minute
	defaultMaxCacheSize = 100
	defaultExecTimeout  = 30 * time.Second

	envListenAddr     = "ALGOLAB_LISTEN_ADDR"
	envDBPath         = "ALGOLAB_DB_PATH"
	envLogLevel       = "ALGOLAB_LOG_LEVEL"
	envCacheEnabled   = "ALGOLAB_CACHE_ENABLED"
	envCacheTTL       = "ALGOLAB_CACHE_TTL"
	envMaxCacheSize   = "ALGOLAB_MAX_CACHE_SIZE"
	envMetricsEnabled = "ALGOLAB_METRICS_ENABLED"
	envExecTimeout    = "ALGOLAB_EXEC_TIMEOUT"
	envCoalesce       = "ALGOLAB_COALESCE"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	LogLevel   slog.Level

	CacheEnabled   bool
	CacheTTL       time.Duration
	MaxCacheSize   int
	MetricsEnabled bool
	// ExecTimeout is the default per-call timeout for API requests that do
	// not set their own.
	ExecTimeout time.Duration
	Coalesce    bool
}

// Load reads configuration from environment variables with sensible defaults.
// Unparseable values fall back to the default.
func Load() Config {
	cfg := Config{
		ListenAddr:     defaultListenAddr,
		DBPath:         defaultDBPath,
		LogLevel:       slog.LevelInfo,
		CacheEnabled:   true,
		CacheTTL:       defaultCacheTTL,
		MaxCacheSize:   defaultMaxCacheSize,
		MetricsEnabled: true,
		ExecTimeout:    defaultExecTimeout,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	cfg.CacheEnabled = parseBool(os.Getenv(envCacheEnabled), cfg.CacheEnabled)
	cfg.CacheTTL = parseDuration(os.Getenv(envCacheTTL), cfg.CacheTTL)
	cfg.MaxCacheSize = parsePositiveInt(os.Getenv(envMaxCacheSize), cfg.MaxCacheSize)
	cfg.MetricsEnabled = parseBool(os.Getenv(envMetricsEnabled), cfg.MetricsEnabled)
	cfg.ExecTimeout = parseDuration(os.Getenv(envExecTimeout), cfg.ExecTimeout)
	cfg.Coalesce = parseBool(os.Getenv(envCoalesce), cfg.Coalesce)

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parsePositiveInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
