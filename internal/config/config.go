// Package config loads server settings from flags, the environment and an
// optional .env file, and physics tuning from a JSON file.
package config

import (
	"flag"
	"io/fs"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds the server settings
type Config struct {
	Addr                 string
	PublicURL            string
	TickRate             int
	FullStateInterval    uint64
	MinInputInterval     time.Duration
	InvincibilitySeconds float64
	Seed                 uint64
	ConstantsFile        string
	AnalyticsDB          string
	LogLevel             string
	MaxConnsPerIP        int
	MaxConns             int
	PrintQR              bool
}

// InvincibilityTicks converts the invincibility window to ticks at TickRate
func (c Config) InvincibilityTicks() uint64 {
	return uint64(math.Round(c.InvincibilitySeconds * float64(c.TickRate)))
}

// TickPeriod is the wall-clock duration of one tick
func (c Config) TickPeriod() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Validate rejects settings the server cannot run with
func (c Config) Validate() error {
	switch {
	case c.TickRate <= 0 || c.TickRate > 1000:
		return errors.Errorf("tick rate %d out of range (1-1000)", c.TickRate)
	case c.FullStateInterval == 0:
		return errors.New("full state interval must be positive")
	case c.MinInputInterval < 0:
		return errors.New("min input interval must not be negative")
	case c.InvincibilitySeconds < 0:
		return errors.New("invincibility must not be negative")
	case c.MaxConnsPerIP <= 0 || c.MaxConns <= 0:
		return errors.New("connection limits must be positive")
	}
	return nil
}

// Load reads .env (if present), then environment variables, then args.
// Flags override the environment, which overrides built-in defaults.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Wrap(err, "load .env")
	}

	var cfg Config
	fset := flag.NewFlagSet("battlestar-server", flag.ContinueOnError)
	fset.SetOutput(os.Stderr)
	fset.StringVar(&cfg.Addr, "addr", GetEnv("BATTLESTAR_ADDR", ":8080"), "HTTP listen address")
	fset.StringVar(&cfg.PublicURL, "public-url", GetEnv("BATTLESTAR_PUBLIC_URL", ""), "WebSocket URL advertised to players")
	fset.IntVar(&cfg.TickRate, "tick-rate", GetEnvInt("BATTLESTAR_TICK_RATE", 20), "simulation ticks per second")
	fset.Uint64Var(&cfg.FullStateInterval, "full-state-interval", uint64(GetEnvInt("BATTLESTAR_FULL_STATE_INTERVAL", 100)), "ticks between full snapshots")
	fset.DurationVar(&cfg.MinInputInterval, "min-input-interval", GetEnvDuration("BATTLESTAR_MIN_INPUT_INTERVAL", 15*time.Millisecond), "minimum time between accepted inputs per player")
	fset.Float64Var(&cfg.InvincibilitySeconds, "invincibility", GetEnvFloat("BATTLESTAR_INVINCIBILITY", 1), "seconds of invincibility after respawn")
	fset.Uint64Var(&cfg.Seed, "seed", uint64(GetEnvInt("BATTLESTAR_SEED", 0)), "color RNG seed (0 = time based)")
	fset.StringVar(&cfg.ConstantsFile, "constants", GetEnv("BATTLESTAR_CONSTANTS", ""), "JSON file overriding physics constants")
	fset.StringVar(&cfg.AnalyticsDB, "analytics-db", GetEnv("BATTLESTAR_ANALYTICS_DB", ""), "SQLite file for analytics (empty disables)")
	fset.StringVar(&cfg.LogLevel, "log-level", GetEnv("BATTLESTAR_LOG_LEVEL", "info"), "debug, info, warn or error")
	fset.IntVar(&cfg.MaxConnsPerIP, "max-conns-per-ip", GetEnvInt("BATTLESTAR_MAX_CONNS_PER_IP", 5), "connections allowed per remote IP")
	fset.IntVar(&cfg.MaxConns, "max-conns", GetEnvInt("BATTLESTAR_MAX_CONNS", 1000), "total connections allowed")
	fset.BoolVar(&cfg.PrintQR, "qr", GetEnvBool("BATTLESTAR_QR", false), "print a QR code of the join URL")

	if err := fset.Parse(args); err != nil {
		return Config{}, errors.Wrap(err, "parse flags")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func GetEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(GetEnv(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(GetEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(GetEnv(key, "")); err == nil {
		return v
	}
	return fallback
}
