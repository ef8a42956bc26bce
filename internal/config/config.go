// Package config loads service configuration from the environment, with
// command-line flags taking precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/bps"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/swapfee"
)

// Config is the service configuration.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration
	Migrate     bool

	LogFormat string // "json" or "text"
	LogLevel  string // "debug", "info", "warn", "error"

	// PlatformFeeBps is the launchpad's cut of every raise.
	PlatformFeeBps uint32

	// SwapFees is the pool fee configuration used when a quote request
	// does not carry its own.
	SwapFees swapfee.Config
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:           "8080",
		CacheTTL:       30 * time.Second,
		Migrate:        true,
		LogFormat:      "json",
		LogLevel:       "info",
		PlatformFeeBps: 500,
		SwapFees: swapfee.Config{
			TradingFeeBps:  25,
			ProtocolFeeBps: 5,
			Denominator:    bps.Denominator,
		},
	}
}

// Load reads the environment on top of Default.
func Load() (Config, error) {
	cfg := Default()

	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}
	if v := os.Getenv("MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("MIGRATE: %w", err)
		}
		cfg.Migrate = b
	}

	uints := []struct {
		env  string
		dest *uint64
	}{
		{"SWAP_TRADING_FEE_BPS", &cfg.SwapFees.TradingFeeBps},
		{"SWAP_PROTOCOL_FEE_BPS", &cfg.SwapFees.ProtocolFeeBps},
		{"SWAP_FEE_DENOMINATOR", &cfg.SwapFees.Denominator},
	}
	for _, u := range uints {
		if v := os.Getenv(u.env); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return cfg, fmt.Errorf("%s: %w", u.env, err)
			}
			*u.dest = n
		}
	}
	if v := os.Getenv("PLATFORM_FEE_BPS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return cfg, fmt.Errorf("PLATFORM_FEE_BPS: %w", err)
		}
		cfg.PlatformFeeBps = uint32(n)
	}

	return cfg, cfg.Validate()
}

// BindFlags registers flags defaulting to the current values, so flags
// given on the command line override the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Port, "port", c.Port, "HTTP listen port (or set PORT env var)")
	fs.StringVar(&c.DatabaseURL, "database-url", c.DatabaseURL, "PostgreSQL URL; empty uses the in-memory store (or set DATABASE_URL env var)")
	fs.StringVar(&c.RedisURL, "redis-url", c.RedisURL, "Redis URL for the read-through cache (or set REDIS_URL env var)")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "Redis cache TTL (or set CACHE_TTL env var)")
	fs.BoolVar(&c.Migrate, "migrate", c.Migrate, "Apply PostgreSQL migrations on startup (or set MIGRATE env var)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format: json or text (or set LOG_FORMAT env var)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (or set LOG_LEVEL env var)")
	fs.Uint32Var(&c.PlatformFeeBps, "platform-fee-bps", c.PlatformFeeBps, "Platform fee in basis points (or set PLATFORM_FEE_BPS env var)")
	fs.Uint64Var(&c.SwapFees.TradingFeeBps, "swap-trading-fee-bps", c.SwapFees.TradingFeeBps, "Default pool trading fee")
	fs.Uint64Var(&c.SwapFees.ProtocolFeeBps, "swap-protocol-fee-bps", c.SwapFees.ProtocolFeeBps, "Default pool protocol fee")
	fs.Uint64Var(&c.SwapFees.Denominator, "swap-fee-denominator", c.SwapFees.Denominator, "Default pool fee denominator")
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if !bps.Rate(c.PlatformFeeBps).Valid() {
		return fmt.Errorf("platform fee: %w: %d", bps.ErrOutOfRange, c.PlatformFeeBps)
	}
	if err := c.SwapFees.Validate(); err != nil {
		return fmt.Errorf("swap fees: %w", err)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log format %q: expected json or text", c.LogFormat)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// PlatformFee is PlatformFeeBps as a rate.
func (c Config) PlatformFee() bps.Rate {
	return bps.Rate(c.PlatformFeeBps)
}

func setString(dest *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dest = v
	}
}
