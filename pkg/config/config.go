package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Protocols the liquidity service can be asked for. Matches the tagged
// liquidity kinds on the wire.
var knownProtocols = map[string]struct{}{
	"constantProduct":       {},
	"weightedProduct":       {},
	"stable":                {},
	"concentratedLiquidity": {},
	"erc4626":               {},
}

// Config holds all application configuration. It is loaded once at
// process start and never hot-reloaded.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Routing
	BaseTokens   []common.Address
	MaxHops      int
	FillAttempts int
	MinFillRatio float64

	// Liquidity service
	LiquidityURL     string
	LiquidityTimeout time.Duration
	LiquidityRetries int
	Protocols        []string
	CacheTTL         time.Duration

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	baseTokens, err := getAddressListOrDefault("BASE_TOKENS", []string{
		"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", // USDC
		"0x6B175474E89094C44Da98b954EedeAC495271d0F", // DAI
	})
	if err != nil {
		return nil, fmt.Errorf("parse BASE_TOKENS: %w", err)
	}

	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Routing defaults
		BaseTokens:   baseTokens,
		MaxHops:      getIntOrDefault("MAX_HOPS", 2),
		FillAttempts: getIntOrDefault("FILL_ATTEMPTS", 3),
		MinFillRatio: getFloat64OrDefault("MIN_FILL_RATIO", 0.1),

		// Liquidity service defaults. An empty URL disables independent
		// fetching; only embedded liquidity is used then.
		LiquidityURL:     os.Getenv("LIQUIDITY_SERVICE_URL"),
		LiquidityTimeout: getDurationOrDefault("LIQUIDITY_TIMEOUT", 10*time.Second),
		LiquidityRetries: getIntOrDefault("LIQUIDITY_RETRIES", 2),
		Protocols:        getStringListOrDefault("PROTOCOLS", []string{"constantProduct", "weightedProduct", "stable", "concentratedLiquidity", "erc4626"}),
		CacheTTL:         getDurationOrDefault("LIQUIDITY_CACHE_TTL", 2*time.Minute),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "solver"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "solver123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "solver"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if len(c.BaseTokens) == 0 {
		return fmt.Errorf("BASE_TOKENS cannot be empty")
	}

	if c.MaxHops < 0 || c.MaxHops > 3 {
		return fmt.Errorf("MAX_HOPS must be between 0 and 3, got %d", c.MaxHops)
	}

	if c.FillAttempts < 1 {
		return fmt.Errorf("FILL_ATTEMPTS must be at least 1, got %d", c.FillAttempts)
	}

	if c.MinFillRatio < 0 || c.MinFillRatio >= 1.0 {
		return fmt.Errorf("MIN_FILL_RATIO must be in [0, 1.0), got %f", c.MinFillRatio)
	}

	for _, protocol := range c.Protocols {
		if _, ok := knownProtocols[protocol]; !ok {
			return fmt.Errorf("unknown protocol %q in PROTOCOLS", protocol)
		}
	}

	if c.StorageMode != "console" && c.StorageMode != "postgres" {
		return fmt.Errorf("STORAGE_MODE must be 'console' or 'postgres', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getStringListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			list = append(list, part)
		}
	}
	return list
}

func getAddressListOrDefault(key string, defaultValue []string) ([]common.Address, error) {
	raw := getStringListOrDefault(key, defaultValue)

	addrs := make([]common.Address, 0, len(raw))
	for _, s := range raw {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		addrs = append(addrs, common.HexToAddress(s))
	}
	return addrs, nil
}
