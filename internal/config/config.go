package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBankName       = "LukasaBank"
	defaultStoreName      = "LukasaStore"
	defaultBankPort       = "8080"
	defaultStorePort      = "8081"
	defaultLogLevel       = "info"
	defaultWalletsFile    = "-"
	defaultMaxWorkers     = 10
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
)

// Bank captures the bank daemon's runtime configuration, loaded from
// environment variables.
type Bank struct {
	AppName        string
	Port           string
	LogLevel       string
	WalletsFile    string // "-" reads the bulk wallet load from stdin
	DatabaseURL    string // empty selects the in-memory ledger backend
	MaxWorkers     int
	ShutdownPeriod time.Duration
}

// Store captures the store daemon's runtime configuration.
type Store struct {
	AppName        string
	Port           string
	LogLevel       string
	Price          int64
	SellerWallet   string
	BankURL        string
	RedisURL       string // empty disables the idempotency middleware
	IdempotencyTTL time.Duration
	MaxWorkers     int
	ShutdownPeriod time.Duration
}

// LoadBank reads the bank configuration from the environment.
func LoadBank() (Bank, error) {
	cfg := Bank{
		AppName:     getEnv("APP_NAME", defaultBankName),
		Port:        getEnv("PORT", defaultBankPort),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		WalletsFile: getEnv("WALLETS_FILE", defaultWalletsFile),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	var err error
	if cfg.MaxWorkers, err = intEnv("MAX_WORKERS", defaultMaxWorkers); err != nil {
		return Bank{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Bank{}, err
	}
	return cfg, nil
}

// LoadStore reads the store configuration from the environment. PRICE,
// SELLER_WALLET and BANK_URL are required.
func LoadStore() (Store, error) {
	cfg := Store{
		AppName:      getEnv("APP_NAME", defaultStoreName),
		Port:         getEnv("PORT", defaultStorePort),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		SellerWallet: os.Getenv("SELLER_WALLET"),
		BankURL:      os.Getenv("BANK_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
	}

	priceRaw := os.Getenv("PRICE")
	if priceRaw == "" {
		return Store{}, fmt.Errorf("PRICE must be set")
	}
	price, err := strconv.ParseInt(priceRaw, 10, 64)
	if err != nil {
		return Store{}, fmt.Errorf("invalid PRICE: %w", err)
	}
	if price <= 0 {
		return Store{}, fmt.Errorf("PRICE must be positive, got %d", price)
	}
	cfg.Price = price

	if cfg.SellerWallet == "" {
		return Store{}, fmt.Errorf("SELLER_WALLET must be set")
	}
	if cfg.BankURL == "" {
		return Store{}, fmt.Errorf("BANK_URL must be set")
	}

	if cfg.MaxWorkers, err = intEnv("MAX_WORKERS", defaultMaxWorkers); err != nil {
		return Store{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Store{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Store{}, err
	}
	return cfg, nil
}

// Address returns the bank's listen address in the format Fiber expects.
func (c Bank) Address() string { return address(c.Port) }

// Address returns the store's listen address in the format Fiber expects.
func (c Store) Address() string { return address(c.Port) }

func address(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
