package config

import (
	"fmt"
	"os"
	"strings"

	"airledger-backend/internal/pkg/constants"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	StoreBackend        string
	DatabaseURL         string
	SQLitePath          string
	LevelDBPath         string
	RedisURL            string
	TreasuryIdentity    string // empty means the registry authority collects fees
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
	LogLevel            string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", constants.EnvDevelopment)
	v.SetDefault("STORE_BACKEND", constants.StoreSQLite)
	v.SetDefault("SQLITE_PATH", "airledger.db")
	v.SetDefault("LEVELDB_PATH", "data/ledger")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Env:                 strings.ToLower(v.GetString("APP_ENV")),
		Port:                v.GetString("PORT"),
		StoreBackend:        strings.ToLower(v.GetString("STORE_BACKEND")),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		SQLitePath:          v.GetString("SQLITE_PATH"),
		LevelDBPath:         v.GetString("LEVELDB_PATH"),
		RedisURL:            v.GetString("REDIS_URL"),
		TreasuryIdentity:    strings.TrimSpace(v.GetString("TREASURY_IDENTITY")),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		LogLevel:            v.GetString("LOG_LEVEL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations Load cannot default.
func (c *Config) Validate() error {
	if !constants.IsValidStoreBackend(c.StoreBackend) {
		return fmt.Errorf("config: STORE_BACKEND must be one of %s, got %q",
			strings.Join(constants.ValidStoreBackends, ", "), c.StoreBackend)
	}
	if c.StoreBackend == constants.StorePostgres && c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL is required for the postgres store")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == constants.EnvProduction }

// SetupLogging configures the global zerolog logger: JSON in production,
// console output elsewhere.
func SetupLogging(c *Config) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if c.IsProduction() {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
