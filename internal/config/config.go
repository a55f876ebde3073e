package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DriverSQLite selects the embedded SQLite backend.
	DriverSQLite = "sqlite"
	// DriverPostgres selects the PostgreSQL backend.
	DriverPostgres = "postgres"
)

// Config holds runtime configuration values for the store.
type Config struct {
	AppName        string
	AppEnv         string
	LogLevel       string
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string
	SeedDemo       bool
	AdminContact   string
	AdminPassword  string
}

// Load reads configuration values from environment variables and an
// optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUNEXUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduNexus Store")
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("sqlite.path", "edunexus.db")
	v.SetDefault("seed.demo", false)
	v.SetDefault("admin.contact", "admin")
	v.SetDefault("admin.password", "admin")

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		LogLevel:       v.GetString("log.level"),
		DatabaseDriver: strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:    v.GetString("database.url"),
		SQLitePath:     v.GetString("sqlite.path"),
		SeedDemo:       v.GetBool("seed.demo"),
		AdminContact:   v.GetString("admin.contact"),
		AdminPassword:  v.GetString("admin.password"),
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return Config{}, fmt.Errorf("sqlite path must be provided")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database url must be provided for postgres")
		}
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}
