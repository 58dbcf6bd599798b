// Package config loads the server configuration from defaults, an optional
// .env file, and COACHERP_-prefixed environment variables.
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the fully resolved server configuration.
type Config struct {
	ListenAddr string

	// OAuth client for the admin's Google account. Scope is limited to
	// files this application creates.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// DriveFileName is the well-known name of the remote state document.
	DriveFileName string

	// AdminPassword gates destructive dashboard actions. Only its bcrypt
	// hash is kept after startup.
	AdminPassword string

	JWTSecret string
	JWTTTL    time.Duration

	// SyncDebounce is the quiet period before a change push fires.
	SyncDebounce time.Duration

	// SeedData loads the starter dataset on a fresh start.
	SeedData bool
}

// Load resolves the configuration. A missing .env is fine; defaults keep a
// local dev run working out of the box.
func Load() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("listenAddr", ":8080")
	v.SetDefault("googleClientID", "")
	v.SetDefault("googleClientSecret", "")
	v.SetDefault("googleRedirectURL", "http://localhost:8080")
	v.SetDefault("driveFileName", "CoachERP_data.json")
	v.SetDefault("adminPassword", "5290")
	v.SetDefault("jwtSecret", "coacherp-dev-secret-change-me")
	v.SetDefault("jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("syncDebounce", 2*time.Second)
	v.SetDefault("seedData", true)

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Warn("Failed to load .env", "error", err)
		}
	}
	v.SetEnvPrefix("COACHERP")
	v.AutomaticEnv()

	return &Config{
		ListenAddr:         v.GetString("listenAddr"),
		GoogleClientID:     v.GetString("googleClientID"),
		GoogleClientSecret: v.GetString("googleClientSecret"),
		GoogleRedirectURL:  v.GetString("googleRedirectURL"),
		DriveFileName:      v.GetString("driveFileName"),
		AdminPassword:      v.GetString("adminPassword"),
		JWTSecret:          v.GetString("jwtSecret"),
		JWTTTL:             v.GetDuration("jwtExpirationDelta"),
		SyncDebounce:       v.GetDuration("syncDebounce"),
		SeedData:           v.GetBool("seedData"),
	}
}
