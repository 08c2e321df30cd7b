package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port      string `mapstructure:"PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	ClientURL string `mapstructure:"CLIENT_URL"`

	// SessionSecret signs the client cookie. When empty a random key is
	// generated at startup and client ids do not survive a restart.
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	// Web app configuration, the same seven keys the browser SDK needs.
	FirebaseAPIKey            string `mapstructure:"FIREBASE_API_KEY"`
	FirebaseAuthDomain        string `mapstructure:"FIREBASE_AUTH_DOMAIN"`
	FirebaseDatabaseURL       string `mapstructure:"FIREBASE_DATABASE_URL"`
	FirebaseProjectID         string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseStorageBucket     string `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	FirebaseMessagingSenderID string `mapstructure:"FIREBASE_MESSAGING_SENDER_ID"`
	FirebaseAppID             string `mapstructure:"FIREBASE_APP_ID"`

	// Admin SDK credentials. Optional: without them photo upload, account
	// sync and the audit trail are disabled.
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	AuditEnabled                     bool   `mapstructure:"AUDIT_ENABLED"`

	// IdentityBaseURL overrides the Identity Toolkit endpoint (emulator, tests).
	IdentityBaseURL string        `mapstructure:"IDENTITY_BASE_URL"`
	RemoteTimeout   time.Duration `mapstructure:"REMOTE_TIMEOUT"`

	// Preference storage. An empty RedisAddr keeps preferences in memory.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
}

const defaultIdentityBaseURL = "https://identitytoolkit.googleapis.com/v1"

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"CLIENT_URL",
	"SESSION_SECRET",
	"FIREBASE_API_KEY",
	"FIREBASE_AUTH_DOMAIN",
	"FIREBASE_DATABASE_URL",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_STORAGE_BUCKET",
	"FIREBASE_MESSAGING_SENDER_ID",
	"FIREBASE_APP_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"AUDIT_ENABLED",
	"IDENTITY_BASE_URL",
	"REMOTE_TIMEOUT",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"REDIS_DB",
}

// LoadConfig loads configuration from environment variables using Viper.
// Outside release mode a .env file in the working directory is loaded first.
func LoadConfig() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		// A missing .env is normal in containers.
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CLIENT_URL", "http://localhost:5173")
	v.SetDefault("IDENTITY_BASE_URL", defaultIdentityBaseURL)
	v.SetDefault("REMOTE_TIMEOUT", "15s")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("AUDIT_ENABLED", false)

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.New("failed to bind env " + key + ": " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if cfg.RemoteTimeout <= 0 {
		return nil, errors.New("REMOTE_TIMEOUT must be positive")
	}
	cfg.FirebaseDatabaseURL = strings.TrimSuffix(cfg.FirebaseDatabaseURL, "/")
	cfg.IdentityBaseURL = strings.TrimSuffix(cfg.IdentityBaseURL, "/")

	return &cfg, nil
}

// MissingWebConfig lists the web app keys that are empty. A non-empty result
// blocks signup and is surfaced to the UI as a banner.
func (c *Config) MissingWebConfig() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"apiKey", c.FirebaseAPIKey},
		{"authDomain", c.FirebaseAuthDomain},
		{"databaseURL", c.FirebaseDatabaseURL},
		{"projectId", c.FirebaseProjectID},
		{"storageBucket", c.FirebaseStorageBucket},
		{"messagingSenderId", c.FirebaseMessagingSenderID},
		{"appId", c.FirebaseAppID},
	}
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// HasAdminCredentials reports whether the Admin SDK can be initialized with
// explicit credentials.
func (c *Config) HasAdminCredentials() bool {
	return c.GoogleApplicationCredentials != "" || c.FirebaseServiceAccountJSONBase64 != ""
}
