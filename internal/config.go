package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeJWT      = "jwt"
)

// Store drivers.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMongo  = "mongo"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Store StoreConfig       `yaml:"store"`
	Auth  AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig selects and configures the record store driver.
type StoreConfig struct {
	Driver string       `yaml:"driver"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Mongo  MongoConfig  `yaml:"mongo"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(StoreDriverSQLite, StoreDriverMongo)),
	); err != nil {
		return err
	}
	switch c.Driver {
	case StoreDriverSQLite:
		return c.SQLite.Validate()
	case StoreDriverMongo:
		return c.Mongo.Validate()
	}
	return nil
}

// SQLiteConfig holds SQLite store configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MongoConfig holds MongoDB store configuration.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// Validate validates the MongoDB configuration.
func (c *MongoConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URI, validation.Required),
		validation.Field(&c.Database, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no token check, suitable for local dev.
//   - "jwt": bearer tokens are required on the protected routes; a signing
//     key must come from Secret (env-expanded in the YAML) or KeyFile.
//
// KeyFile takes precedence over Secret and is watched at runtime, so the
// signing key can be rotated without a restart.
type AuthConfig struct {
	Mode     string        `yaml:"mode"`
	Secret   string        `yaml:"secret"`
	KeyFile  string        `yaml:"key_file"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for local development.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 24 * time.Hour
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeJWT)),
		validation.Field(&c.TokenTTL, validation.Min(time.Minute)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeJWT && c.Secret == "" && c.KeyFile == "" {
		return fmt.Errorf("auth: mode is %q but neither secret nor key_file is set", AuthModeJWT)
	}
	return nil
}

// AuthEnabled returns true when token enforcement is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeJWT
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Driver: StoreDriverSQLite,
			SQLite: SQLiteConfig{
				Path: "./keepnote.db",
			},
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: "keepnote",
			},
		},
		Auth: AuthConfig{
			Mode:     AuthModeDisabled,
			TokenTTL: 24 * time.Hour,
		},
	}
}
