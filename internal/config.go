package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Library   LibraryConfig     `yaml:"library"`
	Documents DocumentsConfig   `yaml:"documents"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Events    EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.Documents.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
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

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LibraryConfig points at the directory of documents.
type LibraryConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

var extensionRe = regexp.MustCompile(`^\.?[A-Za-z0-9]+$`)

// DocumentsConfig controls how documents are recognised and created.
type DocumentsConfig struct {
	// Extension of document files, with or without the leading dot.
	Extension string `yaml:"extension"`
	// DefaultTOC gives newly created documents a Table of Contents.
	DefaultTOC bool `yaml:"default_toc"`
}

// Validate validates the documents configuration.
func (c *DocumentsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Extension, validation.Required, validation.Match(extensionRe)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// EventsConfig tunes the SSE stream.
type EventsConfig struct {
	OutlineThrottle time.Duration `yaml:"outline_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OutlineThrottle, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
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
		Library: LibraryConfig{
			Path:  "./library",
			Watch: true,
		},
		Documents: DocumentsConfig{
			Extension: ".md",
		},
		SQLite: SQLiteConfig{
			Path: "./folio.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Events: EventsConfig{
			OutlineThrottle: 2 * time.Second,
		},
	}
}
