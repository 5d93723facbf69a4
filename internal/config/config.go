// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
)

// Defaults applied by MergeWithDefaults when neither the file nor the flags set a value.
const (
	DefaultLocale     = "en"
	DefaultMode       = string(types.ModeClassic)
	DefaultPort       = 8080
	DefaultMaxRetries = 2
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Locale
	Locale      string `json:"locale,omitempty"`       // Built-in profile name (en, zh)
	ProfilePath string `json:"profile_path,omitempty"` // Path to a YAML or JSON locale profile
	Mode        string `json:"mode,omitempty"`         // classic or realistic

	// Engine
	MaxInputBytes   int  `json:"max_input_bytes,omitempty"`  // Upper bound on raw text size
	StrictStructure bool `json:"strict_structure,omitempty"` // Fail instead of degrading on unparsable blocks
	LenientRepair   bool `json:"lenient_repair,omitempty"`   // Try the general-purpose JSON repairer
	NumberedOptions bool `json:"numbered_options,omitempty"` // Recover "1. ..." choice lists from prose

	// Upstream model
	APIKey     string `json:"api_key,omitempty"`     // Gemini API key
	Model      string `json:"model,omitempty"`       // Overrides the standard tier model
	MaxRetries int    `json:"max_retries,omitempty"` // Regenerations after content that is too short

	// Server
	Port int `json:"port,omitempty"`
	// Clients maps a client UUID to the bcrypt hash of its secret. Used to
	// issue API tokens; empty disables token issuance.
	Clients map[string]string `json:"clients,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"` // text or json
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns the values set through environment variables:
// GEMINI_API_KEY, GEMINI_MODEL, PORT, LOG_LEVEL and LOG_FORMAT.
func FromEnv() Config {
	cfg := Config{
		APIKey:    os.Getenv("GEMINI_API_KEY"),
		Model:     os.Getenv("GEMINI_MODEL"),
		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: os.Getenv("LOG_FORMAT"),
	}
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Port = port
	}
	return cfg
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Locale != "" && c.ProfilePath != "" {
		return fmt.Errorf("config error: 'locale' and 'profile_path' are mutually exclusive")
	}
	if c.Locale != "" {
		if _, err := locale.Preset(c.Locale); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.ProfilePath != "" {
		if _, err := os.Stat(c.ProfilePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: profile file not found: %s", c.ProfilePath)
		}
	}
	if c.Mode != "" {
		if _, err := types.ParseMode(c.Mode); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	if c.MaxInputBytes < 0 {
		return fmt.Errorf("config error: 'max_input_bytes' must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config error: 'log_format' must be text or json, got %q", c.LogFormat)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
	}

	for id, hash := range c.Clients {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("config error: client id %q is not a UUID", id)
		}
		if !strings.HasPrefix(hash, "$2") {
			return fmt.Errorf("config error: secret for client %s is not a bcrypt hash", id)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Locale == "" && result.ProfilePath == "" {
		result.Locale = defaults.Locale
		result.ProfilePath = defaults.ProfilePath
	}
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Int fields: use default if zero
	if result.MaxInputBytes == 0 {
		result.MaxInputBytes = defaults.MaxInputBytes
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	if len(result.Clients) == 0 {
		result.Clients = defaults.Clients
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Builtin returns the last-resort defaults.
func Builtin() Config {
	return Config{
		Locale:     DefaultLocale,
		Mode:       DefaultMode,
		Port:       DefaultPort,
		MaxRetries: DefaultMaxRetries,
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
	}
}

// Profile resolves the configured locale profile.
func (c *Config) Profile() (*locale.Profile, error) {
	return locale.Resolve(c.Locale, c.ProfilePath)
}
