package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"locale": "zh",
		"mode": "realistic",
		"max_input_bytes": 4096,
		"lenient_repair": true,
		"max_retries": 3,
		"port": 9090,
		"log_format": "json"
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "zh", cfg.Locale)
	assert.Equal(t, "realistic", cfg.Mode)
	assert.Equal(t, 4096, cfg.MaxInputBytes)
	assert.True(t, cfg.LenientRepair)
	assert.False(t, cfg.StrictStructure)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		errPart string
	}{
		{name: "empty is valid", cfg: Config{}},
		{name: "mutually exclusive", cfg: Config{Locale: "en", ProfilePath: "p.yaml"}, errPart: "mutually exclusive"},
		{name: "unknown locale", cfg: Config{Locale: "xx"}, errPart: "unknown locale"},
		{name: "missing profile file", cfg: Config{ProfilePath: "/nonexistent/profile.yaml"}, errPart: "profile file not found"},
		{name: "unknown mode", cfg: Config{Mode: "arcade"}, errPart: "unknown mode"},
		{name: "negative input limit", cfg: Config{MaxInputBytes: -1}, errPart: "max_input_bytes"},
		{name: "negative retries", cfg: Config{MaxRetries: -1}, errPart: "max_retries"},
		{name: "port out of range", cfg: Config{Port: 70000}, errPart: "port"},
		{name: "bad log format", cfg: Config{LogFormat: "xml"}, errPart: "log_format"},
		{name: "bad log level", cfg: Config{LogLevel: "loud"}, errPart: "log_level"},
		{name: "client id not uuid", cfg: Config{Clients: map[string]string{"bob": "$2a$10$x"}}, errPart: "not a UUID"},
		{name: "client secret not hashed", cfg: Config{Clients: map[string]string{"550e8400-e29b-41d4-a716-446655440000": "plain"}}, errPart: "bcrypt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errPart == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{Mode: "realistic", Port: 9000}

	merged := cfg.MergeWithDefaults(Builtin())

	assert.Equal(t, "realistic", merged.Mode)
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, DefaultLocale, merged.Locale)
	assert.Equal(t, DefaultMaxRetries, merged.MaxRetries)
	assert.Equal(t, DefaultLogFormat, merged.LogFormat)
	// The original is untouched.
	assert.Empty(t, cfg.Locale)
}

func TestMergeWithDefaults_ProfilePathKeepsLocaleEmpty(t *testing.T) {
	cfg := &Config{ProfilePath: "custom.yaml"}

	merged := cfg.MergeWithDefaults(Builtin())
	assert.Empty(t, merged.Locale)
	assert.Equal(t, "custom.yaml", merged.ProfilePath)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := FromEnv()
	assert.Equal(t, "key-123", cfg.APIKey)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)

	t.Setenv("PORT", "not-a-number")
	assert.Equal(t, 0, FromEnv().Port)
}

func TestProfile(t *testing.T) {
	cfg := Builtin()
	p, err := cfg.Profile()
	require.NoError(t, err)
	assert.Equal(t, "en", p.Name)
}
