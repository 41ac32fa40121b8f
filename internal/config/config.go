// Package config assembles the application configuration from two sources:
// service credentials from environment variables and optional tuning from a
// YAML settings file. Credentials never live in files; tuning never lives
// in the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/textlens/textlens/internal/overlay"
)

// Credential environment variables. Each remote service gets its own
// endpoint and key pair. The indexer pair is optional; without it the
// video endpoints are disabled.
const (
	EnvVisionEndpoint   = "VISION_ENDPOINT"
	EnvVisionKey        = "VISION_KEY"
	EnvLanguageEndpoint = "LANGUAGE_ENDPOINT"
	EnvLanguageKey      = "LANGUAGE_KEY"
	EnvIndexerEndpoint  = "INDEXER_ENDPOINT"
	EnvIndexerKey       = "INDEXER_KEY"
)

// ServerSettings tune the HTTP server.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// LogDir enables file logging when non-empty.
	LogDir string `yaml:"log_dir"`

	// Debug enables debug-level log output.
	Debug bool `yaml:"debug"`
}

// VisionSettings tune the text recognition client.
type VisionSettings struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (v VisionSettings) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

// LanguageSettings tune the sentiment client.
type LanguageSettings struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Hint is the ISO 639-1 language hint sent with every document.
	Hint string `yaml:"hint"`
}

// Timeout returns the request timeout as a duration.
func (l LanguageSettings) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// IndexerSettings tune the video indexing client.
type IndexerSettings struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	PollSeconds    int `yaml:"poll_seconds"`
}

// Timeout returns the request timeout as a duration.
func (i IndexerSettings) Timeout() time.Duration {
	return time.Duration(i.TimeoutSeconds) * time.Second
}

// PollInterval returns the index polling interval as a duration.
func (i IndexerSettings) PollInterval() time.Duration {
	return time.Duration(i.PollSeconds) * time.Second
}

// Settings holds all tunable behavior. Every field has a default, so the
// settings file is optional and may be partial.
type Settings struct {
	Server   ServerSettings   `yaml:"server"`
	Vision   VisionSettings   `yaml:"vision"`
	Language LanguageSettings `yaml:"language"`
	Indexer  IndexerSettings  `yaml:"indexer"`
	Overlay  overlay.Options  `yaml:"overlay"`
}

// DefaultSettings returns the built-in tuning defaults.
func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Addr: ":8080"},
		Vision:   VisionSettings{TimeoutSeconds: 30},
		Language: LanguageSettings{TimeoutSeconds: 30, Hint: "en"},
		Indexer:  IndexerSettings{TimeoutSeconds: 120, PollSeconds: 10},
		Overlay:  overlay.DefaultOptions(),
	}
}

// Config carries everything needed to construct the application's
// collaborators.
type Config struct {
	VisionEndpoint   string
	VisionKey        string
	LanguageEndpoint string
	LanguageKey      string
	IndexerEndpoint  string
	IndexerKey       string

	Settings Settings
}

// HasIndexer reports whether video indexing credentials are configured.
func (c *Config) HasIndexer() bool {
	return c.IndexerEndpoint != ""
}

// Load reads credentials from the environment and, when settingsPath is
// non-empty, tuning from a YAML file applied on top of the defaults.
//
// The vision and language variables are required; an empty value counts
// as missing. Load reports every missing variable at once instead of
// failing on the first, so a fresh deployment can be fixed in one pass.
// The indexer pair is optional, but setting only one of the two is an
// error.
func Load(settingsPath string) (*Config, error) {
	cfg := &Config{
		VisionEndpoint:   os.Getenv(EnvVisionEndpoint),
		VisionKey:        os.Getenv(EnvVisionKey),
		LanguageEndpoint: os.Getenv(EnvLanguageEndpoint),
		LanguageKey:      os.Getenv(EnvLanguageKey),
		IndexerEndpoint:  os.Getenv(EnvIndexerEndpoint),
		IndexerKey:       os.Getenv(EnvIndexerKey),
		Settings:         DefaultSettings(),
	}

	var missing []string
	for _, v := range []struct {
		name  string
		value string
	}{
		{EnvVisionEndpoint, cfg.VisionEndpoint},
		{EnvVisionKey, cfg.VisionKey},
		{EnvLanguageEndpoint, cfg.LanguageEndpoint},
		{EnvLanguageKey, cfg.LanguageKey},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if (cfg.IndexerEndpoint == "") != (cfg.IndexerKey == "") {
		return nil, fmt.Errorf("%s and %s must be set together", EnvIndexerEndpoint, EnvIndexerKey)
	}

	if settingsPath != "" {
		if err := loadSettings(settingsPath, &cfg.Settings); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// loadSettings decodes a YAML settings file over the current values, so
// absent fields keep their defaults. An empty file is valid.
func loadSettings(path string, s *Settings) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open settings file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return nil
}
