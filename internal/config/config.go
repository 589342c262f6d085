package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Bundled zone database so configured timezones resolve on hosts
	// without system tzdata.
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/backstory/config.yaml"

var validate = validator.New()

// Config holds all Backstory configuration.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Server    ServerConfig    `yaml:"server"`
	Flows     FlowsConfig     `yaml:"flows"`
}

// GeneratorConfig controls the generation window and timestamp handling.
type GeneratorConfig struct {
	Timezone     string `yaml:"timezone" validate:"required"`
	DefaultWeeks int    `yaml:"default_weeks" validate:"min=1,max=52"`
	KeywordID    int    `yaml:"keyword_id" validate:"min=1"`
}

// ServerConfig controls the HTTP download server.
type ServerConfig struct {
	Host            string `yaml:"host" validate:"required"`
	Port            int    `yaml:"port" validate:"min=1,max=65535"`
	MaxPreviewLimit int    `yaml:"max_preview_limit" validate:"min=1"`
}

// FlowsConfig overrides the built-in content pools. An empty topic list
// keeps the defaults.
type FlowsConfig struct {
	SearchTopics []string `yaml:"search_topics"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read, contains invalid YAML, or
// fails validation.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints and that the timezone resolves.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if _, err := time.LoadLocation(c.Generator.Timezone); err != nil {
		return fmt.Errorf("resolving timezone %q: %w", c.Generator.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Call Validate first; an
// unresolvable zone falls back to UTC here.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Generator.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
