// Package config provides persistent configuration for the jadwal-shalat CLI.
//
// Configuration is stored as JSON at ~/.config/jadwal-shalat/config.json
// (XDG-compliant). Comments and trailing commas are allowed in the file.
// The merge priority is: CLI flags > environment > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/tidwall/jsonc"
)

const (
	configDirName  = "jadwal-shalat"
	configFileName = "config.json"

	// EnvPrefix prefixes every environment variable read by LoadEnv.
	EnvPrefix = "JADWAL_SHALAT"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"province", "regency",
	"time_format",
	"format",
	"cache_dir",
}

// Config holds all user-configurable settings.
// Zero values mean "not set".
type Config struct {
	Province   string `json:"province,omitempty"`
	Regency    string `json:"regency,omitempty"`
	TimeFormat string `json:"time_format,omitempty" validate:"omitempty,oneof=12h 24h"`
	Format     string `json:"format,omitempty"` // display mode of the next command
	CacheDir   string `json:"cache_dir,omitempty"`
}

// Env holds the settings that can come from the environment.
type Env struct {
	Province string `envconfig:"PROVINCE"`
	Regency  string `envconfig:"REGENCY"`
	CacheDir string `envconfig:"CACHE_DIR"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		TimeFormat: "24h",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field values that have a fixed set of choices.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s %q: must be one of %s", jsonName(fe.Field()), fe.Value(), fe.Param())
		}
		return err
	}
	return nil
}

func jsonName(field string) string {
	switch field {
	case "TimeFormat":
		return "time_format"
	default:
		return strings.ToLower(field)
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadEnv reads JADWAL_SHALAT_* variables. A .env file in the working
// directory is loaded first if present; variables already set in the
// process environment win over the file.
func LoadEnv() (Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Env{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, fmt.Errorf("invalid environment: %w", err)
	}
	return env, nil
}

// Apply overlays the non-empty environment values onto c.
func (e Env) Apply(c *Config) {
	if e.Province != "" {
		c.Province = e.Province
	}
	if e.Regency != "" {
		c.Regency = e.Regency
	}
	if e.CacheDir != "" {
		c.CacheDir = e.CacheDir
	}
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and the value.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "province":
		next.Province = strings.ToUpper(value)
	case "regency":
		next.Regency = strings.ToUpper(value)
	case "time_format":
		next.TimeFormat = value
	case "format":
		next.Format = value
	case "cache_dir":
		next.CacheDir = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "province":
		return c.Province, nil
	case "regency":
		return c.Regency, nil
	case "time_format":
		return c.TimeFormat, nil
	case "format":
		return c.Format, nil
	case "cache_dir":
		return c.CacheDir, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}
