// Package config loads tada's settings.
//
// Sources, lowest priority first:
//  1. Defaults
//  2. Config file (~/.tada/config.toml, or the --config path)
//  3. Environment variables (TADA_BASE_URL, TADA_LOG_LEVEL, ...)
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

const (
	// FileName is the config file looked up in the tada home directory.
	FileName = "config.toml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TADA"

	DefaultBaseURL = "https://dummyjson.com"
	DefaultOwnerID = 1
)

// Config is the effective configuration.
type Config struct {
	// BaseURL is the collection endpoint root; /todos is appended.
	BaseURL string `mapstructure:"base_url"`
	// OwnerID is sent as userId on create.
	OwnerID int `mapstructure:"owner_id"`
	// HTTPTimeout bounds each request. Zero leaves the transport default.
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	LogLevel string `mapstructure:"log_level"`
	// LogFile is the log destination; "-" means stderr, "" the default file.
	LogFile string `mapstructure:"log_file"`
	Theme   string `mapstructure:"theme"`

	// RefreshAfterWrite reloads the canonical list after each successful write.
	RefreshAfterWrite bool `mapstructure:"refresh_after_write"`
	// ConfirmDelete asks before every delete.
	ConfirmDelete bool `mapstructure:"confirm_delete"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		OwnerID:           DefaultOwnerID,
		HTTPTimeout:       0,
		LogLevel:          "info",
		LogFile:           "",
		Theme:             "classic",
		RefreshAfterWrite: true,
		ConfirmDelete:     true,
	}
}

// SetDefaults registers defaults on v. Every key must have a default so
// AutomaticEnv can see it during Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("owner_id", d.OwnerID)
	v.SetDefault("http_timeout", d.HTTPTimeout.String())
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("refresh_after_write", d.RefreshAfterWrite)
	v.SetDefault("confirm_delete", d.ConfirmDelete)
}

// Load reads configuration. An empty path searches the tada home
// directory and tolerates a missing file; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("toml")
		if dir, err := jsonstore.Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url: scheme must be http or https, got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url: missing host in %q", c.BaseURL)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout: must not be negative")
	}
	return nil
}

// fileView is the on-disk shape; durations are written as strings.
type fileView struct {
	BaseURL           string `toml:"base_url"`
	OwnerID           int    `toml:"owner_id"`
	HTTPTimeout       string `toml:"http_timeout"`
	LogLevel          string `toml:"log_level"`
	LogFile           string `toml:"log_file"`
	Theme             string `toml:"theme"`
	RefreshAfterWrite bool   `toml:"refresh_after_write"`
	ConfirmDelete     bool   `toml:"confirm_delete"`
}

func (c Config) view() fileView {
	return fileView{
		BaseURL:           c.BaseURL,
		OwnerID:           c.OwnerID,
		HTTPTimeout:       c.HTTPTimeout.String(),
		LogLevel:          c.LogLevel,
		LogFile:           c.LogFile,
		Theme:             c.Theme,
		RefreshAfterWrite: c.RefreshAfterWrite,
		ConfirmDelete:     c.ConfirmDelete,
	}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c.view()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// DefaultPath returns ~/.tada/config.toml.
func DefaultPath() (string, error) {
	return jsonstore.Path(FileName)
}

// WriteDefault creates a config file with the defaults at path. It refuses
// to overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if _, err := io.WriteString(f, "# tada configuration\n# Every key can be overridden with TADA_<KEY>.\n\n"); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return Defaults().Encode(f)
}
