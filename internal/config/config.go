// Package config resolves notedeck's settings from (in order of precedence)
// NOTEDECK_* environment variables, ~/.notedeck/config.yaml, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Config struct {
	// DataDir holds the sqlite database and the attachment tree.
	DataDir string `mapstructure:"data_dir"`
	// DefaultColor is applied to new notes and folders when none is given.
	DefaultColor string `mapstructure:"default_color"`
}

func defaultDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".notedeck"), nil
}

// Load reads the config. A missing config file is fine; defaults apply.
func Load() (*Config, error) {
	dir, err := defaultDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("notedeck")
	v.AutomaticEnv()

	v.SetDefault("data_dir", dir)
	v.SetDefault("default_color", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// WriteDefault writes a starter config.yaml under the home config dir unless
// one already exists, and returns its path.
func WriteDefault() (string, error) {
	dir, err := defaultDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	v := viper.New()
	v.Set("data_dir", dir)
	v.Set("default_color", "")
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
