// Package config loads gca configuration from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved application configuration. It is materialized once
// per run and passed around by value semantics; nothing mutates it afterwards.
type Config struct {
	APIKey          string  `mapstructure:"api_key"`
	APIBase         string  `mapstructure:"api_base"`
	Model           string  `mapstructure:"model"`
	ReviewModel     string  `mapstructure:"review_model"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	ReviewMaxTokens int     `mapstructure:"review_max_tokens"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
}

const (
	DefaultModel           = "gpt-4o-mini"
	DefaultReviewModel     = "gpt-4o"
	DefaultTemperature     = 0.7
	DefaultMaxTokens       = 300
	DefaultReviewMaxTokens = 2048
	DefaultTimeoutSeconds  = 30
	DefaultConfigName      = ".gca"

	// EnvPrefix makes every key overridable as GCA_<KEY>, e.g. GCA_API_KEY,
	// GCA_MODEL, GCA_REVIEW_MODEL.
	EnvPrefix = "GCA"
)

// InitConfig wires viper to the config file (explicit path or $HOME/.gca.yaml)
// and the GCA_* environment. A missing config file is not an error; the
// environment and defaults are enough to run.
func InitConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("unable to locate home directory: %w", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(DefaultConfigName)
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("api_key", "")
	viper.SetDefault("api_base", "")
	viper.SetDefault("model", DefaultModel)
	viper.SetDefault("review_model", DefaultReviewModel)
	viper.SetDefault("temperature", DefaultTemperature)
	viper.SetDefault("max_tokens", DefaultMaxTokens)
	viper.SetDefault("review_max_tokens", DefaultReviewMaxTokens)
	viper.SetDefault("timeout_seconds", DefaultTimeoutSeconds)

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to read config file: %w", err)
	}
	return nil
}

// GetConfig unmarshals the current viper state into a Config.
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig persists the current viper state to the active config file.
func SaveConfig() error {
	if err := viper.WriteConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return homeErr
		}
		return viper.WriteConfigAs(filepath.Join(home, DefaultConfigName+".yaml"))
	}
	return nil
}

// Timeout returns the configured network timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ModelFor returns the model id for the requested mode.
func (c *Config) ModelFor(review bool) string {
	if review {
		return c.ReviewModel
	}
	return c.Model
}

// MaxTokensFor returns the output token budget for the requested mode.
func (c *Config) MaxTokensFor(review bool) int {
	if review {
		return c.ReviewMaxTokens
	}
	return c.MaxTokens
}
