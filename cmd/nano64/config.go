package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sxyafiq/nano64"
)

const (
	envPrefix      = "NANO64"
	configDirName  = ".nano64"
	configFileName = "config.yaml"
)

// Config holds the CLI configuration.
type Config struct {
	// Key is the AES-256 key as 64 hex characters.
	Key string `mapstructure:"key" yaml:"key" validate:"omitempty,hexadecimal,len=64"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`

	// Format is the default output encoding for generate.
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=hex decimal binary base32 base36 base58 base62 base64 base64url"`

	// OverflowWait makes monotonic generation wait out saturated milliseconds.
	OverflowWait bool `mapstructure:"overflow_wait" yaml:"overflow_wait"`
}

var validate = validator.New()

var errNoKey = errors.New("no encryption key: set --key, NANO64_KEY or key in the config file")

// loadConfig merges defaults, the config file, NANO64_* environment
// variables and the command's flags, in increasing precedence.
//
// A missing default config file is fine; a missing file named by --config
// is an error.
func loadConfig(cmd *cobra.Command, configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := loadConfigFile(v, configPath); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"key":       "key",
		"log_level": "log-level",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("error binding flag %s: %w", flag, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("format", "hex")
	v.SetDefault("overflow_wait", false)
	v.SetDefault("key", "")
}

func loadConfigFile(v *viper.Viper, configPath string) error {
	explicit := configPath != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		configPath = filepath.Join(home, configDirName, configFileName)
	}

	if _, err := os.Stat(configPath); err != nil {
		if explicit {
			return fmt.Errorf("error loading config file: %w", err)
		}
		return nil
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error loading config file: %w", err)
	}
	return nil
}

// GetLogLevel returns the slog.Level from the string configuration.
// Defaults to INFO if the level string is invalid.
func (c *Config) GetLogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// KeyBytes decodes Key. It returns errNoKey if no key is configured.
func (c *Config) KeyBytes() ([]byte, error) {
	if c.Key == "" {
		return nil, errNoKey
	}
	key, err := hex.DecodeString(c.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	if len(key) != nano64.KeySize {
		return nil, &nano64.KeyLengthError{Length: len(key)}
	}
	return key, nil
}
