// Package config loads vos settings from defaults, a config file, VOS_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"virtualos/internal/logging"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	// AppName names the config directory.
	AppName = "vos"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
	// EnvPrefix prefixes environment overrides, e.g. VOS_LOG_LEVEL.
	EnvPrefix = "VOS"
)

// Keys understood by Load.
const (
	KeyLogLevel    = "log_level"
	KeyRebootDelay = "reboot_delay"
	KeyStateFile   = "state_file"
	KeyBcryptCost  = "bcrypt_cost"
)

// Config is the resolved configuration.
type Config struct {
	LogLevel    string        `mapstructure:"log_level"`
	RebootDelay time.Duration `mapstructure:"reboot_delay"`
	StateFile   string        `mapstructure:"state_file"`
	BcryptCost  int           `mapstructure:"bcrypt_cost"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

// Level parses LogLevel.
func (c *Config) Level() (logging.LogLevel, error) {
	return logging.ParseLevel(c.LogLevel)
}

// Dir is $XDG_CONFIG_HOME/vos, falling back to ~/.config/vos.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// ConfigFile, when set, must exist and is used instead of the default.
	ConfigFile string
	// Flags are bound by their config key names.
	Flags *pflag.FlagSet
}

// Load resolves the configuration.
func Load(opts LoadOptions) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault(KeyLogLevel, logging.LevelWarn.String())
	v.SetDefault(KeyRebootDelay, time.Second)
	v.SetDefault(KeyStateFile, filepath.Join(dir, "systems.json"))
	v.SetDefault(KeyBcryptCost, bcrypt.DefaultCost)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if opts.Flags != nil {
		for _, key := range []string{KeyLogLevel, KeyRebootDelay, KeyStateFile, KeyBcryptCost} {
			if f := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	if cfg.RebootDelay < 0 {
		return nil, fmt.Errorf("%s must not be negative", KeyRebootDelay)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%s must be between %d and %d", KeyBcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &cfg, nil
}
