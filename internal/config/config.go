package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override config keys,
// e.g. SSTCLI_LOG_LEVEL for log.level.
const EnvPrefix = "SSTCLI"

// Config holds all configuration for the sstcli tool
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Table TableConfig `mapstructure:"table"`
}

// LogConfig holds logging related configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// TableConfig holds table related configuration
type TableConfig struct {
	Root               string  `mapstructure:"root"`
	BloomFPR           float64 `mapstructure:"bloom_fpr"`
	MemtableMaxEntries int     `mapstructure:"memtable_max_entries"`
}

// LoadConfig loads configuration from defaults, the config file (if
// configPath is set), environment variables and flags, in increasing order
// of precedence. flags may be nil.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("log-level"); f != nil {
			if err := v.BindPFlag("log.level", f); err != nil {
				return nil, fmt.Errorf("failed to bind flag: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("table.root", "./data")
	v.SetDefault("table.bloom_fpr", 0.01)
	v.SetDefault("table.memtable_max_entries", 1<<20)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}
	if c.Table.BloomFPR <= 0 || c.Table.BloomFPR >= 1 {
		return fmt.Errorf("bloom filter fpr must be in (0, 1): %v", c.Table.BloomFPR)
	}
	if c.Table.MemtableMaxEntries <= 0 {
		return fmt.Errorf("invalid memtable max entries: %d", c.Table.MemtableMaxEntries)
	}
	return nil
}
