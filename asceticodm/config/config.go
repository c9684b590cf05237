package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/contexts/enumerable"
	"github.com/krew-solutions/ascetic-odm-go/asceticodm/document"
)

// EnvPrefix prefixes environment overrides: log.level is read from
// ASCETICODM_LOG_LEVEL.
const EnvPrefix = "ASCETICODM"

type Config struct {
	RaiseNotFoundError bool     `mapstructure:"raise_not_found_error"`
	IDStrategy         string   `mapstructure:"id_strategy"`
	Log                Log      `mapstructure:"log"`
	Postgres           Postgres `mapstructure:"postgres"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Postgres struct {
	DSN string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("raise_not_found_error", false)
	v.SetDefault("id_strategy", document.IDStrategyUUID)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("postgres.dsn", "")
}

// Load reads the optional config file at path (any format viper knows by
// extension) and applies environment overrides on top.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := document.NewIDGenerator(c.IDStrategy); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format: %s", c.Log.Format)
	}
	return nil
}

func (c *Config) IDGenerator() (document.IDGenerator, error) {
	return document.NewIDGenerator(c.IDStrategy)
}

// ContextOptions configures query contexts from c.
func (c *Config) ContextOptions(logger *zap.Logger) []enumerable.Option {
	return []enumerable.Option{
		enumerable.WithRaiseNotFoundError(c.RaiseNotFoundError),
		enumerable.WithLogger(logger),
	}
}
