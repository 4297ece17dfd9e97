package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/confguard"
	"github.com/sagarc03/confguard/database"
	confhttp "github.com/sagarc03/confguard/http"
)

// EnvPrefix is the prefix for environment variables that override settings.
const EnvPrefix = "CONFGUARD"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root settings struct for confguard.
type Config struct {
	Check   CheckConfig         `mapstructure:"check"`
	Output  OutputConfig        `mapstructure:"output"`
	History HistoryConfig       `mapstructure:"history"`
	Server  ServerConfig        `mapstructure:"server"`
	CORS    confhttp.CORSConfig `mapstructure:"cors"`
	Log     LogConfig           `mapstructure:"log"`
}

// CheckConfig selects the file to validate.
type CheckConfig struct {
	// Path is read from CONFIG_PATH when not set elsewhere.
	Path string `mapstructure:"path"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `mapstructure:"format" validate:"required,oneof=text json yaml"`
	Quiet  bool   `mapstructure:"quiet"`
}

// HistoryConfig holds the run history backend settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Type    string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Table   string `mapstructure:"table" validate:"required,table_name"`
}

// Database returns the connection settings for the database package.
func (h HistoryConfig) Database() database.Config {
	return database.Config{Type: h.Type, DSN: h.DSN, Table: h.Table}
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"min=1"`
	Metrics      bool  `mapstructure:"metrics"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"config":       "check.path",
	"format":       "output.format",
	"quiet":        "output.quiet",
	"record":       "history.enabled",
	"history-type": "history.type",
	"history-dsn":  "history.dsn",
	"port":         "server.port",
	"metrics":      "server.metrics",
	"log-level":    "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("check.path", "")

	v.SetDefault("output.format", "text")
	v.SetDefault("output.quiet", false)

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.type", "sqlite")
	v.SetDefault("history.dsn", "confguard.db")
	v.SetDefault("history.table", "confguard_runs")

	v.SetDefault("server.port", 5710)
	v.SetDefault("server.max_body_bytes", confhttp.DefaultMaxBodyBytes)
	v.SetDefault("server.metrics", true)

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
}

func newValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("table_name", func(fl validator.FieldLevel) bool {
		return confguard.IsValidTableName(fl.Field().String())
	})
	return validate
}

// Load reads settings and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > settings files > defaults
//
// Parameters:
//   - settingsFiles: list of settings file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(settingsFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if len(settingsFiles) > 0 {
		v.SetConfigFile(settingsFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading settings file", "file", settingsFiles[0], "err", err)
		}

		for _, sf := range settingsFiles[1:] {
			v.SetConfigFile(sf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging settings file", "file", sf, "err", err)
			}
		}
	} else {
		v.SetConfigName("confguard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				slog.Warn("error reading settings file", "err", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("check.path", EnvPrefix+"_CHECK_PATH", confguard.EnvConfigPath)

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := newValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
