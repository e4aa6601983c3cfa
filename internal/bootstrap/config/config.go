package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/errs"
)

type Config struct {
	App         AppConfig                `mapstructure:"app"`
	Database    DatabaseConfig           `mapstructure:"database"`
	Poller      PollerConfig             `mapstructure:"poller"`
	ReviewQueue ReviewQueueConfig        `mapstructure:"review_queue"`
	Server      ServerConfig             `mapstructure:"server"`
	Tenants     []TenantCredentialConfig `mapstructure:"tenants"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// PollerConfig controls the labeler event poller. Disabled by default so a
// misconfigured deploy never polls someone else's labeler.
type PollerConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	IntervalMs int  `mapstructure:"interval_ms"`
}

type ReviewQueueConfig struct {
	Driver        string `mapstructure:"driver"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// TenantCredentialConfig is one entry of the config-backed credential store.
type TenantCredentialConfig struct {
	TenantID   string `mapstructure:"tenant_id"`
	ServiceURL string `mapstructure:"service_url"`
	DID        string `mapstructure:"did"`
	SigningKey string `mapstructure:"signing_key"`
	Handle     string `mapstructure:"handle"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Poller.IntervalMs <= 0 {
		return Config{}, fmt.Errorf("poller.interval_ms must be positive, got %d", cfg.Poller.IntervalMs)
	}
	switch cfg.ReviewQueue.Driver {
	case "log", "nats":
	default:
		return Config{}, fmt.Errorf("unsupported review_queue.driver %q", cfg.ReviewQueue.Driver)
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.Bool("poller_enabled", cfg.Poller.Enabled),
		slog.Int("tenant_credentials", len(cfg.Tenants)),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "modbridge")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".data/modbridge.sqlite")
	v.SetDefault("poller.enabled", false)
	v.SetDefault("poller.interval_ms", 30000)
	v.SetDefault("review_queue.driver", "log")
	v.SetDefault("review_queue.subject_prefix", "moderation.review")
	v.SetDefault("server.addr", ":8086")
}
