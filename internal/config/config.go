package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Rapor/internal/grading"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Grading  GradingConfig  `yaml:"grading"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port            int    `yaml:"port"`
	MetricsPort     int    `yaml:"metrics_port"`
	AdminToken      string `yaml:"admin_token"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type GradingConfig struct {
	// DefaultWeights apply until an administrator saves weights.
	DefaultWeights grading.WeightConfig `yaml:"default_weights"`
	// KKM is the minimum passing final score shown on report listings.
	KKM float64 `yaml:"kkm"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            8700,
			MetricsPort:     8701,
			RateLimitPerMin: 120,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		Grading: GradingConfig{
			DefaultWeights: grading.DefaultWeights(),
			KKM:            75,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if err := grading.ValidateWeightConfig(c.Grading.DefaultWeights); err != nil {
		return fmt.Errorf("grading.default_weights: %w", err)
	}
	if math.IsNaN(c.Grading.KKM) || c.Grading.KKM < 0 || c.Grading.KKM > 100 {
		return fmt.Errorf("grading.kkm is %g, must be within [0,100]", c.Grading.KKM)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RAPOR_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("RAPOR_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("RAPOR_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("RAPOR_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("RAPOR_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("RAPOR_KKM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Grading.KKM = f
		}
	}
	if v := os.Getenv("RAPOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RAPOR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
