package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"syntax-quiz/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		// Bank is a YAML question file; empty means the built-in bank.
		Bank       string `yaml:"bank"`
		Language   string `yaml:"language"`
		Difficulty string `yaml:"difficulty"`
		Category   string `yaml:"category"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadOptional is Load, but a missing file yields the zero Config.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// LoadEnv loads a .env file into the process environment if one exists.
func LoadEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Validate rejects settings that cannot work.
func (c Config) Validate() error {
	if err := c.Criteria().Validate(); err != nil {
		return err
	}
	if c.Redis.TTL != "" {
		if _, err := time.ParseDuration(c.Redis.TTL); err != nil {
			return errors.New("redis.ttl: " + err.Error())
		}
	}
	return nil
}

// Criteria returns the configured default filter; unset facets are wildcards.
func (c Config) Criteria() domain.Criteria {
	return domain.Criteria{
		Language:   orWildcard(c.Quiz.Language),
		Difficulty: orWildcard(c.Quiz.Difficulty),
		Category:   orWildcard(c.Quiz.Category),
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func orWildcard(v string) string {
	if v == "" {
		return domain.Wildcard
	}
	return v
}
