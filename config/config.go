// Package config loads process settings from the environment and the
// project definition from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds process settings.
type Config struct {
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	Model            string        `env:"NOVEL_MODEL" envDefault:"gemini-2.5-flash"`
	Addr             string        `env:"NOVEL_ADDR" envDefault:"0.0.0.0:9779"`
	DBPath           string        `env:"NOVEL_DB_PATH" envDefault:"novel.db"`
	ProjectFile      string        `env:"NOVEL_PROJECT_FILE" envDefault:"project.yaml"`
	GenerateTimeout  time.Duration `env:"NOVEL_GENERATE_TIMEOUT" envDefault:"90s"`
	ScenesPerChapter int           `env:"NOVEL_SCENES_PER_CHAPTER" envDefault:"3"`
	CacheByState     bool          `env:"NOVEL_CACHE_BY_STATE" envDefault:"false"`
	OTelEndpoint     string        `env:"NOVEL_OTEL_ENDPOINT"`
}

// Load reads the given env files (".env" when none are named) into the
// process environment, then parses Config. Missing env files are ignored and
// variables already set in the environment win.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return Parse()
}

// Parse reads Config from the environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.GenerateTimeout <= 0 {
		errs = append(errs, fmt.Errorf("NOVEL_GENERATE_TIMEOUT must be positive, got %s", c.GenerateTimeout))
	}
	if c.ScenesPerChapter < 1 {
		errs = append(errs, fmt.Errorf("NOVEL_SCENES_PER_CHAPTER must be at least 1, got %d", c.ScenesPerChapter))
	}
	return errors.Join(errs...)
}
