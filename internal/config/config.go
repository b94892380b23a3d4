// Package config loads runtime settings from an optional YAML file,
// a .env file, and environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Generation configures the text-generation capability.
type Generation struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	APIVersion string `yaml:"api_version"`
}

// Root is the full runtime configuration.
type Root struct {
	LogLevel   string     `yaml:"log_level"`
	DBPath     string     `yaml:"db_path"`
	Workers    int        `yaml:"workers"`
	Generation Generation `yaml:"generation"`
}

func defaults() Root {
	return Root{
		LogLevel: "info",
		DBPath:   "insights.db",
		Workers:  4,
		Generation: Generation{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the
// file is absent), then .env, then environment variables. Environment
// variables win.
func Load(path string) (*Root, error) {
	cfg := defaults()

	if path != "" {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("open config %s: %w", path, err)
		}
	}

	// .env never overrides variables already set in the environment.
	_ = godotenv.Load()

	applyEnv(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Root) {
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.DBPath, "INSIGHTS_DB")
	if raw := strings.TrimSpace(os.Getenv("INSIGHT_WORKERS")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	setString(&cfg.Generation.Provider, "OPENAI_PROVIDER")
	setString(&cfg.Generation.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Generation.Endpoint, "OPENAI_ENDPOINT")
	setString(&cfg.Generation.Model, "OPENAI_MODEL")
	setString(&cfg.Generation.APIVersion, "OPENAI_API_VERSION")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
