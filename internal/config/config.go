package config

import (
	"os"
	"strconv"
	"strings"

	"asepower/internal/errors"

	"github.com/joho/godotenv"
)

// DefaultSummaryFile is the summary table name used when none is configured.
const DefaultSummaryFile = "posterior_estimates_summary_across_simul.csv"

// Config represents the complete application configuration
type Config struct {
	LogLevel  string
	Pipeline  PipelineConfig
	Simulator SimulatorConfig
	Database  DatabaseConfig
}

// PipelineConfig holds merge and summary settings
type PipelineConfig struct {
	Workers         int
	ExcludeSuffixes []string
	SummaryFile     string
}

// SimulatorConfig locates the external simulator
type SimulatorConfig struct {
	Rscript string
	Script  string
	Sets    int
}

// DatabaseConfig holds the optional summary store connection
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a summary store is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Load reads an optional .env file from the working directory, then the
// environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables alone.
func FromEnv() (*Config, error) {
	workers, err := getEnvIntOrDefault("ASEPOWER_WORKERS", 1)
	if err != nil {
		return nil, err
	}
	sets, err := getEnvIntOrDefault("ASEPOWER_SIM_SETS", 2)
	if err != nil {
		return nil, err
	}

	config := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
		Pipeline: PipelineConfig{
			Workers:         workers,
			ExcludeSuffixes: getEnvListOrDefault("ASEPOWER_EXCLUDE_SUFFIXES", []string{"r_out", "temp"}),
			SummaryFile:     getEnvOrDefault("ASEPOWER_SUMMARY_FILE", DefaultSummaryFile),
		},
		Simulator: SimulatorConfig{
			Rscript: getEnvOrDefault("ASEPOWER_RSCRIPT", "Rscript"),
			Script:  os.Getenv("ASEPOWER_SIM_SCRIPT"),
			Sets:    sets,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Pipeline.Workers < 1 {
		return errors.ConfigInvalid("ASEPOWER_WORKERS must be at least 1")
	}
	if config.Simulator.Sets < 1 {
		return errors.ConfigInvalid("ASEPOWER_SIM_SETS must be at least 1")
	}
	if config.Pipeline.SummaryFile == "" {
		return errors.ConfigInvalid("summary file name cannot be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer, got " + strconv.Quote(value))
	}
	return intValue, nil
}

// getEnvListOrDefault splits a comma-separated value. An explicitly empty
// list is written as ",".
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}
