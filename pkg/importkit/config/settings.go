// Package config loads importkit settings from the environment and pipeline
// definitions from files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when present and no env file is given explicitly.
const DefaultEnvFile = ".env"

// Settings are the process wide options read from the environment.
type Settings struct {
	LogLevel    string `env:"IMPORTKIT_LOG_LEVEL"    env-default:"info" env-description:"diagnostic log level"`
	Quiet       bool   `env:"IMPORTKIT_QUIET"        env-description:"only show errors, warnings and results"`
	NoColor     bool   `env:"IMPORTKIT_NO_COLOR"     env-description:"disable coloured output"`
	Debug       bool   `env:"IMPORTKIT_DEBUG"        env-description:"show debug output"`
	MetricsFile string `env:"IMPORTKIT_METRICS_FILE" env-description:"Prometheus textfile written after a run"`
	DatabaseDSN string `env:"IMPORTKIT_DATABASE_DSN" env-description:"default DSN for postgres destinations"`
}

// LoadSettings loads the env files into the environment and reads Settings
// from it. Variables already set take precedence over the files. Without
// envFiles, DefaultEnvFile is loaded if it exists.
func LoadSettings(envFiles ...string) (Settings, error) {
	var s Settings

	if len(envFiles) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			envFiles = []string{DefaultEnvFile}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return s, fmt.Errorf("failed to check %s: %w", DefaultEnvFile, err)
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return s, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&s); err != nil {
		return s, fmt.Errorf("failed to read settings from environment: %w", err)
	}
	return s, nil
}

// EnvHelp describes the environment variables read by LoadSettings.
func EnvHelp() string {
	var s Settings
	help, err := cleanenv.GetDescription(&s, nil)
	if err != nil {
		return ""
	}
	return help
}
