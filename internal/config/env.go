package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the settings that may be supplied through the
// environment. Non-empty values replace whatever the TOML file set.
type envOverrides struct {
	DataDir  string `env:"STOCKSCAN_DATA_DIR"`
	LogDir   string `env:"STOCKSCAN_LOG_DIR"`
	APIURL   string `env:"STOCKSCAN_API_URL"`
	APIToken string `env:"STOCKSCAN_API_TOKEN"`
	LogLevel string `env:"STOCKSCAN_LOG_LEVEL"`
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	override := func(dst *string, value string) {
		if value = strings.TrimSpace(value); value != "" {
			*dst = value
		}
	}
	override(&c.Paths.DataDir, overrides.DataDir)
	override(&c.Paths.LogDir, overrides.LogDir)
	override(&c.API.BaseURL, overrides.APIURL)
	override(&c.API.Token, overrides.APIToken)
	override(&c.Logging.Level, overrides.LogLevel)
	return nil
}
