package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateNetwork(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	if c.API.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/stockscan/config.toml"
		}
		return fmt.Errorf("api.base_url is required. Set STOCKSCAN_API_URL or edit %s (create with 'stockscan config init')", defaultPath)
	}
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("api.base_url must include a host")
	}
	return nil
}

func (c *Config) validateNetwork() error {
	if err := ensurePositiveMap(map[string]int{
		"api.timeout_seconds":            c.API.TimeoutSeconds,
		"network.check_interval_seconds": c.Network.CheckIntervalSeconds,
		"network.check_timeout_seconds":  c.Network.CheckTimeoutSeconds,
		"queue.max_entries":              c.Queue.MaxEntries,
	}); err != nil {
		return err
	}
	if c.Network.CheckTimeoutSeconds > c.Network.CheckIntervalSeconds {
		return errors.New("network.check_timeout_seconds must not exceed network.check_interval_seconds")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.ProjectIDMaxDigits > 18 {
		return errors.New("scan.project_id_max_digits must be at most 18")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
