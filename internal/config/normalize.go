package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeNetwork()
	c.normalizeQueue()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultAPITimeoutSeconds
	}
}

func (c *Config) normalizeNetwork() {
	if c.Network.CheckIntervalSeconds <= 0 {
		c.Network.CheckIntervalSeconds = defaultCheckIntervalSeconds
	}
	if c.Network.CheckTimeoutSeconds <= 0 {
		c.Network.CheckTimeoutSeconds = defaultCheckTimeoutSeconds
	}
	c.Network.CheckAddress = strings.TrimSpace(c.Network.CheckAddress)
	if c.Network.CheckAddress == "" {
		c.Network.CheckAddress = checkAddressFromURL(c.API.BaseURL)
	}
}

func (c *Config) normalizeQueue() {
	if c.Queue.MaxEntries <= 0 {
		c.Queue.MaxEntries = defaultQueueMaxEntries
	}
	if c.Scan.ProjectIDMaxDigits <= 0 {
		c.Scan.ProjectIDMaxDigits = defaultProjectIDMaxDigits
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
