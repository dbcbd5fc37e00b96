package testsupport

import (
	"net/url"
	"path/filepath"
	"testing"

	"stockscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Netlink is disabled and probing points at an unroutable local port unless
// an option overrides it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.API.BaseURL = "http://127.0.0.1:1"
	cfgVal.Network.CheckAddress = "127.0.0.1:1"
	cfgVal.Network.CheckTimeoutSeconds = 1
	cfgVal.Network.NetlinkEnabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIURL points the API client and the connectivity check at baseURL.
func WithAPIURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.BaseURL = baseURL
		if parsed, err := url.Parse(baseURL); err == nil && parsed.Host != "" {
			b.cfg.Network.CheckAddress = parsed.Host
		}
	}
}

// WithMaxEntries bounds the offline queue.
func WithMaxEntries(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.MaxEntries = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
