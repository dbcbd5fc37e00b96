package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"stockscan/internal/config"
	"stockscan/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	api        *testsupport.APIServer
	configPath string
}

// setupCLITestEnv writes a config file pointing at a fake backend. When
// online is false the API URL is an unreachable local port.
func setupCLITestEnv(t *testing.T, online bool) *cliTestEnv {
	t.Helper()
	for _, key := range []string{"STOCKSCAN_DATA_DIR", "STOCKSCAN_LOG_DIR", "STOCKSCAN_API_URL", "STOCKSCAN_API_TOKEN", "STOCKSCAN_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	api := testsupport.NewAPIServer(t)
	var opts []testsupport.ConfigOption
	if online {
		opts = append(opts, testsupport.WithAPIURL(api.URL))
	}
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"

	env := &cliTestEnv{
		cfg:        cfg,
		api:        api,
		configPath: filepath.Join(testsupport.BaseDir(cfg), "config.toml"),
	}
	env.writeConfig(t)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	data, err := toml.Marshal(e.cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(e.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// goOnline repoints the config at the fake backend.
func (e *cliTestEnv) goOnline(t *testing.T) {
	t.Helper()
	e.cfg.API.BaseURL = e.api.URL
	e.cfg.Network.CheckAddress = strings.TrimPrefix(e.api.URL, "http://")
	e.writeConfig(t)
}

func (e *cliTestEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliTestEnv) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := e.run(t, stdin, args...)
	if err != nil {
		t.Fatalf("stockscan %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func decodeJSON[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return v
}
