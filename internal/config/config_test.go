// Package config_test tests configuration loading, merging hierarchy, and environment variable overrides.
// Related: internal/config/config.go
// Tags: config, loading, merging, env-vars, json, precedence
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateHome points HOME at an empty directory so a real global config is
// never read. NO t.Parallel() in callers due to t.Setenv.
func isolateHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.MaxProperties)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "deterministic", cfg.IDStrategy)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.True(t, cfg.ShowProgress)
	assert.Equal(t, 2*time.Minute, cfg.TimeoutDuration())
	assert.Equal(t, 500*time.Millisecond, cfg.Backoff())
	assert.Equal(t, 8*time.Second, cfg.MaxBackoff())
	assert.Empty(t, cfg.GeneratorCmd)
	assert.Equal(t, filepath.Join(home, ".specgate", "state"), cfg.StateDir)
	assert.Equal(t, 500, cfg.MaxHistory)
}

func TestLoad_Precedence(t *testing.T) {
	home := isolateHome(t)

	writeConfig(t, filepath.Join(home, ".specgate", "config.json"), `{
		"max_retries": 5,
		"log_level": "debug",
		"concurrency": 2
	}`)
	local := filepath.Join(t.TempDir(), "specgate.json")
	writeConfig(t, local, `{
		"max_retries": 6,
		"generator_cmd": "gen",
		"generator_args": ["--json"]
	}`)
	t.Setenv("SPECGATE_MAX_RETRIES", "7")
	t.Setenv("SPECGATE_ID_STRATEGY", "unique")

	cfg, err := Load(local)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxRetries, "env beats local")
	assert.Equal(t, "unique", cfg.IDStrategy)
	assert.Equal(t, "gen", cfg.GeneratorCmd, "local beats defaults")
	assert.Equal(t, []string{"--json"}, cfg.GeneratorArgs)
	assert.Equal(t, "debug", cfg.LogLevel, "global beats defaults")
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoad_MissingLocalIgnored(t *testing.T) {
	isolateHome(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := isolateHome(t)
	t.Setenv("SPECGATE_REGISTRY_PATH", "~/caps.yaml")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "caps.yaml"), cfg.RegistryPath)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := map[string]struct {
		content   string
		wantField string
	}{
		"max retries out of range": {
			content:   `{"max_retries": 11}`,
			wantField: "max_retries",
		},
		"unknown id strategy": {
			content:   `{"id_strategy": "random"}`,
			wantField: "id_strategy",
		},
		"bad log level": {
			content:   `{"log_level": "verbose"}`,
			wantField: "log_level",
		},
		"zero concurrency": {
			content:   `{"concurrency": 0}`,
			wantField: "concurrency",
		},
		"max backoff below backoff": {
			content:   `{"backoff_ms": 1000, "max_backoff_ms": 10}`,
			wantField: "max_backoff_ms",
		},
		"zero max properties": {
			content:   `{"max_properties": 0}`,
			wantField: "max_properties",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			isolateHome(t)
			path := filepath.Join(t.TempDir(), "config.json")
			writeConfig(t, path, tc.content)

			_, err := Load(path)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantField, verr.Field)
		})
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, "{\n  \"max_retries\": 3,\n  oops\n}")

	_, err := Load(path)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 3, verr.Line)
	assert.Contains(t, err.Error(), "failed to load local config")
}
