package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/specgate/internal/testutil"
)

// testConfig isolates HOME and writes a project config with quiet logging,
// no progress output and no retry delay, merged with overrides.
func testConfig(t *testing.T, overrides map[string]any) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	values := map[string]any{
		"log_level":      "error",
		"show_progress":  false,
		"backoff_ms":     0,
		"max_backoff_ms": 0,
	}
	for k, v := range overrides {
		values[k] = v
	}
	data, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.json")
	testutil.WriteFile(t, path, string(data))
	return path
}

func testGlobals(t *testing.T, overrides map[string]any) globalOptions {
	t.Helper()
	return globalOptions{configPath: testConfig(t, overrides)}
}

func writeIntent(t *testing.T, dir string) string {
	t.Helper()
	return testutil.WriteSpecFile(t, dir, "intent.json", testutil.SampleIntent())
}

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
