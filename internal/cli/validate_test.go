package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
	"github.com/ariel-frischer/specgate/internal/gate"
	"github.com/ariel-frischer/specgate/internal/testutil"
)

func validateOpts(t *testing.T, capability string) validateOptions {
	t.Helper()
	return validateOptions{globalOptions: testGlobals(t, nil), capability: capability}
}

func TestValidateCommand_Decisions(t *testing.T) {
	tests := map[string]struct {
		spec       func() *contract.Specification
		capability string
		wantCode   int
		wantOut    string
		wantErrOut string
	}{
		"approved": {
			spec:       testutil.ValidSpec,
			capability: testutil.StarRatingID,
			wantCode:   ExitSuccess,
			wantOut:    "approved for star-rating",
		},
		"capability mismatch": {
			spec:       testutil.ValidSpec,
			capability: "toggle-switch",
			wantCode:   ExitRejected,
			wantErrOut: gerrors.CodeCapabilityMismatch,
		},
		"limit exceeded": {
			spec: func() *contract.Specification {
				s := testutil.ValidSpec()
				s.Customizations["stars"] = contract.Number(50)
				return s
			},
			capability: testutil.StarRatingID,
			wantCode:   ExitRejected,
			wantErrOut: gerrors.CodeLimitExceeded,
		},
		"unsupported version": {
			spec: func() *contract.Specification {
				s := testutil.ValidSpec()
				s.Version = "2.0"
				return s
			},
			capability: testutil.StarRatingID,
			wantCode:   ExitRejected,
			wantErrOut: gerrors.CodeVersionUnsupported,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := testutil.WriteSpecFile(t, t.TempDir(), "spec.json", tt.spec())

			var out, errOut bytes.Buffer
			err := runValidateCommand(context.Background(), []string{path}, validateOpts(t, tt.capability), &out, &errOut)

			assert.Equal(t, tt.wantCode, ExitCode(err), "stderr: %s", errOut.String())
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
			if tt.wantErrOut != "" {
				assert.Contains(t, errOut.String(), tt.wantErrOut)
			}
		})
	}
}

func TestValidateCommand_MalformedNeedsRegeneration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.json")
	testutil.WriteFile(t, path, `{"version": "1.0",`)

	var out, errOut bytes.Buffer
	err := runValidateCommand(context.Background(), []string{path}, validateOpts(t, testutil.StarRatingID), &out, &errOut)

	assert.Equal(t, ExitRejected, ExitCode(err))
	assert.Contains(t, errOut.String(), "needs regeneration")
	assert.Contains(t, errOut.String(), gerrors.CodeMalformed)
}

func TestValidateCommand_YAML(t *testing.T) {
	data, err := yaml.Marshal(testutil.ValidSpec())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "spec.yaml")
	testutil.WriteFile(t, path, string(data))

	var out, errOut bytes.Buffer
	err = runValidateCommand(context.Background(), []string{path}, validateOpts(t, testutil.StarRatingID), &out, &errOut)
	require.NoError(t, err, errOut.String())
	assert.Contains(t, out.String(), "approved")
}

func TestValidateCommand_InvalidArguments(t *testing.T) {
	valid := func(t *testing.T) string {
		return testutil.WriteSpecFile(t, t.TempDir(), "spec.json", testutil.ValidSpec())
	}

	tests := map[string]struct {
		paths      func(t *testing.T) []string
		capability string
		wantErrOut string
	}{
		"missing capability flag": {
			paths:      func(t *testing.T) []string { return []string{valid(t)} },
			wantErrOut: "--capability",
		},
		"unknown capability": {
			paths:      func(t *testing.T) []string { return []string{valid(t)} },
			capability: "carousel",
			wantErrOut: gerrors.CodeUnknownCapability,
		},
		"missing file": {
			paths:      func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "nope.json")} },
			capability: testutil.StarRatingID,
			wantErrOut: "cannot read",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			err := runValidateCommand(context.Background(), tt.paths(t), validateOpts(t, tt.capability), &out, &errOut)
			assert.Equal(t, ExitInvalidArguments, ExitCode(err))
			assert.Contains(t, errOut.String(), tt.wantErrOut)
		})
	}
}

func TestValidateCommand_BatchJSON(t *testing.T) {
	dir := t.TempDir()
	rejected := testutil.ValidSpec()
	rejected.Features = append(rejected.Features, "telepathy")

	paths := []string{
		testutil.WriteSpecFile(t, dir, "a.json", testutil.ValidSpec()),
		testutil.WriteSpecFile(t, dir, "b.json", rejected),
		testutil.WriteSpecFile(t, dir, "c.json", testutil.ValidSpec()),
	}

	opts := validateOpts(t, testutil.StarRatingID)
	opts.json = true

	var out, errOut bytes.Buffer
	err := runValidateCommand(context.Background(), paths, opts, &out, &errOut)
	assert.Equal(t, ExitRejected, ExitCode(err))

	var results []struct {
		File    string       `json:"file"`
		Verdict gate.Verdict `json:"verdict"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 3)

	for i, want := range []gate.Decision{gate.Approve, gate.Reject, gate.Approve} {
		assert.Equal(t, paths[i], results[i].File, "results keep argument order")
		assert.Equal(t, want, results[i].Verdict.Decision)
	}
	assert.Equal(t, gerrors.CodeUnsupportedFeature, results[1].Verdict.Code)
}

func TestValidateCommand_Fix(t *testing.T) {
	spec := testutil.ValidSpec()
	spec.Properties[1].Name = "StarColor"
	path := testutil.WriteSpecFile(t, t.TempDir(), "spec.json", spec)

	opts := validateOpts(t, testutil.StarRatingID)

	var out, errOut bytes.Buffer
	require.NoError(t, runValidateCommand(context.Background(), []string{path}, opts, &out, &errOut))
	assert.Contains(t, testutil.ReadFile(t, path), `"StarColor"`, "without --fix the file is untouched")

	opts.fix = true
	out.Reset()
	require.NoError(t, runValidateCommand(context.Background(), []string{path}, opts, &out, &errOut))
	assert.Contains(t, out.String(), "corrections written")

	var fixed contract.Specification
	require.NoError(t, json.Unmarshal([]byte(testutil.ReadFile(t, path)), &fixed))
	assert.Equal(t, "starColor", fixed.Properties[1].Name)
}

func TestIsYAML(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"spec.yaml": true,
		"spec.YML":  true,
		"spec.json": false,
		"spec":      false,
	}
	for path, want := range tests {
		assert.Equal(t, want, isYAML(path), path)
	}
}
