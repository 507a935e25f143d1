package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
	"github.com/ariel-frischer/specgate/internal/history"
	"github.com/ariel-frischer/specgate/internal/testutil"
)

// seedDecisions validates one approved and one rejected candidate under
// globals, leaving two history entries behind.
func seedDecisions(t *testing.T, globals globalOptions) {
	t.Helper()

	dir := t.TempDir()
	good := testutil.WriteSpecFile(t, dir, "good.json", testutil.ValidSpec())
	bad := testutil.ValidSpec()
	bad.Customizations["stars"] = contract.Number(50)
	badPath := testutil.WriteSpecFile(t, dir, "bad.json", bad)

	opts := validateOptions{globalOptions: globals, capability: testutil.StarRatingID}
	var out, errOut bytes.Buffer
	err := runValidateCommand(context.Background(), []string{good, badPath}, opts, &out, &errOut)
	require.Equal(t, ExitRejected, ExitCode(err), "stderr: %s", errOut.String())
}

func TestHistoryCommand(t *testing.T) {
	tests := map[string]struct {
		opts       historyOptions
		wantLines  int
		wantOut    []string
		wantAbsent string
	}{
		"all entries": {
			wantLines: 2,
			wantOut:   []string{"approve", "reject", gerrors.CodeLimitExceeded, "[star-rating]"},
		},
		"rejections only": {
			opts:       historyOptions{decision: "reject"},
			wantLines:  1,
			wantOut:    []string{"bad.json", "exit=1"},
			wantAbsent: "good.json",
		},
		"limit": {
			opts:      historyOptions{limit: 1},
			wantLines: 1,
		},
		"no match": {
			opts:    historyOptions{decision: "retry"},
			wantOut: []string{"No matching entries for decision 'retry'."},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			globals := testGlobals(t, nil)
			seedDecisions(t, globals)

			opts := tt.opts
			opts.globalOptions = globals
			var out, errOut bytes.Buffer
			require.NoError(t, runHistoryCommand(opts, &out, &errOut))

			if tt.wantLines > 0 {
				assert.Len(t, bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n")), tt.wantLines)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			if tt.wantAbsent != "" {
				assert.NotContains(t, out.String(), tt.wantAbsent)
			}
		})
	}
}

func TestHistoryCommand_JSONAndClear(t *testing.T) {
	globals := testGlobals(t, nil)
	seedDecisions(t, globals)

	var out, errOut bytes.Buffer
	require.NoError(t, runHistoryCommand(historyOptions{globalOptions: globals, json: true}, &out, &errOut))

	var entries []history.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "validate", entries[0].Command)
	assert.NotEmpty(t, entries[0].ID)

	out.Reset()
	require.NoError(t, runHistoryCommand(historyOptions{globalOptions: globals, clear: true}, &out, &errOut))
	assert.Contains(t, out.String(), "History cleared.")

	out.Reset()
	require.NoError(t, runHistoryCommand(historyOptions{globalOptions: globals}, &out, &errOut))
	assert.Contains(t, out.String(), "No history available.")
}

func TestHistoryCommand_Disabled(t *testing.T) {
	globals := testGlobals(t, map[string]any{"max_history": 0})
	seedDecisions(t, globals)

	var out, errOut bytes.Buffer
	require.NoError(t, runHistoryCommand(historyOptions{globalOptions: globals}, &out, &errOut))
	assert.Contains(t, out.String(), "No history available.")
}

func TestHistoryCommand_NegativeLimit(t *testing.T) {
	var out, errOut bytes.Buffer
	err := runHistoryCommand(historyOptions{globalOptions: testGlobals(t, nil), limit: -1}, &out, &errOut)
	assert.Equal(t, ExitInvalidArguments, ExitCode(err))
	assert.Contains(t, errOut.String(), "limit must be positive")
}
