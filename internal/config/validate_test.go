package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateJSONSyntaxFromBytes(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data     string
		wantErr  bool
		wantLine int
	}{
		"valid object":   {data: `{"max_retries": 2}`},
		"empty":          {data: "  \n", wantErr: true},
		"array":          {data: `[1, 2]`, wantErr: true, wantLine: 1},
		"trailing comma": {data: "{\n\"a\": 1,\n}", wantErr: true, wantLine: 3},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := ValidateJSONSyntaxFromBytes([]byte(tc.data), "cfg.json")
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantLine, verr.Line)
			assert.Contains(t, err.Error(), "cfg.json")
		})
	}
}

func TestValidateJSONSyntax_MissingFile(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateJSONSyntax(filepath.Join(t.TempDir(), "none.json")))
}

func TestValidateJSONSyntax_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":`), 0o644))

	err := ValidateJSONSyntax(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  ValidationError
		want string
	}{
		"with line":  {err: ValidationError{FilePath: "c.json", Line: 2, Column: 5, Message: "bad"}, want: "c.json:2:5: bad"},
		"with field": {err: ValidationError{Field: "timeout", Message: "too big"}, want: "config: field 'timeout': too big"},
		"plain":      {err: ValidationError{FilePath: "c.json", Message: "empty"}, want: "c.json: empty"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestLineColumn(t *testing.T) {
	t.Parallel()

	data := []byte("ab\ncd\nef")
	line, col := lineColumn(data, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, col = lineColumn(data, 100)
	assert.Equal(t, 3, line)
	assert.Equal(t, 3, col)
}
