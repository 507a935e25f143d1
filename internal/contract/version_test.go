package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVersionSupported(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		version string
		want    bool
	}{
		"current version":    {version: CurrentVersion, want: true},
		"explicit 1.0":       {version: "1.0", want: true},
		"newer minor":        {version: "1.1", want: false},
		"wrong major":        {version: "2.0", want: false},
		"zero major":         {version: "0.9", want: false},
		"missing":            {version: "", want: false},
		"patch component":    {version: "1.0.0", want: false},
		"leading v":          {version: "v1.0", want: false},
		"no minor":           {version: "1", want: false},
		"non numeric":        {version: "one.zero", want: false},
		"surrounding spaces": {version: " 1.0 ", want: false},
		"negative looking":   {version: "-1.0", want: false},
		"trailing separator": {version: "1.", want: false},
		"leading zero minor": {version: "1.00", want: true},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsVersionSupported(tt.version))
		})
	}
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	major, minor, err := ParseVersion("3.14")
	assert.NoError(t, err)
	assert.Equal(t, 3, major)
	assert.Equal(t, 14, minor)

	_, _, err = ParseVersion("3")
	assert.Error(t, err)
}
