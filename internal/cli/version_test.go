package cli

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariel-frischer/specgate/internal/build"
)

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		plain bool
		want  []string
	}{
		"plain": {
			plain: true,
			want:  []string{"specgate " + build.Version, "commit: " + build.Commit, "go: " + runtime.Version(), "platform: " + build.Platform()},
		},
		"pretty": {
			plain: false,
			want:  []string{build.Short(), runtime.Version(), build.Platform()},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			printVersion(&out, tt.plain)
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}
