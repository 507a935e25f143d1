package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Record(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(dir, 10)
	require.NoError(t, w.Record(Entry{Command: "validate", Decision: "approve"}))

	h, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, h.Entries, 1)

	e := h.Entries[0]
	_, err = uuid.Parse(e.ID)
	assert.NoError(t, err, "ID should be a UUID")
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "validate", e.Command)
}

func TestWriter_Pruning(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		existing    int
		maxEntries  int
		wantEntries int
		wantFirst   string
	}{
		"no pruning needed": {
			existing:    5,
			maxEntries:  10,
			wantEntries: 6,
			wantFirst:   "e0",
		},
		"prune oldest when max exceeded": {
			existing:    10,
			maxEntries:  10,
			wantEntries: 10,
			wantFirst:   "e1",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			seed := &File{}
			for i := 0; i < tt.existing; i++ {
				seed.Entries = append(seed.Entries, Entry{ID: fmt.Sprintf("e%d", i)})
			}
			require.NoError(t, Save(dir, seed))

			require.NoError(t, NewWriter(dir, tt.maxEntries).Record(Entry{ID: "new"}))

			h, err := Load(dir)
			require.NoError(t, err)
			assert.Len(t, h.Entries, tt.wantEntries)
			assert.Equal(t, tt.wantFirst, h.Entries[0].ID)
			assert.Equal(t, "new", h.Entries[len(h.Entries)-1].ID)
		})
	}
}

func TestWriter_Disabled(t *testing.T) {
	t.Parallel()

	tests := map[string]*Writer{
		"nil writer":  nil,
		"zero max":    NewWriter(t.TempDir(), 0),
		"no statedir": NewWriter("", 10),
	}

	for name, w := range tests {
		w := w
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, w.Enabled())
			assert.NoError(t, w.Record(Entry{Decision: "approve"}))
		})
	}
}

func TestWriter_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(dir, 100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Record(Entry{Decision: "approve"}))
		}()
	}
	wg.Wait()

	h, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, h.Entries, 8)
}
