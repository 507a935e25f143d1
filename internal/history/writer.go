package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Writer appends entries and prunes the oldest beyond MaxEntries. It is
// safe for concurrent use within one process.
type Writer struct {
	StateDir   string
	MaxEntries int

	mu  sync.Mutex
	now func() time.Time
}

// NewWriter creates a new history writer. A writer with maxEntries <= 0
// records nothing.
func NewWriter(stateDir string, maxEntries int) *Writer {
	return &Writer{StateDir: stateDir, MaxEntries: maxEntries, now: time.Now}
}

// Enabled reports whether entries are recorded.
func (w *Writer) Enabled() bool {
	return w != nil && w.MaxEntries > 0 && w.StateDir != ""
}

// Record stamps entry with an ID and timestamp when missing and appends it.
func (w *Writer) Record(entry Entry) error {
	if !w.Enabled() {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		now := w.now
		if now == nil {
			now = time.Now
		}
		entry.Timestamp = now().UTC()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	history, err := Load(w.StateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	history.Entries = append(history.Entries, entry)
	if len(history.Entries) > w.MaxEntries {
		excess := len(history.Entries) - w.MaxEntries
		history.Entries = history.Entries[excess:]
	}

	if err := Save(w.StateDir, history); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}
