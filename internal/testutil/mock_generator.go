package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ariel-frischer/specgate/internal/generator"
)

// CallRecord records a single generator call.
type CallRecord struct {
	CapabilityID string
	Timestamp    time.Time
	Err          error
}

type mockResponse struct {
	payload []byte
	err     error
	delay   time.Duration
}

// MockGeneratorBuilder provides a fluent API for scripting generator
// responses. Responses are consumed in order; the last one repeats.
type MockGeneratorBuilder struct {
	responses []mockResponse
	t         *testing.T
}

// NewMockGeneratorBuilder creates an empty builder.
func NewMockGeneratorBuilder(t *testing.T) *MockGeneratorBuilder {
	t.Helper()
	return &MockGeneratorBuilder{t: t}
}

// WithResponse queues a raw payload.
func (b *MockGeneratorBuilder) WithResponse(payload []byte) *MockGeneratorBuilder {
	b.responses = append(b.responses, mockResponse{payload: payload})
	return b
}

// WithError queues a generator failure.
func (b *MockGeneratorBuilder) WithError(err error) *MockGeneratorBuilder {
	b.responses = append(b.responses, mockResponse{err: err})
	return b
}

// ThenResponse is an alias of WithResponse for readability.
func (b *MockGeneratorBuilder) ThenResponse(payload []byte) *MockGeneratorBuilder {
	return b.WithResponse(payload)
}

// ThenError is an alias of WithError for readability.
func (b *MockGeneratorBuilder) ThenError(err error) *MockGeneratorBuilder {
	return b.WithError(err)
}

// WithDelay delays the most recently queued response.
func (b *MockGeneratorBuilder) WithDelay(d time.Duration) *MockGeneratorBuilder {
	if len(b.responses) > 0 {
		b.responses[len(b.responses)-1].delay = d
	}
	return b
}

// Build returns the scripted generator.
func (b *MockGeneratorBuilder) Build() *MockGenerator {
	if len(b.responses) == 0 {
		b.t.Fatal("mock generator needs at least one response")
	}
	return &MockGenerator{responses: b.responses}
}

// MockGenerator replays scripted responses and records calls.
type MockGenerator struct {
	mu        sync.Mutex
	responses []mockResponse
	index     int
	calls     []CallRecord
}

var _ generator.Generator = (*MockGenerator)(nil)

// Generate implements generator.Generator.
func (m *MockGenerator) Generate(ctx context.Context, req generator.Request) ([]byte, error) {
	m.mu.Lock()
	resp := m.responses[m.index]
	if m.index < len(m.responses)-1 {
		m.index++
	}
	m.mu.Unlock()

	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-ctx.Done():
			resp = mockResponse{err: ctx.Err()}
		}
	}

	id := ""
	if req.Capability != nil {
		id = req.Capability.CapabilityID
	}
	m.mu.Lock()
	m.calls = append(m.calls, CallRecord{CapabilityID: id, Timestamp: time.Now(), Err: resp.err})
	m.mu.Unlock()

	return resp.payload, resp.err
}

// Name implements generator.Generator.
func (m *MockGenerator) Name() string { return "mock" }

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockGenerator) Calls() []CallRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CallRecord(nil), m.calls...)
}
