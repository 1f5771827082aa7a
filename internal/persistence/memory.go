package persistence

import (
	"sync"

	"github.com/wardenlabs/chronos/job"
)

// Memory is an ephemeral, process-local backend. Load returns a snapshot
// copy so callers can't mutate internal state; Save merges into the
// existing map rather than replacing it wholesale.
type Memory struct {
	mu      sync.Mutex
	records map[string]job.Record
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]job.Record)}
}

// Load implements Backend.
func (m *Memory) Load() map[string]job.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]job.Record, len(m.records))
	for k, v := range m.records {
		out[k] = v
	}
	return out
}

// Save implements Backend.
func (m *Memory) Save(records map[string]job.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range records {
		m.records[k] = v
	}
}

// LoadOne implements Backend.
func (m *Memory) LoadOne(id string) (job.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	return rec, ok
}

// SaveOne implements Backend.
func (m *Memory) SaveOne(id string, rec job.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = rec
}
