package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/wardenlabs/chronos/job"
)

// File is a backend that keeps the entire mapping in a single JSON file.
// Atomic write semantics are not required: a crash mid-write may leave a
// truncated file, which the next Load simply treats as empty.
type File struct {
	mu   sync.Mutex
	path string
	loadModifySave
}

// NewFile returns a File backend writing to path. The directory is created
// lazily on the first Save.
func NewFile(path string) *File {
	f := &File{path: path}
	f.loadModifySave = loadModifySave{backend: f}
	return f
}

// Load implements Backend. On read failure or missing file it yields an
// empty mapping; it logs nothing (the caller's scheduler decides whether
// to log).
func (f *File) Load() map[string]job.Record {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return make(map[string]job.Record)
	}
	var records map[string]job.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return make(map[string]job.Record)
	}
	if records == nil {
		records = make(map[string]job.Record)
	}
	return records
}

// Save implements Backend: merge onto whatever is on disk, then overwrite.
func (f *File) Save(records map[string]job.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing := f.loadLocked()
	for k, v := range records {
		existing[k] = v
	}

	dir := filepath.Dir(f.path)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return
		}
	}
	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(f.path, data, 0o644)
}

func (f *File) loadLocked() map[string]job.Record {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return make(map[string]job.Record)
	}
	var records map[string]job.Record
	if err := json.Unmarshal(data, &records); err != nil || records == nil {
		return make(map[string]job.Record)
	}
	return records
}
