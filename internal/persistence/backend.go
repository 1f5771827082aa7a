// Package persistence defines the scheduler's pluggable metadata store and
// provides memory, file (JSON), bbolt, and SQL variants, plus a stub for a
// remote key-value transport. Every variant stores a single top-level
// mapping from job id to a serialized job.Record.
package persistence

import "github.com/wardenlabs/chronos/job"

// Backend is the capability set the scheduler relies on. Concrete variants
// may override LoadOne/SaveOne with a specialized implementation; the
// default read-modify-write helpers in this package cover the rest.
//
// Backends that cannot read return an empty mapping; backends that cannot
// write silently skip. Persistence loss must never block scheduling.
type Backend interface {
	// Load returns every persisted record, keyed by job id.
	Load() map[string]job.Record
	// Save persists the full set of records, merging with whatever the
	// backend already holds.
	Save(records map[string]job.Record)
	// LoadOne returns a single record and whether it was found.
	LoadOne(id string) (job.Record, bool)
	// SaveOne persists a single record.
	SaveOne(id string, rec job.Record)
}

// loadModifySave implements LoadOne/SaveOne in terms of Load/Save, for
// backends whose underlying store has no cheaper single-key path.
type loadModifySave struct {
	backend Backend
}

func (l loadModifySave) LoadOne(id string) (job.Record, bool) {
	all := l.backend.Load()
	rec, ok := all[id]
	return rec, ok
}

func (l loadModifySave) SaveOne(id string, rec job.Record) {
	all := l.backend.Load()
	if all == nil {
		all = make(map[string]job.Record)
	}
	all[id] = rec
	l.backend.Save(all)
}
