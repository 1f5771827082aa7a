package persistence

import (
	"encoding/json"

	"github.com/wardenlabs/chronos/job"
)

// Transport is the unspecified wire protocol a Remote backend would speak
// to a remote key-value service. The scheduler only ever relies on the
// Backend mapping interface, never on Transport directly; a concrete
// implementation (gRPC, HTTP, Redis, etc.) can be supplied by an embedder
// without the scheduler package changing at all.
type Transport interface {
	Fetch() (map[string][]byte, error)
	Put(key string, value []byte) error
}

// Remote is a stub backend demonstrating that the persistence contract is
// transport-agnostic: everything it needs from Transport is a byte-blob
// key-value store, and it JSON-encodes job.Record itself. With no
// Transport configured it behaves like an always-empty, write-discarding
// backend, consistent with the "backends that cannot read/write" failure
// policy.
type Remote struct {
	transport Transport
}

// NewRemote returns a Remote backend speaking to transport. transport may
// be nil, in which case Load/Save are no-ops.
func NewRemote(transport Transport) *Remote {
	return &Remote{transport: transport}
}

func (r *Remote) Load() map[string]job.Record {
	out := make(map[string]job.Record)
	if r.transport == nil {
		return out
	}
	blobs, err := r.transport.Fetch()
	if err != nil {
		return out
	}
	for key, blob := range blobs {
		var rec job.Record
		if err := json.Unmarshal(blob, &rec); err != nil {
			continue
		}
		out[key] = rec
	}
	return out
}

func (r *Remote) Save(records map[string]job.Record) {
	if r.transport == nil {
		return
	}
	for id, rec := range records {
		r.SaveOne(id, rec)
	}
}

func (r *Remote) LoadOne(id string) (job.Record, bool) {
	all := r.Load()
	rec, ok := all[id]
	return rec, ok
}

func (r *Remote) SaveOne(id string, rec job.Record) {
	if r.transport == nil {
		return
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_ = r.transport.Put(id, blob)
}
