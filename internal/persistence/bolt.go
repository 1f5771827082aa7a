package persistence

import (
	"encoding/json"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/wardenlabs/chronos/job"
)

const jobsBucket = "jobs"

// Bolt is the embedded-KV backend, grounded directly on the teacher
// repo's BoltDB client: one bucket, one key per job id, JSON-encoded
// values. The store is opened for the lifetime of the Bolt value (spec's
// "shelve-like" variant note refers to opening per-operation; bbolt's
// transaction model gives the same effective isolation without reopening
// the file on every call).
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens (creating if necessary) a bbolt database at path and
// ensures the jobs bucket exists.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open bbolt db at %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(jobsBucket))
		return errors.Wrapf(err, "create %s bucket", jobsBucket)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

// Close releases the underlying bbolt file handle.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Load implements Backend. A read failure yields an empty mapping.
func (b *Bolt) Load() map[string]job.Record {
	out := make(map[string]job.Record)
	_ = b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(jobsBucket))
		if bucket == nil {
			return nil
		}
		cur := bucket.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var rec job.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			out[string(k)] = rec
		}
		return nil
	})
	return out
}

// Save implements Backend: upsert every entry. A write failure for any
// given key is skipped silently (best-effort persistence).
func (b *Bolt) Save(records map[string]job.Record) {
	_ = b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(jobsBucket))
		if bucket == nil {
			return nil
		}
		for id, rec := range records {
			encoded, err := json.Marshal(rec)
			if err != nil {
				continue
			}
			_ = bucket.Put([]byte(id), encoded)
		}
		return nil
	})
}

// LoadOne specializes the default read-modify-write helper with a direct
// bucket Get, mirroring the teacher's GetJob.
func (b *Bolt) LoadOne(id string) (job.Record, bool) {
	var rec job.Record
	var found bool
	_ = b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(jobsBucket))
		if bucket == nil {
			return nil
		}
		val := bucket.Get([]byte(id))
		if val == nil {
			return nil
		}
		if err := json.Unmarshal(val, &rec); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return rec, found
}

// SaveOne specializes the default read-modify-write helper with a direct
// bucket Put, mirroring the teacher's SaveJob.
func (b *Bolt) SaveOne(id string, rec job.Record) {
	_ = b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(jobsBucket))
		if bucket == nil {
			return nil
		}
		encoded, err := json.Marshal(rec)
		if err != nil {
			return nil
		}
		return bucket.Put([]byte(id), encoded)
	})
}
