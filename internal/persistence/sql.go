package persistence

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/wardenlabs/chronos/job"
)

// SQL is the relational backend: a single kv(key TEXT PRIMARY KEY, value
// TEXT NOT NULL) table, value holding the job.Record encoded as JSON. It
// uses the pure-Go modernc.org/sqlite driver so the module needs no cgo
// toolchain.
type SQL struct {
	db *sql.DB
}

// OpenSQL opens (creating if necessary) a SQLite database at dsn and
// ensures the kv table exists.
func OpenSQL(dsn string) (*SQL, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite db at %s", dsn)
	}
	const schema = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create kv table")
	}
	return &SQL{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQL) Close() error {
	return s.db.Close()
}

// Load implements Backend: reads all rows. A read failure yields an empty
// mapping.
func (s *SQL) Load() map[string]job.Record {
	out := make(map[string]job.Record)
	rows, err := s.db.Query(`SELECT key, value FROM kv`)
	if err != nil {
		return out
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		var rec job.Record
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			continue
		}
		out[key] = rec
	}
	return out
}

// Save implements Backend: upserts each entry. A write failure for any
// given row is skipped silently.
func (s *SQL) Save(records map[string]job.Record) {
	for id, rec := range records {
		s.SaveOne(id, rec)
	}
}

// LoadOne implements Backend with a direct row lookup.
func (s *SQL) LoadOne(id string) (job.Record, bool) {
	var rec job.Record
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, id).Scan(&value)
	if err != nil {
		return rec, false
	}
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return job.Record{}, false
	}
	return rec, true
}

// SaveOne implements Backend with an upsert statement.
func (s *SQL) SaveOne(id string, rec job.Record) {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_, _ = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		id, string(encoded),
	)
}
