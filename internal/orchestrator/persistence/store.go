// Package persistence durably stores AppState snapshots. It keeps exactly
// one row: the whole application persists as a single JSON blob rather than
// per-entity repository tables, since SaveAppState coalesces every mutation
// into one snapshot write.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kandev/luban/internal/db"
	"github.com/kandev/luban/internal/orchestrator/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS app_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	payload BLOB NOT NULL,
	updated_at_unix_ms INTEGER NOT NULL
);
`

// Store persists a single PersistedAppState snapshot to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the snapshot table exists.
func Open(path string) (*Store, error) {
	conn, err := db.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open app state database: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create app_state schema: %w", err)
	}
	return &Store{db: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the persisted snapshot. ok is false if no snapshot has ever
// been saved (a fresh database), in which case callers should start from
// model.NewAppState().
func (s *Store) Load() (snapshot model.PersistedAppState, ok bool, err error) {
	var payload []byte
	row := s.db.QueryRow(`SELECT payload FROM app_state WHERE id = 1`)
	if scanErr := row.Scan(&payload); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return model.PersistedAppState{}, false, nil
		}
		return model.PersistedAppState{}, false, fmt.Errorf("read app state row: %w", scanErr)
	}
	if unmarshalErr := json.Unmarshal(payload, &snapshot); unmarshalErr != nil {
		return model.PersistedAppState{}, false, fmt.Errorf("decode app state payload: %w", unmarshalErr)
	}
	return snapshot, true, nil
}

// Save overwrites the persisted snapshot in a single upsert.
func (s *Store) Save(snapshot model.PersistedAppState, nowUnixMillis int64) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode app state payload: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO app_state (id, payload, updated_at_unix_ms) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at_unix_ms = excluded.updated_at_unix_ms`,
		payload, nowUnixMillis,
	)
	if err != nil {
		return fmt.Errorf("write app state row: %w", err)
	}
	return nil
}
