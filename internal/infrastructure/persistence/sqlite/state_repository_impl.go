package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/themis-iprm/themis/internal/application/port/output"
)

// StateRepositoryImpl implements output.StateRepository with SQLite.
// Each named record is one row of wizard_state.
type StateRepositoryImpl struct {
	db  *sql.DB
	now func() time.Time
}

// NewStateRepository creates a new SQLite-based state repository.
// The schema must already be migrated.
func NewStateRepository(db *sql.DB) *StateRepositoryImpl {
	return &StateRepositoryImpl{db: db, now: time.Now}
}

// Open opens (creating if needed) the database at path and migrates it
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// one writer per CLI run
	db.SetMaxOpenConns(1)

	if err := NewMigrator(db).Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database %s: %w", path, err)
	}
	return db, nil
}

// Load returns the payload stored under name
func (r *StateRepositoryImpl) Load(ctx context.Context, name string) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM wizard_state WHERE name = ?`, name,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, output.ErrStateNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load wizard state %s: %w", name, err)
	}
	return []byte(payload), nil
}

// Save upserts the payload under name.
// The version column mirrors the record's own version field when it has one.
func (r *StateRepositoryImpl) Save(ctx context.Context, name string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wizard_state (name, version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		name,
		recordVersion(data),
		string(data),
		r.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save wizard state %s: %w", name, err)
	}
	return nil
}

// Delete removes the record stored under name; deleting a missing record is not an error
func (r *StateRepositoryImpl) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wizard_state WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete wizard state %s: %w", name, err)
	}
	return nil
}

func recordVersion(data []byte) int {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0
	}
	return head.Version
}
