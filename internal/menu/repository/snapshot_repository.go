package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"fogon/internal/errors"
	"fogon/internal/menu/cache"
)

// snapshotName is the single named blob the menu cache persists under.
const snapshotName = "menu"

type MySQLSnapshotStore struct {
	db *sql.DB
}

func NewMySQLSnapshotStore(db *sql.DB) *MySQLSnapshotStore {
	return &MySQLSnapshotStore{db: db}
}

func (s *MySQLSnapshotStore) Load(ctx context.Context) (*cache.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM MenuSnapshot WHERE name = ?`, snapshotName,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreUnavailableError("loading menu snapshot", err)
	}

	var snapshot cache.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		// A corrupt blob is disposable; the caller recomputes.
		return nil, nil
	}

	return &snapshot, nil
}

func (s *MySQLSnapshotStore) Save(ctx context.Context, snapshot *cache.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshaling menu snapshot: %w", err)
	}

	query := `
		INSERT INTO MenuSnapshot (name, payload, updatedAt)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), updatedAt = VALUES(updatedAt)`

	if _, err := s.db.ExecContext(ctx, query, snapshotName, payload, snapshot.LastUpdated); err != nil {
		return errors.NewStoreUnavailableError("saving menu snapshot", err)
	}
	return nil
}

func (s *MySQLSnapshotStore) Delete(ctx context.Context) error {
	// Deleting an absent snapshot is not an error.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM MenuSnapshot WHERE name = ?`, snapshotName); err != nil {
		return errors.NewStoreUnavailableError("deleting menu snapshot", err)
	}
	return nil
}
