package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/tablecore/internal/canon"
	"github.com/roach88/tablecore/internal/table"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one saved table state.
type Snapshot struct {
	ID          string      `json:"id"`
	TableName   string      `json:"table"`
	Fingerprint string      `json:"fingerprint"`
	Seq         int64       `json:"seq"`
	CreatedAt   time.Time   `json:"createdAt"`
	State       table.State `json:"state"`
}

// SaveSnapshot stores state under tableName.
// Returns the snapshot and whether a new row was inserted. Saving a state
// that is structurally equal to an existing snapshot of the same table
// returns that snapshot and inserted=false.
func (s *Store) SaveSnapshot(ctx context.Context, tableName string, state table.State) (snap Snapshot, inserted bool, err error) {
	if tableName == "" {
		return Snapshot{}, false, errors.New("save snapshot: table name is empty")
	}

	data, err := canon.Marshal(state)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot: %w", err)
	}
	fp := canon.HashWithDomain(canon.DomainState, data)

	var (
		id        string
		seq       int64
		createdAt time.Time
	)
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := scanSnapshot(tx.QueryRowContext(ctx,
			`SELECT `+snapshotColumns+` FROM snapshots WHERE table_name = ? AND fingerprint = ?`,
			tableName, fp))
		switch {
		case err == nil:
			snap = existing
			return nil
		case !errors.Is(err, ErrNotFound):
			return err
		}

		if seq, err = nextSeq(ctx, tx, tableName); err != nil {
			return err
		}
		if id, err = s.newID(); err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		createdAt = s.now().UTC()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshots
			(id, table_name, fingerprint, state, seq, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			id,
			tableName,
			fp,
			string(data),
			seq,
			createdAt.Format(time.RFC3339Nano),
		)
		return err
	})
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot: %w", err)
	}
	if id == "" {
		return snap, false, nil
	}

	return Snapshot{
		ID:          id,
		TableName:   tableName,
		Fingerprint: fp,
		Seq:         seq,
		CreatedAt:   createdAt,
		State:       state.Clone(),
	}, true, nil
}

// ReadSnapshot returns the snapshot with the given id.
// Returns an error wrapping ErrNotFound when it does not exist.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE id = ?
	`, id))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", id, err)
	}
	return snap, nil
}

// LatestSnapshot returns the snapshot of tableName with the highest seq.
// Returns an error wrapping ErrNotFound when the table has none.
func (s *Store) LatestSnapshot(ctx context.Context, tableName string) (Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE table_name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, tableName))
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot %s: %w", tableName, err)
	}
	return snap, nil
}

// ListSnapshots returns the snapshots of tableName in save order, or of
// every table when tableName is empty.
//
// Returns an empty slice (not nil) if no snapshots exist.
func (s *Store) ListSnapshots(ctx context.Context, tableName string) ([]Snapshot, error) {
	query := `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE (? = '' OR table_name = ?)
		ORDER BY table_name COLLATE BINARY ASC, seq ASC, id COLLATE BINARY ASC
	`
	rows, err := s.db.QueryContext(ctx, query, tableName, tableName)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snaps, nil
}

// DeleteSnapshot removes a snapshot. Deleting a missing id is not an error.
func (s *Store) DeleteSnapshot(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		snap      Snapshot
		createdAt string
		stateJSON string
	)
	err := row.Scan(&snap.ID, &snap.TableName, &snap.Fingerprint, &snap.Seq, &createdAt, &stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}

	snap.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot %s: created_at: %w", snap.ID, err)
	}
	if err := json.Unmarshal([]byte(stateJSON), &snap.State); err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot %s: %w", snap.ID, err)
	}
	return snap, nil
}
