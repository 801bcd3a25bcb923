package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/redshield/locsync/pkg/errors"
	"github.com/redshield/locsync/pkg/ledger"
)

// SQLiteStore keeps the correction set in a SQLite database, one row per
// (identifier, field) pair. Save replaces the whole table in one
// transaction, preserving the full-overwrite contract.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the store database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.NewStoreError("open", "sqlite", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewStoreError("open", "sqlite", err)
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, errors.NewStoreError("open", "sqlite", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS corrections (
  gdos_id TEXT NOT NULL,
  field TEXT NOT NULL,
  correct TEXT NOT NULL,
  value TEXT,
  territory TEXT,
  PRIMARY KEY (gdos_id, field)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, errors.NewStoreError("open", "sqlite", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Load implements ledger.Store.
func (s *SQLiteStore) Load(ctx context.Context) ([]ledger.Correction, time.Time, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT gdos_id, field, correct, COALESCE(value, ''), COALESCE(territory, '')
FROM corrections ORDER BY gdos_id, field`)
	if err != nil {
		return nil, time.Time{}, errors.NewStoreError("load", "sqlite", err)
	}
	defer rows.Close()

	var corrections []ledger.Correction
	for rows.Next() {
		var c ledger.Correction
		if err := rows.Scan(&c.ID, &c.Field, &c.Correct, &c.Value, &c.Territory); err != nil {
			return nil, time.Time{}, errors.NewStoreError("load", "sqlite", err)
		}
		corrections = append(corrections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, errors.NewStoreError("load", "sqlite", err)
	}

	updated, err := s.lastUpdated(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	return corrections, updated, nil
}

func (s *SQLiteStore) lastUpdated(ctx context.Context) (time.Time, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'lastUpdated'`).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, errors.NewStoreError("load", "sqlite", err)
	}
	updated, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, nil
	}
	return updated, nil
}

// Save implements ledger.Store. The previous set is replaced wholesale.
func (s *SQLiteStore) Save(ctx context.Context, corrections []ledger.Correction) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("save", "sqlite", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM corrections`); err != nil {
		return errors.NewStoreError("save", "sqlite", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO corrections (gdos_id, field, correct, value, territory)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.NewStoreError("save", "sqlite", err)
	}
	defer stmt.Close()

	for _, c := range corrections {
		if _, err := stmt.ExecContext(ctx, c.ID, string(c.Field), string(c.Correct), c.Value, c.Territory); err != nil {
			return errors.NewStoreError("save", "sqlite", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO metadata (key, value) VALUES ('lastUpdated', ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return errors.NewStoreError("save", "sqlite", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStoreError("save", "sqlite", err)
	}
	return nil
}
