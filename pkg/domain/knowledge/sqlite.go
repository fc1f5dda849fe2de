package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fitglue/musclemap/pkg/domain/muscle"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS exercise_mappings (
	exercise_id TEXT PRIMARY KEY,
	primary_groups TEXT NOT NULL,
	secondary_groups TEXT NOT NULL
)`

// SQLiteStore keeps the table in a SQLite database, one row per exercise.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	// Single writer; the KB already serializes saves
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT exercise_id, primary_groups, secondary_groups FROM exercise_mappings")
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	t := Table{}
	for rows.Next() {
		var id, primary, secondary string
		if err := rows.Scan(&id, &primary, &secondary); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		var m Mapping
		if err := json.Unmarshal([]byte(primary), &m.Primary); err != nil {
			return nil, fmt.Errorf("invalid primary groups for %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(secondary), &m.Secondary); err != nil {
			return nil, fmt.Errorf("invalid secondary groups for %s: %w", id, err)
		}
		t[id] = m
	}
	return t, rows.Err()
}

// Save replaces every row in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, t Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM exercise_mappings"); err != nil {
		return fmt.Errorf("failed to clear mappings: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO exercise_mappings (exercise_id, primary_groups, secondary_groups) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for id, m := range t {
		primary, err := marshalGroups(m.Primary)
		if err != nil {
			return err
		}
		secondary, err := marshalGroups(m.Secondary)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, id, primary, secondary); err != nil {
			return fmt.Errorf("failed to insert %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func marshalGroups(groups []muscle.Group) (string, error) {
	if groups == nil {
		groups = []muscle.Group{}
	}
	b, err := json.Marshal(groups)
	if err != nil {
		return "", fmt.Errorf("failed to encode groups: %w", err)
	}
	return string(b), nil
}
