package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcboeker/go-duckdb"
	"github.com/neuroscan/scanclient/internal/models"
)

// DuckStore keeps the history in a DuckDB file. It is an optional
// backend for installations that want the history queryable with SQL;
// the Store semantics are identical to FileStore: append-only, no
// dedup, unreadable storage reads as empty.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

// NewDuckStore opens (or creates) a DuckDB-backed history at dbPath.
func NewDuckStore(dbPath string) (*DuckStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	connector, err := duckdb.NewConnector(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("opening DuckDB history: %w", err)
	}
	db := sql.OpenDB(connector)

	// seq preserves append order across processes.
	stmts := []string{
		`CREATE SEQUENCE IF NOT EXISTS scan_history_seq`,
		`CREATE TABLE IF NOT EXISTS scan_history (
			seq            BIGINT PRIMARY KEY,
			id             VARCHAR NOT NULL,
			ts             VARCHAR NOT NULL,
			classification VARCHAR NOT NULL,
			confidence     DOUBLE NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing history schema: %w", err)
		}
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// Append inserts one entry at the end of the history.
func (s *DuckStore) Append(entry models.HistoryEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO scan_history (seq, id, ts, classification, confidence)
		 VALUES (nextval('scan_history_seq'), ?, ?, ?, ?)`,
		entry.ID, entry.Timestamp, entry.Classification, entry.Confidence,
	)
	if err != nil {
		return fmt.Errorf("appending history entry: %w", err)
	}
	return nil
}

// List returns all entries in append order.
func (s *DuckStore) List() ([]models.HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, ts, classification, confidence FROM scan_history ORDER BY seq`)
	if err != nil {
		// Best-effort semantics: an unreadable history reads as empty.
		return nil, nil
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Classification, &e.Confidence); err != nil {
			return nil, nil
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (s *DuckStore) Close() error {
	return s.db.Close()
}
