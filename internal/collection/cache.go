// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collection

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/labhal/pkg/types"
)

const cacheDBFile = "collections.db"

// Cache persists collection snapshots in SQLite, keyed by
// (collection code, start year, end year), so a re-run can reuse an
// imported snapshot instead of re-paging the repository.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the snapshot database under dir.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, cacheDBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			start_year INTEGER NOT NULL,
			end_year INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE(collection, start_year, end_year)
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			repository_id TEXT NOT NULL,
			doi TEXT,
			title TEXT,
			normalized_title TEXT,
			deposit_type TEXT,
			external_link TEXT,
			external_id TEXT,
			canonical_uri TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_snapshot ON entries(snapshot_id)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores the index entries as the snapshot for the config's
// (collection, year range) key, replacing any previous snapshot.
func (c *Cache) Save(ctx context.Context, cfg types.CollectionConfig, entries []types.CollectionEntry) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning cache transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE collection = ? AND start_year = ? AND end_year = ?`,
		cfg.Code, cfg.StartYear, cfg.EndYear); err != nil {
		return fmt.Errorf("clearing previous snapshot: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (collection, start_year, end_year, created_at) VALUES (?, ?, ?, ?)`,
		cfg.Code, cfg.StartYear, cfg.EndYear, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	snapshotID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading snapshot id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (snapshot_id, repository_id, doi, title, normalized_title,
			deposit_type, external_link, external_id, canonical_uri)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, snapshotID, e.RepositoryID, e.DOI, e.Title,
			e.NormalizedTitle, string(e.DepositType), e.ExternalLink, e.ExternalID, e.CanonicalURI); err != nil {
			return fmt.Errorf("inserting entry for %s: %w", e.RepositoryID, err)
		}
	}

	return tx.Commit()
}

// Load returns the cached index for the config's key, or (nil, false)
// when no snapshot exists.
func (c *Cache) Load(ctx context.Context, cfg types.CollectionConfig) (*Index, bool, error) {
	var snapshotID int64
	err := c.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots WHERE collection = ? AND start_year = ? AND end_year = ?`,
		cfg.Code, cfg.StartYear, cfg.EndYear).Scan(&snapshotID)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up snapshot: %w", err)
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT repository_id, doi, title, normalized_title, deposit_type,
			external_link, external_id, canonical_uri
		FROM entries WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return nil, false, fmt.Errorf("loading snapshot entries: %w", err)
	}
	defer rows.Close()

	var entries []types.CollectionEntry
	for rows.Next() {
		var e types.CollectionEntry
		var depositType string
		if err := rows.Scan(&e.RepositoryID, &e.DOI, &e.Title, &e.NormalizedTitle,
			&depositType, &e.ExternalLink, &e.ExternalID, &e.CanonicalURI); err != nil {
			return nil, false, fmt.Errorf("scanning snapshot entry: %w", err)
		}
		e.DepositType = types.DepositType(depositType)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating snapshot entries: %w", err)
	}

	return NewIndex(entries), true, nil
}
