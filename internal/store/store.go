// Package store is the local persisted collection of market records. It is
// append-only: records are inserted once per fetch and never updated,
// deleted, or deduplicated — re-fetching a date adds rows.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/linqiu/marketlens/internal/market"
)

// schemaVersion is fixed; there is no migration path. Opening a store
// written by a different version fails with ErrSchemaVersion and requires
// deleting the database file.
const schemaVersion = "1"

// ErrSchemaVersion is returned by Open when the on-disk schema version does
// not match this build.
var ErrSchemaVersion = errors.New("store schema version mismatch; delete the database file to reset")

type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			category       TEXT NOT NULL,
			date           TEXT NOT NULL,
			title          TEXT NOT NULL,
			region         TEXT NOT NULL,
			entity         TEXT NOT NULL,
			amount         TEXT NOT NULL,
			summary        TEXT NOT NULL DEFAULT '',
			source_indices TEXT NOT NULL DEFAULT '[]',
			sources        TEXT NOT NULL DEFAULT '[]',
			fetched_at     DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_items_date ON items(date);
		CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);
		CREATE INDEX IF NOT EXISTS idx_items_region ON items(region);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return s.checkSchemaVersion()
}

func (s *Store) checkSchemaVersion() error {
	var v string
	err := s.writeDB.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.writeDB.Exec("INSERT INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
		if err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if v != schemaVersion {
		return fmt.Errorf("%w (found %s, want %s)", ErrSchemaVersion, v, schemaVersion)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Insert appends every item as a new row inside one transaction and fills
// in the assigned IDs. The batch commits whole or not at all; on error no
// item from the batch is persisted. Duplicates are not checked.
func (s *Store) Insert(items []market.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO items (category, date, title, region, entity, amount, summary, source_indices, sources, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range items {
		it := &items[i]
		indices, err := json.Marshal(it.SourceIndices)
		if err != nil {
			return fmt.Errorf("encoding source indices: %w", err)
		}
		sources, err := json.Marshal(it.Sources)
		if err != nil {
			return fmt.Errorf("encoding sources: %w", err)
		}
		res, err := stmt.Exec(string(it.Category), it.Date, it.Title, it.Region, it.Entity,
			it.Amount, it.Summary, string(indices), string(sources), it.FetchedAt)
		if err != nil {
			return fmt.Errorf("inserting item %q: %w", it.Title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading assigned id: %w", err)
		}
		it.ID = id
	}

	return tx.Commit()
}

// Query applies the params conjunctively and returns matches sorted by date
// descending, ties broken by insertion order. Date bounds compare
// lexicographically, which is correct for the fixed-width ISO form.
func (s *Store) Query(params market.QueryParams) ([]market.Item, error) {
	var (
		where []string
		args  []interface{}
	)

	if params.StartDate != "" {
		where = append(where, "date >= ?")
		args = append(args, params.StartDate)
	}
	if params.EndDate != "" {
		where = append(where, "date <= ?")
		args = append(args, params.EndDate)
	}
	if params.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(params.Category))
	}
	if params.Region != "" {
		where = append(where, "region LIKE ?")
		args = append(args, "%"+params.Region+"%")
	}
	if params.EntityKeyword != "" {
		where = append(where, "(LOWER(entity) LIKE ? OR LOWER(title) LIKE ?)")
		term := "%" + strings.ToLower(params.EntityKeyword) + "%"
		args = append(args, term, term)
	}

	query := "SELECT id, category, date, title, region, entity, amount, summary, source_indices, sources, fetched_at FROM items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id ASC"

	rows, err := s.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []market.Item
	for rows.Next() {
		var (
			it          market.Item
			cat         string
			indicesJSON string
			sourcesJSON string
		)
		if err := rows.Scan(&it.ID, &cat, &it.Date, &it.Title, &it.Region, &it.Entity,
			&it.Amount, &it.Summary, &indicesJSON, &sourcesJSON, &it.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		it.Category = market.Category(cat)
		if err := json.Unmarshal([]byte(indicesJSON), &it.SourceIndices); err != nil {
			return nil, fmt.Errorf("decoding source indices for item %d: %w", it.ID, err)
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &it.Sources); err != nil {
			return nil, fmt.Errorf("decoding sources for item %d: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MissingCategories returns every category with no row for date, in
// canonical enumeration order: a set difference over the fixed category
// universe.
func (s *Store) MissingCategories(date string) ([]market.Category, error) {
	rows, err := s.readDB.Query("SELECT DISTINCT category FROM items WHERE date = ?", date)
	if err != nil {
		return nil, fmt.Errorf("querying categories for %s: %w", date, err)
	}
	defer rows.Close()

	present := make(map[market.Category]bool)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		present[market.Category(c)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []market.Category
	for _, c := range market.Categories() {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing, nil
}

// Stats returns the row count and on-disk size of the store.
func (s *Store) Stats(dbPath string) (count int64, size int64, err error) {
	if err := s.readDB.QueryRow("SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting items: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("reading db size: %w", err)
	}
	return count, info.Size(), nil
}
