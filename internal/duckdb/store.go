// Package duckdb provides the persistent lookup backend for large
// annotation files. Features are stored one table per chromosome with a
// range index on (start, end_), and queried without loading the file
// into memory.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/inodb/vibe-gene/internal/index"
)

// Store manages a DuckDB connection holding a persisted feature index.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, logger: zap.NewNop()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// SetLogger sets the logger for informational messages.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates the metadata tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS source_files (
			path VARCHAR PRIMARY KEY,
			size BIGINT,
			mod_time_ns BIGINT
		);

		CREATE TABLE IF NOT EXISTS chromosomes (
			chrom VARCHAR PRIMARY KEY,
			table_name VARCHAR,
			feature_count BIGINT
		);
	`)
	return err
}

// Lookup returns the name of the first feature, in source-file order, that
// strictly covers pos on chrom. Returns index.ErrChromosomeNotFound when
// the chromosome has no partition and index.ErrPositionNotFound when no
// feature covers the position. Any other engine error is fatal.
func (s *Store) Lookup(chrom string, pos int64) (string, error) {
	table, err := s.tableFor(chrom)
	if err != nil {
		return "", err
	}

	var name string
	err = s.db.QueryRow(fmt.Sprintf(`
		SELECT name FROM %s
		WHERE start < ? AND end_ > ?
		ORDER BY ordinal
		LIMIT 1
	`, quoteIdent(table)), pos, pos).Scan(&name)
	if err == sql.ErrNoRows {
		return "", index.ErrPositionNotFound
	}
	if err != nil {
		if isMissingTable(err) {
			return "", index.ErrChromosomeNotFound
		}
		return "", fmt.Errorf("query features: %w", err)
	}
	return name, nil
}

// tableFor resolves a chromosome to its partition table name.
func (s *Store) tableFor(chrom string) (string, error) {
	var table string
	err := s.db.QueryRow(
		`SELECT table_name FROM chromosomes WHERE chrom = ?`, chrom,
	).Scan(&table)
	if err == sql.ErrNoRows {
		return "", index.ErrChromosomeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query chromosome partition: %w", err)
	}
	return table, nil
}

// Chromosomes returns a sorted list of chromosomes in the store.
func (s *Store) Chromosomes() ([]string, error) {
	rows, err := s.db.Query(`SELECT chrom FROM chromosomes ORDER BY chrom`)
	if err != nil {
		return nil, fmt.Errorf("query chromosomes: %w", err)
	}
	defer rows.Close()

	var chroms []string
	for rows.Next() {
		var chrom string
		if err := rows.Scan(&chrom); err != nil {
			return nil, err
		}
		chroms = append(chroms, chrom)
	}
	return chroms, rows.Err()
}

// FeatureCount returns the total number of features in the store.
func (s *Store) FeatureCount() (int64, error) {
	var count sql.NullInt64
	err := s.db.QueryRow(`SELECT SUM(feature_count) FROM chromosomes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("query feature count: %w", err)
	}
	return count.Int64, nil
}

// isMissingTable reports whether an engine error is DuckDB's catalog
// "table does not exist" condition. Only this condition is translated to
// a not-found result; everything else propagates.
func isMissingTable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Catalog Error") && strings.Contains(msg, "does not exist")
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
