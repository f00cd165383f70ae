// Package lookup exposes positional feature lookup behind a single
// interface, choosing between the in-memory index and the DuckDB-backed
// store based on the annotation file's size.
package lookup

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-gene/internal/annotation"
	"github.com/inodb/vibe-gene/internal/duckdb"
	"github.com/inodb/vibe-gene/internal/index"
)

// DefaultLineThreshold is the annotation-file line count at which the
// service switches from the in-memory index to the persistent store.
const DefaultLineThreshold = 1_000_000

// Backend answers point-containment queries for one annotation file.
// Both implementations return index.ErrChromosomeNotFound and
// index.ErrPositionNotFound for the two not-found conditions.
type Backend interface {
	Lookup(chrom string, pos int64) (string, error)
	Close() error
}

// Config tunes service construction.
type Config struct {
	// LineThreshold selects the backend: files with fewer lines get the
	// in-memory index, files at or above it the persistent store.
	// Zero means DefaultLineThreshold.
	LineThreshold int
	// StorePath is the DuckDB database path for the persistent backend.
	// Defaults to the annotation path with a ".duckdb" suffix.
	StorePath string
	// TreeCutoff is passed through to index.BuildOptions.
	TreeCutoff int
	// Logger receives diagnostics. Nil means no logging.
	Logger *zap.Logger
}

// Service answers lookup queries against one annotation file.
type Service struct {
	backend Backend
	logger  *zap.Logger
}

// New builds a lookup service for the annotation file at path. The backend
// is chosen once, here, from the file's line count; queries never branch
// on backend type again.
func New(path string, cfg Config) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.LineThreshold
	if threshold == 0 {
		threshold = DefaultLineThreshold
	}

	lines, err := annotation.CountLines(path)
	if err != nil {
		return nil, err
	}

	var backend Backend
	if lines < threshold {
		logger.Debug("building in-memory index",
			zap.String("path", path), zap.Int("lines", lines))
		gi, err := index.Build(path, index.BuildOptions{TreeCutoff: cfg.TreeCutoff})
		if err != nil {
			return nil, fmt.Errorf("build genome index: %w", err)
		}
		if gi.SkippedLines() > 0 {
			logger.Debug("skipped malformed annotation lines",
				zap.Int("count", gi.SkippedLines()))
		}
		backend = &memoryBackend{index: gi}
	} else {
		storePath := cfg.StorePath
		if storePath == "" {
			storePath = path + ".duckdb"
		}
		logger.Debug("using persistent store",
			zap.String("path", path),
			zap.String("store", storePath),
			zap.Int("lines", lines))
		store, err := duckdb.Open(storePath)
		if err != nil {
			return nil, err
		}
		store.SetLogger(logger)
		if err := store.Ingest(path); err != nil {
			store.Close()
			return nil, err
		}
		backend = store
	}

	return &Service{backend: backend, logger: logger}, nil
}

// Lookup returns the name of the feature covering pos on chrom, or the
// empty string when nothing matches. Not-found conditions are never
// errors; they surface as a diagnostic on the logger, distinguishing a
// missing chromosome from an uncovered position. Backend failures other
// than not-found propagate.
func (s *Service) Lookup(chrom string, pos int64) (string, error) {
	name, err := s.backend.Lookup(chrom, pos)
	switch {
	case err == nil:
		return name, nil
	case errors.Is(err, index.ErrChromosomeNotFound):
		s.logger.Warn("chromosome not in index", zap.String("chrom", chrom))
		return "", nil
	case errors.Is(err, index.ErrPositionNotFound):
		s.logger.Warn("no feature covers position",
			zap.String("chrom", chrom), zap.Int64("pos", pos))
		return "", nil
	default:
		return "", err
	}
}

// Close releases backend resources.
func (s *Service) Close() error {
	return s.backend.Close()
}

// memoryBackend adapts the in-memory GenomeIndex to the Backend interface.
type memoryBackend struct {
	index *index.GenomeIndex
}

func (m *memoryBackend) Lookup(chrom string, pos int64) (string, error) {
	return m.index.Query(chrom, pos)
}

func (m *memoryBackend) Close() error { return nil }
