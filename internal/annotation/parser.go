package annotation

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Record is one parsed annotation line: a feature on a named chromosome.
type Record struct {
	Chrom   string
	Feature Feature
}

// Stats tracks what a parse pass saw.
type Stats struct {
	Lines   int // total lines read
	Records int // well-formed records yielded
	Skipped int // lines with fewer than 4 fields, silently dropped
}

// ParseFile streams an annotation file line by line, calling fn for each
// well-formed record. Gzipped files (.gz suffix) are handled transparently.
//
// Each line is split on tabs; lines with fewer than 4 fields are skipped
// without error. Fields 0-3 are chromosome, start, end, name; extra fields
// are ignored. A non-integer start or end is a fatal parse error.
func ParseFile(path string, fn func(Record) error) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open annotation file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Stats{}, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return Parse(reader, fn)
}

// Parse streams annotation records from r. See ParseFile for the format.
func Parse(r io.Reader, fn func(Record) error) (Stats, error) {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var stats Stats
	for scanner.Scan() {
		stats.Lines++
		line := scanner.Text()

		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			stats.Skipped++
			continue
		}

		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return stats, fmt.Errorf("line %d: parse start %q: %w", stats.Lines, fields[1], err)
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return stats, fmt.Errorf("line %d: parse end %q: %w", stats.Lines, fields[2], err)
		}

		rec := Record{
			Chrom:   fields[0],
			Feature: Feature{Start: start, End: end, Name: fields[3]},
		}
		if err := fn(rec); err != nil {
			return stats, err
		}
		stats.Records++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read annotation file: %w", err)
	}
	return stats, nil
}

// CountLines returns the number of lines in a file, gzip-aware.
// Used to decide which lookup backend to build.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open annotation file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	count := 0
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("count lines: %w", err)
	}
	return count, nil
}
