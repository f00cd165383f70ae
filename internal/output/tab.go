// Package output provides lookup result formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TabWriter writes lookup results in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Chromosome",
			"Position",
			"Gene",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single lookup result. An empty name is rendered as "-".
func (tw *TabWriter) Write(chrom string, pos int64, name string) error {
	if name == "" {
		name = "-"
	}
	_, err := fmt.Fprintf(tw.w, "%s\t%d\t%s\n", chrom, pos, name)
	return err
}

// Flush flushes buffered output.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
