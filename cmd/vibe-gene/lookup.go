package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-gene/internal/lookup"
	"github.com/inodb/vibe-gene/internal/output"
)

func newLookupCmd() *cobra.Command {
	var (
		positionsFile string
		storePath     string
		threshold     int
		outputFile    string
	)

	cmd := &cobra.Command{
		Use:   "lookup <annotation-file> [<chromosome> <position>]",
		Short: "Look up the gene covering a genomic position",
		Long: `Look up which named feature covers a position on a chromosome.

A single query prints the gene name (or nothing when no feature covers the
position). With --positions, queries are read as chromosome<TAB>position
lines and results are written tab-delimited.`,
		Example: `  vibe-gene lookup genes.tsv chr1 160
  vibe-gene lookup genes.tsv.gz chr12 25245350
  vibe-gene lookup genes.tsv --positions queries.tsv -o results.tsv`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if positionsFile == "" && len(args) != 3 {
				return fmt.Errorf("need <chromosome> <position> arguments or --positions")
			}

			logger := newLogger()
			defer logger.Sync()

			if threshold == 0 {
				threshold = viper.GetInt("lookup.threshold")
			}
			if storePath == "" {
				storePath = viper.GetString("lookup.store")
			}

			svc, err := lookup.New(args[0], lookup.Config{
				LineThreshold: threshold,
				StorePath:     storePath,
				Logger:        logger,
			})
			if err != nil {
				return err
			}
			defer svc.Close()

			if positionsFile != "" {
				return runBatchLookup(svc, positionsFile, outputFile)
			}

			pos, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("parse position %q: %w", args[2], err)
			}

			name, err := svc.Lookup(args[1], pos)
			if err != nil {
				return err
			}
			if name != "" {
				fmt.Println(name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&positionsFile, "positions", "", "Batch mode: file of chromosome<TAB>position queries")
	cmd.Flags().StringVar(&storePath, "store", "", "DuckDB store path for large files (default: <annotation-file>.duckdb)")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "Line count at which the persistent store is used (default: 1000000)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for batch results (default: stdout)")

	return cmd
}

// runBatchLookup streams chromosome<TAB>position queries through the
// service and writes tab-delimited results.
func runBatchLookup(svc *lookup.Service, positionsFile, outputFile string) error {
	in, err := os.Open(positionsFile)
	if err != nil {
		return fmt.Errorf("open positions file: %w", err)
	}
	defer in.Close()

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	tw := output.NewTabWriter(out)
	if err := tw.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	scanner := bufio.NewScanner(in)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 2 {
			continue
		}
		pos, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("positions line %d: parse position %q: %w", lineNum, fields[1], err)
		}
		name, err := svc.Lookup(fields[0], pos)
		if err != nil {
			return err
		}
		if err := tw.Write(fields[0], pos, name); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read positions file: %w", err)
	}
	return tw.Flush()
}
