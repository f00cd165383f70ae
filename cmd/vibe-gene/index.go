package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-gene/internal/duckdb"
)

func newIndexCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "index <annotation-file>",
		Short: "Pre-build a persistent DuckDB index for an annotation file",
		Long: `Ingest an annotation file into a DuckDB database, one table per
chromosome with a range index on (start, end). If the database already
holds an index for this exact file, the ingest is skipped.`,
		Example: `  vibe-gene index genes.tsv
  vibe-gene index genes.tsv --output /data/genes.duckdb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			if outputPath == "" {
				outputPath = args[0] + ".duckdb"
			}
			if ext := filepath.Ext(outputPath); ext != ".duckdb" && ext != ".db" {
				outputPath += ".duckdb"
			}

			store, err := duckdb.Open(outputPath)
			if err != nil {
				return err
			}
			defer store.Close()
			store.SetLogger(logger)

			if err := store.Ingest(args[0]); err != nil {
				return err
			}

			count, err := store.FeatureCount()
			if err != nil {
				return err
			}
			chroms, err := store.Chromosomes()
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d features across %d chromosomes in %s\n",
				count, len(chroms), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output DuckDB file path (default: <annotation-file>.duckdb)")

	return cmd
}
