// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synoptic/internal/stats"
)

const statsDBFile = "stats.db"

var statsCmd = &cobra.Command{
	Use:   "stats <folder>...",
	Short: "Analyze result folders: top papers, productive years, prolific authors",
	Long: `Stats loads every data CSV of each folder, removes duplicate titles and
writes top_papers.csv, productive_years.csv and prolific_authors.csv to
log/<folder>/. The folder's rows are kept in log/<folder>/stats.db, which
is rebuilt on every run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().String("log-dir", "", "root of the report folders (default log)")
	statsCmd.Flags().Int("top", 0, "entries printed per table (default 5)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{"log-dir": "stats.log_dir", "top": "stats.top"}); err != nil {
		return err
	}
	cfg := statsConfig()
	w := cmd.OutOrStdout()

	for _, folder := range args {
		dir := stats.ReportDir(cfg.LogDir, folder)
		if err := analyzeFolder(cmd, folder, dir, cfg.Top); err != nil {
			return err
		}
		fmt.Fprintf(w, "Statistics saved to: %s\n", dir)
	}
	return nil
}

func analyzeFolder(cmd *cobra.Command, folder, dir string, top int) error {
	dbPath := filepath.Join(dir, statsDBFile)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing old database: %w", err)
		}
	}

	store, err := stats.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, w := cmd.Context(), cmd.OutOrStdout()
	if _, err := store.Ingest(ctx, folder, w); err != nil {
		return err
	}
	if _, err := store.WriteReports(ctx, dir); err != nil {
		return err
	}
	sum, err := store.Summary(ctx, top)
	if err != nil {
		return err
	}
	stats.PrintSummary(w, sum, top)
	return nil
}
