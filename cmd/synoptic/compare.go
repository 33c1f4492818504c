// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synoptic/internal/crossval"
	"github.com/pdiddy/synoptic/pkg/types"
)

var compareCmd = &cobra.Command{
	Use:   "compare <folder>",
	Short: "Cross-validate a filter run against a run of the other strategy",
	Long: `Compare reads the dataset identity recorded in a filter output folder,
looks for a run of the other strategy (AI or REGEX) over the same dataset
and writes comparison_report.txt listing the papers both approved and the
papers only one of them approved.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().String("type", "", "filter type of the folder: AI or REGEX (default: read from its metadata)")
	compareCmd.Flags().String("work-dir", "", "root searched for sibling runs (default: filter.work_dir)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	folder := args[0]

	var ft types.FilterType
	if s, _ := cmd.Flags().GetString("type"); s != "" {
		ft = types.FilterType(strings.ToUpper(s))
		if !ft.Valid() {
			return fmt.Errorf("unknown filter type %q: use AI or REGEX", s)
		}
	} else {
		id, err := crossval.LoadMetadata(folder)
		if err != nil {
			return err
		}
		ft = id.FilterType
	}

	root, _ := cmd.Flags().GetString("work-dir")
	if root == "" {
		root = filterConfig().WorkDir
	}
	v := crossval.New(root, logger)
	v.ReportWriter = cmd.OutOrStdout()

	res := v.RunComparison(folder, ft)
	if res.Outcome != crossval.OutcomeCompared {
		fmt.Fprintf(cmd.OutOrStdout(), "No comparison: %s\n", res.Reason)
	}
	return nil
}
