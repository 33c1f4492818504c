// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synoptic/internal/query"
)

var expandCmd = &cobra.Command{
	Use:   "expand <query>",
	Short: "Expand a boolean query into concrete search strings",
	Long: `Expand rewrites a boolean query into the list of plain queries it stands
for. AND concatenates, OR branches, NOT appends " NOT <term>", parentheses
group and *asterisks* mark an exact phrase:

  synoptic expand '(graphene OR graphyne) AND *band gap*'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().Bool("json", false, "output the expansions as a JSON array")
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	scenarios, err := query.Expand(strings.Join(args, " "))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(scenarios)
	}
	for _, s := range scenarios {
		fmt.Fprintln(out, s)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d search(es)\n", len(scenarios))
	return nil
}
