// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/pdiddy/sos-convert/internal/ledger"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search the cells of converted files",
	Long: `Search looks through the cells recorded in the conversion ledger using
full-text search, structured filters (cell type, kernel, source), or a
combination of both.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	opts := searchOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, --kernel, or --source")
	}

	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func searchOptsFromFlags(cmd *cobra.Command, args []string) ledger.QueryOptions {
	cellType, _ := cmd.Flags().GetString("type")
	kernel, _ := cmd.Flags().GetString("kernel")
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	return ledger.QueryOptions{
		Query:      strings.Join(args, " "),
		CellType:   cellType,
		Kernel:     kernel,
		Source:     source,
		MaxResults: limit,
	}
}

func formatSearchOutput(w io.Writer, results []ledger.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-4s  %-8s  %-8s  %-50s  %-24s  %s",
		"Rank", "Type", "Kernel", "Content", "Source", "Cell")))
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-8s  %-8s  %-50s  %-24s  %d\n",
			i+1, r.CellType, truncate(r.Kernel, 8), truncate(oneLine(r.Content), 50),
			truncate(r.Source, 24), r.Position)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to n display cells, ending in "..." when cut.
func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "...")
}

func init() {
	searchCmd.Flags().String("type", "", "filter by cell type: code, markdown")
	searchCmd.Flags().String("kernel", "", "filter by cell kernel")
	searchCmd.Flags().String("source", "", "filter by converted source path")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
