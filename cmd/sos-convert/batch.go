// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sos-convert/internal/convert"
)

var batchCmd = &cobra.Command{
	Use:   "batch MANIFEST",
	Short: "Run the conversions listed in a YAML manifest",
	Long: `Batch reads a manifest of conversion jobs and runs them in order,
printing one status line per job and a summary. Relative paths in the
manifest are resolved against the manifest's directory.

  defaults:
    all: true
  jobs:
    - source: analysis.ipynb
    - source: pipeline.sos
      dest: notebooks/pipeline.ipynb`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest, err := convert.ReadManifest(args[0])
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	jobs := manifest.ConvertJobs()
	if force {
		for i := range jobs {
			jobs[i].Force = true
		}
	}

	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	result := convert.New(cfg, log, store).ConvertBatch(context.Background(), jobs, statusWriter{w: cmd.OutOrStdout()})
	if result.HasFailures() {
		return fmt.Errorf("%d of %d conversion(s) failed", result.Failed, result.Total())
	}
	return nil
}

func init() {
	batchCmd.Flags().Bool("force", false, "convert every job even if unchanged")

	rootCmd.AddCommand(batchCmd)
}
