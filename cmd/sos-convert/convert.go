// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sos-convert/internal/convert"
	"github.com/pdiddy/sos-convert/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert SOURCE [DEST]",
	Short: "Convert a script, notebook or R Markdown file",
	Long: `Convert transforms SOURCE according to the extensions of SOURCE and
DEST (or --to):

  .sos   -> .ipynb   script to notebook
  .ipynb -> .sos     notebook to script (workflow cells only unless --all)
  .Rmd   -> .ipynb   R Markdown to notebook
  .ipynb -> .ipynb   single-kernel notebook to SoS notebook

Without DEST the result is written to standard output.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	job, err := jobFromFlags(cmd, args)
	if err != nil {
		return err
	}
	inplace, _ := cmd.Flags().GetBool("inplace")
	if inplace {
		job.Dest = job.Source
	}

	if job.Dest == "" {
		return convertToStdout(cmd, job)
	}

	noLedger, _ := cmd.Flags().GetBool("no-ledger")
	var led convert.Ledger
	if !noLedger {
		store, err := openLedger()
		if err != nil {
			return err
		}
		defer store.Close()
		led = store
	}

	conv := convert.New(cfg, log, led)
	status := conv.ConvertFile(context.Background(), job, statusWriter{w: cmd.ErrOrStderr()})
	if status == types.ConversionFailed {
		return fmt.Errorf("converting %s failed", job.Source)
	}
	return nil
}

func convertToStdout(cmd *cobra.Command, job convert.Job) error {
	d, err := convert.DetectDirection(job.Source, "", job.To)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(job.Source)
	if err != nil {
		return fmt.Errorf("reading %s: %w", job.Source, err)
	}
	out, err := convert.New(cfg, log, nil).ConvertText(d, job.Source, data, job)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out.Data)
	return err
}

func jobFromFlags(cmd *cobra.Command, args []string) (convert.Job, error) {
	to, _ := cmd.Flags().GetString("to")
	all, _ := cmd.Flags().GetBool("all")
	workflow, _ := cmd.Flags().GetBool("workflow")
	py3, _ := cmd.Flags().GetBool("python3-to-sos")
	force, _ := cmd.Flags().GetBool("force")

	if all && workflow {
		return convert.Job{}, fmt.Errorf("--all and --workflow are mutually exclusive")
	}

	job := convert.Job{
		Source:       args[0],
		To:           to,
		Python3ToSoS: py3,
		Force:        force,
	}
	if len(args) > 1 {
		job.Dest = args[1]
	}
	switch {
	case all:
		job.Variant = types.ExportAll
	case workflow:
		job.Variant = types.WorkflowOnly
	}
	return job, nil
}

func init() {
	convertCmd.Flags().String("to", "", "target format: sos or ipynb (default: from DEST)")
	convertCmd.Flags().BoolP("all", "a", false, "export every cell with its type, count and metadata")
	convertCmd.Flags().Bool("workflow", false, "keep only workflow section cells")
	convertCmd.Flags().Bool("python3-to-sos", false, "convert python3 notebooks to SoS notebooks")
	convertCmd.Flags().Bool("inplace", false, "overwrite SOURCE (notebook to notebook only)")
	convertCmd.Flags().Bool("force", false, "convert even if the ledger has SOURCE as unchanged")
	convertCmd.Flags().Bool("no-ledger", false, "do not read or update the conversion ledger")

	rootCmd.AddCommand(convertCmd)
}
