package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	batchInput  string
	batchOutput string
	batchFormat string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract every document in a directory",
	Long: `Process every PDF, DOCX and HTML file directly inside the input directory
in name order and write one result per document into the output directory.

A document that cannot be read is reported and skipped; the rest of the
batch still runs. Documents whose names differ only by extension share an
output file, and the later one in name order wins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ex, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		in, out := pick(batchInput, cfg.InputDir), pick(batchOutput, cfg.OutputDir)
		format, err := resolveFormat(batchFormat, cfg)
		if err != nil {
			return err
		}

		report, err := ex.RunBatch(cmd.Context(), in, out, format)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, item := range report.Items {
			fmt.Fprintf(w, "%s -> %s (%d headings)\n", item.Source, item.Output, item.Headings)
		}
		for _, f := range report.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", f.Source, f.Error)
		}
		fmt.Fprintf(w, "processed %d, failed %d, skipped %d\n", len(report.Items), len(report.Failures), report.Skipped)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "input directory (default from config: input)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "output directory (default from config: output)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "output format (default from config: json)")
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
