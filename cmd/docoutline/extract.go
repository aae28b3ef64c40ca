package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/export"
)

var (
	extractFormat string
	extractOutDir string
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract the outline of one or more documents",
	Long: `Extract the title and outline of each FILE.

Results go to stdout unless --out names a directory, in which case each
document is written to <out>/<name>.<ext>.

Examples:
  docoutline extract report.pdf
  docoutline extract -f markdown report.pdf minutes.docx
  docoutline extract -o results/ *.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, ex, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		format, err := resolveFormat(extractFormat, cfg)
		if err != nil {
			return err
		}

		failed := 0
		for _, path := range args {
			if extractOutDir != "" {
				item, err := ex.ProcessFile(ctx, path, extractOutDir, format)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", path, item.Output)
				continue
			}

			ext, err := ex.ExtractFile(ctx, path)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				continue
			}
			if err := export.Write(cmd.OutOrStdout(), format, ext.Result); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "", "output format: json, yaml, markdown or html (default from config)")
	extractCmd.Flags().StringVarP(&extractOutDir, "out", "o", "", "write results into this directory instead of stdout")
}
