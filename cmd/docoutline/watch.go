package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/pipeline"
)

var (
	watchInput    string
	watchOutput   string
	watchFormat   string
	watchDebounce time.Duration
	watchInitial  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Extract documents as they appear in a directory",
	Long: `Watch the input directory and extract every supported document that is
created or rewritten there, until interrupted.

With --initial (the default) the documents already present are processed
first, as the batch command would.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, ex, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		in, out := pick(watchInput, cfg.InputDir), pick(watchOutput, cfg.OutputDir)
		format, err := resolveFormat(watchFormat, cfg)
		if err != nil {
			return err
		}

		w, err := ex.NewDirWatcher(in, out, format, pipeline.WatchOptions{Debounce: watchDebounce})
		if err != nil {
			return err
		}

		if watchInitial {
			report, err := ex.RunBatch(ctx, in, out, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initial batch: processed %d, failed %d\n", len(report.Items), len(report.Failures))
		}

		if err := w.Run(ctx); err != nil {
			return err
		}
		s := w.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "watch stopped: processed %d, failed %d\n", s.Processed, s.Failed)
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchInput, "input", "", "directory to watch (default from config: input)")
	watchCmd.Flags().StringVar(&watchOutput, "output", "", "output directory (default from config: output)")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "output format (default from config: json)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is processed")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", true, "process existing documents before watching")
}
