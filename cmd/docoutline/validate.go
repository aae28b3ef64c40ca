package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/export"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE.json...",
	Short: "Check JSON results against the result schema",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err == nil {
				err = export.Validate(data)
			}
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files invalid", failed, len(args))
		}
		return nil
	},
}
