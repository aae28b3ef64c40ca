package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=...".
var (
	Version = "dev"
	Commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "docoutline %s\n", Version)
		fmt.Fprintf(w, "  Go:     %s\n", runtime.Version())
		fmt.Fprintf(w, "  Commit: %s\n", Commit)
	},
}
