package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/export"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/store"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docoutline",
	Short: "Infer a document's title and heading outline from its typography",
	Long: `docoutline reads PDF, DOCX and HTML documents and infers a title and an
H1/H2/H3 outline from font sizes alone.

The largest font size in a document is taken as the title size and the next
three sizes as H1, H2 and H3. A heading is a short text block set entirely
in one of those sizes.

Configuration comes from ./docoutline.yaml, ~/.docoutline/docoutline.yaml or
DOCOUTLINE_* environment variables.`,
	Version:       Version,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./docoutline.yaml or ~/.docoutline/docoutline.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "debug logging in text form",
	)

	rootCmd.AddCommand(extractCmd, batchCmd, watchCmd, serveCmd, validateCmd, versionCmd)
}

// newLogger returns the JSON logger, or a debug-level text logger with
// --verbose.
func newLogger(w io.Writer) *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openCache opens the result cache, or returns nil when none is configured.
func openCache(cfg config.Config, log *slog.Logger) (*store.Store, error) {
	if cfg.CachePath == "" {
		return nil, nil
	}
	s, err := store.Open(cfg.CachePath)
	if err != nil {
		return nil, err
	}
	log.Debug("result cache open", "path", cfg.CachePath)
	return s, nil
}

// setup loads configuration and builds an extractor for CLI commands, which
// log to stderr so stdout stays free for results.
func setup() (config.Config, *pipeline.Extractor, func(), error) {
	log := newLogger(os.Stderr)
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	cache, err := openCache(cfg, log)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	cleanup := func() {}
	var c pipeline.Cache
	if cache != nil {
		c = cache
		cleanup = func() { cache.Close() }
	}

	ex := pipeline.NewExtractor(cfg.ParserOptions(), c, cfg.DocumentTimeout, log)
	return cfg, ex, cleanup, nil
}

// resolveFormat prefers the flag over the configured format.
func resolveFormat(flag string, cfg config.Config) (export.Format, error) {
	if flag == "" {
		return cfg.Format(), nil
	}
	return export.ParseFormat(flag)
}
