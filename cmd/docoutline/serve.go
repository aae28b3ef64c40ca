package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

var servePort string

const (
	readTimeout   = 30 * time.Second
	// Room to write the response once extraction has used its whole budget.
	writeHeadroom = 30 * time.Second
)

// writeTimeout bounds a response. The clock starts before the upload body is
// read, so it covers the read window plus the extraction budget before any
// headroom. A zero budget leaves writes unbounded.
func writeTimeout(documentTimeout time.Duration) time.Duration {
	if documentTimeout <= 0 {
		return 0
	}
	return readTimeout + documentTimeout + writeHeadroom
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API server.

Endpoints:
  GET  /health                      liveness
  POST /api/outline                 synchronous extraction of one upload
  POST /api/jobs                    queue one upload
  POST /api/jobs/batch              queue several uploads
  GET  /api/jobs/{id}               job status
  GET  /api/jobs/{id}/result        job result once completed
  GET  /api/stats                   queue and cache counters

Set DOCOUTLINE_API_KEY to require "Authorization: Bearer <key>" on /api.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := newLogger(os.Stdout)

		cfg, err := loadConfig()
		if err != nil {
			log.Error("invalid configuration", "error", err)
			return err
		}
		if servePort != "" {
			cfg.Port = servePort
		}

		cache, err := openCache(cfg, log)
		if err != nil {
			return err
		}
		var c pipeline.Cache
		var counter api.CacheCounter
		if cache != nil {
			defer cache.Close()
			c, counter = cache, cache
		}

		ex := pipeline.NewExtractor(cfg.ParserOptions(), c, cfg.DocumentTimeout, log)
		orch := pipeline.NewOrchestrator(cfg, ex, log)
		orch.Start(ctx)

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      api.NewServer(orch, counter, log, cfg),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout(cfg.DocumentTimeout),
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting docoutline", "port", cfg.Port, "workers", cfg.WorkerCount, "cache", cfg.CachePath != "")
		err = httpServer.ListenAndServe()
		orch.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (default from config: 8090)")
}
