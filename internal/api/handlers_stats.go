package api

import (
	"net/http"
	"time"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"workers":        s.cfg.WorkerCount,
		"queue_depth":    s.orchestrator.QueueDepth(),
		"queue_capacity": s.cfg.MaxQueueSize,
		"jobs":           s.orchestrator.JobCount(),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"extraction":     s.orchestrator.Extractor().Stats(),
	}

	if s.cache != nil {
		n, err := s.cache.Count(r.Context())
		if err != nil {
			s.log.Warn("cache count failed", "error", err)
			jsonError(w, "cache stats unavailable", http.StatusServiceUnavailable)
			return
		}
		stats["cache_entries"] = n
	}

	writeJSON(w, http.StatusOK, stats)
}
