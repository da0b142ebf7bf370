package http

import (
	"net/http"

	"inventory/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	qctx, cancel := withQueryTimeout(ctx)
	defer cancel()
	metrics, err := s.dashboard.Metrics(qctx)
	if err != nil {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Dashboard metrics failed", err, log.OpRead, nil)
		writeMessage(w, http.StatusInternalServerError, "Error retrieving dashboard metrics")
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}
