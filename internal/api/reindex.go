package api

import (
	"context"
	"net/http"

	"github.com/adroit-club/assistant/internal/log"
	"github.com/adroit-club/assistant/internal/rag"
)

type reindexHandler struct {
	supervisor *rag.Supervisor
	logger     log.Logger
}

// trigger kicks off a full rebuild of the public partitions. The rebuild
// outlives the request; completion is visible only in logs.
func (h *reindexHandler) trigger(w http.ResponseWriter, r *http.Request) {
	h.supervisor.ReindexAll(context.WithoutCancel(r.Context()))
	h.logger.Info("reindex triggered")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
