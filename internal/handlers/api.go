package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/common"
	"github.com/ternarybob/policyqa/internal/interfaces"
)

const upstreamCheckTimeout = 5 * time.Second

type APIHandler struct {
	logger   arbor.ILogger
	client   interfaces.QAClient
	sessions *SessionStore
}

func NewAPIHandler(client interfaces.QAClient, sessions *SessionStore, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		logger:   logger,
		client:   client,
		sessions: sessions,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

// HealthHandler returns local health and the question-answering service status.
// An unreachable upstream reports "degraded" rather than failing the check.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	upstream := map[string]string{
		"endpoint": h.client.Endpoint(),
	}
	status := "ok"

	ctx, cancel := context.WithTimeout(r.Context(), upstreamCheckTimeout)
	defer cancel()

	if serviceStatus, err := h.client.Status(ctx); err != nil {
		h.logger.Warn().Err(err).Str("endpoint", h.client.Endpoint()).Msg("Upstream status check failed")
		status = "degraded"
		upstream["error"] = err.Error()
	} else {
		upstream["status"] = serviceStatus.Status
		upstream["message"] = serviceStatus.Message
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"upstream": upstream,
		"sessions": h.sessions.Count(),
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
