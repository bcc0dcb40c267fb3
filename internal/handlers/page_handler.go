package handlers

import (
	"bytes"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/view"
)

type PageHandler struct {
	sessions *SessionStore
	page     *view.Page
	logger   arbor.ILogger
}

func NewPageHandler(sessions *SessionStore, page *view.Page, logger arbor.ILogger) *PageHandler {
	return &PageHandler{
		sessions: sessions,
		page:     page,
		logger:   logger,
	}
}

// ServePage renders the ask page for the caller's session
func (h *PageHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	session := h.sessions.FromRequest(w, r)

	var buf bytes.Buffer
	if err := h.page.Render(&buf, session.Model.Snapshot()); err != nil {
		h.logger.Error().
			Err(err).
			Str("session_id", session.ID).
			Msg("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
