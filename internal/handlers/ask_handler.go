package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/controller"
	"github.com/ternarybob/policyqa/internal/view"
)

const (
	TriggerClick = "click"
	TriggerEnter = "enter"
)

// AskRequest is the body of POST /api/ask
type AskRequest struct {
	Question string `json:"question"`
	Trigger  string `json:"trigger"` // "click" (default) or "enter"
	Shift    bool   `json:"shift"`
}

// AskHandler fires submit triggers on the caller's session
type AskHandler struct {
	sessions *SessionStore
	page     *view.Page
	logger   arbor.ILogger
}

func NewAskHandler(sessions *SessionStore, page *view.Page, logger arbor.ILogger) *AskHandler {
	return &AskHandler{
		sessions: sessions,
		page:     page,
		logger:   logger,
	}
}

// AskHandler sets the session's question text, fires the trigger and
// responds with the resulting surface state
func (h *AskHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	req, err := parseAskRequest(w, r)
	if err != nil {
		WriteError(w, BodyErrorStatus(err), err.Error())
		return
	}

	session := h.sessions.FromRequest(w, r)
	session.Model.SetQuestionText(req.Question)

	var cycle controller.Cycle
	switch req.Trigger {
	case TriggerClick:
		cycle = session.Controller.Click(r.Context())
	case TriggerEnter:
		var ran bool
		cycle, ran = session.Controller.KeyPress(r.Context(), controller.KeyEnter, req.Shift)
		if !ran {
			// Shift+Enter edits the question; nothing to submit
			h.writeSnapshot(w, http.StatusOK, session, "", "")
			return
		}
	}

	if cycle.Outcome == controller.OutcomeRejected {
		h.writeSnapshot(w, http.StatusBadRequest, session, cycle.Outcome, session.Model.TakeAlert())
		return
	}

	h.writeSnapshot(w, http.StatusOK, session, cycle.Outcome, "")
}

func (h *AskHandler) writeSnapshot(w http.ResponseWriter, statusCode int, session *Session, outcome controller.Outcome, alert string) {
	seq := session.Controller.LatestSeq()
	snapshot, err := newSnapshot(h.page, session.ID, seq, session.Model.Snapshot())
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to render response")
		WriteError(w, http.StatusInternalServerError, "Failed to render response")
		return
	}
	snapshot.Outcome = outcome
	snapshot.Alert = alert
	WriteJSON(w, statusCode, snapshot)
}

// parseAskRequest reads a JSON body, or form fields for any other content type
func parseAskRequest(w http.ResponseWriter, r *http.Request) (AskRequest, error) {
	var req AskRequest

	if IsJSON(r) {
		if err := DecodeJSON(w, r, &req); err != nil {
			return req, err
		}
	} else {
		LimitBody(w, r)
		if err := r.ParseForm(); err != nil {
			return req, bodyError("invalid form", err)
		}
		req.Question = r.PostForm.Get("question")
		req.Trigger = r.PostForm.Get("trigger")
		if shift := r.PostForm.Get("shift"); shift != "" {
			parsed, err := strconv.ParseBool(shift)
			if err != nil {
				return req, fmt.Errorf("invalid shift value: %q", shift)
			}
			req.Shift = parsed
		}
	}

	req.Trigger = strings.ToLower(strings.TrimSpace(req.Trigger))
	switch req.Trigger {
	case "":
		req.Trigger = TriggerClick
	case TriggerClick, TriggerEnter:
	default:
		return req, fmt.Errorf("unknown trigger: %q", req.Trigger)
	}

	return req, nil
}
