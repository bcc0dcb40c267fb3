package handlers

import (
	"github.com/ternarybob/policyqa/internal/controller"
	"github.com/ternarybob/policyqa/internal/view"
)

// Snapshot is the JSON form of a session's surface state sent to the browser
type Snapshot struct {
	SessionID       string             `json:"session_id"`
	Seq             uint64             `json:"seq"`
	Version         uint64             `json:"version"`
	Outcome         controller.Outcome `json:"outcome,omitempty"`
	Loading         bool               `json:"loading"`
	ResponseVisible bool               `json:"response_visible"`
	SubmitEnabled   bool               `json:"submit_enabled"`
	ResponseHTML    string             `json:"response_html"`
	Alert           string             `json:"alert,omitempty"`
}

// newSnapshot renders state's response area with page. Within one session,
// a snapshot with a lower Version is older and must not replace a newer one.
func newSnapshot(page *view.Page, sessionID string, seq uint64, state view.State) (Snapshot, error) {
	responseHTML, err := page.RenderResponse(state)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		SessionID:       sessionID,
		Seq:             seq,
		Version:         state.Version,
		Loading:         state.LoadingVisible,
		ResponseVisible: state.ResponseVisible,
		SubmitEnabled:   state.SubmitEnabled,
		ResponseHTML:    responseHTML,
	}, nil
}
