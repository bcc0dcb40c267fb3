package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/controller"
	"github.com/ternarybob/policyqa/internal/interfaces"
	"github.com/ternarybob/policyqa/internal/view"
)

// SessionCookieName is the cookie carrying the browser's session id
const SessionCookieName = "policyqa_session"

// SurfaceChangedPayload is the payload of EventSurfaceChanged
type SurfaceChangedPayload struct {
	SessionID string
	Seq       uint64
	State     view.State
}

func (p SurfaceChangedPayload) EventSessionID() string { return p.SessionID }
func (p SurfaceChangedPayload) EventSeq() uint64       { return p.Seq }

// Session is one browser's ask page: its surface state and the controller driving it
type Session struct {
	ID         string
	Model      *view.Model
	Controller *controller.QueryController

	lastSeen time.Time
	// sockets counts connected WebSocket clients; a session with any is never swept
	sockets int
}

// SessionStore keeps sessions in memory and drops them once idle
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session

	client       interfaces.QAClient
	eventService interfaces.EventService
	idleTTL      time.Duration
	logger       arbor.ILogger
	now          func() time.Time
}

// NewSessionStore creates an empty store. Every session's controller asks client.
func NewSessionStore(client interfaces.QAClient, eventService interfaces.EventService, idleTTL time.Duration, logger arbor.ILogger) *SessionStore {
	return &SessionStore{
		sessions:     make(map[string]*Session),
		client:       client,
		eventService: eventService,
		idleTTL:      idleTTL,
		logger:       logger,
		now:          time.Now,
	}
}

// Get returns a live session and marks it as seen
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	session.lastSeen = s.now()
	return session, true
}

// Resolve returns the request's session, creating one when the cookie is
// missing or unknown. The returned cookie is non-nil only for a new session.
func (s *SessionStore) Resolve(r *http.Request) (*Session, *http.Cookie) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if session, ok := s.Get(cookie.Value); ok {
			return session, nil
		}
	}

	session := s.create()
	return session, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromRequest resolves the request's session and sets the cookie for a new one
func (s *SessionStore) FromRequest(w http.ResponseWriter, r *http.Request) *Session {
	session, cookie := s.Resolve(r)
	if cookie != nil {
		http.SetCookie(w, cookie)
	}
	return session
}

func (s *SessionStore) create() *Session {
	id := uuid.New().String()
	model := view.NewModel()
	session := &Session{
		ID:         id,
		Model:      model,
		Controller: controller.NewQueryController(s.client, model, s.logger),
	}

	if s.eventService != nil {
		model.SetListener(func(state view.State) {
			event := interfaces.Event{
				Type: interfaces.EventSurfaceChanged,
				Payload: SurfaceChangedPayload{
					SessionID: id,
					Seq:       session.Controller.LatestSeq(),
					State:     state,
				},
			}
			if err := s.eventService.PublishSync(context.Background(), event); err != nil {
				s.logger.Warn().Err(err).Str("session_id", id).Msg("Failed to publish surface change")
			}
		})
	}

	s.mu.Lock()
	session.lastSeen = s.now()
	s.sessions[id] = session
	count := len(s.sessions)
	s.mu.Unlock()

	s.logger.Debug().
		Str("session_id", id).
		Int("sessions", count).
		Msg("Session created")

	return session
}

// Attach records a connected WebSocket client on the session
func (s *SessionStore) Attach(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.sockets++
	session.lastSeen = s.now()
}

// Detach records a disconnected WebSocket client. The idle TTL counts from here.
func (s *SessionStore) Detach(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.sockets > 0 {
		session.sockets--
	}
	session.lastSeen = s.now()
}

// Count returns the number of live sessions
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the idle TTL and returns how many
// were dropped. Sessions with a connected WebSocket are kept.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	dropped := 0
	for id, session := range s.sessions {
		if session.sockets == 0 && session.lastSeen.Before(cutoff) {
			session.Model.SetListener(nil)
			delete(s.sessions, id)
			dropped++
		}
	}

	if dropped > 0 {
		s.logger.Debug().
			Int("dropped", dropped).
			Int("remaining", len(s.sessions)).
			Msg("Idle sessions swept")
	}
	return dropped
}

// StartSweeper sweeps idle sessions every interval until ctx is done
func (s *SessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
