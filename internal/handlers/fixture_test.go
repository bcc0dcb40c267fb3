package handlers

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/qaclient"
	"github.com/ternarybob/policyqa/internal/services/events"
	"github.com/ternarybob/policyqa/internal/services/transform"
	"github.com/ternarybob/policyqa/internal/templates"
	"github.com/ternarybob/policyqa/internal/view"
)

// fixture is a web host wired to a fake question-answering service
type fixture struct {
	server       *httptest.Server
	upstream     *httptest.Server
	upstreamHits *int32
	sessions     *SessionStore
	ws           *WebSocketHandler
	client       *http.Client
}

func newFixture(t *testing.T, upstream http.HandlerFunc) *fixture {
	t.Helper()

	var hits int32
	upstreamServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			atomic.AddInt32(&hits, 1)
		}
		upstream(w, r)
	}))
	t.Cleanup(upstreamServer.Close)

	logger := arbor.NewLogger()
	qa := qaclient.NewClient(upstreamServer.URL+"/ask", qaclient.WithLogger(logger))
	eventService := events.NewService(logger)
	t.Cleanup(func() { eventService.Close() })

	tmpl, err := templates.Load("")
	require.NoError(t, err)
	page := view.NewPage(tmpl, transform.NewService(logger), logger, view.PageOptions{Endpoint: qa.Endpoint(), Version: "test"})

	sessions := NewSessionStore(qa, eventService, time.Hour, logger)
	ws := NewWebSocketHandler(sessions, page, eventService, logger)

	pageHandler := NewPageHandler(sessions, page, logger)
	askHandler := NewAskHandler(sessions, page, logger)
	apiHandler := NewAPIHandler(qa, sessions, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/", pageHandler.ServePage)
	mux.HandleFunc("/ws", ws.HandleWebSocket)
	mux.HandleFunc("/api/ask", askHandler.AskHandler)
	mux.HandleFunc("/api/health", apiHandler.HealthHandler)
	mux.HandleFunc("/api/version", apiHandler.VersionHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &fixture{
		server:       server,
		upstream:     upstreamServer,
		upstreamHits: &hits,
		sessions:     sessions,
		ws:           ws,
		client:       &http.Client{Jar: jar},
	}
}

func (f *fixture) hits() int32 {
	return atomic.LoadInt32(f.upstreamHits)
}

func answerUpstream(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

// advanceClock moves the session store's clock forward by d
func (f *fixture) advanceClock(d time.Duration) {
	f.sessions.mu.Lock()
	defer f.sessions.mu.Unlock()
	current := f.sessions.now()
	later := current.Add(d)
	f.sessions.now = func() time.Time { return later }
}
