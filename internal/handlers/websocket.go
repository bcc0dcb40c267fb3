// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 10:12:07 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/interfaces"
	"github.com/ternarybob/policyqa/internal/view"
)

const (
	writeWait = 10 * time.Second
	// sendQueueSize bounds the snapshots buffered for one client
	sendQueueSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is the envelope of every message sent to clients
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// wsClient owns one connection. Only its writer goroutine writes to conn.
type wsClient struct {
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

// WebSocketHandler streams surface snapshots to the browsers of a session
type WebSocketHandler struct {
	logger   arbor.ILogger
	sessions *SessionStore
	page     *view.Page
	clients  map[*websocket.Conn]*wsClient
	mu       sync.RWMutex
}

func NewWebSocketHandler(sessions *SessionStore, page *view.Page, eventService interfaces.EventService, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:   logger,
		sessions: sessions,
		page:     page,
		clients:  make(map[*websocket.Conn]*wsClient),
	}

	if eventService != nil {
		if err := eventService.Subscribe(interfaces.EventSurfaceChanged, h.handleSurfaceChanged); err != nil {
			logger.Warn().Err(err).Msg("Failed to subscribe to surface changes")
		}
	}

	return h
}

// HandleWebSocket upgrades the connection and streams the caller's session
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	session, cookie := h.sessions.Resolve(r)

	var responseHeader http.Header
	if cookie != nil {
		responseHeader = http.Header{"Set-Cookie": []string{cookie.String()}}
	}

	conn, err := upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &wsClient{
		sessionID: session.ID,
		conn:      conn,
		send:      make(chan []byte, sendQueueSize),
	}

	h.sessions.Attach(session)

	// Register before taking the first snapshot so no change is missed.
	// A change pushed in between carries a higher version than the first
	// snapshot, and the page keeps the higher one.
	h.mu.Lock()
	h.clients[conn] = client
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Str("session_id", session.ID).
		Msgf("WebSocket client connected (total: %d)", clientCount)

	go h.writePump(client)

	if data, err := h.encode(session.ID, session.Controller.LatestSeq(), session.Model.Snapshot()); err == nil {
		h.mu.RLock()
		h.enqueue(client, data)
		h.mu.RUnlock()
	}

	// Handle client disconnection
	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[conn]; ok {
			delete(h.clients, conn)
			close(client.send)
		}
		clientCount := len(h.clients)
		h.mu.Unlock()

		h.sessions.Detach(session)
		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", clientCount)
	}()

	// Read messages from client (keep connection alive)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleSurfaceChanged queues the new state for the session's clients without
// waiting on any socket
func (h *WebSocketHandler) handleSurfaceChanged(ctx context.Context, event interfaces.Event) error {
	payload, ok := event.Payload.(SurfaceChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}

	data, err := h.encode(payload.SessionID, payload.Seq, payload.State)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.sessionID == payload.SessionID {
			h.enqueue(client, data)
		}
	}
	return nil
}

// enqueue hands data to the client's writer. A client whose queue is full is
// disconnected; the page reconnects and receives the current state.
// Callers hold h.mu (read or write), which keeps client.send open.
func (h *WebSocketHandler) enqueue(client *wsClient, data []byte) {
	select {
	case client.send <- data:
	default:
		h.logger.Warn().
			Str("session_id", client.sessionID).
			Msg("WebSocket client too slow, disconnecting")
		client.conn.Close()
	}
}

func (h *WebSocketHandler) encode(sessionID string, seq uint64, state view.State) ([]byte, error) {
	snapshot, err := newSnapshot(h.page, sessionID, seq, state)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to render snapshot")
		return nil, err
	}

	data, err := json.Marshal(WSMessage{Type: "snapshot", Payload: snapshot})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal snapshot message")
		return nil, err
	}
	return data, nil
}

// writePump writes queued snapshots in order until the queue is closed
func (h *WebSocketHandler) writePump(client *wsClient) {
	for data := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn().Err(err).Str("session_id", client.sessionID).Msg("Failed to send snapshot to client")
			client.conn.Close()
			// Drain until the reader unregisters the client and closes the queue
			for range client.send {
			}
			return
		}
	}
}
