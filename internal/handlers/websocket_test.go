package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialSession(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()

	serverURL, err := url.Parse(f.server.URL)
	require.NoError(t, err)

	header := http.Header{}
	for _, cookie := range f.client.Jar.Cookies(serverURL) {
		header.Add("Cookie", cookie.Name+"="+cookie.Value)
	}

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) Snapshot {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string   `json:"type"`
		Payload Snapshot `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, "snapshot", msg.Type)
	return msg.Payload
}

func TestWebSocket_InitialSnapshot(t *testing.T) {
	f := newFixture(t, answerUpstream(`{"answer": "ok"}`))

	conn := dialSession(t, f)
	snapshot := readSnapshot(t, conn)

	assert.Equal(t, uint64(0), snapshot.Seq)
	assert.False(t, snapshot.Loading)
	assert.True(t, snapshot.SubmitEnabled)
	assert.False(t, snapshot.ResponseVisible)
	assert.Contains(t, snapshot.ResponseHTML, `id="response"`)
}

func TestWebSocket_StreamsAskCycle(t *testing.T) {
	f := newFixture(t, answerUpstream(`{"answer": "Streamed.", "source_documents": []}`))

	// Establish the session cookie first so the socket joins the same session
	resp, err := f.client.Get(f.server.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	conn := dialSession(t, f)
	initial := readSnapshot(t, conn)

	snapshots := make(chan Snapshot, 64)
	go func() {
		defer close(snapshots)
		for {
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg struct {
				Payload Snapshot `json:"payload"`
			}
			if json.Unmarshal(data, &msg) == nil {
				snapshots <- msg.Payload
			}
		}
	}()

	_, final := postAsk(t, f, `{"question": "stream it"}`)
	require.True(t, final.ResponseVisible)

	sawLoading := false
	lastVersion := initial.Version
	for snapshot := range snapshots {
		assert.Equal(t, initial.SessionID, snapshot.SessionID)
		assert.Greater(t, snapshot.Version, lastVersion, "snapshots must arrive in version order")
		lastVersion = snapshot.Version

		if snapshot.Loading {
			sawLoading = true
			assert.False(t, snapshot.SubmitEnabled)
		}
		if !snapshot.Loading && snapshot.SubmitEnabled && snapshot.ResponseVisible {
			assert.True(t, sawLoading, "loading snapshot must precede the final one")
			assert.Equal(t, uint64(1), snapshot.Seq)
			assert.Contains(t, snapshot.ResponseHTML, "Streamed.")
			assert.Contains(t, snapshot.ResponseHTML, "No source documents found.")
			assert.Equal(t, final.Version, snapshot.Version)
			return
		}
	}
	t.Fatal("final snapshot not received")
}

func TestWebSocket_OtherSessionsNotNotified(t *testing.T) {
	f := newFixture(t, answerUpstream(`{"answer": "private"}`))

	// Socket without a cookie gets its own session
	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	other, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer other.Close()
	readSnapshot(t, other)

	postAsk(t, f, `{"question": "q"}`)

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "no snapshot expected for another session")
	assert.Equal(t, 2, f.sessions.Count())
}

func TestWebSocket_ClientCount(t *testing.T) {
	f := newFixture(t, answerUpstream(`{}`))

	conn := dialSession(t, f)
	readSnapshot(t, conn)
	assert.Equal(t, 1, f.ws.ClientCount())

	conn.Close()
	assert.Eventually(t, func() bool { return f.ws.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocket_ConnectedSessionSurvivesSweep(t *testing.T) {
	f := newFixture(t, answerUpstream(`{"answer": "Kept."}`))

	_, first := postAsk(t, f, `{"question": "one"}`)

	conn := dialSession(t, f)
	initial := readSnapshot(t, conn)
	assert.Equal(t, first.SessionID, initial.SessionID)
	assert.Equal(t, first.Version, initial.Version)

	f.advanceClock(2 * time.Hour)
	assert.Equal(t, 0, f.sessions.Sweep())

	_, second := postAsk(t, f, `{"question": "two"}`)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, uint64(2), second.Seq)
	assert.Greater(t, second.Version, first.Version)

	conn.Close()
	assert.Eventually(t, func() bool { return f.ws.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	// Detach runs after the client is unregistered
	assert.Eventually(t, func() bool {
		f.advanceClock(2 * time.Hour)
		return f.sessions.Sweep() == 1
	}, 2*time.Second, 10*time.Millisecond)
}
