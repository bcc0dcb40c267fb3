package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getJSON(t *testing.T, f *fixture, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := f.client.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealthHandler_UpstreamOK(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok", "message": "RAG service running"}`))
	})

	status, body := getJSON(t, f, "/api/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	upstream := body["upstream"].(map[string]interface{})
	assert.Equal(t, "ok", upstream["status"])
	assert.Equal(t, "RAG service running", upstream["message"])
	assert.Equal(t, f.upstream.URL+"/ask", upstream["endpoint"])
}

func TestHealthHandler_UpstreamDown(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	status, body := getJSON(t, f, "/api/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "degraded", body["status"])

	upstream := body["upstream"].(map[string]interface{})
	assert.Equal(t, "HTTP error! status: 503", upstream["error"])
}

func TestVersionHandler(t *testing.T) {
	f := newFixture(t, answerUpstream(`{}`))

	status, body := getJSON(t, f, "/api/version")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "version")
	assert.Contains(t, body, "build")
	assert.Contains(t, body, "git_commit")
}
