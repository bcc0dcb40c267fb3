package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	ok := RequireMethod(rec, httptest.NewRequest(http.MethodGet, "/api/ask", nil), http.MethodPost)

	assert.False(t, ok)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{Status: "error", Error: "Method not allowed"}, body)
}

func TestIsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", "Application/JSON; charset=utf-8")
	assert.True(t, IsJSON(req))

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.False(t, IsJSON(req))
}

func TestDecodeJSON(t *testing.T) {
	var req AskRequest
	rec := httptest.NewRecorder()
	err := DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"question":"Q"}`)), &req)
	require.NoError(t, err)
	assert.Equal(t, "Q", req.Question)

	err = DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)), &req)
	assert.ErrorContains(t, err, "invalid request body")
	assert.NotErrorIs(t, err, ErrBodyTooLarge)
	assert.Equal(t, http.StatusBadRequest, BodyErrorStatus(err))
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"question":"` + strings.Repeat("a", maxRequestBody+1) + `"}`

	var req AskRequest
	err := DecodeJSON(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &req)

	assert.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, BodyErrorStatus(err))
}
