package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// maxRequestBody caps request bodies read by the API handlers
const maxRequestBody = 64 << 10

// ErrBodyTooLarge is returned when a request body exceeds maxRequestBody
var ErrBodyTooLarge = errors.New("request body too large")

// ErrorResponse is the JSON body of every API error
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// IsJSON reports whether the request declares a JSON body
func IsJSON(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

// LimitBody caps the request body at maxRequestBody
func LimitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
}

// DecodeJSON decodes a size-limited JSON request body into v.
// An oversized body yields ErrBodyTooLarge.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	LimitBody(w, r)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return bodyError("invalid request body", err)
	}
	return nil
}

// bodyError maps a body read failure to ErrBodyTooLarge or a wrapped parse error
func bodyError(prefix string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// BodyErrorStatus returns 413 for ErrBodyTooLarge and 400 otherwise
func BodyErrorStatus(err error) int {
	if errors.Is(err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, ErrorResponse{
		Status: "error",
		Error:  message,
	})
}
