package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	// AnswerPlaceholder is displayed when the service returns no answer text
	AnswerPlaceholder = "No answer provided."
	// NoSourcesPlaceholder is displayed when the service returns no source documents
	NoSourcesPlaceholder = "No source documents found."
	// UnknownPageLabel labels a source without a page reference
	UnknownPageLabel = "Unknown Page"
)

// QuestionRequest is the JSON body sent to the question-answering service
type QuestionRequest struct {
	Question string `json:"question"`
}

// NormalizeQuestion trims surrounding whitespace and reports whether anything is left
func NormalizeQuestion(raw string) (string, bool) {
	question := strings.TrimSpace(raw)
	return question, question != ""
}

// AnswerResult is the parsed success body of the question-answering service
type AnswerResult struct {
	Answer          string           `json:"answer"`
	SourceDocuments []SourceDocument `json:"source_documents"`
}

// DisplayAnswer returns the answer text, or the placeholder when it is missing
func (r *AnswerResult) DisplayAnswer() string {
	if r == nil || r.Answer == "" {
		return AnswerPlaceholder
	}
	return r.Answer
}

// SourceDocument is an excerpt returned alongside the answer.
// Metadata keeps every key the service sends; only "page" is interpreted.
type SourceDocument struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Page returns the zero-based page index when the metadata carries an
// integer page in [0, math.MaxInt32]
func (d SourceDocument) Page() (int, bool) {
	raw, ok := d.Metadata["page"]
	if !ok || raw == nil {
		return 0, false
	}

	var page int64
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || v < 0 || v > math.MaxInt32 {
			return 0, false
		}
		page = int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		page = n
	case int:
		page = int64(v)
	case int64:
		page = v
	default:
		return 0, false
	}

	if page < 0 || page > math.MaxInt32 {
		return 0, false
	}
	return int(page), true
}

// PageLabel returns the one-based page label shown to the user
func (d SourceDocument) PageLabel() string {
	page, ok := d.Page()
	if !ok {
		return UnknownPageLabel
	}
	return fmt.Sprintf("Page %d", page+1)
}

// SourceBlock is one rendered source excerpt
type SourceBlock struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// Heading returns the block heading, e.g. "Source: Page 3"
func (b SourceBlock) Heading() string {
	return "Source: " + b.Label
}

// SourceBlocks converts the result's source documents into render blocks, in order
func (r *AnswerResult) SourceBlocks() []SourceBlock {
	if r == nil || len(r.SourceDocuments) == 0 {
		return nil
	}
	blocks := make([]SourceBlock, 0, len(r.SourceDocuments))
	for _, doc := range r.SourceDocuments {
		blocks = append(blocks, SourceBlock{
			Label:   doc.PageLabel(),
			Content: doc.Content,
		})
	}
	return blocks
}

// ErrorBody is the failure body of the question-answering service
type ErrorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Message returns the detail as display text. String details are returned as-is,
// other non-null JSON values (validation error lists) as compact JSON.
func (e ErrorBody) Message() (string, bool) {
	trimmed := bytes.TrimSpace(e.Detail)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return text, text != ""
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed), true
	}
	return compact.String(), true
}
