package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ternarybob/policyqa/internal/services/transform"
)

// LoadingText is written to the progress writer when a cycle starts
const LoadingText = "Thinking..."

// Text renders a surface state for a terminal
type Text struct {
	transform *transform.Service
	rawMarkup bool
	progress  io.Writer

	mu      sync.Mutex
	loading bool
}

// NewText creates a terminal renderer. With rawMarkup, source content is
// treated as HTML and converted to markdown text.
func NewText(transformService *transform.Service, rawMarkup bool, progress io.Writer) *Text {
	if progress == nil {
		progress = io.Discard
	}
	return &Text{
		transform: transformService,
		rawMarkup: rawMarkup,
		progress:  progress,
	}
}

// Listen is a ChangeListener that reports the loading indicator on the progress writer
func (t *Text) Listen(state State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state.LoadingVisible && !t.loading {
		fmt.Fprintln(t.progress, LoadingText)
	}
	t.loading = state.LoadingVisible
}

// Render returns the response area as text, or "" while it is hidden
func (t *Text) Render(state State) string {
	if !state.ResponseVisible {
		return ""
	}

	var b strings.Builder
	b.WriteString("Answer:\n")
	b.WriteString(state.AnswerText)
	b.WriteString("\n")

	for _, block := range state.Sources {
		b.WriteString("\n")
		b.WriteString(block.Heading())
		b.WriteString("\n")
		b.WriteString(t.content(block.Content))
		b.WriteString("\n")
	}
	if state.SourcesPlaceholder != "" {
		b.WriteString("\n")
		b.WriteString(state.SourcesPlaceholder)
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Text) content(content string) string {
	if !t.rawMarkup {
		return content
	}
	return t.transform.HTMLToMarkdown(content)
}
