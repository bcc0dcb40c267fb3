package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/services/transform"
	"github.com/ternarybob/policyqa/internal/templates"
)

// PageOptions controls how the page renders answers and sources
type PageOptions struct {
	// RawSourceMarkup inserts source content as markup. Off means escaped text.
	RawSourceMarkup bool
	// MarkdownAnswers renders the answer text from markdown
	MarkdownAnswers bool
	Endpoint        string
	Version         string
}

// Page renders a surface state as the HTML ask page
type Page struct {
	templates *template.Template
	transform *transform.Service
	logger    arbor.ILogger
	options   PageOptions
}

type pageData struct {
	Question       string
	SubmitEnabled  bool
	LoadingVisible bool
	Response       responseData
	Endpoint       string
	Version        string
}

// Answer and Content hold either a string (escaped) or template.HTML (inserted as-is)
type responseData struct {
	Visible     bool
	Answer      interface{}
	Sources     []sourceData
	Placeholder string
}

type sourceData struct {
	Heading string
	Content interface{}
}

// NewPage creates a page renderer over parsed page templates
func NewPage(tmpl *template.Template, transformService *transform.Service, logger arbor.ILogger, options PageOptions) *Page {
	return &Page{
		templates: tmpl,
		transform: transformService,
		logger:    logger,
		options:   options,
	}
}

// Render writes the complete ask page
func (p *Page) Render(w io.Writer, state State) error {
	data := pageData{
		Question:       state.Question,
		SubmitEnabled:  state.SubmitEnabled,
		LoadingVisible: state.LoadingVisible,
		Response:       p.responseData(state),
		Endpoint:       p.options.Endpoint,
		Version:        p.options.Version,
	}
	if err := p.templates.ExecuteTemplate(w, templates.PageTemplate, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// RenderResponse returns the response area fragment
func (p *Page) RenderResponse(state State) (string, error) {
	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, templates.ResponseTemplate, p.responseData(state)); err != nil {
		return "", fmt.Errorf("failed to render response: %w", err)
	}
	return buf.String(), nil
}

func (p *Page) responseData(state State) responseData {
	data := responseData{
		Visible:     state.ResponseVisible,
		Answer:      p.answer(state.AnswerText),
		Placeholder: state.SourcesPlaceholder,
	}
	for _, block := range state.Sources {
		var content interface{} = block.Content
		if p.options.RawSourceMarkup {
			content = template.HTML(block.Content)
		}
		data.Sources = append(data.Sources, sourceData{
			Heading: block.Heading(),
			Content: content,
		})
	}
	return data
}

func (p *Page) answer(text string) interface{} {
	if !p.options.MarkdownAnswers || text == "" {
		return text
	}
	rendered, err := p.transform.MarkdownToHTML(text)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Markdown answer rendering failed, using plain text")
		return text
	}
	return template.HTML(rendered)
}
