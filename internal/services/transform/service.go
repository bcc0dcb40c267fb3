package transform

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Service converts answer and source markup between HTML and markdown.
// Markdown rendering never passes raw HTML through; goldmark omits it.
type Service struct {
	logger   arbor.ILogger
	markdown goldmark.Markdown
}

// NewService creates a new transform service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM, // tables, strikethrough, autolinks
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
	}
}

// HTMLToMarkdown converts HTML content to markdown.
// Falls back to tag stripping when the conversion fails or produces nothing.
func (s *Service) HTMLToMarkdown(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(htmlContent)
	if err != nil {
		s.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, using fallback")
		return stripHTMLTags(htmlContent)
	}

	if strings.TrimSpace(converted) == "" {
		s.logger.Debug().
			Int("html_length", len(htmlContent)).
			Msg("HTML to markdown conversion produced empty output, applying fallback")
		return stripHTMLTags(htmlContent)
	}

	return converted
}

// MarkdownToHTML renders markdown to an HTML fragment
func (s *Service) MarkdownToHTML(markdown string) (string, error) {
	if markdown == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
	entities     = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
		"&nbsp;", " ",
	)
)

// stripHTMLTags removes basic HTML tags for fallback cases
func stripHTMLTags(htmlContent string) string {
	stripped := tagPattern.ReplaceAllString(htmlContent, "")
	cleaned := spacePattern.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(entities.Replace(cleaned))
}
