// Package templates provides the embedded HTML page templates with user override support.
// Templates are loaded with resolution order:
// 1. User override: templatesDir/{name}.html
// 2. Embedded default: internal/templates/{name}.html
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.html
var fs embed.FS

const (
	// PageTemplate renders the complete ask page
	PageTemplate = "page.html"
	// ResponseTemplate renders the response area fragment
	ResponseTemplate = "response.html"
)

// Load parses every page template. A file in templatesDir with the same name
// as an embedded template replaces it.
func Load(templatesDir string) (*template.Template, error) {
	names, err := ListEmbeddedTemplates()
	if err != nil {
		return nil, err
	}

	root := template.New(PageTemplate)
	for _, name := range names {
		data, err := GetTemplate(name, templatesDir)
		if err != nil {
			return nil, err
		}

		var t *template.Template
		if name+".html" == PageTemplate {
			t = root
		} else {
			t = root.New(name + ".html")
		}
		if _, err := t.Parse(string(data)); err != nil {
			return nil, fmt.Errorf("failed to parse template '%s': %w", name, err)
		}
	}
	return root, nil
}

// GetTemplate loads raw template text by name with resolution order:
// 1. User override: templatesDir/{name}.html
// 2. Embedded default: internal/templates/{name}.html
func GetTemplate(name string, templatesDir string) ([]byte, error) {
	// Try user override first
	if templatesDir != "" {
		userPath := filepath.Join(templatesDir, name+".html")
		if data, err := os.ReadFile(userPath); err == nil {
			return data, nil
		}
	}

	// Fall back to embedded default
	data, err := fs.ReadFile(name + ".html")
	if err != nil {
		return nil, fmt.Errorf("template '%s' not found (checked user override and embedded)", name)
	}
	return data, nil
}

// ListEmbeddedTemplates returns names of all embedded templates
func ListEmbeddedTemplates() ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".html"))
		}
	}
	return names, nil
}
