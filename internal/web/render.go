package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/yuin/goldmark"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "digests" or "notes"
}

// ListPageData is the template data for the digest/note list pages.
type ListPageData struct {
	PageData
	Heading string
	Items   []ListItem
}

// ListItem is one row of a list page.
type ListItem struct {
	Name string
	URL  string
}

// DetailPageData is the template data for a rendered document page.
type DetailPageData struct {
	PageData
	Heading      string
	RenderedHTML template.HTML
}

// Renderer renders HTML pages from embedded templates.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer parses the page templates from the given filesystem.
// Each page template is combined with the shared base layout.
func NewRenderer(templateFS fs.FS, version string) (*Renderer, error) {
	pages := []string{"list.html", "detail.html"}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templateFS, "base.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Renderer{templates: templates, version: version}, nil
}

// Render writes a page to the response.
func (r *Renderer) Render(w http.ResponseWriter, page string, data any) {
	tmpl, ok := r.templates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	// Render to a buffer first so template errors don't produce torn pages
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
