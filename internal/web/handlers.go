package web

import (
	"net/http"
	"strings"

	"github.com/askeland/mailfold/internal/errors"
	"github.com/askeland/mailfold/internal/store"
)

// Handlers holds dependencies for the viewer's HTTP handlers.
type Handlers struct {
	store    store.Store
	renderer *Renderer
}

// HandleDigestList renders the list of captured digest days.
func (h *Handlers) HandleDigestList(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.List(r.Context(), store.DigestPrefix)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]ListItem, 0, len(keys))
	// Newest day first
	for i := len(keys) - 1; i >= 0; i-- {
		day := keyBase(keys[i], store.DigestPrefix)
		items = append(items, ListItem{Name: day, URL: "/digests/" + day})
	}

	h.renderer.Render(w, "list.html", ListPageData{
		PageData: PageData{Title: "Digests", Version: h.renderer.version, Nav: "digests"},
		Heading:  "Daily digests",
		Items:    items,
	})
}

// HandleDigestDetail renders one digest document.
func (h *Handlers) HandleDigestDetail(w http.ResponseWriter, r *http.Request) {
	day := r.PathValue("day")
	data, err := h.store.Get(r.Context(), store.DigestPrefix+day+".md")
	if err != nil {
		h.writeError(w, err)
		return
	}

	rendered, err := renderMarkdown(stripFrontmatter(string(data)))
	if err != nil {
		h.writeError(w, errors.NewInternal(err))
		return
	}

	h.renderer.Render(w, "detail.html", DetailPageData{
		PageData:     PageData{Title: day, Version: h.renderer.version, Nav: "digests"},
		Heading:      day,
		RenderedHTML: rendered,
	})
}

// HandleNoteList renders the list of captured notes.
func (h *Handlers) HandleNoteList(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.List(r.Context(), store.NotePrefix)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]ListItem, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		name := keyBase(keys[i], store.NotePrefix)
		items = append(items, ListItem{Name: name, URL: "/notes/" + name})
	}

	h.renderer.Render(w, "list.html", ListPageData{
		PageData: PageData{Title: "Notes", Version: h.renderer.version, Nav: "notes"},
		Heading:  "Notes",
		Items:    items,
	})
}

// HandleNoteDetail renders one note.
func (h *Handlers) HandleNoteDetail(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data, err := h.store.Get(r.Context(), store.NotePrefix+name+".md")
	if err != nil {
		h.writeError(w, err)
		return
	}

	rendered, err := renderMarkdown(string(data))
	if err != nil {
		h.writeError(w, errors.NewInternal(err))
		return
	}

	h.renderer.Render(w, "detail.html", DetailPageData{
		PageData:     PageData{Title: name, Version: h.renderer.version, Nav: "notes"},
		Heading:      name,
		RenderedHTML: rendered,
	})
}

// writeError maps structured errors to HTTP status codes.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	if fErr, ok := err.(*errors.FoldError); ok {
		http.Error(w, fErr.Message, fErr.Status)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// keyBase strips the family prefix and the .md suffix from an object key.
func keyBase(key, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, prefix), ".md")
}

// stripFrontmatter drops the YAML header region before markdown rendering;
// it is machine metadata, not page content.
func stripFrontmatter(text string) string {
	if !strings.HasPrefix(text, "---\n") {
		return text
	}
	rest := text[4:]
	if end := strings.Index(rest, "\n---\n"); end >= 0 {
		return rest[end+5:]
	}
	return text
}
