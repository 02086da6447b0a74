package handlers

import (
	"log/slog"
	"net/http"

	"zsblog/internal/content"
	"zsblog/internal/views"
)

// Meta serves the facet indexes and site statistics.
type Meta struct {
	library *content.Library
	counter views.Counter
}

// NewMeta creates the facet and statistics handlers.
func NewMeta(library *content.Library, counter views.Counter) *Meta {
	if counter == nil {
		counter = views.Nop{}
	}
	return &Meta{library: library, counter: counter}
}

// Tags lists every distinct tag of visible posts in ascending order.
func (h *Meta) Tags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.AllTags())
}

// Categories lists every distinct category of visible posts in ascending order.
func (h *Meta) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.AllCategories())
}

type stats struct {
	Posts      int   `json:"posts"`
	Tags       int   `json:"tags"`
	Categories int   `json:"categories"`
	Views      int64 `json:"views"`
}

// Stats reports collection sizes and the total view count.
func (h *Meta) Stats(w http.ResponseWriter, r *http.Request) {
	posts := h.library.ListAll()

	total, err := h.counter.Total(r.Context())
	if err != nil {
		slog.Warn("view total failed", "error", err)
		total = 0
	}

	writeJSON(w, http.StatusOK, stats{
		Posts:      len(posts),
		Tags:       len(content.Tags(posts)),
		Categories: len(content.Categories(posts)),
		Views:      total,
	})
}
