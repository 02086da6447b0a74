// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON and feed endpoints of the blog API.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"zsblog/internal/content"
	"zsblog/internal/middleware"
	"zsblog/internal/models"
	"zsblog/internal/views"
)

// Renderer converts a markdown body to HTML.
type Renderer interface {
	ToHTML(source string) (string, error)
}

// postSummary is the listing shape of a post. The body is omitted.
type postSummary struct {
	Slug        string             `json:"slug"`
	Frontmatter models.Frontmatter `json:"frontmatter"`
	CreatedAt   *time.Time         `json:"createdAt"`
	UpdatedAt   *time.Time         `json:"updatedAt"`
	ViewCount   int64              `json:"viewCount"`
}

// postDetail is a single post with its rendered body.
type postDetail struct {
	postSummary
	Content string `json:"content"`
}

// Posts groups the post listing and single-post endpoints.
type Posts struct {
	library  *content.Library
	renderer Renderer
	counter  views.Counter
	mirror   *Mirror
}

// NewPosts creates the post handlers. A nil counter disables view counts
// and a nil mirror disables the relational copy.
func NewPosts(library *content.Library, renderer Renderer, counter views.Counter, mirror *Mirror) *Posts {
	if counter == nil {
		counter = views.Nop{}
	}
	return &Posts{
		library:  library,
		renderer: renderer,
		counter:  counter,
		mirror:   mirror,
	}
}

// List returns every visible post, newest first, and keeps the mirror in
// step with the content tree.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	fingerprint, err := h.library.Fingerprint()
	if err != nil {
		slog.Warn("content fingerprint failed", "error", err)
		fingerprint = ""
	}

	posts := h.library.ListAll()
	h.mirror.Sync(r.Context(), fingerprint, posts)
	h.writeList(w, r, posts)
}

// ByTag returns the visible posts carrying the exact tag.
func (h *Posts) ByTag(w http.ResponseWriter, r *http.Request) {
	tag, ok := validateFacet(routeParam(r, "tag"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid tag")
		return
	}
	h.writeList(w, r, h.library.PostsByTag(tag))
}

// ByCategory returns the visible posts carrying the exact category.
func (h *Posts) ByCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := validateFacet(routeParam(r, "category"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid category")
		return
	}
	h.writeList(w, r, h.library.PostsByCategory(category))
}

// Get returns one post with its body rendered to HTML. Missing, malformed
// and draft posts are all reported as not found.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := validateSlug(routeParam(r, "*"))
	if !ok {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	post, ok := h.library.Load(id)
	if !ok || post.IsDraft() {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	html, err := h.renderer.ToHTML(post.Content)
	if err != nil {
		slog.Error("render post failed", "slug", post.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render post")
		return
	}

	h.mirror.Ensure(ctx, *post)
	count, err := h.counter.Increment(ctx, post.Slug)
	if err != nil {
		slog.Warn("view count increment failed", "slug", post.Slug, "error", err)
		count = 0
	}
	h.mirror.LogView(ctx, post.Slug, middleware.ClientIP(r), r.UserAgent())

	writeJSON(w, http.StatusOK, postDetail{
		postSummary: summarize(*post, count),
		Content:     html,
	})
}

// writeList paginates posts, decorates them with view counts and writes
// the listing. X-Total-Count carries the size before pagination.
func (h *Posts) writeList(w http.ResponseWriter, r *http.Request, posts []models.Post) {
	page, msg := validatePage(r.URL.Query())
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	start, end := page.window(len(posts))
	visible := posts[start:end]

	out := make([]postSummary, 0, len(visible))
	for _, p := range visible {
		out = append(out, summarize(p, h.viewCount(r.Context(), p.Slug)))
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(len(posts)))
	writeJSON(w, http.StatusOK, out)
}

// viewCount reads a post's count, degrading to zero on counter errors.
func (h *Posts) viewCount(ctx context.Context, slug string) int64 {
	n, err := h.counter.Get(ctx, slug)
	if err != nil {
		slog.Warn("view count read failed", "slug", slug, "error", err)
		return 0
	}
	return n
}

func summarize(p models.Post, count int64) postSummary {
	return postSummary{
		Slug:        p.Slug,
		Frontmatter: p.Frontmatter,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		ViewCount:   count,
	}
}
