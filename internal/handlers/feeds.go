// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"zsblog/internal/cache"
	"zsblog/internal/content"
	"zsblog/internal/feed"
)

// feedCacheControl lets clients and proxies reuse a feed for an hour.
const feedCacheControl = "public, max-age=3600"

// DefaultFeedLimit is the number of newest posts a feed carries.
const DefaultFeedLimit = 20

type feedBuilder func(feed.Site, []feed.Item, time.Time) ([]byte, error)

// Feeds serves the RSS and Atom documents. When a page cache is set, built
// documents are stored under the content fingerprint so any file change
// produces a miss.
type Feeds struct {
	library   *content.Library
	renderer  Renderer
	pageCache *cache.PageCache
	site      feed.Site
	limit     int
	now       func() time.Time
}

// NewFeeds creates the feed handlers. pageCache may be nil.
func NewFeeds(library *content.Library, renderer Renderer, pageCache *cache.PageCache, site feed.Site, limit int) *Feeds {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return &Feeds{
		library:   library,
		renderer:  renderer,
		pageCache: pageCache,
		site:      site,
		limit:     limit,
		now:       time.Now,
	}
}

// RSS serves the RSS 2.0 feed.
func (h *Feeds) RSS(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "rss", feed.RSSContentType, feed.RSS)
}

// Atom serves the Atom 1.0 feed.
func (h *Feeds) Atom(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "atom", feed.AtomContentType, feed.Atom)
}

func (h *Feeds) serve(w http.ResponseWriter, r *http.Request, format, contentType string, build feedBuilder) {
	ctx := r.Context()

	var key string
	if h.pageCache != nil {
		if fp, err := h.library.Fingerprint(); err == nil {
			key = cache.FeedKey(format, fp)
		} else {
			slog.Warn("content fingerprint failed", "error", err)
		}
	}

	if key != "" {
		if cached, ok := h.pageCache.Get(ctx, key); ok {
			writeFeed(w, contentType, cached)
			return
		}
	}

	posts := h.library.ListAll()
	if len(posts) > h.limit {
		posts = posts[:h.limit]
	}

	items := make([]feed.Item, 0, len(posts))
	for _, p := range posts {
		html, err := h.renderer.ToHTML(p.Content)
		if err != nil {
			slog.Warn("render feed item failed", "slug", p.Slug, "error", err)
			html = ""
		}
		items = append(items, feed.Item{Post: p, HTML: html})
	}

	body, err := build(h.site, items, h.now())
	if err != nil {
		slog.Error("build feed failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to build feed")
		return
	}

	if key != "" {
		h.pageCache.Set(ctx, key, body)
	}
	writeFeed(w, contentType, body)
}

func writeFeed(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", feedCacheControl)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
