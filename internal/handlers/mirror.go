package handlers

import (
	"context"
	"log/slog"
	"sync"

	"zsblog/internal/models"
	"zsblog/internal/store"
)

// Mirror keeps the relational copy of the content tree in step with the
// filesystem. A nil *Mirror is valid and does nothing.
type Mirror struct {
	posts *store.PostStore
	logs  *store.ViewLogStore

	mu     sync.Mutex
	synced string
}

// NewMirror creates a mirror over the given stores.
func NewMirror(posts *store.PostStore, logs *store.ViewLogStore) *Mirror {
	return &Mirror{posts: posts, logs: logs}
}

// Sync upserts every post unless the content fingerprint matches the last
// fully successful sync. An empty fingerprint always syncs. After a clean
// pass, rows for posts that were deleted or turned into drafts are hidden.
func (m *Mirror) Sync(ctx context.Context, fingerprint string, posts []models.Post) {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if fingerprint != "" && fingerprint == m.synced {
		return
	}

	failed := 0
	for _, p := range posts {
		if _, err := m.posts.Sync(ctx, p); err != nil {
			slog.Warn("mirror sync failed", "slug", p.Slug, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return
	}

	visible := make([]string, 0, len(posts))
	for _, p := range posts {
		visible = append(visible, p.Slug)
	}
	hidden, err := m.posts.HideMissing(ctx, visible)
	if err != nil {
		slog.Warn("mirror reconcile failed", "error", err)
		return
	}

	m.synced = fingerprint
	slog.Debug("mirror synced", "posts", len(posts), "hidden", hidden)
}

// Ensure mirrors a single post before it is counted, so reads of posts
// that no listing has synced yet still reach the relational copy.
func (m *Mirror) Ensure(ctx context.Context, post models.Post) {
	if m == nil {
		return
	}
	if _, err := m.posts.Ensure(ctx, post); err != nil {
		slog.Warn("mirror ensure failed", "slug", post.Slug, "error", err)
	}
}

// LogView records a single-post read.
func (m *Mirror) LogView(ctx context.Context, slug, ip, userAgent string) {
	if m == nil || m.logs == nil {
		return
	}
	m.logs.Log(ctx, slug, ip, userAgent)
}
