// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// view_log.go records individual post reads in the mirror for auditing.
// Logging is best-effort: failures are logged and never reach the reader.
package store

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
)

// ViewLogStore handles view log operations.
type ViewLogStore struct {
	db *sql.DB
}

// NewViewLogStore creates a new ViewLogStore.
func NewViewLogStore(db *sql.DB) *ViewLogStore {
	return &ViewLogStore{db: db}
}

// Log records a read of the mirrored post with the given slug. Reads of
// posts that are not mirrored yet are skipped.
func (s *ViewLogStore) Log(ctx context.Context, postSlug, ip, userAgent string) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO view_logs (id, post_id, ip_address, user_agent)
		SELECT $1, id, $3, $4 FROM posts WHERE slug = $2
	`, uuid.New(), postSlug, ip, userAgent)
	if err != nil {
		slog.Warn("failed to log post view", "slug", postSlug, "error", err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.Debug("view not logged, post not mirrored", "slug", postSlug)
	}
}
