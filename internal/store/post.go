// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"zsblog/internal/models"
	"zsblog/internal/slug"
)

// PostStore mirrors filesystem posts into PostgreSQL and owns their view
// counts. The filesystem stays authoritative for everything but counts.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, slug, title, description, content_path, author, status, view_count, created_at, updated_at`

// scanPost scans a row into a PostRecord.
func scanPost(scanner interface{ Scan(...any) error }) (*models.PostRecord, error) {
	var p models.PostRecord
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Description, &p.ContentPath,
		&p.Author, &p.Status, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Sync upserts a post and replaces its tag and category associations with
// the ones declared in its frontmatter. Facet rows are shared by slug.
func (s *PostStore) Sync(ctx context.Context, post models.Post) (*models.PostRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin sync tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO posts (slug, title, description, content_path, author, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			author = EXCLUDED.author,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING `+postColumns,
		post.Slug, post.Title, post.Description, slug.ToPath("", post.Slug), post.Author, post.Status,
	)
	rec, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("upsert post %s: %w", post.Slug, err)
	}

	if err := syncFacets(ctx, tx, rec.ID, "tags", "post_tags", "tag_id", post.Tags); err != nil {
		return nil, err
	}
	if err := syncFacets(ctx, tx, rec.ID, "categories", "post_categories", "category_id", post.Categories); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sync tx: %w", err)
	}
	return rec, nil
}

// syncFacets upserts facet rows by slug and rewrites the join table rows
// of one post. Table names are fixed by callers, never user input.
func syncFacets(ctx context.Context, tx *sql.Tx, postID uuid.UUID, table, joinTable, joinColumn string, names []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+joinTable+` WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear %s: %w", joinTable, err)
	}

	for _, name := range names {
		facetSlug := slug.Generate(name)
		if facetSlug == "" {
			continue
		}

		var facetID uuid.UUID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO `+table+` (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = `+table+`.name
			RETURNING id
		`, name, facetSlug).Scan(&facetID)
		if err != nil {
			return fmt.Errorf("upsert %s %q: %w", table, name, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO `+joinTable+` (post_id, `+joinColumn+`) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, facetID); err != nil {
			return fmt.Errorf("link %s %q: %w", table, name, err)
		}
	}
	return nil
}

// FindBySlug retrieves a mirrored post. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, postSlug string) (*models.PostRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, postSlug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// Ensure makes sure a post is mirrored with its current status, syncing
// it when the row is missing or its status disagrees with the file.
func (s *PostStore) Ensure(ctx context.Context, post models.Post) (*models.PostRecord, error) {
	rec, err := s.FindBySlug(ctx, post.Slug)
	if err != nil {
		return nil, err
	}
	if rec != nil && rec.Status == post.Status {
		return rec, nil
	}
	return s.Sync(ctx, post)
}

// HideMissing marks every published row whose slug is not in visible as a
// draft. Rows keep their counts and view logs so a republished post picks
// up where it left off.
func (s *PostStore) HideMissing(ctx context.Context, visible []string) (int64, error) {
	if visible == nil {
		visible = []string{}
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET status = 'DRAFT', updated_at = NOW()
		WHERE status = 'PUBLISHED' AND NOT (slug = ANY($1))
	`, visible)
	if err != nil {
		return 0, fmt.Errorf("hide missing posts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Get returns the mirrored view count of a post, zero when not mirrored.
func (s *PostStore) Get(ctx context.Context, postSlug string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT view_count FROM posts WHERE slug = $1`, postSlug).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get view count: %w", err)
	}
	return n, nil
}

// Increment adds one view to a mirrored post and returns the new count.
// Posts not yet mirrored are left alone and report zero.
func (s *PostStore) Increment(ctx context.Context, postSlug string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE posts SET view_count = view_count + 1
		WHERE slug = $1
		RETURNING view_count
	`, postSlug).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("increment view count: %w", err)
	}
	return n, nil
}

// Total returns the sum of view counts over published rows.
func (s *PostStore) Total(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(view_count), 0) FROM posts WHERE status = 'PUBLISHED'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("total view count: %w", err)
	}
	return n, nil
}
