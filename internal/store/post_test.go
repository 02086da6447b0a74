package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"zsblog/internal/models"
)

func testPost(t *testing.T, db *sql.DB) models.Post {
	t.Helper()
	suffix := uuid.NewString()[:8]
	p := models.Post{
		Slug: "2024/01/01/test-" + suffix,
		Frontmatter: models.Frontmatter{
			Title:      "Test Post",
			Author:     "zsden",
			Status:     models.StatusPublished,
			Tags:       []string{"Go " + suffix},
			Categories: []string{"tech-" + suffix},
		},
	}
	t.Cleanup(func() {
		cleanPosts(t, db, p.Slug)
		cleanFacets(t, db, "go-"+suffix, "tech-"+suffix)
	})
	return p
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestPostStoreSyncCreatesAndUpdates(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	ctx := context.Background()
	post := testPost(t, db)

	rec, err := s.Sync(ctx, post)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if rec.Title != "Test Post" {
		t.Errorf("title: got %q, want %q", rec.Title, "Test Post")
	}
	if rec.ContentPath != post.Slug+".md" {
		t.Errorf("content_path: got %q, want %q", rec.ContentPath, post.Slug+".md")
	}
	if n := countRows(t, db, "SELECT COUNT(*) FROM post_tags WHERE post_id = $1", rec.ID); n != 1 {
		t.Errorf("post_tags: got %d, want 1", n)
	}
	if n := countRows(t, db, "SELECT COUNT(*) FROM post_categories WHERE post_id = $1", rec.ID); n != 1 {
		t.Errorf("post_categories: got %d, want 1", n)
	}

	// Second sync keeps the row and replaces the associations.
	post.Title = "Renamed"
	post.Tags = nil
	again, err := s.Sync(ctx, post)
	if err != nil {
		t.Fatalf("Sync again: %v", err)
	}
	if again.ID != rec.ID {
		t.Errorf("id changed on resync: %s != %s", again.ID, rec.ID)
	}
	if again.Title != "Renamed" {
		t.Errorf("title: got %q, want %q", again.Title, "Renamed")
	}
	if n := countRows(t, db, "SELECT COUNT(*) FROM post_tags WHERE post_id = $1", rec.ID); n != 0 {
		t.Errorf("post_tags after resync: got %d, want 0", n)
	}
}

func TestPostStoreFindBySlugMissing(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	found, err := s.FindBySlug(context.Background(), "no-such-post-"+uuid.NewString())
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil, got %+v", found)
	}
}

func TestPostStoreEnsure(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	ctx := context.Background()
	post := testPost(t, db)

	rec, err := s.Ensure(ctx, post)
	if err != nil {
		t.Fatalf("Ensure unmirrored: %v", err)
	}
	if rec == nil || rec.Status != models.StatusPublished {
		t.Fatalf("Ensure should mirror the post, got %+v", rec)
	}
	if n, _ := s.Increment(ctx, post.Slug); n != 1 {
		t.Errorf("Increment after Ensure: got %d, want 1", n)
	}

	// A hidden row is restored when the file is published again.
	if _, err := db.Exec("UPDATE posts SET status = 'DRAFT' WHERE slug = $1", post.Slug); err != nil {
		t.Fatal(err)
	}
	again, err := s.Ensure(ctx, post)
	if err != nil {
		t.Fatalf("Ensure hidden: %v", err)
	}
	if again.ID != rec.ID || again.Status != models.StatusPublished {
		t.Errorf("Ensure should republish the same row, got %+v", again)
	}
	if again.ViewCount != 1 {
		t.Errorf("view count after republish: got %d, want 1", again.ViewCount)
	}
}

func TestPostStoreHideMissing(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	ctx := context.Background()
	kept := testPost(t, db)
	gone := testPost(t, db)

	for _, p := range []models.Post{kept, gone} {
		if _, err := s.Sync(ctx, p); err != nil {
			t.Fatalf("Sync %s: %v", p.Slug, err)
		}
	}
	if _, err := s.Increment(ctx, gone.Slug); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	before, err := s.Total(ctx)
	if err != nil {
		t.Fatalf("Total: %v", err)
	}

	hidden, err := s.HideMissing(ctx, []string{kept.Slug})
	if err != nil {
		t.Fatalf("HideMissing: %v", err)
	}
	if hidden < 1 {
		t.Errorf("hidden: got %d, want at least 1", hidden)
	}

	keptRec, _ := s.FindBySlug(ctx, kept.Slug)
	goneRec, _ := s.FindBySlug(ctx, gone.Slug)
	if keptRec == nil || keptRec.Status != models.StatusPublished {
		t.Errorf("kept post: got %+v, want published", keptRec)
	}
	if goneRec == nil || goneRec.Status != models.StatusDraft {
		t.Errorf("missing post: got %+v, want draft", goneRec)
	}

	after, err := s.Total(ctx)
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if after >= before {
		t.Errorf("Total should drop hidden counts: before %d, after %d", before, after)
	}
}

func TestPostStoreViewCounts(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	ctx := context.Background()
	post := testPost(t, db)

	// Not mirrored yet.
	if n, err := s.Increment(ctx, post.Slug); err != nil || n != 0 {
		t.Fatalf("Increment unmirrored: got (%d, %v), want (0, nil)", n, err)
	}

	if _, err := s.Sync(ctx, post); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	before, err := s.Total(ctx)
	if err != nil {
		t.Fatalf("Total: %v", err)
	}

	for i := int64(1); i <= 3; i++ {
		n, err := s.Increment(ctx, post.Slug)
		if err != nil {
			t.Fatalf("Increment: %v", err)
		}
		if n != i {
			t.Errorf("Increment #%d: got %d", i, n)
		}
	}

	got, err := s.Get(ctx, post.Slug)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != 3 {
		t.Errorf("Get: got %d, want 3", got)
	}

	after, err := s.Total(ctx)
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if after-before != 3 {
		t.Errorf("Total delta: got %d, want 3", after-before)
	}

	// Resync must not reset the count.
	if _, err := s.Sync(ctx, post); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got, _ := s.Get(ctx, post.Slug); got != 3 {
		t.Errorf("count after resync: got %d, want 3", got)
	}
}
