// Package content discovers, parses and orders the markdown posts under a
// content root. Every call re-reads the filesystem; the only state a
// Library keeps is the optional collection cache.
package content

import (
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"zsblog/internal/models"
	"zsblog/internal/slug"
)

const (
	// DefaultAuthor is applied to posts that do not declare an author.
	DefaultAuthor = "zsden"

	// DefaultWorkers bounds how many posts are loaded concurrently.
	DefaultWorkers = 8
)

// Options configures a Library. Zero values select the defaults.
type Options struct {
	DefaultAuthor string
	Workers       int
	// CacheTTL enables the in-process collection cache when positive.
	CacheTTL time.Duration
}

// Library loads posts from a filesystem rooted at the content directory.
type Library struct {
	fsys          fs.FS
	defaultAuthor string
	workers       int
	cache         *collectionCache
}

// NewLibrary creates a Library over fsys, usually os.DirFS(contentDir).
func NewLibrary(fsys fs.FS, opts Options) *Library {
	l := &Library{
		fsys:          fsys,
		defaultAuthor: opts.DefaultAuthor,
		workers:       opts.Workers,
	}
	if l.defaultAuthor == "" {
		l.defaultAuthor = DefaultAuthor
	}
	if l.workers <= 0 {
		l.workers = DefaultWorkers
	}
	if opts.CacheTTL > 0 {
		l.cache = newCollectionCache(opts.CacheTTL)
	}
	return l
}

// Load reads the post with the given identifier. It reports false when the
// file does not exist, is not a regular file, or cannot be read or parsed;
// callers treat all of these as "not found". Drafts are returned.
func (l *Library) Load(id string) (*models.Post, bool) {
	name := slug.ToPath("", id)
	if !fs.ValidPath(name) {
		return nil, false
	}

	info, err := fs.Stat(l.fsys, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("stat post failed", "slug", id, "error", err)
		}
		return nil, false
	}
	if !info.Mode().IsRegular() {
		return nil, false
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		slog.Warn("read post failed", "slug", id, "error", err)
		return nil, false
	}

	meta, body, err := ParseFrontmatter(data)
	if err != nil {
		slog.Warn("parse post failed", "slug", id, "error", err)
		return nil, false
	}

	post := &models.Post{
		Slug:        id,
		Frontmatter: meta,
		Content:     string(body),
	}
	l.applyDefaults(post)

	if mod := info.ModTime(); !mod.IsZero() {
		updated := mod.UTC()
		post.UpdatedAt = &updated
	}
	post.CreatedAt = ResolveCreatedAt(post)

	return post, true
}

// applyDefaults fills the fields a post may leave out.
func (l *Library) applyDefaults(p *models.Post) {
	if p.Frontmatter.Slug == "" {
		p.Frontmatter.Slug = p.Slug
	}
	if p.Status == "" {
		p.Status = models.StatusPublished
	}
	if p.Author == "" {
		p.Author = l.defaultAuthor
	}
	if p.Title == "" {
		p.Title = path.Base(p.Slug)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
}

// ListAll returns every non-draft post, newest first. An unreadable
// content root yields an empty collection; a post that fails to load is
// skipped without affecting the others.
func (l *Library) ListAll() []models.Post {
	entries, err := l.scan()
	if err != nil {
		slog.Warn("content enumeration failed", "error", err)
		return []models.Post{}
	}

	key := fingerprint(entries)
	if l.cache != nil {
		if posts, ok := l.cache.get(key); ok {
			return posts
		}
	}

	// Results are stored by index; enumeration order never leaks into
	// the final ordering.
	loaded := make([]*models.Post, len(entries))
	var g errgroup.Group
	g.SetLimit(l.workers)
	for i, e := range entries {
		g.Go(func() error {
			if p, ok := l.Load(slug.FromPath(e.path)); ok {
				loaded[i] = p
			}
			return nil
		})
	}
	_ = g.Wait()

	posts := make([]models.Post, 0, len(loaded))
	for _, p := range loaded {
		if p == nil || p.IsDraft() {
			continue
		}
		posts = append(posts, *p)
	}
	Sort(posts)

	if l.cache != nil {
		l.cache.put(key, posts)
	}
	return posts
}

// AllTags returns the sorted distinct tags of all listed posts.
func (l *Library) AllTags() []string {
	return Tags(l.ListAll())
}

// AllCategories returns the sorted distinct categories of all listed posts.
func (l *Library) AllCategories() []string {
	return Categories(l.ListAll())
}

// PostsByTag returns the listed posts carrying tag, newest first.
func (l *Library) PostsByTag(tag string) []models.Post {
	return ByTag(l.ListAll(), tag)
}

// PostsByCategory returns the listed posts in category, newest first.
func (l *Library) PostsByCategory(category string) []models.Post {
	return ByCategory(l.ListAll(), category)
}

// Fingerprint summarizes the names, sizes and modification times of every
// markdown file under the root. It changes whenever a post is added,
// removed or rewritten.
func (l *Library) Fingerprint() (string, error) {
	entries, err := l.scan()
	if err != nil {
		return "", err
	}
	return fingerprint(entries), nil
}

// fileEntry is a markdown file found during a scan.
type fileEntry struct {
	path    string
	size    int64
	modTime time.Time
}

// scan walks the content root for markdown files. Only a failure on the
// root itself is returned; unreadable subdirectories are logged and skipped.
func (l *Library) scan() ([]fileEntry, error) {
	var entries []fileEntry
	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			slog.Warn("skipping unreadable content path", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), slug.Ext) {
			return nil
		}

		e := fileEntry{path: p}
		if info, err := d.Info(); err == nil {
			e.size = info.Size()
			e.modTime = info.ModTime()
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
