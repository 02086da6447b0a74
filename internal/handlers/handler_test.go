// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared fixtures for handler tests: an in-memory
// content tree, fake collaborators and a router mirroring production paths.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"

	"zsblog/internal/content"
	"zsblog/internal/feed"
	"zsblog/internal/views"
)

func md(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

// testTree is a small content root: three published posts in different
// date situations, one draft and one file with a broken header.
func testTree() fstest.MapFS {
	return fstest.MapFS{
		"2024/01/01/hello.md": md("---\ntitle: Hello\ntags: [go, 技术]\ncategories: [tech]\n---\n# Hello\n\nFirst post."),
		"2024/06/01/later.md": md("---\ntitle: Later\ndescription: The newer one\ntags: [go]\ncategories: [life]\n---\nSecond **post**."),
		"notes/undated.md":    md("---\ntitle: Undated\ntags: [misc]\n---\nNo date here."),
		"notes/secret.md":     md("---\ntitle: Secret\nstatus: draft\ntags: [hidden]\n---\nDraft body."),
		"broken.md":           md("---\ntitle: [unclosed\n---\nBody."),
	}
}

// fakeRenderer wraps the body in a paragraph so tests can spot it.
type fakeRenderer struct {
	err error
}

func (f fakeRenderer) ToHTML(source string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "<p>" + source + "</p>", nil
}

// failingCounter returns errors for every call.
type failingCounter struct{}

var errCounterDown = errors.New("counter unavailable")

func (failingCounter) Get(context.Context, string) (int64, error)       { return 0, errCounterDown }
func (failingCounter) Increment(context.Context, string) (int64, error) { return 0, errCounterDown }
func (failingCounter) Total(context.Context) (int64, error)             { return 0, errCounterDown }

// testEnv holds the handler groups under test.
type testEnv struct {
	Library *content.Library
	Counter views.Counter
	Posts   *Posts
	Meta    *Meta
	Feeds   *Feeds
	Router  chi.Router
}

type envOption func(*envConfig)

type envConfig struct {
	renderer Renderer
	counter  views.Counter
	tree     fstest.MapFS
}

func withRenderer(r Renderer) envOption     { return func(c *envConfig) { c.renderer = r } }
func withCounter(c views.Counter) envOption { return func(cfg *envConfig) { cfg.counter = c } }
func withTree(fsys fstest.MapFS) envOption  { return func(c *envConfig) { c.tree = fsys } }

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := envConfig{renderer: fakeRenderer{}, tree: testTree()}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.counter == nil {
		fc, err := views.NewFileCounter(filepath.Join(t.TempDir(), "views.json"))
		if err != nil {
			t.Fatalf("NewFileCounter: %v", err)
		}
		cfg.counter = fc
	}

	lib := content.NewLibrary(cfg.tree, content.Options{})
	site := feed.Site{
		Title:       "Test Blog",
		Description: "A test blog",
		URL:         "https://blog.example.com",
		Language:    "en",
	}

	env := &testEnv{
		Library: lib,
		Counter: cfg.counter,
		Posts:   NewPosts(lib, cfg.renderer, cfg.counter, nil),
		Meta:    NewMeta(lib, cfg.counter),
		Feeds:   NewFeeds(lib, cfg.renderer, nil, site, 2),
	}

	r := chi.NewRouter()
	r.Get("/api/posts", env.Posts.List)
	r.Get("/api/posts/tags/{tag}", env.Posts.ByTag)
	r.Get("/api/posts/categories/{category}", env.Posts.ByCategory)
	r.Get("/api/posts/*", env.Posts.Get)
	r.Get("/api/tags", env.Meta.Tags)
	r.Get("/api/categories", env.Meta.Categories)
	r.Get("/api/stats", env.Meta.Stats)
	r.Get("/rss", env.Feeds.RSS)
	r.Get("/atom.xml", env.Feeds.Atom)
	env.Router = r

	return env
}

// do performs a GET against the test router.
func (e *testEnv) do(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func slugsOf(items []map[string]any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, _ := it["slug"].(string)
		out = append(out, s)
	}
	return out
}

func assertJSON(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
}
