// Package views counts post reads. Counts only decorate responses; a
// failing counter never hides a post.
package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Counter tracks per-post view counts keyed by post identifier.
type Counter interface {
	Get(ctx context.Context, slug string) (int64, error)
	Increment(ctx context.Context, slug string) (int64, error)
	Total(ctx context.Context) (int64, error)
}

// Nop is a Counter that always reports zero.
type Nop struct{}

func (Nop) Get(context.Context, string) (int64, error)       { return 0, nil }
func (Nop) Increment(context.Context, string) (int64, error) { return 0, nil }
func (Nop) Total(context.Context) (int64, error)             { return 0, nil }

// FileCounter stores counts as a JSON object in a single file. Increments
// are serialized within the process.
type FileCounter struct {
	mu   sync.Mutex
	path string
}

// NewFileCounter creates a FileCounter, creating the parent directory and
// an empty file when missing.
func NewFileCounter(path string) (*FileCounter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("views dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("views file: %w", err)
		}
	}
	return &FileCounter{path: path}, nil
}

// read loads the counts map. A corrupt file reads as empty.
func (c *FileCounter) read() (map[string]int64, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read views: %w", err)
	}

	counts := map[string]int64{}
	if err := json.Unmarshal(data, &counts); err != nil {
		slog.Warn("views file is corrupt, starting from zero", "path", c.path, "error", err)
		return map[string]int64{}, nil
	}
	if counts == nil {
		// "null" decodes to a nil map.
		counts = map[string]int64{}
	}
	return counts, nil
}

// write replaces the file atomically through a temp file rename.
func (c *FileCounter) write(counts map[string]int64) error {
	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode views: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write views: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("rename views: %w", err)
	}
	return nil
}

// Get returns the count for a post, zero when never viewed.
func (c *FileCounter) Get(_ context.Context, slug string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts, err := c.read()
	if err != nil {
		return 0, err
	}
	return counts[slug], nil
}

// Increment adds one view and returns the new count.
func (c *FileCounter) Increment(_ context.Context, slug string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts, err := c.read()
	if err != nil {
		return 0, err
	}
	counts[slug]++
	if err := c.write(counts); err != nil {
		return 0, err
	}
	return counts[slug], nil
}

// Total returns the sum of all counts.
func (c *FileCounter) Total(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts, err := c.read()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return total, nil
}
