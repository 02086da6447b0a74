package content

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"zsblog/internal/models"
)

// collectionCache keeps the last built collections in memory, keyed by the
// content fingerprint. A changed file produces a new key, so stale entries
// are never served; the TTL only bounds memory.
type collectionCache struct {
	store *gocache.Cache
}

func newCollectionCache(ttl time.Duration) *collectionCache {
	return &collectionCache{store: gocache.New(ttl, 2*ttl)}
}

// get returns a copy of the cached collection so callers own their posts.
func (c *collectionCache) get(key string) ([]models.Post, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	cached := v.([]models.Post)
	out := make([]models.Post, len(cached))
	for i := range cached {
		out[i] = cached[i].Clone()
	}
	return out, true
}

func (c *collectionCache) put(key string, posts []models.Post) {
	stored := make([]models.Post, len(posts))
	for i := range posts {
		stored[i] = posts[i].Clone()
	}
	c.store.SetDefault(key, stored)
}

// fingerprint hashes the scanned entries independently of walk order.
func fingerprint(entries []fileEntry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.path + "\x00" + strconv.FormatInt(e.size, 10) + "\x00" + strconv.FormatInt(e.modTime.UnixNano(), 10)
	}
	slices.Sort(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}
