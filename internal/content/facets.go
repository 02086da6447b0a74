package content

import (
	"slices"

	"zsblog/internal/models"
)

// Tags returns every distinct tag across posts in ascending order.
func Tags(posts []models.Post) []string {
	return distinct(posts, func(p *models.Post) []string { return p.Tags })
}

// Categories returns every distinct category across posts in ascending order.
func Categories(posts []models.Post) []string {
	return distinct(posts, func(p *models.Post) []string { return p.Categories })
}

// ByTag returns the posts carrying tag, preserving their order. The match
// is exact and case-sensitive.
func ByTag(posts []models.Post, tag string) []models.Post {
	return filter(posts, func(p *models.Post) bool { return p.HasTag(tag) })
}

// ByCategory returns the posts in category, preserving their order.
func ByCategory(posts []models.Post, category string) []models.Post {
	return filter(posts, func(p *models.Post) bool { return p.HasCategory(category) })
}

func distinct(posts []models.Post, values func(*models.Post) []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range posts {
		for _, v := range values(&posts[i]) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

func filter(posts []models.Post, keep func(*models.Post) bool) []models.Post {
	out := []models.Post{}
	for i := range posts {
		if keep(&posts[i]) {
			out = append(out, posts[i])
		}
	}
	return out
}
