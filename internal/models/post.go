// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Status represents the publishing state of a post as declared in its
// frontmatter.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

// Frontmatter holds the declared metadata of one markdown post. Date is
// kept as the calendar-date string found in the file (native YAML dates
// are normalized to YYYY-MM-DD by the loader).
type Frontmatter struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	Categories  []string `json:"categories"`
	Status      Status   `json:"status"`
	Date        string   `json:"date,omitempty"`
	Slug        string   `json:"slug"`
}

// Post is a markdown post loaded from the content root. Slug is always the
// path-derived identifier; Frontmatter.Slug is informational only.
type Post struct {
	Slug string `json:"slug"`
	Frontmatter

	// Content is the raw markdown body, without the frontmatter block.
	Content string `json:"-"`

	// CreatedAt is the resolved creation date, nil when neither the
	// frontmatter nor the slug carries a valid date.
	CreatedAt *time.Time `json:"createdAt"`
	// UpdatedAt is the file modification time reported by the filesystem,
	// nil when unknown.
	UpdatedAt *time.Time `json:"updatedAt"`
}

// IsDraft returns true if the post is marked as a draft.
func (p *Post) IsDraft() bool {
	return p.Status == StatusDraft
}

// HasTag reports whether the post carries the exact tag.
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasCategory reports whether the post carries the exact category.
func (p *Post) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers may mutate the result freely.
func (p Post) Clone() Post {
	p.Tags = append([]string{}, p.Tags...)
	p.Categories = append([]string{}, p.Categories...)
	if p.CreatedAt != nil {
		t := *p.CreatedAt
		p.CreatedAt = &t
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}
