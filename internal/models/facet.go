// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// FacetKind distinguishes the two facet tables in the database mirror.
type FacetKind string

const (
	FacetTag      FacetKind = "tag"
	FacetCategory FacetKind = "category"
)

// Facet is a tag or category row in the database mirror.
type Facet struct {
	ID          uuid.UUID `json:"id"`
	Kind        FacetKind `json:"kind"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
}

// PostRecord is the mirrored row of a post. Title, description and facets
// are copied from the filesystem on every sync; ViewCount is owned by the
// mirror.
type PostRecord struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ContentPath string    `json:"content_path"`
	Author      string    `json:"author"`
	Status      Status    `json:"status"`
	ViewCount   int64     `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
