// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug maps content files to post identifiers and back, extracts
// dates embedded in date-shaped identifiers like "2024/03/15/my-post", and
// generates URL slugs for tag and category names.
package slug

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Ext is the file extension of markdown posts.
const Ext = ".md"

// whitespace matches runs of whitespace collapsed into a single hyphen.
var whitespace = regexp.MustCompile(`\s+`)

// FromPath converts a content-root-relative file path into a post
// identifier: the markdown extension is stripped and backslashes become
// forward slashes.
// Example: `2024\03\hello.md` → "2024/03/hello"
func FromPath(p string) string {
	p = strings.TrimSuffix(p, Ext)
	return strings.ReplaceAll(p, `\`, "/")
}

// ToPath joins the content root, the identifier and the markdown extension.
// An empty root yields a root-relative path.
func ToPath(root, id string) string {
	if root == "" {
		return id + Ext
	}
	return path.Join(root, id+Ext)
}

// Date is the (year, month, day) triple found in the leading segments of an
// identifier. Month and day are not validated here.
type Date struct {
	Year  string
	Month string
	Day   string
}

// String formats the triple as "year-month-day".
func (d Date) String() string {
	return d.Year + "-" + d.Month + "-" + d.Day
}

// ParseDate extracts the date embedded in an identifier. The first segment
// is the year, the second the month and the third (default "01") the day.
// It reports false when the identifier has fewer than two segments or the
// year is not a four-character integer.
func ParseDate(id string) (Date, bool) {
	parts := strings.Split(id, "/")
	if len(parts) < 2 {
		return Date{}, false
	}

	d := Date{Year: parts[0], Month: parts[1], Day: "01"}
	if len(parts) > 2 && parts[2] != "" {
		d.Day = parts[2]
	}

	if len(d.Year) != 4 {
		return Date{}, false
	}
	if _, err := strconv.Atoi(d.Year); err != nil {
		return Date{}, false
	}
	return d, true
}

// Generate creates a URL slug for a tag or category name: lowercased, with
// whitespace runs replaced by a hyphen. Non-ASCII letters are kept so that
// CJK names stay distinct.
// Example: "Web Development" → "web-development"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	return whitespace.ReplaceAllString(result, "-")
}
