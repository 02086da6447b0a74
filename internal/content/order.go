package content

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"zsblog/internal/models"
	"zsblog/internal/slug"
)

// datePattern is the only frontmatter date shape accepted for ordering.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ResolveCreatedAt picks the authoritative creation date of a post: the
// frontmatter date when it is a valid calendar date in YYYY-MM-DD form,
// otherwise the date embedded in the identifier, otherwise nil.
func ResolveCreatedAt(p *models.Post) *time.Time {
	if t, ok := parseFrontmatterDate(p.Date); ok {
		return &t
	}
	if d, ok := slug.ParseDate(p.Slug); ok {
		if t, ok := calendarDate(d.Year, d.Month, d.Day); ok {
			return &t
		}
	}
	return nil
}

func parseFrontmatterDate(s string) (time.Time, bool) {
	if !datePattern.MatchString(s) {
		return time.Time{}, false
	}
	parts := strings.Split(s, "-")
	return calendarDate(parts[0], parts[1], parts[2])
}

// calendarDate builds a UTC midnight date and rejects values that
// time.Date would silently normalize, like month 13 or February 30.
func calendarDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// Compare orders posts newest first. Dated posts sort before undated ones;
// equal dates and undated pairs fall back to the identifier, descending.
// Identifiers are unique, so this is a total order.
func Compare(a, b models.Post) int {
	switch {
	case a.CreatedAt != nil && b.CreatedAt != nil:
		if c := b.CreatedAt.Compare(*a.CreatedAt); c != 0 {
			return c
		}
	case a.CreatedAt != nil:
		return -1
	case b.CreatedAt != nil:
		return 1
	}
	return strings.Compare(b.Slug, a.Slug)
}

// Sort orders posts in place using Compare.
func Sort(posts []models.Post) {
	slices.SortStableFunc(posts, Compare)
}
