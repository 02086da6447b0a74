package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
)

// Validation limits for request parameters.
const (
	maxSlugLen  = 300
	maxFacetLen = 200
	maxPageSize = 100
)

// pageRequest is a validated pagination window. Limit 0 means everything.
type pageRequest struct {
	Page  int
	Limit int
}

// validatePage parses the page and limit query parameters and returns the
// first error found. Both are optional; page defaults to 1.
func validatePage(q url.Values) (pageRequest, string) {
	req := pageRequest{Page: 1}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return req, "limit must be a positive integer"
		}
		req.Limit = min(n, maxPageSize)
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return req, "page must be a positive integer"
		}
		req.Page = n
	}
	return req, ""
}

// window returns the [start, end) bounds of the page within total items.
func (p pageRequest) window(total int) (int, int) {
	if p.Limit == 0 {
		return 0, total
	}
	start := min((p.Page-1)*p.Limit, total)
	end := min(start+p.Limit, total)
	return start, end
}

// routeParam returns a decoded route parameter. chi matches against
// RawPath when the request carries one, and only then are params still
// percent-encoded.
func routeParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

// validateSlug normalizes a decoded post identifier.
func validateSlug(raw string) (string, bool) {
	id := strings.Trim(raw, "/")
	if id == "" || utf8.RuneCountInString(id) > maxSlugLen {
		return "", false
	}
	return id, true
}

// validateFacet checks a decoded tag or category route parameter.
func validateFacet(name string) (string, bool) {
	if name == "" || utf8.RuneCountInString(name) > maxFacetLen {
		return "", false
	}
	return name, true
}
