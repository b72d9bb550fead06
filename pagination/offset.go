// Package pagination validates offset cursors and derives listing windows.
package pagination

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// PageSize is the number of skills per listing page.
	PageSize = 24
	// SitemapBatch is the number of skills per skills sitemap document.
	SitemapBatch = 100
	// maxSafeInteger mirrors the largest integer a JSON number carries exactly.
	maxSafeInteger = 1<<53 - 1
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// ParseOffset accepts an absent value (0) or an all-digit safe integer.
func ParseOffset(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	if !digitsOnly.MatchString(raw) {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 || n > maxSafeInteger {
		return 0, false
	}
	return int(n), true
}

// ValidateOffset additionally requires alignment to pageSize.
func ValidateOffset(raw string, pageSize int) (int, bool) {
	n, ok := ParseOffset(raw)
	if !ok || pageSize <= 0 || n%pageSize != 0 {
		return 0, false
	}
	return n, true
}

// Window is the effective listing request derived from the query string.
type Window struct {
	Query  string
	Offset int
	// Indexable is false for query-bearing pages, which are not canonical.
	Indexable bool
	// Invalid is set in strict mode when the raw offset was rejected.
	Invalid bool
}

// ResolveWindow applies the listing rules: a free-text query forces offset 0
// and disables indexing; a malformed or misaligned offset is treated as absent
// unless strict is set, in which case the window is marked Invalid.
func ResolveWindow(query, rawOffset string, pageSize int, strict bool) Window {
	w := Window{Query: strings.TrimSpace(query), Indexable: true}
	if w.Query != "" {
		w.Indexable = false
		return w
	}
	offset, ok := ValidateOffset(rawOffset, pageSize)
	if !ok {
		w.Invalid = strict
		return w
	}
	w.Offset = offset
	return w
}

// NotFound reports whether a fetched page should render as not found. The
// first page always renders so the canonical listing never disappears.
func NotFound(offset, itemCount int) bool {
	return offset > 0 && itemCount == 0
}

// TotalPages is ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PageNumber is the 1-based page an offset falls on.
func PageNumber(offset, pageSize int) int {
	if pageSize <= 0 || offset < 0 {
		return 1
	}
	return offset/pageSize + 1
}

// HasMore reports whether items beyond offset+shown remain.
func HasMore(offset, shown, total int) bool {
	return offset+shown < total
}

// Range is the 1-based inclusive item range a page covers, (0, 0) when empty.
func Range(offset, itemCount int) (first, last int) {
	if itemCount <= 0 {
		return 0, 0
	}
	return offset + 1, offset + itemCount
}

// NextOffset is the cursor of the page after offset.
func NextOffset(offset, pageSize int) int {
	return offset + pageSize
}
