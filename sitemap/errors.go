package sitemap

import "fmt"

// Common errors
var (
	ErrNotFound = fmt.Errorf("sitemap not found")
	ErrUpstream = fmt.Errorf("sitemap upstream error")
)
