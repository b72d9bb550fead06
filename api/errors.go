package api

import "fmt"

// Common errors
var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrUpstream     = fmt.Errorf("upstream request failed")
	ErrInvalidInput = fmt.Errorf("invalid input")
)
