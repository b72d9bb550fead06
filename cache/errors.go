package cache

import "fmt"

// Common errors
var (
	ErrCacheMiss       = fmt.Errorf("cache miss")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrStoreConnection = fmt.Errorf("cache store connection error")
)
