package cache

import "errors"

// ErrNotFound distinguishes "no quote recorded for this symbol" from a quote
// whose price is zero.
var ErrNotFound = errors.New("error not found")
