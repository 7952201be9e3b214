package model

import "errors"

// ErrNotFound is returned when a field lookup misses.
var ErrNotFound = errors.New("model: field not found")
