package repository

import "errors"

// Sentinel kinds for artifact store errors.
var (
	ErrNotFound   = errors.New("no trained artifact set found")
	ErrCorrupt    = errors.New("artifact set is corrupt")
	ErrInvalidSet = errors.New("artifact set is incomplete")
)
