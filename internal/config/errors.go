package config

import (
	"errors"
)

// Sentinel error kinds so callers can classify failures with errors.Is.
var (
	// ErrInvalidConfig wraps validation failures after loading.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps provider and unmarshal failures.
	ErrLoadConfig = errors.New("load config failed")
)
