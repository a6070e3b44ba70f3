package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors, matchable with errors.Is.
var (
	ErrObserveFailed = errors.New("metrics observe failed")
)
