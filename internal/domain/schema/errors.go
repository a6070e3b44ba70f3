package schema

import "errors"

// Sentinel kinds for schema classification errors.
var (
	ErrUnrecognizedSchema = errors.New("unrecognized input schema")
)
