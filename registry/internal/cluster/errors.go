package cluster

import "errors"

// Construction errors. Field-specific failures wrap one of these so callers
// can match them with errors.Is.
var (
	// ErrRequired is returned by Build when a required field was never set
	ErrRequired = errors.New("required field not set")

	// ErrAlreadySet is recorded when a write-once field is assigned twice
	ErrAlreadySet = errors.New("write-once field already set")

	// ErrInvalidPort is returned when a management port is outside 1..65535
	ErrInvalidPort = errors.New("invalid jmx port")
)
