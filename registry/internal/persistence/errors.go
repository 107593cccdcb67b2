package persistence

import "errors"

// Common errors for persistence operations
var (
	// ErrClusterNotFound is returned when no cluster is stored under a name
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrClusterExists is returned when adding a cluster whose canonical name is taken
	ErrClusterExists = errors.New("cluster already exists")

	// ErrConflict is returned when the stored cluster changed since it was read
	ErrConflict = errors.New("cluster was modified concurrently")
)
