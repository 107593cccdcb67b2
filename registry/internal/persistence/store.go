package persistence

import (
	"context"

	"github.com/williamhogman/cluster-registry/registry/internal/cluster"
)

// Store keeps clusters keyed by their canonical name. Implementations must be
// safe for concurrent use.
type Store interface {
	// AddCluster stores a new cluster, failing with ErrClusterExists if the name is taken
	AddCluster(ctx context.Context, c *cluster.Cluster) error

	// UpdateCluster replaces prev with next if the stored value still equals
	// prev. It fails with ErrClusterNotFound if absent and ErrConflict if the
	// stored value changed.
	UpdateCluster(ctx context.Context, prev, next *cluster.Cluster) error

	// GetCluster returns the cluster stored under a canonical name
	GetCluster(ctx context.Context, name string) (*cluster.Cluster, error)

	// ListClusters returns all clusters ordered by name
	ListClusters(ctx context.Context) ([]*cluster.Cluster, error)

	// DeleteCluster removes the cluster stored under a canonical name
	DeleteCluster(ctx context.Context, name string) error

	// Close cleans up resources used by the store
	Close() error
}
