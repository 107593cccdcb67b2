package persistence

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/williamhogman/cluster-registry/registry/internal/cluster"
)

// memoryStore implements an in-memory Store. Clusters are immutable so the
// stored pointers are handed out directly.
type memoryStore struct {
	mu       sync.RWMutex
	clusters map[string]*cluster.Cluster
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() Store {
	return &memoryStore{
		clusters: make(map[string]*cluster.Cluster),
	}
}

// AddCluster adds a new cluster to storage
func (m *memoryStore) AddCluster(ctx context.Context, c *cluster.Cluster) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clusters[c.Name()]; exists {
		return ErrClusterExists
	}

	m.clusters[c.Name()] = c
	return nil
}

// UpdateCluster swaps prev for next
func (m *memoryStore) UpdateCluster(ctx context.Context, prev, next *cluster.Cluster) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.clusters[next.Name()]
	if !exists {
		return ErrClusterNotFound
	}
	if !current.Equal(prev) {
		return ErrConflict
	}

	m.clusters[next.Name()] = next
	return nil
}

// GetCluster retrieves a cluster by canonical name
func (m *memoryStore) GetCluster(ctx context.Context, name string) (*cluster.Cluster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.clusters[name]
	if !exists {
		return nil, ErrClusterNotFound
	}
	return c, nil
}

// ListClusters returns all clusters
func (m *memoryStore) ListClusters(ctx context.Context) ([]*cluster.Cluster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*cluster.Cluster, 0, len(m.clusters))
	for _, c := range m.clusters {
		result = append(result, c)
	}
	slices.SortFunc(result, func(a, b *cluster.Cluster) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return result, nil
}

// DeleteCluster removes a cluster by canonical name
func (m *memoryStore) DeleteCluster(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clusters[name]; !exists {
		return ErrClusterNotFound
	}

	delete(m.clusters, name)
	return nil
}

// Close is a no-op for in-memory store
func (m *memoryStore) Close() error {
	return nil
}
