package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/williamhogman/cluster-registry/registry/internal/cluster"
	"github.com/williamhogman/cluster-registry/registry/internal/persistence"
)

// maxUpdateAttempts bounds the retries of a conflicting update
const maxUpdateAttempts = 5

// Registry errors
var (
	// ErrEmptyName is returned when a name has no characters left after canonicalization
	ErrEmptyName = errors.New("cluster name is empty after canonicalization")

	// ErrIdentityImmutable is returned when an update tries to change a cluster's identity
	ErrIdentityImmutable = errors.New("cluster identity cannot be changed")
)

// SeedResolver discovers the current seed hosts of a cluster
type SeedResolver interface {
	// ResolveSeedHosts returns the discovered hosts, or an empty result when
	// nothing is known about the cluster
	ResolveSeedHosts(ctx context.Context, clusterName string) ([]string, error)
}

// RegisterRequest carries the raw fields of a new cluster. A nil SeedHosts
// means the caller did not supply any, which is rejected; an empty non-nil
// slice registers a cluster without seeds.
type RegisterRequest struct {
	Name        string
	SeedHosts   []string
	JmxPort     int // zero keeps the default
	Partitioner *string
}

// UpdateRequest carries the fields to override on an existing cluster. Nil
// fields are left unchanged.
type UpdateRequest struct {
	SeedHosts   []string
	JmxPort     *int
	Partitioner *string
}

// RegistryService manages the set of known clusters
type RegistryService struct {
	store    persistence.Store
	resolver SeedResolver
	logger   *zap.Logger
}

// NewRegistryService creates a new registry service
func NewRegistryService(store persistence.Store, resolver SeedResolver, logger *zap.Logger) *RegistryService {
	return &RegistryService{
		store:    store,
		resolver: resolver,
		logger:   logger.Named("registry-service"),
	}
}

// Register validates and stores a new cluster
func (s *RegistryService) Register(ctx context.Context, req RegisterRequest) (*cluster.Cluster, error) {
	b := cluster.NewBuilder().WithName(req.Name)
	if req.SeedHosts != nil {
		b = b.WithSeedHosts(req.SeedHosts...)
	}
	if req.JmxPort != 0 {
		b = b.WithJmxPort(req.JmxPort)
	}
	if req.Partitioner != nil {
		b = b.WithPartitioner(*req.Partitioner)
	}

	c, err := b.Build()
	if err != nil {
		return nil, err
	}
	if c.Name() == "" {
		return nil, fmt.Errorf("%w: %q", ErrEmptyName, req.Name)
	}

	if err := s.store.AddCluster(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to register cluster %s: %w", c.Name(), err)
	}

	s.logger.Info("Registered cluster", c.ZapFields()...)
	return c, nil
}

// Get returns the cluster whose canonical name matches rawName
func (s *RegistryService) Get(ctx context.Context, rawName string) (*cluster.Cluster, error) {
	return s.store.GetCluster(ctx, cluster.ToSymbolicName(rawName))
}

// List returns all clusters ordered by name
func (s *RegistryService) List(ctx context.Context) ([]*cluster.Cluster, error) {
	return s.store.ListClusters(ctx)
}

// Update derives a new value from the stored cluster with the requested
// overrides. Name is never changed; a partitioner may be added but not replaced.
func (s *RegistryService) Update(ctx context.Context, rawName string, req UpdateRequest) (*cluster.Cluster, error) {
	updated, _, err := s.modify(ctx, cluster.ToSymbolicName(rawName), func(current *cluster.Cluster) (*cluster.Cluster, error) {
		b := current.With()
		if req.SeedHosts != nil {
			b = b.WithSeedHosts(req.SeedHosts...)
		}
		if req.JmxPort != nil {
			b = b.WithJmxPort(*req.JmxPort)
		}
		if req.Partitioner != nil {
			if p, ok := current.Partitioner(); !ok || p != *req.Partitioner {
				b = b.WithPartitioner(*req.Partitioner)
			}
		}

		next, err := b.Build()
		if err != nil {
			if errors.Is(err, cluster.ErrAlreadySet) {
				return nil, fmt.Errorf("%w: %w", ErrIdentityImmutable, err)
			}
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Updated cluster", updated.ZapFields()...)
	return updated, nil
}

// modify reads the stored cluster, applies change and writes the result back
// only if nothing else wrote in between, re-reading on conflict. A nil result
// from change leaves the cluster as it is. It returns the stored value and
// whether it was replaced.
func (s *RegistryService) modify(
	ctx context.Context,
	name string,
	change func(current *cluster.Cluster) (*cluster.Cluster, error),
) (*cluster.Cluster, bool, error) {
	for attempt := 1; ; attempt++ {
		current, err := s.store.GetCluster(ctx, name)
		if err != nil {
			return nil, false, err
		}

		next, err := change(current)
		if err != nil {
			return nil, false, err
		}
		if next == nil || next.Equal(current) {
			return current, false, nil
		}

		err = s.store.UpdateCluster(ctx, current, next)
		if err == nil {
			return next, true, nil
		}
		if !errors.Is(err, persistence.ErrConflict) || attempt == maxUpdateAttempts {
			return nil, false, fmt.Errorf("failed to update cluster %s: %w", name, err)
		}
		s.logger.Debug("Concurrent update, retrying",
			zap.String("cluster", name),
			zap.Int("attempt", attempt))
	}
}

// Delete removes the cluster whose canonical name matches rawName
func (s *RegistryService) Delete(ctx context.Context, rawName string) error {
	name := cluster.ToSymbolicName(rawName)
	if err := s.store.DeleteCluster(ctx, name); err != nil {
		return err
	}

	s.logger.Info("Deleted cluster", zap.String("cluster", name))
	return nil
}

// RefreshSeedHosts replaces the seed hosts of every cluster whose discovered
// hosts differ from the stored ones. Clusters for which nothing is discovered
// keep their last known seeds. It returns the number of updated clusters and
// the joined per-cluster errors.
func (s *RegistryService) RefreshSeedHosts(ctx context.Context) (int, error) {
	clusters, err := s.store.ListClusters(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list clusters: %w", err)
	}

	var (
		updated int
		errs    []error
	)
	for _, c := range clusters {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		changed, err := s.refreshCluster(ctx, c)
		if err != nil {
			s.logger.Warn("Failed to refresh seed hosts",
				zap.String("cluster", c.Name()),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if changed {
			updated++
		}
	}

	return updated, errors.Join(errs...)
}

func (s *RegistryService) refreshCluster(ctx context.Context, c *cluster.Cluster) (bool, error) {
	hosts, err := s.resolver.ResolveSeedHosts(ctx, c.Name())
	if err != nil {
		return false, fmt.Errorf("failed to resolve seed hosts for %s: %w", c.Name(), err)
	}
	if len(hosts) == 0 {
		return false, nil
	}

	sorted := slices.Clone(hosts)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	// Rebuild from the stored value, not the listed snapshot, so writes made
	// while resolving are kept
	var previous []string
	refreshed, changed, err := s.modify(ctx, c.Name(), func(current *cluster.Cluster) (*cluster.Cluster, error) {
		previous = current.SeedHosts()
		if slices.Equal(sorted, previous) {
			return nil, nil
		}
		return current.With().WithSeedHosts(sorted...).Build()
	})
	if err != nil {
		if errors.Is(err, persistence.ErrClusterNotFound) {
			// Deleted while refreshing
			return false, nil
		}
		return false, fmt.Errorf("failed to store seed hosts for %s: %w", c.Name(), err)
	}
	if !changed {
		return false, nil
	}

	s.logger.Info("Refreshed seed hosts",
		zap.String("cluster", c.Name()),
		zap.Strings("previous", previous),
		zap.Strings("current", refreshed.SeedHosts()))
	return true, nil
}
