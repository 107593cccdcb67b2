package persistence

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/williamhogman/cluster-registry/registry/internal/cluster"
)

const defaultKeyPrefix = "registry:"

// redisStore implements the Store interface using Redis. Each cluster is a
// JSON string under its own key; a set indexes the known names.
type redisStore struct {
	client    *redis.Client
	keyPrefix string
}

// newRedisClient creates a Redis client from a redis:// URI
func newRedisClient(redisURI string) (*redis.Client, error) {
	if redisURI == "" {
		return nil, errors.New("redis URI is required")
	}

	opts, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URI: %w", err)
	}

	return redis.NewClient(opts), nil
}

// newRedisStore creates a new Redis-backed cluster store
func newRedisStore(client *redis.Client, keyPrefix string) (*redisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}

	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}

	return &redisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

// formClusterKey creates a Redis key for a cluster's canonical name
func (r *redisStore) formClusterKey(name string) string {
	return r.keyPrefix + "cluster:" + name
}

// formIndexKey creates the Redis key of the cluster name index
func (r *redisStore) formIndexKey() string {
	return r.keyPrefix + "clusters"
}

// AddCluster stores a new cluster if its name is free
func (r *redisStore) AddCluster(ctx context.Context, c *cluster.Cluster) error {
	data, err := encodeCluster(c)
	if err != nil {
		return err
	}

	set, err := r.client.SetNX(ctx, r.formClusterKey(c.Name()), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to add cluster %s: %w", c.Name(), err)
	}
	if !set {
		return ErrClusterExists
	}

	if err := r.client.SAdd(ctx, r.formIndexKey(), c.Name()).Err(); err != nil {
		// Unindexed keys are invisible to ListClusters, so give the name back
		if delErr := r.client.Del(ctx, r.formClusterKey(c.Name())).Err(); delErr != nil {
			return fmt.Errorf("failed to index cluster %s: %w", c.Name(), errors.Join(err, delErr))
		}
		return fmt.Errorf("failed to index cluster %s: %w", c.Name(), err)
	}
	return nil
}

// UpdateCluster swaps prev for next, watching the key so a concurrent
// write aborts the transaction
func (r *redisStore) UpdateCluster(ctx context.Context, prev, next *cluster.Cluster) error {
	data, err := encodeCluster(next)
	if err != nil {
		return err
	}

	key := r.formClusterKey(next.Name())
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrClusterNotFound
			}
			return err
		}

		current, err := decodeCluster(stored)
		if err != nil {
			return err
		}
		if !current.Equal(prev) {
			return ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	case errors.Is(err, ErrClusterNotFound), errors.Is(err, ErrConflict):
		return err
	default:
		return fmt.Errorf("failed to update cluster %s: %w", next.Name(), err)
	}
}

// GetCluster retrieves a cluster by canonical name
func (r *redisStore) GetCluster(ctx context.Context, name string) (*cluster.Cluster, error) {
	data, err := r.client.Get(ctx, r.formClusterKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrClusterNotFound
		}
		return nil, fmt.Errorf("failed to get cluster %s: %w", name, err)
	}
	return decodeCluster(data)
}

// ListClusters returns all indexed clusters ordered by name
func (r *redisStore) ListClusters(ctx context.Context) ([]*cluster.Cluster, error) {
	names, err := r.client.SMembers(ctx, r.formIndexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list cluster names: %w", err)
	}
	if len(names) == 0 {
		return []*cluster.Cluster{}, nil
	}
	slices.Sort(names)

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = r.formClusterKey(name)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load clusters: %w", err)
	}

	result := make([]*cluster.Cluster, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// Index entry outlived its value
			continue
		}
		c, err := decodeCluster([]byte(s))
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// DeleteCluster removes a cluster and its index entry
func (r *redisStore) DeleteCluster(ctx context.Context, name string) error {
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.formClusterKey(name))
	pipe.SRem(ctx, r.formIndexKey(), name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete cluster %s: %w", name, err)
	}
	if del.Val() == 0 {
		return ErrClusterNotFound
	}
	return nil
}

// Close closes the Redis client connection
func (r *redisStore) Close() error {
	return r.client.Close()
}
