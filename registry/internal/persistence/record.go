package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/williamhogman/cluster-registry/registry/internal/cluster"
)

// clusterRecord is the stored form of a cluster
type clusterRecord struct {
	Name        string   `json:"name"`
	Partitioner *string  `json:"partitioner,omitempty"`
	SeedHosts   []string `json:"seedHosts"`
	JmxPort     int      `json:"jmxPort"`
}

func encodeCluster(c *cluster.Cluster) ([]byte, error) {
	rec := clusterRecord{
		Name:      c.Name(),
		SeedHosts: c.SeedHosts(),
		JmxPort:   c.JmxPort(),
	}
	if p, ok := c.Partitioner(); ok {
		rec.Partitioner = &p
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cluster %s: %w", c.Name(), err)
	}
	return data, nil
}

// decodeCluster rebuilds a cluster through the builder so stored data is
// validated the same way as fresh input
func decodeCluster(data []byte) (*cluster.Cluster, error) {
	var rec clusterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cluster: %w", err)
	}

	b := cluster.NewBuilder().
		WithName(rec.Name).
		WithSeedHosts(rec.SeedHosts...).
		WithJmxPort(rec.JmxPort)
	if rec.Partitioner != nil {
		b = b.WithPartitioner(*rec.Partitioner)
	}

	c, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid stored cluster %q: %w", rec.Name, err)
	}
	return c, nil
}
