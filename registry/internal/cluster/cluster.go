// Package cluster holds the canonical identity and connection settings of a
// managed cluster.
package cluster

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// DefaultJmxPort is the management port used when none is supplied
const DefaultJmxPort = 7199

// Cluster is the canonical identity and connection settings of a managed
// cluster. Values are immutable once built and safe to share between
// goroutines; use With to derive a modified copy.
type Cluster struct {
	name        string
	partitioner string
	hasPart     bool
	seedHosts   []string
	properties  Properties
}

// ToSymbolicName lowercases name and drops every character outside
// [a-z0-9_.-]. Distinct inputs may map to the same result.
func ToSymbolicName(name string) string {
	return strings.Map(func(r rune) rune {
		if isSymbolic(r) {
			return r
		}
		return -1
	}, strings.ToLower(name))
}

func isSymbolic(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.':
		return true
	}
	return false
}

// Name returns the canonical cluster name
func (c *Cluster) Name() string {
	return c.name
}

// Partitioner returns the partitioner class name and whether one was set
func (c *Cluster) Partitioner() (string, bool) {
	return c.partitioner, c.hasPart
}

// SeedHosts returns a sorted copy of the seed host set
func (c *Cluster) SeedHosts() []string {
	return slices.Clone(c.seedHosts)
}

// HasSeedHost reports whether host is one of the seed hosts
func (c *Cluster) HasSeedHost(host string) bool {
	_, found := slices.BinarySearch(c.seedHosts, host)
	return found
}

// JmxPort returns the management port
func (c *Cluster) JmxPort() int {
	return c.properties.JmxPort()
}

// Properties returns the secondary connection settings
func (c *Cluster) Properties() Properties {
	return c.properties
}

// Equal reports whether both values describe the same cluster
func (c *Cluster) Equal(other *Cluster) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.name == other.name &&
		c.hasPart == other.hasPart &&
		c.partitioner == other.partitioner &&
		c.properties == other.properties &&
		slices.Equal(c.seedHosts, other.seedHosts)
}

func (c *Cluster) String() string {
	return fmt.Sprintf("%s%v:%d", c.name, c.seedHosts, c.JmxPort())
}

// ZapFields returns the fields used when logging a cluster
func (c *Cluster) ZapFields() []zap.Field {
	fields := []zap.Field{
		zap.String("cluster", c.name),
		zap.Strings("seedHosts", c.seedHosts),
		zap.Int("jmxPort", c.JmxPort()),
	}
	if c.hasPart {
		fields = append(fields, zap.String("partitioner", c.partitioner))
	}
	return fields
}

// With returns a builder seeded from this cluster. Name and partitioner (when
// present) are already set on it, so calling WithName or WithPartitioner on
// the result records ErrAlreadySet; identity changes need NewBuilder.
func (c *Cluster) With() *Builder {
	b := NewBuilder().
		WithName(c.name).
		WithSeedHosts(c.seedHosts...).
		WithJmxPort(c.JmxPort())
	if c.hasPart {
		b = b.WithPartitioner(c.partitioner)
	}
	return b
}

// Builder accumulates the fields of a Cluster. The zero value is an empty
// builder with the default management port. It is not safe for concurrent
// use. The first invalid assignment is recorded and returned by Err and Build;
// later assignments after a failure are still applied but do not replace it.
type Builder struct {
	name        string
	nameSet     bool
	partitioner string
	partSet     bool
	seedHosts   []string
	seedsSet    bool
	properties  *PropertiesBuilder
	err         error
}

// NewBuilder returns an empty builder with the default management port
func NewBuilder() *Builder {
	return &Builder{properties: NewPropertiesBuilder()}
}

// WithName sets the raw cluster name. It may be called once per builder.
func (b *Builder) WithName(name string) *Builder {
	if b.nameSet {
		b.fail(fmt.Errorf("%w: name", ErrAlreadySet))
		return b
	}
	b.name = name
	b.nameSet = true
	return b
}

// WithPartitioner sets the partitioner class name. It may be called once per builder.
func (b *Builder) WithPartitioner(partitioner string) *Builder {
	if b.partSet {
		b.fail(fmt.Errorf("%w: partitioner", ErrAlreadySet))
		return b
	}
	b.partitioner = partitioner
	b.partSet = true
	return b
}

// WithSeedHosts replaces the seed host set. Calling it with no hosts sets an
// empty set, which Build accepts.
func (b *Builder) WithSeedHosts(hosts ...string) *Builder {
	b.seedHosts = hosts
	b.seedsSet = true
	return b
}

// WithJmxPort sets the management port
func (b *Builder) WithJmxPort(port int) *Builder {
	b.props().WithJmxPort(port)
	return b
}

func (b *Builder) props() *PropertiesBuilder {
	if b.properties == nil {
		b.properties = NewPropertiesBuilder()
	}
	return b.properties
}

// Err returns the first assignment error recorded on the builder
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build validates the builder and returns a new Cluster with a canonical
// name. The builder is left untouched and may be built again.
func (b *Builder) Build() (*Cluster, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.nameSet {
		return nil, fmt.Errorf("%w: name", ErrRequired)
	}
	if !b.seedsSet {
		return nil, fmt.Errorf("%w: seed hosts", ErrRequired)
	}

	props, err := b.props().Build()
	if err != nil {
		return nil, err
	}

	return &Cluster{
		name:        ToSymbolicName(b.name),
		partitioner: b.partitioner,
		hasPart:     b.partSet,
		seedHosts:   hostSet(b.seedHosts),
		properties:  props,
	}, nil
}

// hostSet returns a sorted, de-duplicated copy of hosts
func hostSet(hosts []string) []string {
	set := slices.Clone(hosts)
	if set == nil {
		set = []string{}
	}
	slices.Sort(set)
	return slices.Compact(set)
}
