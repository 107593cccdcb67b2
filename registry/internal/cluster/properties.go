package cluster

import "fmt"

const maxPort = 65535

// Properties holds the secondary connection settings of a cluster
type Properties struct {
	jmxPort int
}

// JmxPort returns the management port
func (p Properties) JmxPort() int {
	return p.jmxPort
}

// PropertiesBuilder accumulates connection settings. The zero value has no
// port set; use NewPropertiesBuilder to start from the defaults.
type PropertiesBuilder struct {
	jmxPort int
}

// NewPropertiesBuilder returns a builder pre-populated with DefaultJmxPort
func NewPropertiesBuilder() *PropertiesBuilder {
	return &PropertiesBuilder{jmxPort: DefaultJmxPort}
}

// WithJmxPort overrides the management port. Last write wins.
func (b *PropertiesBuilder) WithJmxPort(port int) *PropertiesBuilder {
	b.jmxPort = port
	return b
}

// Build validates the accumulated settings
func (b *PropertiesBuilder) Build() (Properties, error) {
	if b.jmxPort < 1 || b.jmxPort > maxPort {
		return Properties{}, fmt.Errorf("%w: %d", ErrInvalidPort, b.jmxPort)
	}
	return Properties{jmxPort: b.jmxPort}, nil
}
