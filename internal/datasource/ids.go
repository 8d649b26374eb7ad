package datasource

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out logical request ids.
type IDGenerator interface {
	NextID() string
}

// CounterIDGenerator numbers requests per data source instance, e.g. iot.1000, iot.1001.
type CounterIDGenerator struct {
	prefix string
	next   atomic.Int64
}

func NewCounterIDGenerator(prefix string, start int64) *CounterIDGenerator {
	g := &CounterIDGenerator{prefix: prefix}
	g.next.Store(start)
	return g
}

func (g *CounterIDGenerator) NextID() string {
	return fmt.Sprintf("%s.%d", g.prefix, g.next.Add(1)-1)
}

// UUIDGenerator hands out random ids, for callers that share a cache across
// several data source instances.
type UUIDGenerator struct {
	Prefix string
}

func (g UUIDGenerator) NextID() string {
	if g.Prefix == "" {
		return uuid.NewString()
	}
	return g.Prefix + "." + uuid.NewString()
}
