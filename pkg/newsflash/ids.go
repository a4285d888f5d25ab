package newsflash

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// SubscriptionID identifies a subscription within its topic. Keep it: it is
// the only way to unsubscribe later.
type SubscriptionID string

// IDGenerator produces subscription ids. Ids only need to be unique within
// a single topic key.
type IDGenerator interface {
	NextID(key string) SubscriptionID
}

// CounterGenerator numbers subscriptions per topic key, starting at 1.
// It is safe for concurrent use.
type CounterGenerator struct {
	mu   sync.Mutex
	next map[string]uint64
}

// NewCounterGenerator creates a CounterGenerator.
func NewCounterGenerator() *CounterGenerator {
	return &CounterGenerator{next: make(map[string]uint64)}
}

// NextID returns the next number for key.
func (g *CounterGenerator) NextID(key string) SubscriptionID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next[key]++
	return SubscriptionID(strconv.FormatUint(g.next[key], 10))
}

// UUIDGenerator returns random UUIDv4 ids, independent of the topic.
type UUIDGenerator struct{}

// NextID returns a new random UUID.
func (UUIDGenerator) NextID(string) SubscriptionID {
	return SubscriptionID(uuid.NewString())
}
