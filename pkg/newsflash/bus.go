package newsflash

import (
	"context"
	"maps"
	"sync"

	"github.com/randalmurphal/newsflash/pkg/newsflash/observability"
)

// maxIDAttempts bounds retries when an IDGenerator returns a taken id.
const maxIDAttempts = 8

// Bus is an in-process publish/subscribe bus with joint events.
//
// Dispatch is synchronous: Emit runs every handler, and any joint
// publication those handlers complete, on the caller's goroutine before it
// returns. Handlers may call back into the bus. The bus is safe for
// concurrent use; its lock is never held while a handler runs.
type Bus struct {
	cfg busConfig

	mu     sync.Mutex
	topics *topicRegistry

	// Joint coordinator state, see joint.go.
	joints       map[string]*readiness     // joint key -> member flags
	memberJoints map[string][]string       // member -> joint keys, first-subscription order
	instrumented map[string]SubscriptionID // member -> synthetic listener id
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Bus{
		cfg:          cfg,
		topics:       newTopicRegistry(),
		joints:       make(map[string]*readiness),
		memberJoints: make(map[string][]string),
		instrumented: make(map[string]SubscriptionID),
	}
}

// On subscribes handler to target and returns the subscription id.
//
// For a joint target the handler fires once every member event has been
// emitted at least once since the joint event last fired.
//
// Example:
//
//	id, err := bus.On(newsflash.Joint("config.loaded", "db.ready"), startServer)
func (b *Bus) On(target Target, handler Handler) (SubscriptionID, error) {
	return b.subscribe("on", target, handler, false)
}

// Once is like On, but the subscription is removed right after the handler's
// first successful invocation.
func (b *Bus) Once(target Target, handler Handler) (SubscriptionID, error) {
	return b.subscribe("once", target, handler, true)
}

// Off removes the subscription id from target and reports whether it existed.
// Removing an unknown id is not an error.
//
// Removing the last joint subscription leaves the joint readiness state and
// the member listeners in place; a later subscription to the same joint
// event resumes from the current member flags.
func (b *Bus) Off(target Target, id SubscriptionID) (bool, error) {
	if id == "" {
		return false, &OpError{Op: "off", Err: ErrInvalidHandlerID}
	}
	r, err := target.resolve("off")
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	removed := b.removeLocked(r.key, id)
	b.mu.Unlock()

	b.afterRemove(r.key, id, removed)
	return removed, nil
}

// Subscribers returns the number of subscriptions registered under target.
// Member listeners installed for joint events are not counted.
func (b *Bus) Subscribers(target Target) int {
	r, err := target.resolve("subscribers")
	if err != nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.topics.count(r.key)
}

// Topics returns every topic key that has ever had a subscription, in the
// order the topics were created. Emptied topics are included.
func (b *Bus) Topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.topics.topicKeys()
}

// Readiness returns a copy of the member flags of a joint target, and false
// if no joint subscription was ever made for it.
func (b *Bus) Readiness(target Target) (map[string]bool, bool) {
	r, err := target.resolve("readiness")
	if err != nil || !r.isJoint() {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rd, ok := b.joints[r.key]
	if !ok {
		return nil, false
	}
	return maps.Clone(rd.ready), true
}

func (b *Bus) subscribe(op string, target Target, handler Handler, once bool) (SubscriptionID, error) {
	r, resolveErr := target.resolve(op)
	if handler == nil {
		return "", &OpError{Op: op, Key: r.key, Err: ErrInvalidHandler}
	}
	if resolveErr != nil {
		return "", resolveErr
	}

	b.mu.Lock()
	id, err := b.nextIDLocked(r.key)
	if err != nil {
		b.mu.Unlock()
		return "", &OpError{Op: op, Key: r.key, Err: err}
	}

	var installed []string
	if r.isJoint() {
		installed, err = b.installJointLocked(r)
		if err != nil {
			b.mu.Unlock()
			return "", &OpError{Op: op, Key: r.key, Err: err}
		}
	}

	b.topics.put(r.key, &handlerRecord{
		id:      id,
		handler: handler,
		once:    once,
		joint:   r.isJoint(),
	})
	b.mu.Unlock()

	b.cfg.metrics.RecordSubscription(context.Background(), r.key, 1)
	observability.LogSubscribe(b.cfg.logger, r.key, string(id), once, r.isJoint())
	for _, member := range installed {
		observability.LogJointInstalled(b.cfg.logger, member, r.key)
	}
	return id, nil
}

// nextIDLocked returns an id not yet registered under key.
func (b *Bus) nextIDLocked(key string) (SubscriptionID, error) {
	for range maxIDAttempts {
		id := b.cfg.ids.NextID(key)
		if id != "" && !b.topics.has(key, id) {
			return id, nil
		}
	}
	return "", ErrIDCollision
}

// removeLocked removes a caller subscription. Member listeners are never
// removed.
func (b *Bus) removeLocked(key string, id SubscriptionID) bool {
	rec, ok := b.topics.lookup(key, id)
	if !ok || rec.synthetic {
		return false
	}
	return b.topics.remove(key, id)
}

func (b *Bus) afterRemove(key string, id SubscriptionID, removed bool) {
	if removed {
		b.cfg.metrics.RecordSubscription(context.Background(), key, -1)
	}
	observability.LogUnsubscribe(b.cfg.logger, key, string(id), removed)
}
