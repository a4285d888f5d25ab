package newsflash

import (
	"context"
	"slices"
)

// Handler receives the data passed to Emit. Joint handlers fired by member
// completion receive nil.
type Handler func(ctx context.Context, data any) error

// handlerRecord is one registered subscription.
type handlerRecord struct {
	id        SubscriptionID
	handler   Handler
	once      bool
	joint     bool
	synthetic bool // member listener installed by the joint coordinator
	firing    bool // once-handler claimed by a running dispatch
}

// topicEntry keeps a topic's handlers in registration order.
type topicEntry struct {
	order   []SubscriptionID
	records map[SubscriptionID]*handlerRecord
}

// topicRegistry maps topic keys to their handlers. It does no locking of its
// own; the Bus serializes access.
type topicRegistry struct {
	topics map[string]*topicEntry
	keys   []string // creation order, for Topics()
}

func newTopicRegistry() *topicRegistry {
	return &topicRegistry{topics: make(map[string]*topicEntry)}
}

// ensure returns the entry for key, creating it if absent.
func (r *topicRegistry) ensure(key string) *topicEntry {
	entry, ok := r.topics[key]
	if !ok {
		entry = &topicEntry{records: make(map[SubscriptionID]*handlerRecord)}
		r.topics[key] = entry
		r.keys = append(r.keys, key)
	}
	return entry
}

// has returns true if id is registered under key.
func (r *topicRegistry) has(key string, id SubscriptionID) bool {
	_, ok := r.lookup(key, id)
	return ok
}

// put appends rec to key's dispatch order.
func (r *topicRegistry) put(key string, rec *handlerRecord) {
	entry := r.ensure(key)
	entry.order = append(entry.order, rec.id)
	entry.records[rec.id] = rec
}

// remove deletes id from key and reports whether it was registered.
// The entry itself stays, even when emptied.
func (r *topicRegistry) remove(key string, id SubscriptionID) bool {
	entry, ok := r.topics[key]
	if !ok {
		return false
	}
	if _, ok := entry.records[id]; !ok {
		return false
	}
	delete(entry.records, id)
	entry.order = slices.DeleteFunc(entry.order, func(other SubscriptionID) bool {
		return other == id
	})
	return true
}

// lookup returns the current record for id under key.
func (r *topicRegistry) lookup(key string, id SubscriptionID) (*handlerRecord, bool) {
	entry, ok := r.topics[key]
	if !ok {
		return nil, false
	}
	rec, ok := entry.records[id]
	return rec, ok
}

// snapshotIDs returns a copy of key's ids in dispatch order, or nil if the
// topic was never created. Dispatch iterates the copy so handlers can
// subscribe and unsubscribe freely while it runs.
func (r *topicRegistry) snapshotIDs(key string) []SubscriptionID {
	entry, ok := r.topics[key]
	if !ok {
		return nil
	}
	return slices.Clone(entry.order)
}

// count returns the number of caller-visible subscriptions under key.
func (r *topicRegistry) count(key string) int {
	entry, ok := r.topics[key]
	if !ok {
		return 0
	}
	n := 0
	for _, rec := range entry.records {
		if !rec.synthetic {
			n++
		}
	}
	return n
}

// topicKeys returns every topic key ever created, in creation order.
func (r *topicRegistry) topicKeys() []string {
	return slices.Clone(r.keys)
}
