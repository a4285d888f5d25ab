package newsflash

import (
	"context"
	"errors"
	"slices"

	"github.com/randalmurphal/newsflash/pkg/newsflash/observability"
)

// readiness tracks which members of a joint event have fired since the
// joint event last fired.
type readiness struct {
	members []string
	ready   map[string]bool
}

func newReadiness(members []string) *readiness {
	rd := &readiness{
		members: slices.Clone(members),
		ready:   make(map[string]bool, len(members)),
	}
	rd.reset()
	return rd
}

// mark flags member and reports whether every member is now flagged.
func (rd *readiness) mark(member string) bool {
	rd.ready[member] = true
	for _, m := range rd.members {
		if !rd.ready[m] {
			return false
		}
	}
	return true
}

func (rd *readiness) reset() {
	for _, m := range rd.members {
		rd.ready[m] = false
	}
}

// installJointLocked prepares the coordinator for a new subscription to the
// joint topic r. It creates the readiness record on first use and installs
// one listener on every member that has none yet. A member keeps its single
// listener for the life of the bus and shares it across every joint topic
// it belongs to. Returns the members that received a listener.
func (b *Bus) installJointLocked(r resolved) ([]string, error) {
	var fresh []string
	ids := make(map[string]SubscriptionID)
	for _, member := range r.members {
		if _, ok := b.instrumented[member]; ok {
			continue
		}
		id, err := b.nextIDLocked(member)
		if err != nil {
			return nil, err
		}
		ids[member] = id
		fresh = append(fresh, member)
	}

	if _, ok := b.joints[r.key]; !ok {
		b.joints[r.key] = newReadiness(r.members)
		for _, member := range r.members {
			b.memberJoints[member] = append(b.memberJoints[member], r.key)
		}
	}

	for _, member := range fresh {
		b.topics.put(member, &handlerRecord{
			id:        ids[member],
			synthetic: true,
			handler: func(ctx context.Context, _ any) error {
				return b.memberFired(ctx, member)
			},
		})
		b.instrumented[member] = ids[member]
	}
	return fresh, nil
}

// memberFired flags member in every joint topic containing it, in the order
// those topics were first subscribed, then publishes the topics it completed.
// Flags are set before any joint handler runs, so a failing publication never
// costs another topic its flag. Under AbortOnError the first failure skips
// the remaining completed topics; their flags are already cleared.
func (b *Bus) memberFired(ctx context.Context, member string) error {
	b.mu.Lock()
	var complete []string
	for _, key := range b.memberJoints[member] {
		rd := b.joints[key]
		if rd.mark(member) {
			rd.reset()
			complete = append(complete, key)
		}
	}
	b.mu.Unlock()

	var errs []error
	for _, key := range complete {
		if err := b.publishMulti(ctx, member, key); err != nil {
			if b.cfg.policy == AbortOnError {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// publishMulti publishes the joint topic key, completed by member, with no
// data. The caller has already cleared its flags, so no handler ever sees a
// complete record and a member emitted by a joint handler counts toward the
// next round.
func (b *Bus) publishMulti(ctx context.Context, member, key string) (err error) {
	ctx, span := b.cfg.spans.StartJointSpan(ctx, key, member)
	defer func() {
		b.cfg.spans.EndSpanWithError(span, err)
	}()

	invoked, err := b.publish(ctx, key, nil)
	b.cfg.metrics.RecordJointFire(ctx, key)
	observability.LogJointFire(b.cfg.logger, key, member, invoked)
	return err
}
