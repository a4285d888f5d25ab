package newsflash

import (
	"slices"
	"strings"
)

// Separator joins member names in a joint topic key.
const Separator = ","

// Target names what a subscription listens to or what an Emit publishes:
// either a single event or a joint event built from several member events.
//
// Build targets with Event and Joint. The zero Target is invalid.
type Target struct {
	names []string
	joint bool
}

// Event returns a target for a single named event. The empty name is
// rejected with ErrInvalidEvent: it cannot be a joint member, so allowing it
// as an event would make Joint("", "b") and Event("") disagree.
func Event(name string) Target {
	return Target{names: []string{name}}
}

// Joint returns a target for the joint event made of the given members.
// Member order and duplicates do not matter: Joint("b", "a") and
// Joint("a", "b", "a") both resolve to the topic key "a,b". A joint target
// with a single distinct member behaves exactly like Event(member).
func Joint(members ...string) Target {
	return Target{names: slices.Clone(members), joint: true}
}

// JointKey returns the canonical topic key for a set of member names:
// de-duplicated, sorted, and joined with Separator.
func JointKey(members ...string) string {
	return strings.Join(canonicalMembers(members), Separator)
}

// String returns the topic key, or a placeholder for invalid targets.
func (t Target) String() string {
	r, err := t.resolve("format")
	if err != nil {
		return "<invalid target>"
	}
	return r.key
}

// resolved is a validated target.
type resolved struct {
	key     string
	members []string // canonical; len > 1 only for joint topics
}

func (r resolved) isJoint() bool {
	return len(r.members) > 1
}

// resolve validates t and computes its topic key. op names the public
// operation for error messages.
func (t Target) resolve(op string) (resolved, error) {
	if len(t.names) == 0 {
		return resolved{}, &OpError{Op: op, Err: ErrInvalidEvent}
	}

	if !t.joint {
		name := t.names[0]
		if name == "" {
			return resolved{}, &OpError{Op: op, Err: ErrInvalidEvent}
		}
		return resolved{key: name, members: []string{name}}, nil
	}

	for _, name := range t.names {
		if name == "" || strings.Contains(name, Separator) {
			return resolved{}, &OpError{Op: op, Key: strings.Join(t.names, Separator), Err: ErrInvalidEvent}
		}
	}

	members := canonicalMembers(t.names)
	return resolved{key: strings.Join(members, Separator), members: members}, nil
}

func canonicalMembers(names []string) []string {
	members := slices.Clone(names)
	slices.Sort(members)
	return slices.Compact(members)
}
