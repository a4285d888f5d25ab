package newsflash_test

import (
	"context"
	"errors"
	"testing"

	"github.com/randalmurphal/newsflash/pkg/newsflash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call records one handler invocation.
type call struct {
	name string
	data any
}

// journal collects invocations across handlers in order.
type journal struct {
	calls []call
}

func (j *journal) handler(name string) newsflash.Handler {
	return func(_ context.Context, data any) error {
		j.calls = append(j.calls, call{name: name, data: data})
		return nil
	}
}

func (j *journal) count(name string) int {
	n := 0
	for _, c := range j.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func (j *journal) names() []string {
	names := make([]string, 0, len(j.calls))
	for _, c := range j.calls {
		names = append(names, c.name)
	}
	return names
}

func noop(context.Context, any) error { return nil }

func mustOn(t *testing.T, bus *newsflash.Bus, target newsflash.Target, h newsflash.Handler) newsflash.SubscriptionID {
	t.Helper()
	id, err := bus.On(target, h)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func mustEmit(t *testing.T, bus *newsflash.Bus, target newsflash.Target, data any) {
	t.Helper()
	require.NoError(t, bus.Emit(context.Background(), target, data))
}

func TestOn_EmitDeliversData(t *testing.T) {
	bus := newsflash.New()
	var j journal

	mustOn(t, bus, newsflash.Event("e"), j.handler("h"))
	mustEmit(t, bus, newsflash.Event("e"), "payload")

	require.Len(t, j.calls, 1)
	assert.Equal(t, call{name: "h", data: "payload"}, j.calls[0])
}

func TestEmit_RegistrationOrder(t *testing.T) {
	bus := newsflash.New()
	var j journal

	mustOn(t, bus, newsflash.Event("x"), j.handler("f1"))
	mustOn(t, bus, newsflash.Event("x"), j.handler("f2"))
	mustEmit(t, bus, newsflash.Event("x"), 42)

	assert.Equal(t, []call{{"f1", 42}, {"f2", 42}}, j.calls)
}

func TestEmit_OtherTopicsUntouched(t *testing.T) {
	bus := newsflash.New()
	var j journal

	mustOn(t, bus, newsflash.Event("x"), j.handler("x"))
	mustOn(t, bus, newsflash.Event("y"), j.handler("y"))
	mustEmit(t, bus, newsflash.Event("x"), nil)

	assert.Equal(t, []string{"x"}, j.names())
}

func TestEmit_UnknownTopicIsNoop(t *testing.T) {
	bus := newsflash.New()
	assert.NoError(t, bus.Emit(context.Background(), newsflash.Event("nobody"), 1))
	assert.Empty(t, bus.Topics(), "emit must not create topics")
}

func TestOnce_FiresOnce(t *testing.T) {
	bus := newsflash.New()
	var j journal

	_, err := bus.Once(newsflash.Event("y"), j.handler("f"))
	require.NoError(t, err)

	for range 3 {
		mustEmit(t, bus, newsflash.Event("y"), nil)
	}

	assert.Equal(t, 1, j.count("f"))
	assert.Equal(t, 0, bus.Subscribers(newsflash.Event("y")))
}

func TestOnce_AlongsideOn(t *testing.T) {
	bus := newsflash.New()
	var j journal

	_, err := bus.Once(newsflash.Event("y"), j.handler("once"))
	require.NoError(t, err)
	mustOn(t, bus, newsflash.Event("y"), j.handler("on"))

	mustEmit(t, bus, newsflash.Event("y"), nil)
	mustEmit(t, bus, newsflash.Event("y"), nil)

	assert.Equal(t, []string{"once", "on", "on"}, j.names())
}

func TestOff(t *testing.T) {
	bus := newsflash.New()
	var j journal

	id := mustOn(t, bus, newsflash.Event("count-up"), j.handler("h"))
	mustEmit(t, bus, newsflash.Event("count-up"), nil)
	mustEmit(t, bus, newsflash.Event("count-up"), nil)

	removed, err := bus.Off(newsflash.Event("count-up"), id)
	require.NoError(t, err)
	assert.True(t, removed)

	mustEmit(t, bus, newsflash.Event("count-up"), nil)
	assert.Equal(t, 2, j.count("h"))

	removed, err = bus.Off(newsflash.Event("count-up"), id)
	require.NoError(t, err)
	assert.False(t, removed, "second Off is a no-op")
}

func TestOff_UnknownIsSilent(t *testing.T) {
	bus := newsflash.New()
	mustOn(t, bus, newsflash.Event("a"), noop)

	tests := []struct {
		name   string
		target newsflash.Target
		id     newsflash.SubscriptionID
	}{
		{"unknown id", newsflash.Event("a"), "999"},
		{"unknown topic", newsflash.Event("zzz"), "1"},
		{"unknown joint topic", newsflash.Joint("a", "b"), "1"},
		{"id from another topic", newsflash.Event("b"), "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			removed, err := bus.Off(tt.target, tt.id)
			require.NoError(t, err)
			assert.False(t, removed)
		})
	}
	assert.Equal(t, 1, bus.Subscribers(newsflash.Event("a")))
}

func TestValidationErrors(t *testing.T) {
	bus := newsflash.New()
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() error
		wantOp  string
		wantErr error
	}{
		{
			name:    "on nil handler",
			call:    func() error { _, err := bus.On(newsflash.Event("a"), nil); return err },
			wantOp:  "on",
			wantErr: newsflash.ErrInvalidHandler,
		},
		{
			name:    "once nil handler",
			call:    func() error { _, err := bus.Once(newsflash.Joint("a", "b"), nil); return err },
			wantOp:  "once",
			wantErr: newsflash.ErrInvalidHandler,
		},
		{
			name:    "nil handler reported before bad target",
			call:    func() error { _, err := bus.On(newsflash.Target{}, nil); return err },
			wantOp:  "on",
			wantErr: newsflash.ErrInvalidHandler,
		},
		{
			name:    "on zero target",
			call:    func() error { _, err := bus.On(newsflash.Target{}, noop); return err },
			wantOp:  "on",
			wantErr: newsflash.ErrInvalidEvent,
		},
		{
			name:    "on empty event name",
			call:    func() error { _, err := bus.On(newsflash.Event(""), noop); return err },
			wantOp:  "on",
			wantErr: newsflash.ErrInvalidEvent,
		},
		{
			name:    "on joint without members",
			call:    func() error { _, err := bus.On(newsflash.Joint(), noop); return err },
			wantOp:  "on",
			wantErr: newsflash.ErrInvalidEvent,
		},
		{
			name:    "on joint with empty member",
			call:    func() error { _, err := bus.On(newsflash.Joint("a", ""), noop); return err },
			wantOp:  "on",
			wantErr: newsflash.ErrInvalidEvent,
		},
		{
			name:    "on joint member containing separator",
			call:    func() error { _, err := bus.On(newsflash.Joint("a,b", "c"), noop); return err },
			wantOp:  "on",
			wantErr: newsflash.ErrInvalidEvent,
		},
		{
			name:    "off empty id",
			call:    func() error { _, err := bus.Off(newsflash.Event("a"), ""); return err },
			wantOp:  "off",
			wantErr: newsflash.ErrInvalidHandlerID,
		},
		{
			name:    "off empty id reported before bad target",
			call:    func() error { _, err := bus.Off(newsflash.Target{}, ""); return err },
			wantOp:  "off",
			wantErr: newsflash.ErrInvalidHandlerID,
		},
		{
			name:    "off zero target",
			call:    func() error { _, err := bus.Off(newsflash.Target{}, "1"); return err },
			wantOp:  "off",
			wantErr: newsflash.ErrInvalidEvent,
		},
		{
			name:    "emit zero target",
			call:    func() error { return bus.Emit(ctx, newsflash.Target{}, nil) },
			wantOp:  "emit",
			wantErr: newsflash.ErrInvalidEvent,
		},
		{
			name:    "emit joint with empty member",
			call:    func() error { return bus.Emit(ctx, newsflash.Joint("", "b"), nil) },
			wantOp:  "emit",
			wantErr: newsflash.ErrInvalidEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var opErr *newsflash.OpError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, tt.wantOp, opErr.Op)
		})
	}

	assert.Empty(t, bus.Topics(), "rejected calls must not register anything")
}

func TestOpError_Message(t *testing.T) {
	err := &newsflash.OpError{Op: "on", Key: "a,b", Err: newsflash.ErrInvalidHandler}
	assert.Equal(t, `newsflash: on "a,b": invalid handler`, err.Error())

	err = &newsflash.OpError{Op: "off", Err: newsflash.ErrInvalidHandlerID}
	assert.Equal(t, "newsflash: off: invalid handler id", err.Error())
}

func TestSubscriptionIDs_PerTopicCounter(t *testing.T) {
	bus := newsflash.New()

	assert.Equal(t, newsflash.SubscriptionID("1"), mustOn(t, bus, newsflash.Event("a"), noop))
	assert.Equal(t, newsflash.SubscriptionID("2"), mustOn(t, bus, newsflash.Event("a"), noop))
	assert.Equal(t, newsflash.SubscriptionID("1"), mustOn(t, bus, newsflash.Event("b"), noop))
}

func TestSubscribersAndTopics(t *testing.T) {
	bus := newsflash.New()

	id := mustOn(t, bus, newsflash.Event("a"), noop)
	mustOn(t, bus, newsflash.Event("a"), noop)
	mustOn(t, bus, newsflash.Joint("b", "a"), noop)

	assert.Equal(t, 2, bus.Subscribers(newsflash.Event("a")), "member listeners are not counted")
	assert.Equal(t, 1, bus.Subscribers(newsflash.Joint("a", "b")))
	assert.Equal(t, 0, bus.Subscribers(newsflash.Event("b")))
	assert.Equal(t, 0, bus.Subscribers(newsflash.Target{}))
	assert.Equal(t, []string{"a", "b", "a,b"}, bus.Topics(), "member topics are created before the joint topic")

	_, err := bus.Off(newsflash.Event("a"), id)
	require.NoError(t, err)
	assert.Equal(t, 1, bus.Subscribers(newsflash.Event("a")))
}

func TestTopics_EmptiedTopicPersists(t *testing.T) {
	bus := newsflash.New()

	id := mustOn(t, bus, newsflash.Event("short-lived"), noop)
	_, err := bus.Off(newsflash.Event("short-lived"), id)
	require.NoError(t, err)

	assert.Equal(t, []string{"short-lived"}, bus.Topics())
	assert.Equal(t, 0, bus.Subscribers(newsflash.Event("short-lived")))
}

func TestBuses_AreIndependent(t *testing.T) {
	first := newsflash.New()
	second := newsflash.New()
	var j journal

	mustOn(t, first, newsflash.Event("e"), j.handler("first"))
	mustOn(t, second, newsflash.Event("e"), j.handler("second"))

	mustEmit(t, first, newsflash.Event("e"), nil)
	assert.Equal(t, []string{"first"}, j.names())
}
