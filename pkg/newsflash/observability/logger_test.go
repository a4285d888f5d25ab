package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records as JSON lines.
type testHandler struct {
	buf   *bytes.Buffer
	level slog.Level
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *testHandler) WithGroup(_ string) slog.Handler { return h }

func (h *testHandler) lastRecord(t *testing.T) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(h.buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &m))
	return m
}

func TestLogHelpers_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogSubscribe(nil, "a", "1", false, false)
		LogUnsubscribe(nil, "a", "1", true)
		LogJointInstalled(nil, "a", "a,b")
		LogEmit(nil, "a", 1, 0.5)
		LogEmitError(nil, "a", errors.New("boom"), 0.5)
		LogJointFire(nil, "a,b", "b", 1)
		LogHandlerError(nil, "a", "1", errors.New("boom"))
	})
}

func TestLogSubscribe(t *testing.T) {
	h := newTestHandler()
	LogSubscribe(slog.New(h), "a,b", "3", true, true)

	rec := h.lastRecord(t)
	assert.Equal(t, "subscribed", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "a,b", rec["topic"])
	assert.Equal(t, "3", rec["subscription_id"])
	assert.Equal(t, true, rec["once"])
	assert.Equal(t, true, rec["joint"])
}

func TestLogUnsubscribe(t *testing.T) {
	h := newTestHandler()
	LogUnsubscribe(slog.New(h), "x", "9", false)

	rec := h.lastRecord(t)
	assert.Equal(t, "unsubscribed", rec["msg"])
	assert.Equal(t, false, rec["removed"])
}

func TestLogEmit(t *testing.T) {
	h := newTestHandler()
	logger := slog.New(h)

	LogEmit(logger, "x", 2, 1.5)
	rec := h.lastRecord(t)
	assert.Equal(t, "emitted", rec["msg"])
	assert.Equal(t, "x", rec["topic"])
	assert.EqualValues(t, 2, rec["handlers"])
	assert.EqualValues(t, 1.5, rec["duration_ms"])

	LogEmitError(logger, "x", errors.New("handler exploded"), 3)
	rec = h.lastRecord(t)
	assert.Equal(t, "emit failed", rec["msg"])
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "handler exploded", rec["error"])
}

func TestLogJointFire(t *testing.T) {
	h := newTestHandler()
	LogJointFire(slog.New(h), "a,b", "b", 4)

	rec := h.lastRecord(t)
	assert.Equal(t, "joint event fired", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "a,b", rec["topic"])
	assert.Equal(t, "b", rec["last_member"])
}

func TestLogHandlerError(t *testing.T) {
	h := newTestHandler()
	LogHandlerError(slog.New(h), "y", "2", errors.New("nope"))

	rec := h.lastRecord(t)
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "y", rec["topic"])
	assert.Equal(t, "2", rec["subscription_id"])
	assert.Equal(t, "nope", rec["error"])
}

func TestLogJointInstalled(t *testing.T) {
	h := newTestHandler()
	LogJointInstalled(slog.New(h), "a", "a,b")

	rec := h.lastRecord(t)
	assert.Equal(t, "joint member listener installed", rec["msg"])
	assert.Equal(t, "a", rec["member"])
	assert.Equal(t, "a,b", rec["joint_topic"])
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)
	elapsed := done()
	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
}

func TestMilliseconds(t *testing.T) {
	assert.Equal(t, 1.5, Milliseconds(1500*time.Microsecond))
	assert.Equal(t, 0.0, Milliseconds(0))
}
