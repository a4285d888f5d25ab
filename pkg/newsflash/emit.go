package newsflash

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/randalmurphal/newsflash/pkg/newsflash/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Emit publishes data to every handler subscribed to target, in registration
// order, and returns once they have all run.
//
// Emitting a member of a joint event also updates that joint event's
// readiness and, when it completes, fires the joint handlers with nil data
// before Emit returns.
//
// Emitting a Joint target publishes straight to the joint handlers with data.
// It neither runs the members' own handlers nor touches joint readiness.
//
// A handler error is wrapped in *HandlerError. Under AbortOnError (the
// default) the first one stops dispatch and is returned; under
// ContinueOnError all of them are returned joined.
func (b *Bus) Emit(ctx context.Context, target Target, data any) (err error) {
	r, err := target.resolve("emit")
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := b.cfg.spans.StartEmitSpan(ctx, r.key, r.isJoint())
	defer func() {
		b.cfg.spans.EndSpanWithError(span, err)
	}()

	done := observability.TimedOperation()
	invoked, err := b.publish(ctx, r.key, data)
	elapsed := done()

	span.SetAttributes(attribute.Int("handlers", invoked))
	b.cfg.metrics.RecordEmit(ctx, r.key, invoked, elapsed, err)
	if err != nil {
		observability.LogEmitError(b.cfg.logger, r.key, err, observability.Milliseconds(elapsed))
	} else {
		observability.LogEmit(b.cfg.logger, r.key, invoked, observability.Milliseconds(elapsed))
	}
	return err
}

// publish dispatches data to the handlers registered under key and returns
// how many caller handlers ran. An unknown key is a no-op.
//
// A once-handler is claimed under the lock before it runs, so concurrent or
// nested emits of the same topic skip it. It is removed after a successful
// call and released after a failed one.
func (b *Bus) publish(ctx context.Context, key string, data any) (int, error) {
	b.mu.Lock()
	ids := b.topics.snapshotIDs(key)
	b.mu.Unlock()

	invoked := 0
	var errs []error
	for _, id := range ids {
		// An earlier handler in this dispatch may have removed it, and a
		// once-handler may already be claimed by another dispatch.
		b.mu.Lock()
		rec, ok := b.topics.lookup(key, id)
		if ok && rec.once {
			if rec.firing {
				ok = false
			} else {
				rec.firing = true
			}
		}
		b.mu.Unlock()
		if !ok || rec.handler == nil {
			continue
		}

		err := b.invoke(ctx, key, rec, data)
		if !rec.synthetic {
			invoked++
			b.cfg.metrics.RecordHandler(ctx, key, err)
		}

		if err != nil {
			if rec.once {
				// Stays subscribed, in place, for the next emit.
				b.releaseOnce(rec)
			}
			if !rec.synthetic {
				observability.LogHandlerError(b.cfg.logger, key, string(id), err)
			}
			if b.cfg.policy == AbortOnError {
				return invoked, err
			}
			errs = append(errs, err)
			continue
		}

		if rec.once {
			b.mu.Lock()
			removed := b.topics.remove(key, id)
			b.mu.Unlock()
			b.afterRemove(key, id, removed)
		}
	}
	return invoked, errors.Join(errs...)
}

// invoke runs one handler. Member listener errors already carry the joint
// handler's *HandlerError and are passed through unwrapped.
func (b *Bus) invoke(ctx context.Context, key string, rec *handlerRecord, data any) (err error) {
	if b.cfg.recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{
					Key:   key,
					ID:    rec.id,
					Value: r,
					Stack: string(debug.Stack()),
				}
			}
		}()
	}

	returned := false
	if rec.once {
		// A panic must not leave the handler claimed.
		defer func() {
			if !returned {
				b.releaseOnce(rec)
			}
		}()
	}

	herr := rec.handler(ctx, data)
	returned = true
	if herr != nil {
		if rec.synthetic {
			return herr
		}
		return &HandlerError{Key: key, ID: rec.id, Err: herr}
	}
	return nil
}

// releaseOnce makes a claimed once-handler available to the next emit.
func (b *Bus) releaseOnce(rec *handlerRecord) {
	b.mu.Lock()
	rec.firing = false
	b.mu.Unlock()
}
