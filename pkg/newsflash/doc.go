// Package newsflash provides an in-process publish/subscribe bus with joint
// events.
//
// # Overview
//
// Handlers subscribe to a Target and receive whatever is passed to Emit for
// that target. Besides single events, a handler can subscribe to a joint
// event made of several member events. The joint handler fires once every
// member has been emitted at least once since the joint event last fired.
//
//   - On, Once, Off manage subscriptions
//   - Emit publishes synchronously, in registration order
//   - Joint events are coordinated by one listener per member event
//
// # Single Events
//
//	bus := newsflash.New()
//
//	id, err := bus.On(newsflash.Event("order.created"), func(ctx context.Context, data any) error {
//	    fmt.Println("created:", data)
//	    return nil
//	})
//
//	err = bus.Emit(ctx, newsflash.Event("order.created"), order)
//
//	// Later
//	bus.Off(newsflash.Event("order.created"), id)
//
// Once subscriptions are removed after their first successful invocation.
//
// # Joint Events
//
//	bus.On(newsflash.Joint("config.loaded", "db.ready"), func(ctx context.Context, _ any) error {
//	    return server.Start(ctx)
//	})
//
//	bus.Emit(ctx, newsflash.Event("db.ready"), nil)
//	bus.Emit(ctx, newsflash.Event("db.ready"), nil)      // still waiting
//	bus.Emit(ctx, newsflash.Event("config.loaded"), cfg) // joint handler fires
//
// After firing, every member must be emitted again before the joint event
// fires a second time. Member order does not matter: Joint("a", "b") and
// Joint("b", "a") are the same joint event, with topic key "a,b".
//
// Joint handlers fired this way receive nil data. Emitting the joint target
// itself publishes straight to the joint handlers with the given data, and
// does not involve the members:
//
//	bus.Emit(ctx, newsflash.Joint("config.loaded", "db.ready"), payload)
//
// # Subscription IDs
//
// On and Once return a SubscriptionID, unique within its topic. By default
// ids count up per topic ("1", "2", ...). Use WithIDGenerator(UUIDGenerator{})
// for random ids.
//
// # Errors
//
// Contract violations return *OpError wrapping ErrInvalidHandler,
// ErrInvalidEvent or ErrInvalidHandlerID. Handler failures are wrapped in
// *HandlerError and, by default, stop dispatch of the current Emit. See
// WithDispatchPolicy and WithRecover.
//
// # Observability
//
//	bus := newsflash.New(
//	    newsflash.WithLogger(logger),
//	    newsflash.WithMetrics(true),
//	    newsflash.WithTracing(true),
//	)
//
// Settings can also be loaded from YAML, JSON, or the environment with the
// config package and passed to NewFromSettings.
package newsflash
