package newsflash

import (
	"errors"
	"fmt"
)

// Sentinel errors for caller contract violations.
var (
	// ErrInvalidHandler indicates On or Once was called with a nil handler.
	ErrInvalidHandler = errors.New("invalid handler")

	// ErrInvalidEvent indicates a target that is neither a non-empty event
	// name nor a non-empty set of non-empty member names.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidHandlerID indicates Off was called with an empty subscription id.
	ErrInvalidHandlerID = errors.New("invalid handler id")

	// ErrIDCollision indicates the configured IDGenerator kept returning ids
	// that are already registered under the topic.
	ErrIDCollision = errors.New("subscription id collision")
)

// OpError reports which public operation rejected its arguments.
type OpError struct {
	// Op is the operation: "on", "once", "off" or "emit".
	Op string
	// Key is the topic key, when one could be computed.
	Key string
	// Err is one of the sentinel errors above.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("newsflash: %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("newsflash: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OpError) Unwrap() error {
	return e.Err
}

// HandlerError wraps an error returned by a subscribed handler.
type HandlerError struct {
	// Key is the topic the handler was subscribed to.
	Key string
	// ID is the handler's subscription id.
	ID SubscriptionID
	// Err is the error the handler returned.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s on %q: %v", e.ID, e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError captures a handler panic when recovery is enabled.
type PanicError struct {
	// Key is the topic the handler was subscribed to.
	Key string
	// ID is the handler's subscription id.
	ID SubscriptionID
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler %s on %q panicked: %v", e.ID, e.Key, e.Value)
}

// Unwrap returns the panic value when it is an error, for errors.Is/As
// support.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
