// Package hooks dispatches named lifecycle events to registered handlers,
// isolating the scheduler's worker loop from handler panics or errors.
package hooks

import (
	"sync"

	"github.com/pkg/errors"
)

// Event names the scheduler recognizes. Registering any other name fails
// with ErrInvalidEvent.
const (
	Start   = "start"
	Success = "success"
	Failure = "failure"
)

// ErrInvalidEvent is returned by Register for any event name outside
// {start, success, failure}.
var ErrInvalidEvent = errors.New("hooks: invalid event name")

// Handler is invoked on an emitted event with the event's payload. It
// returns nothing; a handler that panics is isolated by Emit.
type Handler func(payload ...any)

// Manager registers and dispatches named event handlers. The zero value
// is ready to use.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewManager returns a ready Manager.
func NewManager() *Manager {
	return &Manager{handlers: make(map[string][]Handler)}
}

func validEvent(event string) bool {
	switch event {
	case Start, Success, Failure:
		return true
	default:
		return false
	}
}

// Register appends handler for event, in call order. It returns
// ErrInvalidEvent if event is not one of the three recognized names.
func (m *Manager) Register(event string, handler Handler) error {
	if !validEvent(event) {
		return errors.Wrapf(ErrInvalidEvent, "event %q", event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handlers == nil {
		m.handlers = make(map[string][]Handler)
	}
	m.handlers[event] = append(m.handlers[event], handler)
	return nil
}

// Emit invokes every handler registered for event, in registration order.
// A handler that panics is recovered and does not prevent the remaining
// handlers from running, nor does it propagate to the caller.
func (m *Manager) Emit(event string, payload ...any) {
	m.mu.RLock()
	// Copy the slice under lock so a concurrent Register doesn't race with
	// iteration, and so a handler can safely call Register itself.
	handlers := append([]Handler(nil), m.handlers[event]...)
	m.mu.RUnlock()

	for _, h := range handlers {
		callSafely(h, payload...)
	}
}

func callSafely(h Handler, payload ...any) {
	defer func() {
		recover() //nolint:errcheck // handler failures must never reach the caller
	}()
	h(payload...)
}
