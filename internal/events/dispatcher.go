package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler consumes one event's data. Handlers must be safe to re-run: the
// dispatcher retries the whole handler body on error.
type Handler func(ctx context.Context, data json.RawMessage) error

// FailureHook is called once per event after all attempts are exhausted.
// recordID is the recordId field of the event data, when present.
type FailureHook func(ctx context.Context, eventName, recordID string, err error)

type registration struct {
	handler     Handler
	maxAttempts int
}

// Dispatcher executes event handlers in-process on a bounded worker pool.
// It stands in for the hosted durable runtime: bounded retries per handler,
// then a terminal failure hook. An optional forward Emitter mirrors every
// event to the runtime's ingest endpoint for audit and replay.
type Dispatcher struct {
	log      zerolog.Logger
	handlers map[string]registration
	forward  Emitter
	failure  FailureHook
	onRetry  func(eventName string)

	// Semaphore: buffered channel bounds concurrent handler runs so a large
	// batch cannot spawn unlimited goroutines.
	sem chan struct{}
	wg  sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Verify interface compliance
var _ Emitter = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with at most maxWorkers concurrent
// handler runs.
func NewDispatcher(maxWorkers int, log zerolog.Logger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Dispatcher{
		log:      log.With().Str("component", "dispatcher").Logger(),
		handlers: make(map[string]registration),
		sem:      make(chan struct{}, maxWorkers),
	}
}

// Register binds a handler to an event name with a retry bound. Register is
// not safe to call after Emit.
func (d *Dispatcher) Register(name string, maxAttempts int, handler Handler) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	d.handlers[name] = registration{handler: handler, maxAttempts: maxAttempts}
}

// SetForward mirrors every emitted event to e before local execution.
func (d *Dispatcher) SetForward(e Emitter) {
	d.forward = e
}

// SetFailureHook installs the terminal failure handler.
func (d *Dispatcher) SetFailureHook(hook FailureHook) {
	d.failure = hook
}

// SetRetryHook installs a callback fired once per retry attempt, for
// instrumentation.
func (d *Dispatcher) SetRetryHook(hook func(eventName string)) {
	d.onRetry = hook
}

// Emit schedules the handler registered for name. The handler runs detached
// from the caller's context: a stage run outlives the webhook request that
// triggered it.
func (d *Dispatcher) Emit(ctx context.Context, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event %q: %w", name, err)
	}

	// The closed check and wg.Add share one critical section so an Emit
	// racing Shutdown cannot add work after Wait has started.
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher is shut down")
	}
	d.wg.Add(1)
	d.mu.Unlock()

	if d.forward != nil {
		// Best effort: local execution proceeds even when the mirror fails.
		if err := d.forward.Emit(ctx, name, data); err != nil {
			d.log.Warn().Err(err).Str("event", name).Msg("Failed to forward event to durable runtime")
		}
	}

	reg, ok := d.handlers[name]
	if !ok {
		d.wg.Done()
		d.log.Warn().Str("event", name).Msg("No handler registered for event")
		return nil
	}

	d.sem <- struct{}{}
	go func() {
		defer d.wg.Done()
		defer func() { <-d.sem }()

		// Panic recovery - a panicking handler must not crash the process
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().
					Interface("panic", r).
					Str("event", name).
					Msg("Event handler panicked - recovered")
				d.fail(name, payload, fmt.Errorf("handler panicked: %v", r))
			}
		}()

		d.run(name, reg, payload)
	}()
	return nil
}

func (d *Dispatcher) run(name string, reg registration, payload json.RawMessage) {
	ctx := context.Background()

	var lastErr error
	for attempt := 1; attempt <= reg.maxAttempts; attempt++ {
		if attempt > 1 {
			if d.onRetry != nil {
				d.onRetry(name)
			}
			time.Sleep(time.Duration(attempt-1) * time.Second)
			d.log.Warn().
				Str("event", name).
				Int("attempt", attempt).
				Err(lastErr).
				Msg("Retrying event handler")
		}

		lastErr = reg.handler(ctx, payload)
		if lastErr == nil {
			return
		}
	}

	d.log.Error().
		Err(lastErr).
		Str("event", name).
		Int("attempts", reg.maxAttempts).
		Msg("Event handler failed after all attempts")
	d.fail(name, payload, lastErr)
}

func (d *Dispatcher) fail(name string, payload json.RawMessage, err error) {
	if d.failure == nil {
		return
	}
	var ref struct {
		RecordID string `json:"recordId"`
	}
	// Best effort; not every event carries a record id.
	json.Unmarshal(payload, &ref)
	d.failure(context.Background(), name, ref.RecordID, err)
}

// Wait blocks until all in-flight handlers finish. Test helper.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting events and waits for in-flight handlers, bounded
// by ctx.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
