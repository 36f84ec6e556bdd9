// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/bureau-foundation/robodash/lib/codec"
	"github.com/bureau-foundation/robodash/lib/schema/panel"
)

var (
	// ErrWorkerUnavailable is returned for a panel type whose context
	// failed to start, until [Registry.Retry] is called. It wraps the
	// original failure.
	ErrWorkerUnavailable = errors.New("worker unavailable")

	// ErrUnknownPanelType is returned for a panel type with no factory.
	ErrUnknownPanelType = errors.New("unknown panel type")

	// ErrQueueFull is returned by Send when the inbox is full of
	// commands that may not be evicted.
	ErrQueueFull = errors.New("worker inbox full")

	// ErrClosed is returned after [Registry.Close].
	ErrClosed = errors.New("worker registry closed")
)

// DefaultQueueCapacity bounds each context's inbox when Options leaves
// it zero.
const DefaultQueueCapacity = 256

// Processor handles commands inside one execution context. Handle is
// only ever called from the context's goroutine, one command at a time,
// so implementations need no locking. It returns the responses to
// deliver, which may be none.
type Processor interface {
	Handle(command panel.Command) []panel.Response
}

// ProcessorFunc adapts a function to [Processor].
type ProcessorFunc func(command panel.Command) []panel.Response

func (f ProcessorFunc) Handle(command panel.Command) []panel.Response { return f(command) }

// Factory creates the processor for a new execution context. A factory
// error means the context failed to start.
type Factory func() (Processor, error)

// Callback receives responses. Callbacks run on the worker's goroutine
// and must not block; they may call back into the Registry.
type Callback func(panel.Response)

// Options configures a [Registry].
type Options struct {
	Factories     map[panel.Type]Factory
	QueueCapacity int
	Logger        *slog.Logger
}

// Registry owns the execution contexts for every panel type. Safe for
// concurrent use.
type Registry struct {
	factories     map[panel.Type]Factory
	queueCapacity int
	logger        *slog.Logger

	mu           sync.Mutex
	handles      map[panel.Type]*Handle
	failures     map[panel.Type]error
	panels       map[panel.Type]map[string]Callback
	listeners    map[panel.Type]map[uint64]Callback
	nextListener uint64
	closed       bool
	wg           sync.WaitGroup
}

// NewRegistry creates a registry. No context starts until the first
// command for its type.
func NewRegistry(options Options) *Registry {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	capacity := options.QueueCapacity
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	factories := make(map[panel.Type]Factory, len(options.Factories))
	for panelType, factory := range options.Factories {
		factories[panelType] = factory
	}
	return &Registry{
		factories:     factories,
		queueCapacity: capacity,
		logger:        logger,
		handles:       make(map[panel.Type]*Handle),
		failures:      make(map[panel.Type]error),
		panels:        make(map[panel.Type]map[string]Callback),
		listeners:     make(map[panel.Type]map[uint64]Callback),
	}
}

// Handle is a running execution context.
type Handle struct {
	panelType panel.Type
	inbox     *inbox
	cancel    context.CancelFunc
	done      chan struct{}
}

// PanelType returns the type this context serves.
func (h *Handle) PanelType() panel.Type { return h.panelType }

// Done is closed when the context goroutine has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Queued returns the number of commands waiting in the inbox.
func (h *Handle) Queued() int { return h.inbox.len() }

// Evicted returns how many telemetry commands the inbox has dropped.
func (h *Handle) Evicted() uint64 { return h.inbox.evictions() }

// EnsureWorker returns the running context for panelType, starting it
// if needed. A factory failure is returned once; later calls return an
// error wrapping [ErrWorkerUnavailable] and the original failure.
func (r *Registry) EnsureWorker(panelType panel.Type) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureLocked(panelType)
}

func (r *Registry) ensureLocked(panelType panel.Type) (*Handle, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if handle, ok := r.handles[panelType]; ok {
		return handle, nil
	}
	if failure, ok := r.failures[panelType]; ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrWorkerUnavailable, panelType, failure)
	}
	factory, ok := r.factories[panelType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanelType, panelType)
	}

	processor, err := factory()
	if err != nil {
		r.failures[panelType] = err
		contextFailures.WithLabelValues(string(panelType)).Inc()
		r.logger.Warn("worker context failed to start", "panel_type", panelType, "error", err)
		return nil, fmt.Errorf("starting %s worker: %w", panelType, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &Handle{
		panelType: panelType,
		inbox:     newInbox(r.queueCapacity),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	r.handles[panelType] = handle
	r.wg.Add(1)
	go r.run(ctx, handle, processor)

	contextStarts.WithLabelValues(string(panelType)).Inc()
	r.logger.Debug("worker context started", "panel_type", panelType)
	return handle, nil
}

// Retry clears a recorded start failure for panelType and tries to start
// its context again.
func (r *Registry) Retry(panelType panel.Type) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, panelType)
	return r.ensureLocked(panelType)
}

// Send queues command for the panelType context, starting the context
// if needed. It never waits for the command to be processed.
func (r *Registry) Send(panelType panel.Type, command panel.Command) error {
	data, err := codec.Marshal(command)
	if err != nil {
		return fmt.Errorf("encoding %s command for panel %s: %w", command.Type, command.PanelID, err)
	}

	handle, err := r.EnsureWorker(panelType)
	if err != nil {
		return err
	}
	return r.enqueue(handle, command, data)
}

// enqueue pushes an encoded command onto handle's inbox.
func (r *Registry) enqueue(handle *Handle, command panel.Command, data []byte) error {
	evicted, ok := handle.inbox.push(inboxEntry{
		commandType: command.Type,
		panelID:     command.PanelID,
		data:        data,
	})
	if !ok {
		return fmt.Errorf("%w: %s context has %d configuration commands queued", ErrQueueFull, handle.panelType, r.queueCapacity)
	}
	if evicted != nil {
		inboxEvictions.WithLabelValues(string(handle.panelType)).Inc()
		r.logger.Debug("evicted queued telemetry", "panel_type", handle.panelType, "panel_id", evicted.panelID)
	}
	commandsSent.WithLabelValues(string(handle.panelType), string(command.Type)).Inc()
	return nil
}

// OnMessage registers callback for every response delivered to an
// active panel of panelType. Listeners run after the panel's own
// callback, in registration order. The returned function unregisters
// it.
func (r *Registry) OnMessage(panelType panel.Type, callback Callback) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextListener++
	id := r.nextListener
	if r.listeners[panelType] == nil {
		r.listeners[panelType] = make(map[uint64]Callback)
	}
	r.listeners[panelType][id] = callback

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.listeners[panelType], id)
		})
	}
}

// AddPanel marks panelID active and routes its responses to callback,
// which may be nil when OnMessage listeners are enough. The context for
// panelType is started if needed.
func (r *Registry) AddPanel(panelType panel.Type, panelID string, callback Callback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.ensureLocked(panelType); err != nil {
		return err
	}
	if r.panels[panelType] == nil {
		r.panels[panelType] = make(map[string]Callback)
	}
	r.panels[panelType][panelID] = callback
	return nil
}

// RemovePanel takes panelID out of the active set, so any response
// still in flight for it is dropped. The context is told to discard the
// panel's state; when this was the last panel of its type the context
// is terminated instead. Removing an unknown panel is a no-op.
//
// The REMOVE_PANEL command is queued before the registry lock is
// released, so it always precedes commands for a panel re-added under
// the same id.
func (r *Registry) RemovePanel(panelType panel.Type, panelID string) error {
	command, err := panel.NewCommand(panel.CommandRemovePanel, panelID, nil)
	if err != nil {
		return err
	}
	data, err := codec.Marshal(command)
	if err != nil {
		return fmt.Errorf("encoding %s command for panel %s: %w", command.Type, panelID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	active := r.panels[panelType]
	if _, ok := active[panelID]; !ok {
		return nil
	}
	delete(active, panelID)
	if len(active) == 0 {
		delete(r.panels, panelType)
		r.terminateLocked(panelType)
		return nil
	}
	handle, ok := r.handles[panelType]
	if !ok {
		return nil
	}
	return r.enqueue(handle, command, data)
}

// ActivePanels returns the number of active panels of panelType.
func (r *Registry) ActivePanels(panelType panel.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.panels[panelType])
}

// Running reports whether a context for panelType is running.
func (r *Registry) Running(panelType panel.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[panelType]
	return ok
}

// Terminate stops the panelType context. Queued commands are discarded
// and the processor's state is lost. The next command starts a fresh
// context. Terminate does not wait for the goroutine to exit; use the
// handle's Done channel for that.
func (r *Registry) Terminate(panelType panel.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminateLocked(panelType)
}

func (r *Registry) terminateLocked(panelType panel.Type) {
	handle, ok := r.handles[panelType]
	if !ok {
		return
	}
	delete(r.handles, panelType)
	handle.cancel()
	r.logger.Debug("worker context terminated", "panel_type", panelType)
}

// Close terminates every context and waits for their goroutines to
// exit. It must not be called from a Callback.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for panelType := range r.handles {
		r.terminateLocked(panelType)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// run is the execution context goroutine. Processors that implement
// io.Closer are closed when the context exits.
func (r *Registry) run(ctx context.Context, handle *Handle, processor Processor) {
	defer r.wg.Done()
	defer close(handle.done)
	if closer, ok := processor.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				r.logger.Warn("closing processor", "panel_type", handle.panelType, "error", err)
			}
		}()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-handle.inbox.notify:
		}
		for _, entry := range handle.inbox.drain() {
			if ctx.Err() != nil {
				return
			}
			r.process(handle, processor, entry)
		}
	}
}

func (r *Registry) process(handle *Handle, processor Processor, entry inboxEntry) {
	var command panel.Command
	if err := codec.Unmarshal(entry.data, &command); err != nil {
		r.logger.Error("decoding queued command", "panel_type", handle.panelType, "panel_id", entry.panelID, "error", err)
		r.deliver(handle, panel.ErrorResponse(entry.panelID, fmt.Sprintf("decoding command: %v", err)))
		return
	}

	for _, response := range r.invoke(handle.panelType, processor, command) {
		if response.PanelID == "" {
			response.PanelID = command.PanelID
		}
		r.deliver(handle, response)
	}
}

// invoke calls the processor, turning a panic into an ERROR response so
// one bad message cannot take down every panel of the type.
func (r *Registry) invoke(panelType panel.Type, processor Processor, command panel.Command) (responses []panel.Response) {
	defer func() {
		if recovered := recover(); recovered != nil {
			processorPanics.WithLabelValues(string(panelType)).Inc()
			r.logger.Error("processor panic",
				"panel_type", panelType,
				"panel_id", command.PanelID,
				"command", command.Type,
				"panic", recovered,
			)
			responses = []panel.Response{panel.ErrorResponse(command.PanelID,
				fmt.Sprintf("processing %s: panic: %v", command.Type, recovered))}
		}
	}()
	return processor.Handle(command)
}

// deliver copies response across the context boundary and hands it to
// the panel's callback and the type's listeners. Responses from a
// context that has been replaced or terminated, or for panels no longer
// active, are dropped.
func (r *Registry) deliver(handle *Handle, response panel.Response) {
	panelType := string(handle.panelType)
	if response.Type == panel.ResponseError {
		errorResponses.WithLabelValues(panelType).Inc()
	}

	data, err := codec.Marshal(response)
	if err != nil {
		r.logger.Error("encoding response", "panel_type", panelType, "panel_id", response.PanelID, "error", err)
		return
	}
	var copied panel.Response
	if err := codec.Unmarshal(data, &copied); err != nil {
		r.logger.Error("decoding response", "panel_type", panelType, "panel_id", response.PanelID, "error", err)
		return
	}

	r.mu.Lock()
	current := r.handles[handle.panelType] == handle
	callback, active := r.panels[handle.panelType][copied.PanelID]
	var listeners []Callback
	if current && active {
		ids := slices.Sorted(maps.Keys(r.listeners[handle.panelType]))
		for _, id := range ids {
			listeners = append(listeners, r.listeners[handle.panelType][id])
		}
	}
	r.mu.Unlock()

	if !current || !active {
		lateResponses.WithLabelValues(panelType).Inc()
		r.logger.Debug("dropped response for inactive panel",
			"panel_type", panelType,
			"panel_id", copied.PanelID,
			"response", copied.Type,
		)
		return
	}

	responsesDelivered.WithLabelValues(panelType).Inc()
	if callback != nil {
		callback(copied)
	}
	for _, listener := range listeners {
		listener(copied)
	}
}
