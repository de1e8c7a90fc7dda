package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/billed/internal/domain/command"
)

var (
	// ErrClosed is returned when dispatching on a closed dispatcher
	ErrClosed = errors.New("dispatcher is closed")
	// ErrNoHandler is returned when no handler is registered for a command type
	ErrNoHandler = errors.New("no handler registered")
)

// Dispatcher routes commands to registered handlers
type Dispatcher interface {
	// Subscribe registers a handler for a command type
	Subscribe(cmdType command.Type, handler Handler)

	// SubscribeNamed registers a handler under a name.
	// A handler already registered under the same name is replaced.
	SubscribeNamed(cmdType command.Type, name string, handler Handler)

	// Unsubscribe removes a handler by name
	Unsubscribe(cmdType command.Type, name string)

	// Dispatch validates the command and runs its handlers in order.
	// Returns the first error encountered.
	Dispatch(ctx context.Context, cmd *command.Command) error

	// ListHandlers returns registered handlers for a command type
	ListHandlers(cmdType command.Type) []HandlerInfo

	// Close rejects further dispatches
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type commandDispatcher struct {
	mu       sync.RWMutex
	handlers map[command.Type][]HandlerInfo
	logger   Logger
	closed   atomic.Bool
}

// Option configures the dispatcher
type Option func(*commandDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *commandDispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new command dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &commandDispatcher{
		handlers: make(map[command.Type][]HandlerInfo),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *commandDispatcher) Subscribe(cmdType command.Type, handler Handler) {
	d.mu.RLock()
	name := fmt.Sprintf("handler-%d", len(d.handlers[cmdType]))
	d.mu.RUnlock()
	d.SubscribeNamed(cmdType, name, handler)
}

func (d *commandDispatcher) SubscribeNamed(cmdType command.Type, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	info := HandlerInfo{
		Name:        name,
		CommandType: cmdType,
		Handler:     handler,
	}

	replaced := false
	for i, h := range d.handlers[cmdType] {
		if h.Name == name {
			d.handlers[cmdType][i] = info
			replaced = true
			break
		}
	}
	if !replaced {
		d.handlers[cmdType] = append(d.handlers[cmdType], info)
	}

	d.info("Handler registered",
		"command_type", cmdType,
		"handler_name", name,
		"replaced", replaced,
	)
}

func (d *commandDispatcher) Unsubscribe(cmdType command.Type, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	handlers := d.handlers[cmdType]
	filtered := make([]HandlerInfo, 0, len(handlers))
	for _, h := range handlers {
		if h.Name != name {
			filtered = append(filtered, h)
		}
	}
	d.handlers[cmdType] = filtered

	d.info("Handler unregistered",
		"command_type", cmdType,
		"handler_name", name,
	)
}

func (d *commandDispatcher) Dispatch(ctx context.Context, cmd *command.Command) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if cmd == nil {
		return errors.New("nil command")
	}
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	d.mu.RLock()
	handlers := append([]HandlerInfo(nil), d.handlers[cmd.Type]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		return fmt.Errorf("%w for %s", ErrNoHandler, cmd.Type)
	}

	d.info("Dispatching command",
		"command_type", cmd.Type,
		"section", cmd.Section,
		"bill_id", cmd.BillID,
		"handler_count", len(handlers),
	)

	for _, info := range handlers {
		if err := d.safeExecute(ctx, cmd, info); err != nil {
			d.error("Handler error",
				"command_type", cmd.Type,
				"handler_name", info.Name,
				"error", err,
			)
			return fmt.Errorf("handler %s failed: %w", info.Name, err)
		}
	}
	return nil
}

func (d *commandDispatcher) ListHandlers(cmdType command.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	handlers := d.handlers[cmdType]
	result := make([]HandlerInfo, len(handlers))
	for i, h := range handlers {
		result[i] = HandlerInfo{
			Name:        h.Name,
			CommandType: h.CommandType,
			Description: h.Description,
		}
	}
	return result
}

func (d *commandDispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return errors.New("dispatcher already closed")
	}
	d.info("Dispatcher closed")
	return nil
}

// safeExecute runs a handler with panic recovery
func (d *commandDispatcher) safeExecute(ctx context.Context, cmd *command.Command, info HandlerInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			d.error("Handler panic recovered",
				"command_type", cmd.Type,
				"handler_name", info.Name,
				"panic", r,
			)
		}
	}()
	return info.Handler(ctx, cmd)
}

func (d *commandDispatcher) info(msg string, kv ...interface{}) {
	if d.logger != nil {
		d.logger.Info(msg, kv...)
	}
}

func (d *commandDispatcher) error(msg string, kv ...interface{}) {
	if d.logger != nil {
		d.logger.Error(msg, kv...)
	}
}
