// Package shutdown coordinates graceful teardown of Willow's resources.
//
// Components register close functions in dependency order; on Shutdown
// (or SIGINT/SIGTERM via HandleSignals) they run in reverse order, each
// bounded by the shared deadline.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vinayprograms/willow/logging"
)

// Common errors.
var (
	// ErrAlreadyShutdown indicates shutdown was already initiated.
	ErrAlreadyShutdown = errors.New("shutdown already initiated")

	// ErrHandlerFailed indicates one or more handlers failed.
	ErrHandlerFailed = errors.New("one or more shutdown handlers failed")
)

// Handler is a close function bounded by the shutdown deadline.
type Handler func(ctx context.Context) error

// DefaultTimeout bounds the whole shutdown when none is configured.
const DefaultTimeout = 10 * time.Second

type registration struct {
	name    string
	handler Handler
}

// Coordinator runs registered handlers on shutdown.
type Coordinator struct {
	log     *logging.Logger
	timeout time.Duration

	mu       sync.Mutex
	handlers []registration
	started  bool

	once sync.Once
	done chan struct{}
	err  error
}

// New creates a Coordinator. A zero timeout uses DefaultTimeout.
func New(log *logging.Logger, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.New()
	}
	return &Coordinator{
		log:     log.WithComponent("shutdown"),
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// Register adds a named handler. Handlers run in reverse registration
// order, so register in construction order.
func (c *Coordinator) Register(name string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, registration{name: name, handler: handler})
}

// HandleSignals starts a goroutine that triggers Shutdown on SIGINT or
// SIGTERM.
func (c *Coordinator) HandleSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-ch
		c.log.Info("signal_received", map[string]interface{}{"signal": sig.String()})
		c.Shutdown()
	}()
}

// Shutdown runs all handlers in reverse registration order, bounded by
// the coordinator timeout. Subsequent calls return ErrAlreadyShutdown.
func (c *Coordinator) Shutdown() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyShutdown
	}
	c.started = true
	handlers := make([]registration, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	c.once.Do(func() {
		defer close(c.done)

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		start := time.Now()
		var failed bool
		for i := len(handlers) - 1; i >= 0; i-- {
			reg := handlers[i]
			hStart := time.Now()
			if err := reg.handler(ctx); err != nil {
				failed = true
				c.log.Error("handler_failed", map[string]interface{}{
					"handler": reg.name,
					"error":   err.Error(),
				})
				continue
			}
			c.log.Debug("handler_done", map[string]interface{}{
				"handler":  reg.name,
				"duration": time.Since(hStart).String(),
			})
		}

		if failed {
			c.err = ErrHandlerFailed
		}
		c.log.Info("shutdown_complete", map[string]interface{}{
			"duration": time.Since(start).String(),
		})
	})

	return c.err
}

// Done returns a channel closed when shutdown has completed.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Err returns the shutdown error; only valid after Done is closed.
func (c *Coordinator) Err() error {
	return c.err
}
