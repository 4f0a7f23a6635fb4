package shutdown

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vinayprograms/willow/logging"
)

func testLogger() *logging.Logger {
	l := logging.New()
	l.SetOutput(&bytes.Buffer{})
	return l
}

func TestShutdownRunsHandlersInReverseOrder(t *testing.T) {
	c := New(testLogger(), time.Second)

	var order []string
	c.Register("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	c.Register("second", func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("Expected reverse registration order, got %v", order)
	}

	select {
	case <-c.Done():
	default:
		t.Error("Done channel should be closed after Shutdown")
	}
}

func TestShutdownTwice(t *testing.T) {
	c := New(testLogger(), time.Second)

	calls := 0
	c.Register("once", func(ctx context.Context) error {
		calls++
		return nil
	})

	if err := c.Shutdown(); err != nil {
		t.Fatalf("First Shutdown failed: %v", err)
	}
	if err := c.Shutdown(); !errors.Is(err, ErrAlreadyShutdown) {
		t.Errorf("Expected ErrAlreadyShutdown, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Handler should run once, ran %d times", calls)
	}
}

func TestShutdownHandlerFailure(t *testing.T) {
	c := New(testLogger(), time.Second)

	ran := false
	c.Register("survivor", func(ctx context.Context) error {
		ran = true
		return nil
	})
	c.Register("broken", func(ctx context.Context) error {
		return errors.New("cannot close")
	})

	err := c.Shutdown()
	if !errors.Is(err, ErrHandlerFailed) {
		t.Errorf("Expected ErrHandlerFailed, got %v", err)
	}
	if !ran {
		t.Error("A failing handler must not stop the remaining handlers")
	}
	if !errors.Is(c.Err(), ErrHandlerFailed) {
		t.Errorf("Err() should report the failure, got %v", c.Err())
	}
}

func TestShutdownDeadlinePropagated(t *testing.T) {
	c := New(testLogger(), 50*time.Millisecond)

	var sawDeadline bool
	c.Register("checks deadline", func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		return nil
	})

	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !sawDeadline {
		t.Error("Handlers should receive a context with the shutdown deadline")
	}
}
