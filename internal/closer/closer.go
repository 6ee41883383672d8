// Package closer manages resource cleanup in LIFO order with graceful
// shutdown on OS signals.
package closer

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/Homoney/watch-collection-tracker/internal/errors"
	"github.com/Homoney/watch-collection-tracker/internal/logging"
)

// Closer matches the standard io.Closer interface.
type Closer = io.Closer

// CloserFunc adapts a function to the Closer interface.
type CloserFunc func() error

// Close implements the Closer interface.
func (f CloserFunc) Close() error {
	return f()
}

// LIFOCloser closes registered resources in reverse registration order.
type LIFOCloser struct {
	mu      sync.Mutex
	closers []Closer
}

// NewLIFOCloser creates a new LIFOCloser instance.
func NewLIFOCloser() *LIFOCloser {
	return &LIFOCloser{}
}

// Add registers closers for deferred cleanup. Thread-safe.
func (lc *LIFOCloser) Add(closers ...Closer) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.closers = append(lc.closers, closers...)
}

// Close cleans up all registered resources in LIFO order, continuing past
// individual failures and returning them joined.
func (lc *LIFOCloser) Close() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	var errs []error
	for i := len(lc.closers) - 1; i >= 0; i-- {
		if err := lc.closers[i].Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "close resource"))
		}
	}
	lc.closers = nil

	return errors.Join(errs...)
}

// CloseOnSignalWithContext blocks until an OS signal arrives or the context
// is cancelled, then runs the cleanup.
func CloseOnSignalWithContext(ctx context.Context, lc *LIFOCloser, signals ...os.Signal) error {
	closeCtx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	<-closeCtx.Done()
	logging.L(ctx).Info("initiating shutdown", logging.ErrAttr(closeCtx.Err()))

	return lc.Close()
}
