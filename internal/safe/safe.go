// Package safe provides a panic-safe error group for running the service's
// long-lived servers concurrently.
package safe

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// RecoverFunc handles panics raised inside a group goroutine.
type RecoverFunc func(r any)

// DefaultRecover logs panics with stack traces.
func DefaultRecover(r any) {
	slog.Error("recovered from panic", "panic", r, "stack", string(debug.Stack()))
}

// Group enhances errgroup.Group with panic recovery.
type Group struct {
	eg      *errgroup.Group
	ctx     context.Context
	recover RecoverFunc
}

// WithContext initializes a Group whose context is cancelled when any task
// fails or panics.
func WithContext(ctx context.Context) (*Group, context.Context) {
	eg, ctx := errgroup.WithContext(ctx)
	return &Group{eg: eg, ctx: ctx, recover: DefaultRecover}, ctx
}

// Go runs fn in a goroutine; panics are recovered and surfaced as errors.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				g.recover(r)
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn(g.ctx)
	})
}

// Wait blocks until all goroutines finish and returns the first error.
func (g *Group) Wait() error {
	return g.eg.Wait()
}
