package thread

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

var ErrJobPanicked = errors.New("thread: group task panicked")

// Group runs tasks on a Pool with errgroup semantics: the first error
// cancels the group context and is returned by Wait.
type Group struct {
	pool *Pool
	eg   *errgroup.Group
	ctx  context.Context
}

// NewGroup derives a group from ctx. Tasks receive the group context.
func (p *Pool) NewGroup(ctx context.Context) (*Group, context.Context) {
	eg, gctx := errgroup.WithContext(ctx)
	return &Group{pool: p, eg: eg, ctx: gctx}, gctx
}

// Go queues fn on the pool.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		done := make(chan error, 1)
		err := g.pool.Submit(g.ctx, func() {
			err := ErrJobPanicked
			defer func() { done <- err }()
			err = fn(g.ctx)
		})
		if err != nil {
			return err
		}
		return <-done
	})
}

// Wait blocks until every task has returned.
func (g *Group) Wait() error { return g.eg.Wait() }
