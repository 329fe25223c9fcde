package certify

// The parallel orchestrator. Registration stays on the calling goroutine in
// strict stream order; deferred checks go through a bounded queue to an
// errgroup pool, each worker task running on its own checker so no caches are
// shared. When anything fails, the failure belonging to the earliest item
// wins, which makes the verdict independent of the worker count.

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quern-dev/quern/source/checker"
	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/report"
)

type task struct {
	seq  int
	item env.Item
	fn   deferredCheck
}

type firstFailure struct {
	mu  sync.Mutex
	seq int
	err error
}

func (f *firstFailure) record(seq int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil || seq < f.seq {
		f.seq, f.err = seq, err
	}
}

func (f *firstFailure) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (c *Certifier) parallel(items []env.Item) error {
	g, ctx := errgroup.WithContext(context.Background())
	lookahead := c.Lookahead
	if lookahead < 1 {
		lookahead = 1
	}
	tasks := make(chan task, lookahead)
	var fail firstFailure

	for w := 0; w < c.Threads; w++ {
		g.Go(func() error {
			var failed error
			// Keep draining after a failure: an earlier item still queued
			// may fail too, and the earliest failure is the verdict.
			for t := range tasks {
				if err := t.fn(checker.New(c.Env)); err != nil {
					err = report.At(err, t.item.ItemName())
					fail.record(t.seq, err)
					c.Log.Debug("item", zap.String("name", t.item.ItemName().String()), zap.String("status", REJECTED.String()))
					if failed == nil {
						failed = err
					}
				}
			}
			return failed
		})
	}

	for seq, item := range items {
		if ctx.Err() != nil {
			break
		}
		deferred, err := c.register(item)
		if err != nil {
			fail.record(seq, report.At(err, item.ItemName()))
			break
		}
		if deferred == nil {
			c.Log.Debug("item", zap.String("name", item.ItemName().String()), zap.String("status", COMMITTED.String()))
			continue
		}
		select {
		case tasks <- task{seq: seq, item: item, fn: deferred}:
		case <-ctx.Done():
		}
	}
	close(tasks)
	if err := g.Wait(); err != nil {
		// Prefer the earliest recorded failure over whichever worker
		// happened to return first.
		if first := fail.get(); first != nil {
			return first
		}
		return err
	}
	return fail.get()
}
