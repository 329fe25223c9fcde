package guard

// The checker's recursion is driven by untrusted input, so a hostile export
// file can nest terms arbitrarily deep. A Guard counts frames on the
// recursive hot paths and, every FrameBudget frames, hands the continuation
// to a fresh goroutine, which starts on a new, independently growable stack
// while the caller blocks on its result. A hard ceiling on outstanding
// handoffs turns runaway recursion into a reported StackExhausted instead of
// a crash.
//
// Guards are per-checker and never shared between goroutines.

import (
	"github.com/quern-dev/quern/source/report"
)

const (
	FrameBudget = 2048
	MaxHandoffs = 64
)

type Guard struct {
	depth    int
	handoffs int
}

// Step runs f as one guarded frame.
func (g *Guard) Step(f func() error) error {
	g.depth++
	defer func() { g.depth-- }()
	if g.depth < FrameBudget {
		return f()
	}
	if g.handoffs >= MaxHandoffs {
		return report.New(report.STACK_EXHAUSTED, "term nesting exceeds the recursion ceiling")
	}
	g.handoffs++
	saved := g.depth
	g.depth = 0
	done := make(chan error, 1)
	go func() {
		done <- f()
	}()
	err := <-done
	g.depth = saved
	g.handoffs--
	return err
}
