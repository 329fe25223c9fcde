package certify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/report"
)

// The worker pool and the stack guard both spawn goroutines; none may
// outlive a Check call.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	aN = name.Anon.Str("A")
	fN = name.Anon.Str("f")
)

func constOf(n *name.Name) *expr.Const { return expr.NewConst(n, nil) }

func axiomItem(nm *name.Name, ty expr.Expr) *env.AxiomItem {
	return &env.AxiomItem{Nm: nm, Ty: ty}
}

func defItem(nm *name.Name, ty, value expr.Expr) *env.DefItem {
	return &env.DefItem{Nm: nm, Ty: ty, Value: value}
}

func kindAndName(t *testing.T, err error) (report.Kind, *name.Name) {
	t.Helper()
	re, ok := err.(*report.Error)
	require.True(t, ok, "expected a kernel error, got %v", err)
	return re.Kind, re.Name
}

func TestAxiomThenIllTypedDef(t *testing.T) {
	items := []env.Item{
		axiomItem(aN, expr.NewSort(level.One)),
		// B claims to inhabit A but its value is A itself.
		defItem(name.Anon.Str("B"), constOf(aN), constOf(aN)),
	}
	err := New(env.New(), nil).Check(items)
	require.Error(t, err)
	kind, nm := kindAndName(t, err)
	assert.Equal(t, report.TYPE_MISMATCH, kind)
	assert.Equal(t, "B", nm.String())
}

func TestGoodStreamCommitsEverything(t *testing.T) {
	items := []env.Item{
		axiomItem(aN, expr.NewSort(level.One)),
		axiomItem(fN, expr.NewPi(expr.Binder{Nm: name.Anon.Str("x"), Ty: constOf(aN)}, constOf(aN))),
		axiomItem(name.Anon.Str("a"), constOf(aN)),
		defItem(name.Anon.Str("fa"), constOf(aN), expr.NewApp(constOf(fN), constOf(name.Anon.Str("a")))),
	}
	e := env.New()
	require.NoError(t, New(e, nil).Check(items))
	assert.Equal(t, 4, e.Len())
	assert.Equal(t, 1, e.Height(name.Anon.Str("fa")))
}

func TestDeltaResolvesDeclaredType(t *testing.T) {
	// B's declared type is a definition that unfolds to A; the apparent
	// mismatch against the value's inferred type is settled by delta.
	d1 := name.Anon.Str("d1")
	items := []env.Item{
		axiomItem(aN, expr.NewSort(level.One)),
		axiomItem(name.Anon.Str("a"), constOf(aN)),
		defItem(d1, expr.NewSort(level.One), constOf(aN)),
		defItem(name.Anon.Str("B"), constOf(d1), constOf(name.Anon.Str("a"))),
	}
	require.NoError(t, New(env.New(), nil).Check(items))
}

func TestOpenValueRejected(t *testing.T) {
	items := []env.Item{
		axiomItem(aN, expr.NewSort(level.One)),
		defItem(name.Anon.Str("B"), constOf(aN), expr.NewVar(0)),
	}
	err := New(env.New(), nil).Check(items)
	require.Error(t, err)
	kind, _ := kindAndName(t, err)
	assert.Equal(t, report.UNKNOWN_REFERENCE, kind)
}

func TestUnboundLevelInSignature(t *testing.T) {
	u := level.Param(name.Anon.Str("u"))
	err := New(env.New(), nil).Check([]env.Item{axiomItem(aN, expr.NewSort(u))})
	require.Error(t, err)
	kind, nm := kindAndName(t, err)
	assert.Equal(t, report.UNKNOWN_REFERENCE, kind)
	assert.Equal(t, aN, nm)
}

func TestQuotientNeedsEquality(t *testing.T) {
	err := New(env.New(), nil).Check([]env.Item{&env.QuotItem{}})
	require.Error(t, err)
	kind, _ := kindAndName(t, err)
	assert.Equal(t, report.UNKNOWN_REFERENCE, kind)
}

// mixedStream has two ill-typed definitions with well-typed items around and
// between them. Whatever the worker count, the verdict must be the failure of
// the earlier one.
func mixedStream() []env.Item {
	aC := constOf(aN)
	return []env.Item{
		axiomItem(aN, expr.NewSort(level.One)),
		axiomItem(name.Anon.Str("a"), aC),
		defItem(name.Anon.Str("bad1"), aC, aC),
		axiomItem(fN, expr.NewPi(expr.Binder{Nm: name.Anon.Str("x"), Ty: aC}, aC)),
		defItem(name.Anon.Str("bad2"), aC, constOf(fN)),
		defItem(name.Anon.Str("good"), aC, constOf(name.Anon.Str("a"))),
	}
}

func TestVerdictIndependentOfThreads(t *testing.T) {
	for _, threads := range []int{1, 2, 8} {
		c := New(env.New(), nil)
		c.Threads = threads
		err := c.Check(mixedStream())
		require.Error(t, err, "threads=%d", threads)
		kind, nm := kindAndName(t, err)
		assert.Equal(t, report.TYPE_MISMATCH, kind, "threads=%d", threads)
		assert.Equal(t, "bad1", nm.String(), "threads=%d", threads)
	}
}

func TestParallelMatchesSerialOnGoodStream(t *testing.T) {
	good := mixedStream()[:2]
	for _, threads := range []int{2, 8} {
		for _, lookahead := range []int{1, 16} {
			c := New(env.New(), nil)
			c.Threads = threads
			c.Lookahead = lookahead
			assert.NoError(t, c.Check(good), "threads=%d lookahead=%d", threads, lookahead)
		}
	}
}

func TestDuplicateRejectedDuringRegistration(t *testing.T) {
	items := []env.Item{
		axiomItem(aN, expr.NewSort(level.One)),
		axiomItem(aN, expr.NewSort(level.One)),
	}
	c := New(env.New(), nil)
	c.Threads = 4
	err := c.Check(items)
	require.Error(t, err)
	kind, nm := kindAndName(t, err)
	assert.Equal(t, report.DUPLICATE_NAME, kind)
	assert.Equal(t, aN, nm)
}
