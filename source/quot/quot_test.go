package quot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quern-dev/quern/source/certify"
	"github.com/quern-dev/quern/source/checker"
	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/quot"
	"github.com/quern-dev/quern/source/report"
)

var (
	eqN   = name.Anon.Str("eq")
	tN    = name.Anon.Str("T")
	rN    = name.Anon.Str("r")
	xN    = name.Anon.Str("x")
	fnN   = name.Anon.Str("f")
	hypN  = name.Anon.Str("h")
	predN = name.Anon.Str("B")
	indHN = name.Anon.Str("ih")
)

func constOf(n *name.Name, lvls ...*level.Level) *expr.Const { return expr.NewConst(n, lvls) }

func eqItem() *env.IndItem {
	u := level.Param(name.Anon.Str("u"))
	eqTy := expr.NewPi(expr.Binder{Nm: name.Anon.Str("α"), Ty: expr.NewSort(u)},
		expr.NewPi(expr.Binder{Nm: name.Anon.Str("a"), Ty: expr.NewVar(0)},
			expr.NewPi(expr.Binder{Nm: name.Anon.Str("b"), Ty: expr.NewVar(1)},
				expr.Prop())))
	reflTy := expr.NewPi(expr.Binder{Nm: name.Anon.Str("α"), Ty: expr.NewSort(u)},
		expr.NewPi(expr.Binder{Nm: name.Anon.Str("a"), Ty: expr.NewVar(0)},
			expr.FoldApps(constOf(eqN, u), expr.NewVar(1), expr.NewVar(0), expr.NewVar(0))))
	return &env.IndItem{
		Nm: eqN, Params: []*level.Level{u}, Ty: eqTy, NumParams: 2,
		Intros: []env.Intro{{Nm: eqN.Str("refl"), Ty: reflTy}},
	}
}

// quotScene commits eq, an opaque type with a relation and an inhabitant, the
// quotient block, and everything a lift or ind redex needs.
func quotScene(t *testing.T) *env.Env {
	t.Helper()
	tC := constOf(tN)
	relTy := expr.Arrow(tC, expr.Arrow(tC, expr.Prop()))
	quotApp := expr.FoldApps(constOf(quot.QuotName, level.One), tC, constOf(rN))
	soundTy := expr.NewPi(expr.Binder{Nm: name.Anon.Str("a"), Ty: tC},
		expr.NewPi(expr.Binder{Nm: name.Anon.Str("b"), Ty: tC},
			expr.NewPi(expr.Binder{Nm: name.Anon.Str("p"), Ty: expr.FoldApps(constOf(rN), expr.NewVar(1), expr.NewVar(0))},
				expr.FoldApps(constOf(eqN, level.One), tC,
					expr.NewApp(constOf(fnN), expr.NewVar(2)),
					expr.NewApp(constOf(fnN), expr.NewVar(1))))))
	items := []env.Item{
		eqItem(),
		&env.AxiomItem{Nm: tN, Ty: expr.NewSort(level.One)},
		&env.AxiomItem{Nm: rN, Ty: relTy},
		&env.AxiomItem{Nm: xN, Ty: tC},
		&env.QuotItem{},
		&env.AxiomItem{Nm: fnN, Ty: expr.Arrow(tC, tC)},
		&env.AxiomItem{Nm: hypN, Ty: soundTy},
		&env.AxiomItem{Nm: predN, Ty: expr.Arrow(quotApp, expr.Prop())},
		&env.AxiomItem{Nm: indHN, Ty: expr.NewPi(expr.Binder{Nm: name.Anon.Str("a"), Ty: tC},
			expr.NewApp(constOf(predN),
				expr.FoldApps(constOf(quot.MkName, level.One), tC, constOf(rN), expr.NewVar(0))))},
	}
	e := env.New()
	require.NoError(t, certify.New(e, nil).Check(items))
	return e
}

func TestDeclsRefuseWithoutEq(t *testing.T) {
	_, err := quot.Decls(env.New())
	require.Error(t, err)
	re, ok := err.(*report.Error)
	require.True(t, ok)
	assert.Equal(t, report.UNKNOWN_REFERENCE, re.Kind)
}

func TestBlockShape(t *testing.T) {
	e := quotScene(t)
	for _, n := range []*name.Name{quot.QuotName, quot.MkName, quot.LiftName, quot.IndName} {
		d, ok := e.Lookup(n)
		require.True(t, ok, n.String())
		_, isQuot := d.(*env.Quot)
		assert.True(t, isQuot, n.String())
	}
	lift, _ := e.Lookup(quot.LiftName)
	assert.Len(t, lift.LevelParams(), 2, "lift is polymorphic in source and target universes")
	mk, _ := e.Lookup(quot.MkName)
	assert.Len(t, mk.LevelParams(), 1)
}

func TestLiftComputesOnMk(t *testing.T) {
	e := quotScene(t)
	ck := checker.New(e)
	tC := constOf(tN)
	class := expr.FoldApps(constOf(quot.MkName, level.One), tC, constOf(rN), constOf(xN))
	redex := expr.FoldApps(constOf(quot.LiftName, level.One, level.One),
		tC, constOf(rN), tC, constOf(fnN), constOf(hypN), class)
	got, err := ck.Whnf(redex)
	require.NoError(t, err)
	want := expr.NewApp(constOf(fnN), constOf(xN))
	assert.True(t, expr.Eq(got, want), "lift f h (mk r x) reduces to f x")
}

func TestIndComputesOnMk(t *testing.T) {
	e := quotScene(t)
	ck := checker.New(e)
	tC := constOf(tN)
	class := expr.FoldApps(constOf(quot.MkName, level.One), tC, constOf(rN), constOf(xN))
	redex := expr.FoldApps(constOf(quot.IndName, level.One),
		tC, constOf(rN), constOf(predN), constOf(indHN), class)
	got, err := ck.Whnf(redex)
	require.NoError(t, err)
	want := expr.NewApp(constOf(indHN), constOf(xN))
	assert.True(t, expr.Eq(got, want), "ind h (mk r x) reduces to h x")
}

func TestLiftStuckOnOpaqueClass(t *testing.T) {
	e := quotScene(t)
	require.NoError(t, e.Commit(&env.Axiom{Info: env.Info{
		Nm: name.Anon.Str("q0"),
		Ty: expr.FoldApps(constOf(quot.QuotName, level.One), constOf(tN), constOf(rN)),
	}}))
	ck := checker.New(e)
	tC := constOf(tN)
	redex := expr.FoldApps(constOf(quot.LiftName, level.One, level.One),
		tC, constOf(rN), tC, constOf(fnN), constOf(hypN), constOf(name.Anon.Str("q0")))
	got, err := ck.Whnf(redex)
	require.NoError(t, err)
	assert.True(t, expr.Eq(got, redex), "no constructor, no reduction")
}
