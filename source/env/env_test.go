package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/report"
)

var (
	u     = level.Param(name.Anon.Str("u"))
	aName = name.Anon.Str("A")
)

func axiom(nm *name.Name, params []*level.Level, ty expr.Expr) *Axiom {
	return &Axiom{Info: Info{Nm: nm, Params: params, Ty: ty}}
}

func kindOf(t *testing.T, err error) report.Kind {
	t.Helper()
	re, ok := err.(*report.Error)
	require.True(t, ok, "expected a kernel error, got %v", err)
	return re.Kind
}

func TestCommitAndLookup(t *testing.T) {
	e := New()
	require.NoError(t, e.Commit(axiom(aName, nil, expr.NewSort(level.One))))
	d, ok := e.Lookup(aName)
	require.True(t, ok)
	assert.True(t, d.DeclName() == aName)
	assert.Equal(t, 1, e.Len())
	assert.Equal(t, []*name.Name{aName}, e.Order())
}

func TestDuplicateName(t *testing.T) {
	e := New()
	require.NoError(t, e.Commit(axiom(aName, nil, expr.NewSort(level.One))))
	err := e.Commit(axiom(aName, nil, expr.NewSort(level.One)))
	require.Error(t, err)
	assert.Equal(t, report.DUPLICATE_NAME, kindOf(t, err))
	assert.Equal(t, 1, e.Len(), "the first commit stands")
}

func TestUnknownReference(t *testing.T) {
	e := New()
	err := e.Commit(axiom(name.Anon.Str("B"), nil, expr.NewConst(aName, nil)))
	require.Error(t, err)
	assert.Equal(t, report.UNKNOWN_REFERENCE, kindOf(t, err))
}

func TestUniverseArity(t *testing.T) {
	e := New()
	require.NoError(t, e.Commit(axiom(aName, []*level.Level{u}, expr.NewSort(u))))
	// A takes one universe argument; give it none.
	err := e.Commit(axiom(name.Anon.Str("B"), nil, expr.NewConst(aName, nil)))
	require.Error(t, err)
	assert.Equal(t, report.UNIVERSE_ARITY, kindOf(t, err))
}

func TestUnboundLevelParam(t *testing.T) {
	e := New()
	err := e.Commit(axiom(aName, nil, expr.NewSort(u)))
	require.Error(t, err)
	assert.Equal(t, report.UNKNOWN_REFERENCE, kindOf(t, err))
}

func TestUnboundLevelParamInValue(t *testing.T) {
	e := New()
	require.NoError(t, e.Commit(axiom(aName, []*level.Level{u}, expr.NewSort(u))))
	// The value mentions u but the definition binds no universe parameters.
	def := &Definition{
		Info:  Info{Nm: name.Anon.Str("B"), Ty: expr.NewSort(level.One)},
		Value: expr.NewConst(aName, []*level.Level{u}),
	}
	err := e.Commit(def)
	require.Error(t, err)
	assert.Equal(t, report.UNKNOWN_REFERENCE, kindOf(t, err))
	assert.Equal(t, 1, e.Len())
}

func TestDefinitionHeight(t *testing.T) {
	e := New()
	require.NoError(t, e.Commit(axiom(aName, nil, expr.NewSort(level.One))))
	def := &Definition{
		Info:   Info{Nm: name.Anon.Str("B"), Ty: expr.NewSort(level.One)},
		Value:  expr.NewConst(aName, nil),
		Height: 1,
	}
	require.NoError(t, e.Commit(def))
	assert.Equal(t, 1, e.Height(def.Nm))
	assert.Equal(t, 0, e.Height(aName), "axioms have no height")
}

func TestRecursorMajorIdx(t *testing.T) {
	r := &Recursor{NumParams: 2, NumIndices: 1, NumMinors: 3}
	assert.Equal(t, 7, r.MajorIdx())
	_, ok := r.Rule(aName)
	assert.False(t, ok)
}

func TestNotations(t *testing.T) {
	e := New()
	e.AddNotation(aName, Notation{Kind: INFIX, Priority: 50, Symbol: "∧"})
	nt, ok := e.NotationFor(aName)
	require.True(t, ok)
	assert.Equal(t, "∧", nt.Symbol)
	_, ok = e.NotationFor(name.Anon.Str("B"))
	assert.False(t, ok)
}
