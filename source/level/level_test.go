package level

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quern-dev/quern/source/name"
)

var (
	u = Param(name.Anon.Str("u"))
	v = Param(name.Anon.Str("v"))
)

func TestLeqBasics(t *testing.T) {
	tests := []struct {
		name string
		l, r *Level
		want bool
	}{
		{"zero refl", Zero, Zero, true},
		{"zero below one", Zero, One, true},
		{"one not below zero", One, Zero, false},
		{"param refl", u, u, true},
		{"param below its succ", u, Succ(u), true},
		{"succ not below itself", Succ(u), u, false},
		{"distinct params incomparable", u, v, false},
		{"zero below param", Zero, u, true},
		{"param not below zero", u, Zero, false},
		{"left of max", u, Max(u, v), true},
		{"right of max", v, Max(u, v), true},
		{"max below max flipped", Max(u, v), Max(v, u), true},
		{"imax below max", IMax(u, v), Max(u, v), true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Leq(tc.l, tc.r), tc.name)
	}
}

func TestMaxSymmetryByAntisymmetry(t *testing.T) {
	a := Max(u, v)
	b := Max(v, u)
	assert.False(t, Eq(a, b), "syntactically different")
	assert.True(t, AntisymmEq(a, b), "semantically the same")
}

func TestIMaxZeroRight(t *testing.T) {
	// imax u 0 collapses to 0 regardless of u.
	assert.True(t, IMax(u, Zero).IsZero())
	assert.True(t, AntisymmEq(IMax(u, Zero), Zero))
	// imax u (v+1) is max u (v+1).
	assert.True(t, AntisymmEq(IMax(u, Succ(v)), Max(u, Succ(v))))
}

func TestIMaxParamSplit(t *testing.T) {
	// imax 1 v <= max 1 v holds: with v := 0 both collapse to 0 on the
	// left; with v := w+1 both are max.
	assert.True(t, Leq(IMax(One, v), Max(One, v)))
	// But imax 1 v is not below v in general... with v := 0 it is 0 <= 0,
	// with v nonzero it is max 1 v; so it does hold.
	assert.True(t, Leq(IMax(One, v), Max(v, One)))
	// max 1 v is not below imax 1 v when v may be zero.
	assert.False(t, Leq(Max(One, v), v))
}

func TestSimplify(t *testing.T) {
	assert.True(t, Eq(IMax(u, Zero).Simplify(), Zero))
	assert.True(t, Eq(IMax(u, Succ(Zero)).Simplify(), Max(u, One)))
	assert.True(t, Eq(Max(Zero, u).Simplify(), u))
	assert.True(t, Eq(Max(Succ(Zero), Succ(Zero)).Simplify(), Succ(Zero)))
}

func TestZeroPredicates(t *testing.T) {
	assert.True(t, Zero.IsZero())
	assert.True(t, One.IsNonzero())
	assert.False(t, u.IsZero())
	assert.False(t, u.IsNonzero())
	assert.True(t, u.MaybeZero())
	assert.True(t, u.MaybeNonzero())
	assert.True(t, Succ(u).IsNonzero())
	assert.True(t, IMax(u, One).IsNonzero())
}

func TestInstantiate(t *testing.T) {
	s := Subst{u.Prm: One}
	got := Max(u, v).Instantiate(s)
	assert.True(t, Eq(got, Max(One, v)))
	assert.True(t, Eq(u.Instantiate(Subst{}), u))

	zipped := MakeSubst([]*Level{u, v}, []*Level{Zero, One})
	assert.True(t, Eq(IMax(u, v).Instantiate(zipped), IMax(Zero, One)))
}

func TestCollectParams(t *testing.T) {
	acc := map[*name.Name]bool{}
	IMax(Succ(u), Max(v, Zero)).CollectParams(acc)
	assert.Len(t, acc, 2)
	assert.True(t, acc[u.Prm])
	assert.True(t, acc[v.Prm])
}

func TestEqLists(t *testing.T) {
	assert.True(t, EqLists([]*Level{Max(u, v)}, []*Level{Max(v, u)}))
	assert.False(t, EqLists([]*Level{u}, []*Level{v}))
	assert.False(t, EqLists([]*Level{u}, []*Level{u, v}))
}
