package name

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterning(t *testing.T) {
	a := Anon.Str("nat").Str("rec")
	b := Anon.Str("nat").Str("rec")
	assert.True(t, a == b, "equal components should intern to the same pointer")
	assert.Equal(t, a.Hash(), b.Hash())

	c := Anon.Str("nat").Num(0)
	d := Anon.Str("nat").Num(0)
	assert.True(t, c == d)
	assert.False(t, a == c)
	assert.False(t, Anon.Str("0") == Anon.Num(0), "string and numeric components are distinct")
}

func TestFromString(t *testing.T) {
	tests := []struct {
		in   string
		want *Name
	}{
		{"nat", Anon.Str("nat")},
		{"nat.rec", Anon.Str("nat").Str("rec")},
		{"foo.2.bar", Anon.Str("foo").Num(2).Str("bar")},
		{"", Anon},
	}
	for _, tc := range tests {
		assert.True(t, FromString(tc.in) == tc.want, tc.in)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "nat.rec", Anon.Str("nat").Str("rec").String())
	assert.Equal(t, "foo.2", Anon.Str("foo").Num(2).String())
	assert.Equal(t, "[anonymous]", Anon.String())
}

func TestParent(t *testing.T) {
	n := Anon.Str("a").Str("b")
	assert.True(t, n.Parent() == Anon.Str("a"))
	assert.True(t, Anon.Parent() == Anon)
}

func TestFresh(t *testing.T) {
	l := Anon.Str("l")
	taken := map[*Name]bool{}
	assert.True(t, Fresh(l, taken) == l)
	taken[l] = true
	assert.True(t, Fresh(l, taken) == l.Num(0))
	taken[l.Num(0)] = true
	assert.True(t, Fresh(l, taken) == l.Num(1))
}
