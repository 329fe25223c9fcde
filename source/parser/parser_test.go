package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quern-dev/quern/source/certify"
	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/name"
)

// export covers every command class: hierarchical names, universe
// construction, the expression nodes, all four declaration kinds minus #QUOT,
// and a notation line.
const export = `
1 #NS 0 A
1 #US 0
0 #ES 1
#AX 1 0
2 #NS 0 a
1 #EC 1
#AX 2 1
3 #NS 0 x
4 #NS 0 f
2 #EC 2
3 #EP #BD 3 1 1
4 #EV 0
5 #EL #BD 3 1 4
#DEF 4 3 5
5 #NS 0 u
2 #UP 5
6 #ES 2
6 #NS 0 poly
#AX 6 6 5
7 #NS 0 bool
8 #NS 7 tt
9 #NS 7 ff
7 #EC 7
#IND 0 7 0 2 8 7 9 7
#INFIX 4 25 ∘
`

func parseAll(t *testing.T, text string) (*env.Env, []env.Item) {
	t.Helper()
	e := env.New()
	var items []env.Item
	err := New(e).Parse(strings.NewReader(text), func(it env.Item) error {
		items = append(items, it)
		return nil
	})
	require.NoError(t, err)
	return e, items
}

func TestEndToEnd(t *testing.T) {
	e, items := parseAll(t, export)
	require.Len(t, items, 5)
	require.NoError(t, certify.New(e, nil).Check(items))

	boolN := name.Anon.Str("bool")
	for _, s := range []string{"A", "a", "f", "poly"} {
		assert.True(t, e.Contains(name.Anon.Str(s)), s)
	}
	for _, n := range []*name.Name{boolN, boolN.Str("tt"), boolN.Str("ff"), boolN.Str("rec")} {
		assert.True(t, e.Contains(n), n.String())
	}

	poly, _ := e.Lookup(name.Anon.Str("poly"))
	assert.Len(t, poly.LevelParams(), 1)

	f, _ := e.Lookup(name.Anon.Str("f"))
	def, ok := f.(*env.Definition)
	require.True(t, ok)
	_, isLam := def.Value.(*expr.Lambda)
	assert.True(t, isLam)

	nt, ok := e.NotationFor(name.Anon.Str("f"))
	require.True(t, ok)
	assert.Equal(t, env.INFIX, nt.Kind)
	assert.Equal(t, 25, nt.Priority)
	assert.Equal(t, "∘", nt.Symbol)
}

func TestQuotCommand(t *testing.T) {
	_, items := parseAll(t, "#QUOT\n")
	require.Len(t, items, 1)
	_, ok := items[0].(*env.QuotItem)
	assert.True(t, ok)
}

func TestSparseIndexRejected(t *testing.T) {
	err := New(env.New()).Parse(strings.NewReader("2 #NS 0 A\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
	assert.Contains(t, err.Error(), "name index 2 out of order, expected 1")
}

func TestForwardReferenceRejected(t *testing.T) {
	err := New(env.New()).Parse(strings.NewReader("#AX 5 0\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `bad name index "5"`)
}

func TestUnrecognizedCommand(t *testing.T) {
	err := New(env.New()).Parse(strings.NewReader("1 #XX 0 a\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unrecognized command "#XX"`)
}

func TestEmitErrorReturnedAsIs(t *testing.T) {
	sentinel := errors.New("stop")
	err := New(env.New()).Parse(strings.NewReader("1 #NS 0 A\n1 #US 0\n0 #ES 1\n#AX 1 0\n"),
		func(env.Item) error { return sentinel })
	assert.Same(t, sentinel, err)
}

func TestBlankLinesAndPaddingIgnored(t *testing.T) {
	_, items := parseAll(t, "\n\t\n  1 #NS 0 A \r\n1 #US 0\n0 #ES 1\n#AX 1 0\n")
	assert.Len(t, items, 1)
}

func TestLineNumbersInErrors(t *testing.T) {
	err := New(env.New()).Parse(strings.NewReader("1 #NS 0 A\n\n3 #NS 0 b\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}
