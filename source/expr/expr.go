package expr

// Expression trees for the checker. Every node carries a cache computed at
// construction: a 64-bit structural digest, the least upper bound on loose de
// Bruijn indices (varBound), and whether any Local occurs underneath
// (hasLocals). The digest gives a cheap negative answer to equality; varBound
// lets instantiation skip subtrees with no loose variables; hasLocals does the
// same for abstraction.

import (
	"sync/atomic"

	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
)

type BinderStyle int

const (
	DEFAULT BinderStyle = iota
	IMPLICIT
	STRICT_IMPLICIT
	INST_IMPLICIT
)

// Binder is the metadata shared by Lambda, Pi, Let and Local: the
// pretty-printing name, the binder style, and the domain type.
type Binder struct {
	Nm    *name.Name
	Style BinderStyle
	Ty    Expr
}

type Expr interface {
	Digest() uint64
	VarBound() int
	HasLocals() bool
	exprNode()
}

type cache struct {
	digest    uint64
	varBound  int
	hasLocals bool
}

func (c cache) Digest() uint64  { return c.digest }
func (c cache) VarBound() int   { return c.varBound }
func (c cache) HasLocals() bool { return c.hasLocals }

type Var struct {
	cache
	Idx int
}

type Sort struct {
	cache
	Lvl *level.Level
}

type Const struct {
	cache
	Nm   *name.Name
	Lvls []*level.Level
}

type App struct {
	cache
	Fn, Arg Expr
}

type Lambda struct {
	cache
	Bind Binder
	Body Expr
}

type Pi struct {
	cache
	Bind Binder
	Body Expr
}

type Let struct {
	cache
	Bind Binder
	Val  Expr
	Body Expr
}

// Local is a free variable with a unique serial, used when a binder is opened
// during inference or equality checking. Serials come from a global counter
// and are never reused.
type Local struct {
	cache
	Bind   Binder
	Serial uint64
}

func (*Var) exprNode()    {}
func (*Sort) exprNode()   {}
func (*Const) exprNode()  {}
func (*App) exprNode()    {}
func (*Lambda) exprNode() {}
func (*Pi) exprNode()     {}
func (*Let) exprNode()    {}
func (*Local) exprNode()  {}

var localSerial atomic.Uint64

func mix(h uint64, k uint64) uint64 {
	h ^= k
	h *= 0x100000001b3
	h ^= h >> 29
	return h
}

func NewVar(idx int) *Var {
	return &Var{
		cache: cache{digest: mix(0xff51afd7ed558ccd, uint64(idx)), varBound: idx + 1},
		Idx:   idx,
	}
}

func NewSort(l *level.Level) *Sort {
	return &Sort{
		cache: cache{digest: mix(0xc4ceb9fe1a85ec53, l.Hash())},
		Lvl:   l,
	}
}

// Prop is Sort 0.
func Prop() *Sort { return NewSort(level.Zero) }

func NewConst(n *name.Name, lvls []*level.Level) *Const {
	h := mix(0x94d049bb133111eb, n.Hash())
	for _, l := range lvls {
		h = mix(h, l.Hash())
	}
	return &Const{cache: cache{digest: h}, Nm: n, Lvls: lvls}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func NewApp(fn, arg Expr) *App {
	return &App{
		cache: cache{
			digest:    mix(mix(0xbf58476d1ce4e5b9, fn.Digest()), arg.Digest()),
			varBound:  max(fn.VarBound(), arg.VarBound()),
			hasLocals: fn.HasLocals() || arg.HasLocals(),
		},
		Fn:  fn,
		Arg: arg,
	}
}

func binderCache(salt uint64, b Binder, body Expr) cache {
	bodyBound := body.VarBound() - 1
	if bodyBound < 0 {
		bodyBound = 0
	}
	return cache{
		digest:    mix(mix(mix(salt, b.Nm.Hash()+uint64(b.Style)), b.Ty.Digest()), body.Digest()),
		varBound:  max(b.Ty.VarBound(), bodyBound),
		hasLocals: b.Ty.HasLocals() || body.HasLocals(),
	}
}

func NewLambda(b Binder, body Expr) *Lambda {
	return &Lambda{cache: binderCache(0x2b2f17d9a7266bdf, b, body), Bind: b, Body: body}
}

func NewPi(b Binder, body Expr) *Pi {
	return &Pi{cache: binderCache(0x71c3ff0b07b5da35, b, body), Bind: b, Body: body}
}

func NewLet(b Binder, val, body Expr) *Let {
	c := binderCache(0x4cf5ad432745937f, b, body)
	c.digest = mix(c.digest, val.Digest())
	c.varBound = max(c.varBound, val.VarBound())
	c.hasLocals = c.hasLocals || val.HasLocals()
	return &Let{cache: c, Bind: b, Val: val, Body: body}
}

// NewLocal mints a fresh local with the next serial. The binder type must be
// var-closed.
func NewLocal(b Binder) *Local {
	serial := localSerial.Add(1)
	return &Local{
		cache:  cache{digest: mix(0x9fb21c651e98df25, serial), hasLocals: true},
		Bind:   b,
		Serial: serial,
	}
}

// SwapType returns a local with the same serial but a different binder type.
// Used when a domain is replaced by its whnf mid-inference.
func (l *Local) SwapType(ty Expr) *Local {
	b := l.Bind
	b.Ty = ty
	return &Local{cache: l.cache, Bind: b, Serial: l.Serial}
}

// AsLocalExpr returns l typed as Expr; handy when building argument slices.
func (l *Local) AsLocalExpr() Expr { return l }

// Eq is structural equality: Locals by serial, Consts by interned name and
// syntactically equal levels. The digest comparison rejects most non-equal
// pairs before any recursion.
func Eq(a, b Expr) bool {
	if a == b {
		return true
	}
	if a.Digest() != b.Digest() {
		return false
	}
	switch x := a.(type) {
	case *Var:
		y, ok := b.(*Var)
		return ok && x.Idx == y.Idx
	case *Sort:
		y, ok := b.(*Sort)
		return ok && level.Eq(x.Lvl, y.Lvl)
	case *Const:
		y, ok := b.(*Const)
		if !ok || x.Nm != y.Nm || len(x.Lvls) != len(y.Lvls) {
			return false
		}
		for i := range x.Lvls {
			if !level.Eq(x.Lvls[i], y.Lvls[i]) {
				return false
			}
		}
		return true
	case *App:
		y, ok := b.(*App)
		return ok && Eq(x.Fn, y.Fn) && Eq(x.Arg, y.Arg)
	case *Lambda:
		y, ok := b.(*Lambda)
		return ok && binderEq(x.Bind, y.Bind) && Eq(x.Body, y.Body)
	case *Pi:
		y, ok := b.(*Pi)
		return ok && binderEq(x.Bind, y.Bind) && Eq(x.Body, y.Body)
	case *Let:
		y, ok := b.(*Let)
		return ok && binderEq(x.Bind, y.Bind) && Eq(x.Val, y.Val) && Eq(x.Body, y.Body)
	case *Local:
		y, ok := b.(*Local)
		return ok && x.Serial == y.Serial
	}
	return false
}

func binderEq(a, b Binder) bool {
	return a.Nm == b.Nm && a.Style == b.Style && Eq(a.Ty, b.Ty)
}
