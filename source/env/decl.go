package env

// The declaration forms a certified environment can hold. Recursors are never
// read from an export file; they are derived from their inductive family and
// committed alongside it.

import (
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
)

type Declaration interface {
	DeclName() *name.Name
	LevelParams() []*level.Level
	DeclType() expr.Expr
}

// Info is the header every declaration shares: its name, its universe
// parameters (all of Kind PARAM), and its type.
type Info struct {
	Nm     *name.Name
	Params []*level.Level
	Ty     expr.Expr
}

func (i Info) DeclName() *name.Name        { return i.Nm }
func (i Info) LevelParams() []*level.Level { return i.Params }
func (i Info) DeclType() expr.Expr         { return i.Ty }

type Axiom struct {
	Info
}

type Definition struct {
	Info
	Value expr.Expr
	// Height orders definitions for delta unfolding: 1 + the max height of
	// the definitions the value refers to.
	Height int
}

type Inductive struct {
	Info
	NumParams int
	CtorNames []*name.Name
}

type Constructor struct {
	Info
	Family    *name.Name
	NumParams int
	NumFields int
}

// RecRule is one computation rule of a recursor: when the major premise is
// headed by Ctor, the application rewrites through RHS, a lambda telescope
// over the parameters, the motive, the minor premises and the constructor
// fields.
type RecRule struct {
	Ctor      *name.Name
	NumFields int
	RHS       expr.Expr
}

type Recursor struct {
	Info
	NumParams  int
	NumIndices int
	NumMinors  int
	// K marks a subsingleton eliminator: the major premise may be rewritten
	// to the unique constructor when the types agree definitionally.
	K     bool
	Rules []RecRule
}

// MajorIdx is the argument position of the major premise: after the
// parameters, the motive, the minor premises and the indices.
func (r *Recursor) MajorIdx() int {
	return r.NumParams + 1 + r.NumMinors + r.NumIndices
}

func (r *Recursor) Rule(ctor *name.Name) (RecRule, bool) {
	for _, rule := range r.Rules {
		if rule.Ctor == ctor {
			return rule, true
		}
	}
	return RecRule{}, false
}

type QuotKind int

const (
	QUOT_TYPE QuotKind = iota
	QUOT_MK
	QUOT_LIFT
	QUOT_IND
)

type Quot struct {
	Info
	QKind QuotKind
}
