package env

// Items are what the parser hands to the certifier: the unverified
// declaration commands of an export file, in stream order. Certification
// turns each item into one or more committed Declarations or rejects the run.

import (
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
)

type Item interface {
	ItemName() *name.Name
}

type AxiomItem struct {
	Nm     *name.Name
	Params []*level.Level
	Ty     expr.Expr
}

type DefItem struct {
	Nm     *name.Name
	Params []*level.Level
	Ty     expr.Expr
	Value  expr.Expr
}

// Intro is one constructor of an inductive item, exactly as exported.
type Intro struct {
	Nm *name.Name
	Ty expr.Expr
}

type IndItem struct {
	Nm        *name.Name
	Params    []*level.Level
	Ty        expr.Expr
	NumParams int
	Intros    []Intro
}

// QuotItem asks for the quotient block; it carries no payload because the
// four declarations are fixed.
type QuotItem struct{}

func (i *AxiomItem) ItemName() *name.Name { return i.Nm }
func (i *DefItem) ItemName() *name.Name   { return i.Nm }
func (i *IndItem) ItemName() *name.Name   { return i.Nm }
func (i *QuotItem) ItemName() *name.Name  { return name.Anon.Str("quot") }
