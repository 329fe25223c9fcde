package pretty

// A small pretty printer for declarations and terms: dotted names, binder
// styles, and the notation recorded from the export stream. It is only used
// at the edges (reports, --print, the inspector), never by the kernel.

import (
	"strconv"
	"strings"

	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
)

type Printer struct {
	Env *env.Env
}

func New(e *env.Env) *Printer { return &Printer{Env: e} }

// Expr renders e with binder names taken from the term itself.
func (p *Printer) Expr(e expr.Expr) string {
	var sb strings.Builder
	p.expr(&sb, e, nil, false)
	return sb.String()
}

// expr renders e into sb; binders holds the names of the enclosing binders,
// innermost last. paren asks for parentheses around anything compound.
func (p *Printer) expr(sb *strings.Builder, e expr.Expr, binders []string, paren bool) {
	switch x := e.(type) {
	case *expr.Var:
		if i := len(binders) - 1 - x.Idx; i >= 0 {
			sb.WriteString(binders[i])
		} else {
			sb.WriteString("#")
			sb.WriteString(strconv.Itoa(x.Idx))
		}
	case *expr.Sort:
		if x.Lvl.Kind == level.ZERO {
			sb.WriteString("Prop")
			return
		}
		sb.WriteString("Sort ")
		sb.WriteString(x.Lvl.String())
	case *expr.Const:
		sb.WriteString(x.Nm.String())
		if len(x.Lvls) > 0 {
			sb.WriteString(".{")
			for i, l := range x.Lvls {
				if i > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(l.String())
			}
			sb.WriteString("}")
		}
	case *expr.App:
		p.app(sb, x, binders, paren)
	case *expr.Lambda:
		p.binderTelescope(sb, x, binders, paren, false)
	case *expr.Pi:
		p.binderTelescope(sb, x, binders, paren, true)
	case *expr.Let:
		if paren {
			sb.WriteString("(")
		}
		sb.WriteString("let ")
		sb.WriteString(x.Bind.Nm.String())
		sb.WriteString(" : ")
		p.expr(sb, x.Bind.Ty, binders, false)
		sb.WriteString(" := ")
		p.expr(sb, x.Val, binders, false)
		sb.WriteString(" in ")
		p.expr(sb, x.Body, append(binders, x.Bind.Nm.String()), false)
		if paren {
			sb.WriteString(")")
		}
	case *expr.Local:
		sb.WriteString(x.Bind.Nm.String())
	}
}

func (p *Printer) app(sb *strings.Builder, a *expr.App, binders []string, paren bool) {
	fn, args := expr.UnfoldApps(a)
	if c, ok := fn.(*expr.Const); ok && p.Env != nil {
		if nt, ok := p.Env.NotationFor(c.Nm); ok && p.notated(sb, nt, args, binders) {
			return
		}
	}
	if paren {
		sb.WriteString("(")
	}
	p.expr(sb, fn, binders, true)
	for _, arg := range args {
		sb.WriteString(" ")
		p.expr(sb, arg, binders, true)
	}
	if paren {
		sb.WriteString(")")
	}
}

// notated renders an application through its recorded notation if the arity
// fits, taking the notation's operands from the end of the spine.
func (p *Printer) notated(sb *strings.Builder, nt env.Notation, args []expr.Expr, binders []string) bool {
	switch nt.Kind {
	case env.INFIX:
		if len(args) < 2 {
			return false
		}
		sb.WriteString("(")
		p.expr(sb, args[len(args)-2], binders, true)
		sb.WriteString(" ")
		sb.WriteString(nt.Symbol)
		sb.WriteString(" ")
		p.expr(sb, args[len(args)-1], binders, true)
		sb.WriteString(")")
	case env.PREFIX:
		if len(args) < 1 {
			return false
		}
		sb.WriteString(nt.Symbol)
		p.expr(sb, args[len(args)-1], binders, true)
	default:
		if len(args) < 1 {
			return false
		}
		p.expr(sb, args[len(args)-1], binders, true)
		sb.WriteString(nt.Symbol)
	}
	return true
}

var styleBrackets = map[expr.BinderStyle][2]string{
	expr.DEFAULT:         {"(", ")"},
	expr.IMPLICIT:        {"{", "}"},
	expr.STRICT_IMPLICIT: {"{{", "}}"},
	expr.INST_IMPLICIT:   {"[", "]"},
}

func (p *Printer) binderTelescope(sb *strings.Builder, e expr.Expr, binders []string, paren, pis bool) {
	if paren {
		sb.WriteString("(")
	}
	if pis {
		sb.WriteString("Π ")
	} else {
		sb.WriteString("λ ")
	}
	cur := e
	first := true
	for {
		var b expr.Binder
		var body expr.Expr
		if pis {
			pi, ok := cur.(*expr.Pi)
			if !ok {
				break
			}
			b, body = pi.Bind, pi.Body
		} else {
			lam, ok := cur.(*expr.Lambda)
			if !ok {
				break
			}
			b, body = lam.Bind, lam.Body
		}
		if !first {
			sb.WriteString(" ")
		}
		first = false
		br := styleBrackets[b.Style]
		sb.WriteString(br[0])
		sb.WriteString(b.Nm.String())
		sb.WriteString(" : ")
		p.expr(sb, b.Ty, binders, false)
		sb.WriteString(br[1])
		binders = append(binders, b.Nm.String())
		cur = body
	}
	sb.WriteString(", ")
	p.expr(sb, cur, binders, false)
	if paren {
		sb.WriteString(")")
	}
}

// Declaration renders d the way it would have been written.
func (p *Printer) Declaration(d env.Declaration) string {
	var sb strings.Builder
	switch d.(type) {
	case *env.Axiom:
		sb.WriteString("axiom ")
	case *env.Definition:
		sb.WriteString("def ")
	case *env.Inductive:
		sb.WriteString("inductive ")
	case *env.Constructor:
		sb.WriteString("constructor ")
	case *env.Recursor:
		sb.WriteString("recursor ")
	case *env.Quot:
		sb.WriteString("quotient ")
	}
	sb.WriteString(d.DeclName().String())
	if params := d.LevelParams(); len(params) > 0 {
		sb.WriteString(".{")
		for i, l := range params {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(l.String())
		}
		sb.WriteString("}")
	}
	sb.WriteString(" : ")
	sb.WriteString(p.Expr(d.DeclType()))
	if def, ok := d.(*env.Definition); ok {
		sb.WriteString(" := ")
		sb.WriteString(p.Expr(def.Value))
	}
	return sb.String()
}
