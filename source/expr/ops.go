package expr

// The de Bruijn operations: substitution of loose variables, abstraction of
// locals back into variables, universe-parameter instantiation, and the
// fold/unfold helpers for application spines and binder telescopes.

import (
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
)

type instKey struct {
	e      Expr
	offset int
}

// Instantiate substitutes the loose variables of e: Var(i) becomes subs[i]
// when i < len(subs), and deeper variables are lowered by len(subs). So
// subs[0] stands for the innermost binder being eliminated. The substitutes
// must be var-closed, which is an invariant of the checker: open subterms are
// always expressed through Locals.
func Instantiate(e Expr, subs ...Expr) Expr {
	if len(subs) == 0 || e.VarBound() == 0 {
		return e
	}
	return instCore(e, 0, subs, map[instKey]Expr{})
}

func instCore(e Expr, offset int, subs []Expr, memo map[instKey]Expr) Expr {
	if e.VarBound() <= offset {
		return e
	}
	key := instKey{e, offset}
	if r, ok := memo[key]; ok {
		return r
	}
	var r Expr
	switch x := e.(type) {
	case *Var:
		switch {
		case x.Idx < offset:
			r = x
		case x.Idx-offset < len(subs):
			r = subs[x.Idx-offset]
		default:
			r = NewVar(x.Idx - len(subs))
		}
	case *App:
		r = NewApp(instCore(x.Fn, offset, subs, memo), instCore(x.Arg, offset, subs, memo))
	case *Lambda:
		b := x.Bind
		b.Ty = instCore(b.Ty, offset, subs, memo)
		r = NewLambda(b, instCore(x.Body, offset+1, subs, memo))
	case *Pi:
		b := x.Bind
		b.Ty = instCore(b.Ty, offset, subs, memo)
		r = NewPi(b, instCore(x.Body, offset+1, subs, memo))
	case *Let:
		b := x.Bind
		b.Ty = instCore(b.Ty, offset, subs, memo)
		r = NewLet(b, instCore(x.Val, offset, subs, memo), instCore(x.Body, offset+1, subs, memo))
	default:
		// Sort, Const and Local have varBound 0 and were caught above.
		r = e
	}
	memo[key] = r
	return r
}

// Abstract is the inverse of opening a telescope: the local with serial
// locals[i].Serial becomes Var(offset + i), where offset counts the binders
// passed on the way down. locals[0] is therefore the innermost binder of the
// telescope being rebuilt.
func Abstract(e Expr, locals ...*Local) Expr {
	if len(locals) == 0 || !e.HasLocals() {
		return e
	}
	return abstractCore(e, 0, locals)
}

func abstractCore(e Expr, offset int, locals []*Local) Expr {
	if !e.HasLocals() {
		return e
	}
	switch x := e.(type) {
	case *Local:
		for i, l := range locals {
			if l.Serial == x.Serial {
				return NewVar(offset + i)
			}
		}
		return x
	case *App:
		return NewApp(abstractCore(x.Fn, offset, locals), abstractCore(x.Arg, offset, locals))
	case *Lambda:
		b := x.Bind
		b.Ty = abstractCore(b.Ty, offset, locals)
		return NewLambda(b, abstractCore(x.Body, offset+1, locals))
	case *Pi:
		b := x.Bind
		b.Ty = abstractCore(b.Ty, offset, locals)
		return NewPi(b, abstractCore(x.Body, offset+1, locals))
	case *Let:
		b := x.Bind
		b.Ty = abstractCore(b.Ty, offset, locals)
		return NewLet(b, abstractCore(x.Val, offset, locals), abstractCore(x.Body, offset+1, locals))
	default:
		return e
	}
}

// InstantiateLParams substitutes universe parameters throughout e, including
// inside Local binder types.
func InstantiateLParams(e Expr, s level.Subst) Expr {
	if len(s) == 0 {
		return e
	}
	switch x := e.(type) {
	case *Var:
		return x
	case *Sort:
		return NewSort(x.Lvl.Instantiate(s))
	case *Const:
		return NewConst(x.Nm, level.InstantiateMany(x.Lvls, s))
	case *App:
		return NewApp(InstantiateLParams(x.Fn, s), InstantiateLParams(x.Arg, s))
	case *Lambda:
		b := x.Bind
		b.Ty = InstantiateLParams(b.Ty, s)
		return NewLambda(b, InstantiateLParams(x.Body, s))
	case *Pi:
		b := x.Bind
		b.Ty = InstantiateLParams(b.Ty, s)
		return NewPi(b, InstantiateLParams(x.Body, s))
	case *Let:
		b := x.Bind
		b.Ty = InstantiateLParams(b.Ty, s)
		return NewLet(b, InstantiateLParams(x.Val, s), InstantiateLParams(x.Body, s))
	default:
		l := x.(*Local)
		return l.SwapType(InstantiateLParams(l.Bind.Ty, s))
	}
}

// FoldApps builds (fn a b c ...) left to right.
func FoldApps(fn Expr, args ...Expr) Expr {
	for _, a := range args {
		fn = NewApp(fn, a)
	}
	return fn
}

// FoldAppsLocals is FoldApps over a slice of locals.
func FoldAppsLocals(fn Expr, locals []*Local) Expr {
	for _, l := range locals {
		fn = NewApp(fn, l)
	}
	return fn
}

// UnfoldApps strips an application spine, returning the head and the
// arguments in application order.
func UnfoldApps(e Expr) (Expr, []Expr) {
	var args []Expr
	for {
		a, ok := e.(*App)
		if !ok {
			break
		}
		args = append(args, a.Arg)
		e = a.Fn
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return e, args
}

// ApplyPi closes body over one local, producing a Pi.
func ApplyPi(l *Local, body Expr) *Pi {
	return NewPi(l.Bind, Abstract(body, l))
}

// ApplyLambda closes body over one local, producing a Lambda.
func ApplyLambda(l *Local, body Expr) *Lambda {
	return NewLambda(l.Bind, Abstract(body, l))
}

// FoldPis closes body over the telescope locals, given in binding order
// (outermost first).
func FoldPis(locals []*Local, body Expr) Expr {
	for i := len(locals) - 1; i >= 0; i-- {
		body = ApplyPi(locals[i], body)
	}
	return body
}

// FoldLambdas closes body over the telescope locals, outermost first.
func FoldLambdas(locals []*Local, body Expr) Expr {
	for i := len(locals) - 1; i >= 0; i-- {
		body = ApplyLambda(locals[i], body)
	}
	return body
}

// Arrow is the non-dependent Pi a -> b.
func Arrow(a, b Expr) *Pi {
	return NewPi(Binder{Nm: name.Anon, Ty: a}, liftLoose(b, 1, 0))
}

// liftLoose raises loose variables at or above cutoff by n.
func liftLoose(e Expr, n, cutoff int) Expr {
	if e.VarBound() <= cutoff {
		return e
	}
	switch x := e.(type) {
	case *Var:
		if x.Idx < cutoff {
			return x
		}
		return NewVar(x.Idx + n)
	case *App:
		return NewApp(liftLoose(x.Fn, n, cutoff), liftLoose(x.Arg, n, cutoff))
	case *Lambda:
		b := x.Bind
		b.Ty = liftLoose(b.Ty, n, cutoff)
		return NewLambda(b, liftLoose(x.Body, n, cutoff+1))
	case *Pi:
		b := x.Bind
		b.Ty = liftLoose(b.Ty, n, cutoff)
		return NewPi(b, liftLoose(x.Body, n, cutoff+1))
	case *Let:
		b := x.Bind
		b.Ty = liftLoose(b.Ty, n, cutoff)
		return NewLet(b, liftLoose(x.Val, n, cutoff), liftLoose(x.Body, n, cutoff+1))
	default:
		return e
	}
}

// CollectConstNames adds every constant name occurring in e to acc.
func CollectConstNames(e Expr, acc map[*name.Name]bool) {
	switch x := e.(type) {
	case *Const:
		acc[x.Nm] = true
	case *App:
		CollectConstNames(x.Fn, acc)
		CollectConstNames(x.Arg, acc)
	case *Lambda:
		CollectConstNames(x.Bind.Ty, acc)
		CollectConstNames(x.Body, acc)
	case *Pi:
		CollectConstNames(x.Bind.Ty, acc)
		CollectConstNames(x.Body, acc)
	case *Let:
		CollectConstNames(x.Bind.Ty, acc)
		CollectConstNames(x.Val, acc)
		CollectConstNames(x.Body, acc)
	case *Local:
		CollectConstNames(x.Bind.Ty, acc)
	}
}

// CollectLevelParams adds every universe parameter occurring in e to acc.
func CollectLevelParams(e Expr, acc map[*name.Name]bool) {
	switch x := e.(type) {
	case *Sort:
		x.Lvl.CollectParams(acc)
	case *Const:
		for _, l := range x.Lvls {
			l.CollectParams(acc)
		}
	case *App:
		CollectLevelParams(x.Fn, acc)
		CollectLevelParams(x.Arg, acc)
	case *Lambda:
		CollectLevelParams(x.Bind.Ty, acc)
		CollectLevelParams(x.Body, acc)
	case *Pi:
		CollectLevelParams(x.Bind.Ty, acc)
		CollectLevelParams(x.Body, acc)
	case *Let:
		CollectLevelParams(x.Bind.Ty, acc)
		CollectLevelParams(x.Val, acc)
		CollectLevelParams(x.Body, acc)
	case *Local:
		CollectLevelParams(x.Bind.Ty, acc)
	}
}

// LevelParamsSubset reports whether every universe parameter in e is named in
// declared.
func LevelParamsSubset(e Expr, declared []*level.Level) bool {
	used := map[*name.Name]bool{}
	CollectLevelParams(e, used)
	have := map[*name.Name]bool{}
	for _, p := range declared {
		have[p.Prm] = true
	}
	for n := range used {
		if !have[n] {
			return false
		}
	}
	return true
}
