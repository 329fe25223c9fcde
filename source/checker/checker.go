package checker

// Type inference. A Checker wraps one environment with per-instance caches
// and a recursion guard; checkers are cheap and single-goroutine, the
// parallel certifier makes one per task.

import (
	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/guard"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/report"
)

type Checker struct {
	env   *env.Env
	guard guard.Guard
	// Two inference caches: results computed with argument checking on can
	// serve infer-only queries, not the other way round.
	infChecked   map[expr.Expr]expr.Expr
	infUnchecked map[expr.Expr]expr.Expr
	whnfCache    map[expr.Expr]expr.Expr
	eqCache      map[[2]expr.Expr]bool
}

func New(e *env.Env) *Checker {
	return &Checker{
		env:          e,
		infChecked:   map[expr.Expr]expr.Expr{},
		infUnchecked: map[expr.Expr]expr.Expr{},
		whnfCache:    map[expr.Expr]expr.Expr{},
		eqCache:      map[[2]expr.Expr]bool{},
	}
}

func (ck *Checker) Env() *env.Env { return ck.env }

// Infer computes the type of e, checking application arguments and binder
// domains along the way.
func (ck *Checker) Infer(e expr.Expr) (expr.Expr, error) {
	return ck.infer(e, true)
}

// InferOnly computes the type of e assuming e is already known well-typed.
// Reduction uses this for terms it has produced itself.
func (ck *Checker) InferOnly(e expr.Expr) (expr.Expr, error) {
	return ck.infer(e, false)
}

// CheckType requires e to have type ty, up to definitional equality.
func (ck *Checker) CheckType(e, ty expr.Expr) error {
	inferred, err := ck.Infer(e)
	if err != nil {
		return err
	}
	ok, err := ck.IsDefEq(ty, inferred)
	if err != nil {
		return err
	}
	if !ok {
		return report.Mismatch(ty, inferred)
	}
	return nil
}

// InferSortOf requires e to be a type and returns the level of its sort.
func (ck *Checker) InferSortOf(e expr.Expr) (*level.Level, error) {
	ty, err := ck.Infer(e)
	if err != nil {
		return nil, err
	}
	w, err := ck.Whnf(ty)
	if err != nil {
		return nil, err
	}
	s, ok := w.(*expr.Sort)
	if !ok {
		return nil, &report.Error{Kind: report.TYPE_MISMATCH, Left: e, Right: ty, Message: "expected a sort"}
	}
	return s.Lvl, nil
}

func (ck *Checker) infer(e expr.Expr, check bool) (expr.Expr, error) {
	if t, ok := ck.infChecked[e]; ok {
		return t, nil
	}
	if !check {
		if t, ok := ck.infUnchecked[e]; ok {
			return t, nil
		}
	}
	var t expr.Expr
	err := ck.guard.Step(func() error {
		var err error
		t, err = ck.inferCore(e, check)
		return err
	})
	if err != nil {
		return nil, err
	}
	if check {
		ck.infChecked[e] = t
	} else {
		ck.infUnchecked[e] = t
	}
	return t, nil
}

func (ck *Checker) inferCore(e expr.Expr, check bool) (expr.Expr, error) {
	switch x := e.(type) {
	case *expr.Var:
		// Loose variables never reach inference; open subterms are expressed
		// through Locals.
		return nil, report.New(report.UNKNOWN_REFERENCE, "loose variable during inference")
	case *expr.Sort:
		return expr.NewSort(level.Succ(x.Lvl)), nil
	case *expr.Const:
		return ck.inferConst(x)
	case *expr.Local:
		return x.Bind.Ty, nil
	case *expr.App:
		return ck.inferApps(x, check)
	case *expr.Lambda:
		return ck.inferLambda(x, check)
	case *expr.Pi:
		return ck.inferPi(x)
	default:
		let := x.(*expr.Let)
		if check {
			if _, err := ck.InferSortOf(let.Bind.Ty); err != nil {
				return nil, err
			}
			if err := ck.CheckType(let.Val, let.Bind.Ty); err != nil {
				return nil, err
			}
		}
		return ck.infer(expr.Instantiate(let.Body, let.Val), check)
	}
}

func (ck *Checker) inferConst(c *expr.Const) (expr.Expr, error) {
	d, ok := ck.env.Lookup(c.Nm)
	if !ok {
		return nil, report.New(report.UNKNOWN_REFERENCE, "reference to '%s', which is not committed", c.Nm)
	}
	if len(c.Lvls) != len(d.LevelParams()) {
		return nil, report.New(report.UNIVERSE_ARITY, "'%s' takes %d universe argument(s), given %d", c.Nm, len(d.LevelParams()), len(c.Lvls))
	}
	return expr.InstantiateLParams(d.DeclType(), level.MakeSubst(d.LevelParams(), c.Lvls)), nil
}

// inferApps walks the application spine with a deferred substitution context:
// Pi bodies are not instantiated until a non-Pi is hit or the spine ends.
func (ck *Checker) inferApps(e expr.Expr, check bool) (expr.Expr, error) {
	fn, args := expr.UnfoldApps(e)
	acc, err := ck.infer(fn, check)
	if err != nil {
		return nil, err
	}
	var ctx []expr.Expr // consumed arguments, application order
	for i := 0; i < len(args); {
		if pi, ok := acc.(*expr.Pi); ok {
			if check {
				dom := expr.Instantiate(pi.Bind.Ty, revExprs(ctx)...)
				if err := ck.CheckType(args[i], dom); err != nil {
					return nil, err
				}
			}
			ctx = append(ctx, args[i])
			acc = pi.Body
			i++
			continue
		}
		inst := expr.Instantiate(acc, revExprs(ctx)...)
		w, err := ck.Whnf(inst)
		if err != nil {
			return nil, err
		}
		if _, ok := w.(*expr.Pi); !ok {
			return nil, &report.Error{Kind: report.NOT_A_FUNCTION, Left: fn, Right: inst, Message: "applied a term whose type is not a function type"}
		}
		acc = w
		ctx = ctx[:0]
	}
	return expr.Instantiate(acc, revExprs(ctx)...), nil
}

func (ck *Checker) inferLambda(e expr.Expr, check bool) (expr.Expr, error) {
	var binders []expr.Binder // original domains, still in terms of Vars
	var locals []*expr.Local
	cur := e
	for {
		lam, ok := cur.(*expr.Lambda)
		if !ok {
			break
		}
		binders = append(binders, lam.Bind)
		domTy := expr.Instantiate(lam.Bind.Ty, revLocals(locals)...)
		if check {
			if _, err := ck.InferSortOf(domTy); err != nil {
				return nil, err
			}
		}
		locals = append(locals, expr.NewLocal(expr.Binder{Nm: lam.Bind.Nm, Style: lam.Bind.Style, Ty: domTy}))
		cur = lam.Body
	}
	bodyTy, err := ck.infer(expr.Instantiate(cur, revLocals(locals)...), check)
	if err != nil {
		return nil, err
	}
	abstracted := expr.Abstract(bodyTy, reverse(locals)...)
	for i := len(binders) - 1; i >= 0; i-- {
		abstracted = expr.NewPi(binders[i], abstracted)
	}
	return abstracted, nil
}

func (ck *Checker) inferPi(e expr.Expr) (expr.Expr, error) {
	var locals []*expr.Local
	var lvls []*level.Level
	cur := e
	for {
		pi, ok := cur.(*expr.Pi)
		if !ok {
			break
		}
		domTy := expr.Instantiate(pi.Bind.Ty, revLocals(locals)...)
		lvl, err := ck.InferSortOf(domTy)
		if err != nil {
			return nil, err
		}
		lvls = append(lvls, lvl)
		locals = append(locals, expr.NewLocal(expr.Binder{Nm: pi.Bind.Nm, Style: pi.Bind.Style, Ty: domTy}))
		cur = pi.Body
	}
	bodyLvl, err := ck.InferSortOf(expr.Instantiate(cur, revLocals(locals)...))
	if err != nil {
		return nil, err
	}
	out := bodyLvl
	for i := len(lvls) - 1; i >= 0; i-- {
		out = level.IMax(lvls[i], out)
	}
	return expr.NewSort(out), nil
}

// revLocals returns the locals as Exprs, innermost binder first, which is the
// order Instantiate wants.
func revLocals(locals []*expr.Local) []expr.Expr {
	out := make([]expr.Expr, len(locals))
	for i, l := range locals {
		out[len(locals)-1-i] = l
	}
	return out
}

func revExprs(es []expr.Expr) []expr.Expr {
	out := make([]expr.Expr, len(es))
	for i, e := range es {
		out[len(es)-1-i] = e
	}
	return out
}

func reverse(locals []*expr.Local) []*expr.Local {
	out := make([]*expr.Local, len(locals))
	for i, l := range locals {
		out[len(locals)-1-i] = l
	}
	return out
}
