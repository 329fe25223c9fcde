package checker

// Definitional equality. The entry point tries cheap answers first
// (structural equality, the per-checker memo), then works through the
// structural cases, proof irrelevance, and lazy delta unfolding guided by
// definition height. Failure to prove equality is an answer, not an error.

import (
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
)

func (ck *Checker) IsDefEq(a, b expr.Expr) (bool, error) {
	if expr.Eq(a, b) {
		return true, nil
	}
	if r, ok := ck.eqCache[[2]expr.Expr{a, b}]; ok {
		return r, nil
	}
	var res bool
	err := ck.guard.Step(func() error {
		var err error
		res, err = ck.defEqCore(a, b)
		return err
	})
	if err != nil {
		return false, err
	}
	ck.eqCache[[2]expr.Expr{a, b}] = res
	ck.eqCache[[2]expr.Expr{b, a}] = res
	return res, nil
}

func (ck *Checker) defEqCore(a, b expr.Expr) (bool, error) {
	aW, err := ck.whnfCore(a)
	if err != nil {
		return false, err
	}
	bW, err := ck.whnfCore(b)
	if err != nil {
		return false, err
	}
	if ok, decided, err := ck.defEqStructural(aW, bW); decided || err != nil {
		return ok, err
	}
	if ok, err := ck.proofIrrelEq(aW, bW); err != nil || ok {
		return ok, err
	}
	// Lazy delta: unfold whichever side has the taller definition, retrying
	// the cheap answers after every step.
	for {
		ha, hb := ck.deltaHeight(aW), ck.deltaHeight(bW)
		if ha == 0 && hb == 0 {
			break
		}
		switch {
		case ha > hb:
			if aW, err = ck.deltaWhnf(aW); err != nil {
				return false, err
			}
		case hb > ha:
			if bW, err = ck.deltaWhnf(bW); err != nil {
				return false, err
			}
		default:
			if aW, err = ck.deltaWhnf(aW); err != nil {
				return false, err
			}
			if bW, err = ck.deltaWhnf(bW); err != nil {
				return false, err
			}
		}
		if expr.Eq(aW, bW) {
			return true, nil
		}
		if ok, decided, err := ck.defEqStructural(aW, bW); decided || err != nil {
			return ok, err
		}
	}
	return ck.defEqFinal(aW, bW)
}

func (ck *Checker) deltaWhnf(e expr.Expr) (expr.Expr, error) {
	unfolded, ok := ck.deltaStep(e)
	if !ok {
		return e, nil
	}
	return ck.whnfCore(unfolded)
}

// defEqStructural decides the cases where both heads force a verdict: two
// sorts, two pis, two lambdas.
func (ck *Checker) defEqStructural(a, b expr.Expr) (bool, bool, error) {
	switch x := a.(type) {
	case *expr.Sort:
		if y, ok := b.(*expr.Sort); ok {
			return level.AntisymmEq(x.Lvl, y.Lvl), true, nil
		}
	case *expr.Pi:
		if _, ok := b.(*expr.Pi); ok {
			ok, err := ck.defEqBinders(a, b, true)
			return ok, true, err
		}
	case *expr.Lambda:
		if _, ok := b.(*expr.Lambda); ok {
			ok, err := ck.defEqBinders(a, b, false)
			return ok, true, err
		}
	}
	return false, false, nil
}

// defEqBinders walks two telescopes in lockstep, opening both sides with the
// same fresh locals, then compares the remainders.
func (ck *Checker) defEqBinders(a, b expr.Expr, pis bool) (bool, error) {
	var locals []*expr.Local
	for {
		ba, bodyA, okA := splitBinder(a, pis)
		bb, bodyB, okB := splitBinder(b, pis)
		if !okA || !okB {
			break
		}
		tyA := expr.Instantiate(ba.Ty, revLocals(locals)...)
		tyB := expr.Instantiate(bb.Ty, revLocals(locals)...)
		ok, err := ck.IsDefEq(tyA, tyB)
		if err != nil || !ok {
			return false, err
		}
		locals = append(locals, expr.NewLocal(expr.Binder{Nm: ba.Nm, Style: ba.Style, Ty: tyA}))
		a, b = bodyA, bodyB
	}
	return ck.IsDefEq(expr.Instantiate(a, revLocals(locals)...), expr.Instantiate(b, revLocals(locals)...))
}

func splitBinder(e expr.Expr, pis bool) (expr.Binder, expr.Expr, bool) {
	if pis {
		if pi, ok := e.(*expr.Pi); ok {
			return pi.Bind, pi.Body, true
		}
	} else {
		if lam, ok := e.(*expr.Lambda); ok {
			return lam.Bind, lam.Body, true
		}
	}
	return expr.Binder{}, nil, false
}

// proofIrrelEq: two proofs of definitionally equal propositions are equal.
func (ck *Checker) proofIrrelEq(a, b expr.Expr) (bool, error) {
	ta, err := ck.InferOnly(a)
	if err != nil {
		return false, err
	}
	prop, err := ck.isProposition(ta)
	if err != nil || !prop {
		return false, err
	}
	tb, err := ck.InferOnly(b)
	if err != nil {
		return false, err
	}
	prop, err = ck.isProposition(tb)
	if err != nil || !prop {
		return false, err
	}
	return ck.IsDefEq(ta, tb)
}

// isProposition reports whether ty's type is Sort 0.
func (ck *Checker) isProposition(ty expr.Expr) (bool, error) {
	tyTy, err := ck.InferOnly(ty)
	if err != nil {
		return false, err
	}
	w, err := ck.Whnf(tyTy)
	if err != nil {
		return false, err
	}
	s, ok := w.(*expr.Sort)
	return ok && s.Lvl.IsZero(), nil
}

// defEqFinal compares two fully reduced heads: constants, locals, spines, or
// a lambda against an eta-expandable term.
func (ck *Checker) defEqFinal(a, b expr.Expr) (bool, error) {
	switch x := a.(type) {
	case *expr.Const:
		if y, ok := b.(*expr.Const); ok {
			return x.Nm == y.Nm && level.EqLists(x.Lvls, y.Lvls), nil
		}
	case *expr.Local:
		if y, ok := b.(*expr.Local); ok {
			return x.Serial == y.Serial, nil
		}
	case *expr.App:
		if _, ok := b.(*expr.App); ok {
			if ok, err := ck.defEqApps(a, b); err != nil || ok {
				return ok, err
			}
		}
	}
	if lam, ok := a.(*expr.Lambda); ok {
		if _, isLam := b.(*expr.Lambda); !isLam {
			return ck.etaEq(lam, b)
		}
	}
	if lam, ok := b.(*expr.Lambda); ok {
		if _, isLam := a.(*expr.Lambda); !isLam {
			return ck.etaEq(lam, a)
		}
	}
	return false, nil
}

// defEqApps is the first-order comparison of two irreducible spines.
func (ck *Checker) defEqApps(a, b expr.Expr) (bool, error) {
	fa, argsA := expr.UnfoldApps(a)
	fb, argsB := expr.UnfoldApps(b)
	if len(argsA) != len(argsB) {
		return false, nil
	}
	ok, err := ck.IsDefEq(fa, fb)
	if err != nil || !ok {
		return ok, err
	}
	for i := range argsA {
		ok, err := ck.IsDefEq(argsA[i], argsB[i])
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

// etaEq compares a lambda against a non-lambda of function type by expanding
// the latter to λ x, other x.
func (ck *Checker) etaEq(lam *expr.Lambda, other expr.Expr) (bool, error) {
	ty, err := ck.InferOnly(other)
	if err != nil {
		return false, err
	}
	w, err := ck.Whnf(ty)
	if err != nil {
		return false, err
	}
	pi, ok := w.(*expr.Pi)
	if !ok {
		return false, nil
	}
	expanded := expr.NewLambda(pi.Bind, expr.NewApp(other, expr.NewVar(0)))
	return ck.IsDefEq(lam, expanded)
}
