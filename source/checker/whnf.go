package checker

// Weak head normal form. whnfCore applies the structural rules (sort
// simplification, beta, zeta, iota, quotient reduction); Whnf alternates it
// with delta steps until the head stops changing.

import (
	"fmt"

	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/settings"
)

func (ck *Checker) Whnf(e expr.Expr) (expr.Expr, error) {
	if w, ok := ck.whnfCache[e]; ok {
		return w, nil
	}
	cur := e
	for {
		w, err := ck.whnfCore(cur)
		if err != nil {
			return nil, err
		}
		unfolded, ok := ck.deltaStep(w)
		if !ok {
			ck.whnfCache[e] = w
			return w, nil
		}
		cur = unfolded
	}
}

func (ck *Checker) whnfCore(e expr.Expr) (expr.Expr, error) {
	var out expr.Expr
	err := ck.guard.Step(func() error {
		var err error
		out, err = ck.whnfCoreStep(e)
		return err
	})
	return out, err
}

func (ck *Checker) whnfCoreStep(e expr.Expr) (expr.Expr, error) {
	switch x := e.(type) {
	case *expr.Sort:
		return expr.NewSort(x.Lvl.Simplify()), nil
	case *expr.Let:
		return ck.whnfCore(expr.Instantiate(x.Body, x.Val))
	case *expr.App:
		fn, args := expr.UnfoldApps(e)
		fnW, err := ck.whnfCore(fn)
		if err != nil {
			return nil, err
		}
		if lam, ok := fnW.(*expr.Lambda); ok {
			return ck.whnfCore(betaReduce(lam, args))
		}
		if !expr.Eq(fnW, fn) {
			return ck.whnfCore(expr.FoldApps(fnW, args...))
		}
		if c, ok := fnW.(*expr.Const); ok {
			if r, ok, err := ck.reduceRecursor(c, args); err != nil {
				return nil, err
			} else if ok {
				return ck.whnfCore(r)
			}
			if r, ok, err := ck.reduceQuot(c, args); err != nil {
				return nil, err
			} else if ok {
				return ck.whnfCore(r)
			}
		}
		return e, nil
	default:
		return e, nil
	}
}

// betaReduce consumes as many leading binders of lam as there are arguments.
func betaReduce(lam *expr.Lambda, args []expr.Expr) expr.Expr {
	body := expr.Expr(lam)
	n := 0
	for n < len(args) {
		l, ok := body.(*expr.Lambda)
		if !ok {
			break
		}
		body = l.Body
		n++
	}
	return expr.FoldApps(expr.Instantiate(body, revExprs(args[:n])...), args[n:]...)
}

// deltaStep unfolds the head definition of e, if the head is one.
func (ck *Checker) deltaStep(e expr.Expr) (expr.Expr, bool) {
	fn, args := expr.UnfoldApps(e)
	c, ok := fn.(*expr.Const)
	if !ok {
		return nil, false
	}
	d, ok := ck.env.Lookup(c.Nm)
	if !ok {
		return nil, false
	}
	def, ok := d.(*env.Definition)
	if !ok {
		return nil, false
	}
	if settings.SHOW_REDUCTIONS {
		fmt.Println("delta", c.Nm.String())
	}
	val := expr.InstantiateLParams(def.Value, level.MakeSubst(def.Params, c.Lvls))
	return expr.FoldApps(val, args...), true
}

// deltaHeight is the reducibility of the head of e: nonzero exactly when a
// deltaStep applies.
func (ck *Checker) deltaHeight(e expr.Expr) int {
	fn, _ := expr.UnfoldApps(e)
	if c, ok := fn.(*expr.Const); ok {
		return ck.env.Height(c.Nm)
	}
	return 0
}

// reduceRecursor performs an iota step: if c names a recursor whose major
// premise reduces to a fully applied constructor, the application rewrites
// through the matching computation rule.
func (ck *Checker) reduceRecursor(c *expr.Const, args []expr.Expr) (expr.Expr, bool, error) {
	d, ok := ck.env.Lookup(c.Nm)
	if !ok {
		return nil, false, nil
	}
	rec, ok := d.(*env.Recursor)
	if !ok {
		return nil, false, nil
	}
	majorIdx := rec.MajorIdx()
	if len(args) <= majorIdx {
		return nil, false, nil
	}
	major := args[majorIdx]
	if rec.K {
		if m, ok, err := ck.toCtorWhenK(rec, major); err != nil {
			return nil, false, err
		} else if ok {
			major = m
		}
	}
	major, err := ck.Whnf(major)
	if err != nil {
		return nil, false, err
	}
	ctorFn, ctorArgs := expr.UnfoldApps(major)
	ctorConst, ok := ctorFn.(*expr.Const)
	if !ok {
		return nil, false, nil
	}
	rule, ok := rec.Rule(ctorConst.Nm)
	if !ok {
		return nil, false, nil
	}
	if len(ctorArgs) < rule.NumFields {
		return nil, false, nil
	}
	rhs := expr.InstantiateLParams(rule.RHS, level.MakeSubst(rec.Params, c.Lvls))
	out := expr.FoldApps(rhs, args[:rec.NumParams+1+rec.NumMinors]...)
	out = expr.FoldApps(out, ctorArgs[len(ctorArgs)-rule.NumFields:]...)
	out = expr.FoldApps(out, args[majorIdx+1:]...)
	return out, true, nil
}

// toCtorWhenK rewrites the major premise of a subsingleton eliminator to the
// family's unique constructor, provided the major's type is definitionally
// an instance of the family. This is what makes Eq.rec compute on proofs
// that are not syntactically refl.
func (ck *Checker) toCtorWhenK(rec *env.Recursor, major expr.Expr) (expr.Expr, bool, error) {
	if len(rec.Rules) != 1 || rec.Rules[0].NumFields != 0 {
		return nil, false, nil
	}
	majorTy, err := ck.InferOnly(major)
	if err != nil {
		return nil, false, err
	}
	majorTy, err = ck.Whnf(majorTy)
	if err != nil {
		return nil, false, err
	}
	famFn, famArgs := expr.UnfoldApps(majorTy)
	famConst, ok := famFn.(*expr.Const)
	if !ok {
		return nil, false, nil
	}
	ctorDecl, ok := ck.env.Lookup(rec.Rules[0].Ctor)
	if !ok {
		return nil, false, nil
	}
	ctor, ok := ctorDecl.(*env.Constructor)
	if !ok || ctor.Family != famConst.Nm || len(famArgs) < ctor.NumParams {
		return nil, false, nil
	}
	ctorApp := expr.FoldApps(expr.NewConst(ctor.Nm, famConst.Lvls), famArgs[:ctor.NumParams]...)
	ctorTy, err := ck.InferOnly(ctorApp)
	if err != nil {
		return nil, false, err
	}
	ok, err = ck.IsDefEq(majorTy, ctorTy)
	if err != nil || !ok {
		return nil, false, err
	}
	return ctorApp, true, nil
}

// reduceQuot computes quot.lift f h (quot.mk r a) to f a, and likewise for
// quot.ind.
func (ck *Checker) reduceQuot(c *expr.Const, args []expr.Expr) (expr.Expr, bool, error) {
	d, ok := ck.env.Lookup(c.Nm)
	if !ok {
		return nil, false, nil
	}
	q, ok := d.(*env.Quot)
	if !ok {
		return nil, false, nil
	}
	var majorPos int
	switch q.QKind {
	case env.QUOT_LIFT:
		majorPos = 5
	case env.QUOT_IND:
		majorPos = 4
	default:
		return nil, false, nil
	}
	if len(args) <= majorPos {
		return nil, false, nil
	}
	major, err := ck.Whnf(args[majorPos])
	if err != nil {
		return nil, false, err
	}
	mkFn, mkArgs := expr.UnfoldApps(major)
	mkConst, ok := mkFn.(*expr.Const)
	if !ok || len(mkArgs) != 3 {
		return nil, false, nil
	}
	mkDecl, ok := ck.env.Lookup(mkConst.Nm)
	if !ok {
		return nil, false, nil
	}
	if mk, ok := mkDecl.(*env.Quot); !ok || mk.QKind != env.QUOT_MK {
		return nil, false, nil
	}
	var out expr.Expr = expr.NewApp(args[3], mkArgs[2])
	out = expr.FoldApps(out, args[majorPos+1:]...)
	return out, true, nil
}
