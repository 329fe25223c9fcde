package inductive

// The validation the derivation deferred. Runs after the family block has
// been committed, possibly on a worker.

import (
	"github.com/quern-dev/quern/source/checker"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/report"
)

func (c *Compiled) Check(ck *checker.Checker) error {
	for i, in := range c.item.Intros {
		if err := report.At(c.checkIntro(ck, i), in.Nm); err != nil {
			return err
		}
	}
	for i := range c.ctorShapes {
		if err := report.At(c.checkRule(ck, i), c.Rec.Nm); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiled) checkIntro(ck *checker.Checker, i int) error {
	in := c.item.Intros[i]
	// The constructor type must be a well-formed type at all.
	if _, err := ck.InferSortOf(in.Ty); err != nil {
		return err
	}
	// Its leading binders must repeat the family parameters, definitionally.
	ty := in.Ty
	for j, p := range c.paramLocals {
		w, err := ck.Whnf(ty)
		if err != nil {
			return err
		}
		pi, ok := w.(*expr.Pi)
		if !ok {
			return report.New(report.MALFORMED_CONSTRUCTOR, "the constructor does not bind the family parameters")
		}
		ok, err = ck.IsDefEq(pi.Bind.Ty, p.Bind.Ty)
		if err != nil {
			return err
		}
		if !ok {
			return report.New(report.MALFORMED_CONSTRUCTOR, "parameter %d of the constructor differs from the family's", j)
		}
		ty = expr.Instantiate(pi.Body, p)
	}
	// Field universes must fit under the family's sort, unless the family is
	// a Prop.
	for _, f := range c.ctorShapes[i].fields {
		lvl, err := ck.InferSortOf(f.Bind.Ty)
		if err != nil {
			return err
		}
		if !c.codomainSort.IsZero() && !level.Leq(lvl, c.codomainSort) {
			return &report.Error{
				Kind:    report.MALFORMED_CONSTRUCTOR,
				Left:    f.Bind.Ty,
				Message: "a field lives in a universe above the family's sort",
			}
		}
	}
	return nil
}

// ruleInferError classifies a failure to infer the rule's left-hand side.
// Resource exhaustion keeps its own kind; any other kernel error means the
// derived rule is ill-typed.
func ruleInferError(err error, ctor *name.Name) error {
	if re, ok := err.(*report.Error); ok && re.Kind != report.STACK_EXHAUSTED {
		return report.New(report.BAD_COMPUTATION_RULE, "the computation rule for '%s' is not well typed", ctor)
	}
	return err
}

// checkRule reduces the recursor applied to a fully applied constructor and
// requires the result to be the minor premise applied to the fields and the
// recursive calls.
func (c *Compiled) checkRule(ck *checker.Checker, i int) error {
	shape := &c.ctorShapes[i]
	ctorApp := expr.FoldAppsLocals(
		expr.FoldAppsLocals(expr.NewConst(shape.nm, c.item.Params), c.paramLocals),
		shape.fields)
	lhs := expr.FoldAppsLocals(expr.NewConst(c.Rec.Nm, c.recParams), c.paramLocals)
	lhs = expr.NewApp(lhs, c.motive)
	lhs = expr.FoldAppsLocals(lhs, c.minors)
	lhs = expr.FoldApps(lhs, shape.indices...)
	lhs = expr.NewApp(lhs, ctorApp)
	if _, err := ck.Infer(lhs); err != nil {
		return ruleInferError(err, shape.nm)
	}
	expected := expr.FoldAppsLocals(c.minors[i], shape.fields)
	expected = expr.FoldApps(expected, shape.recCalls...)
	ok, err := ck.IsDefEq(lhs, expected)
	if err != nil {
		return err
	}
	if !ok {
		return &report.Error{
			Kind:    report.BAD_COMPUTATION_RULE,
			Left:    lhs,
			Right:   expected,
			Message: "reducing the recursor on '" + shape.nm.String() + "' does not give the minor premise application",
		}
	}
	return nil
}
