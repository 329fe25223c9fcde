package inductive

// Eliminator derivation: where the recursor may eliminate to, whether the
// motive depends on the major premise, and the shape of the motive, minor
// premises and computation rules.

import (
	"github.com/quern-dev/quern/source/checker"
	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
)

// FamilyDecl is the declaration the certifier commits before Compile runs,
// so the constructor types can refer to the family.
func FamilyDecl(item *env.IndItem) *env.Inductive {
	ctorNames := make([]*name.Name, len(item.Intros))
	for i, in := range item.Intros {
		ctorNames[i] = in.Nm
	}
	return &env.Inductive{
		Info:      env.Info{Nm: item.Nm, Params: item.Params, Ty: item.Ty},
		NumParams: item.NumParams,
		CtorNames: ctorNames,
	}
}

// analyzeElim decides the elimination level. A family provably above Prop
// eliminates anywhere; a family whose sort may be Prop under some universe
// assignment eliminates only into Prop unless it is a subsingleton: no
// constructors, or one constructor all of whose fields are proofs or already
// determined by the conclusion's indices.
func (c *Compiled) analyzeElim(ck *checker.Checker) error {
	large := c.codomainSort.IsNonzero()
	if !large {
		switch len(c.ctorShapes) {
		case 0:
			large = true
		case 1:
			large = true
			for _, f := range c.ctorShapes[0].fields {
				lvl, err := ck.InferSortOf(f.Bind.Ty)
				if err != nil {
					return err
				}
				if lvl.IsZero() || occursIn(f, c.ctorShapes[0].indices) {
					continue
				}
				large = false
				break
			}
		}
	}
	c.largeElim = large
	c.depElim = !c.codomainSort.IsZero()
	if large {
		taken := map[*name.Name]bool{}
		for _, p := range c.item.Params {
			taken[p.Prm] = true
		}
		c.elimLevel = level.Param(name.Fresh(name.Anon.Str("l"), taken))
		c.recParams = append([]*level.Level{c.elimLevel}, c.item.Params...)
	} else {
		c.elimLevel = level.Zero
		c.recParams = c.item.Params
	}
	return nil
}

func occursIn(f *expr.Local, args []expr.Expr) bool {
	for _, a := range args {
		if expr.Eq(a, f.AsLocalExpr()) {
			return true
		}
	}
	return false
}

func localExprs(ls []*expr.Local) []expr.Expr {
	out := make([]expr.Expr, len(ls))
	for i, l := range ls {
		out[i] = l
	}
	return out
}

// motiveApp is the motive applied to indices and, under dependent
// elimination, the major premise.
func (c *Compiled) motiveApp(indices []expr.Expr, major expr.Expr) expr.Expr {
	e := expr.FoldApps(c.motive, indices...)
	if c.depElim {
		e = expr.NewApp(e, major)
	}
	return e
}

// buildDecls assembles the constructor declarations, the motive and minor
// premises, the recursor type, and the computation rules.
func (c *Compiled) buildDecls() {
	item := c.item
	c.Family = FamilyDecl(item)

	c.Ctors = make([]*env.Constructor, len(item.Intros))
	for i, in := range item.Intros {
		c.Ctors[i] = &env.Constructor{
			Info:      env.Info{Nm: in.Nm, Params: item.Params, Ty: in.Ty},
			Family:    item.Nm,
			NumParams: item.NumParams,
			NumFields: len(c.ctorShapes[i].fields),
		}
	}

	// Motive.
	motiveBody := expr.Expr(expr.NewSort(c.elimLevel))
	motiveTele := append([]*expr.Local{}, c.indexLocals...)
	if c.depElim {
		motiveTele = append(motiveTele, expr.NewLocal(expr.Binder{
			Nm: name.Anon.Str("t"),
			Ty: c.familyApp(localExprs(c.indexLocals)),
		}))
	}
	c.motive = expr.NewLocal(expr.Binder{
		Nm:    name.Anon.Str("C"),
		Style: expr.IMPLICIT,
		Ty:    expr.FoldPis(motiveTele, motiveBody),
	})

	// Minor premises, one per constructor, with an inductive hypothesis for
	// every recursive field.
	c.minors = make([]*expr.Local, len(c.ctorShapes))
	for i := range c.ctorShapes {
		shape := &c.ctorShapes[i]
		ctorApp := expr.FoldAppsLocals(
			expr.FoldAppsLocals(expr.NewConst(shape.nm, item.Params), c.paramLocals),
			shape.fields)
		var ihs []*expr.Local
		for _, r := range shape.recArgs {
			ihTy := expr.FoldPis(r.eps, c.motiveApp(r.indices, expr.FoldAppsLocals(r.field, r.eps)))
			ihs = append(ihs, expr.NewLocal(expr.Binder{Nm: name.Anon.Str("ih"), Ty: ihTy}))
		}
		minorTy := expr.FoldPis(append(append([]*expr.Local{}, shape.fields...), ihs...),
			c.motiveApp(shape.indices, ctorApp))
		c.minors[i] = expr.NewLocal(expr.Binder{Nm: name.Anon.Str("m").Num(uint64(i)), Ty: minorTy})
	}

	// The recursor.
	recName := item.Nm.Str("rec")
	majorLocal := expr.NewLocal(expr.Binder{
		Nm: name.Anon.Str("t"),
		Ty: c.familyApp(localExprs(c.indexLocals)),
	})
	recTele := append([]*expr.Local{}, c.paramLocals...)
	recTele = append(recTele, c.motive)
	recTele = append(recTele, c.minors...)
	recTele = append(recTele, c.indexLocals...)
	recTele = append(recTele, majorLocal)
	recTy := expr.FoldPis(recTele, c.motiveApp(localExprs(c.indexLocals), majorLocal))

	k := c.codomainSort.IsZero() && len(c.ctorShapes) == 1 && len(c.ctorShapes[0].fields) == 0

	rules := make([]env.RecRule, len(c.ctorShapes))
	for i := range c.ctorShapes {
		shape := &c.ctorShapes[i]
		shape.recCalls = nil
		for _, r := range shape.recArgs {
			call := expr.FoldAppsLocals(expr.NewConst(recName, c.recParams), c.paramLocals)
			call = expr.NewApp(call, c.motive)
			call = expr.FoldAppsLocals(call, c.minors)
			call = expr.FoldApps(call, r.indices...)
			call = expr.NewApp(call, expr.FoldAppsLocals(r.field, r.eps))
			shape.recCalls = append(shape.recCalls, expr.FoldLambdas(r.eps, call))
		}
		rhsBody := expr.FoldAppsLocals(c.minors[i], shape.fields)
		rhsBody = expr.FoldApps(rhsBody, shape.recCalls...)
		rhsTele := append([]*expr.Local{}, c.paramLocals...)
		rhsTele = append(rhsTele, c.motive)
		rhsTele = append(rhsTele, c.minors...)
		rhsTele = append(rhsTele, shape.fields...)
		rules[i] = env.RecRule{
			Ctor:      shape.nm,
			NumFields: len(shape.fields),
			RHS:       expr.FoldLambdas(rhsTele, rhsBody),
		}
	}

	c.Rec = &env.Recursor{
		Info:       env.Info{Nm: recName, Params: c.recParams, Ty: recTy},
		NumParams:  item.NumParams,
		NumIndices: len(c.indexLocals),
		NumMinors:  len(c.minors),
		K:          k,
		Rules:      rules,
	}
}
