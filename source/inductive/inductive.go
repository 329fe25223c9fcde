package inductive

// Compilation of an inductive family: open the family's telescope, shape the
// constructors against it, derive the eliminator (motive, minor premises,
// computation rules), and validate everything the derivation took on trust.
//
// Compile runs on the registration path, so later declarations can refer to
// the family, its constructors and its recursor; the definitional checks it
// defers live in Check, which the certifier may run on a worker.

import (
	"github.com/quern-dev/quern/source/checker"
	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/report"
)

// Compiled carries the derived declarations plus the opened telescopes Check
// needs to revalidate them.
type Compiled struct {
	Family *env.Inductive
	Ctors  []*env.Constructor
	Rec    *env.Recursor

	item         *env.IndItem
	codomainSort *level.Level
	paramLocals  []*expr.Local
	indexLocals  []*expr.Local
	motive       *expr.Local
	minors       []*expr.Local
	ctorShapes   []ctorShape
	largeElim    bool
	depElim      bool
	elimLevel    *level.Level
	recParams    []*level.Level
}

// ctorShape is one constructor opened against the shared parameter locals.
type ctorShape struct {
	nm       *name.Name
	fields   []*expr.Local
	indices  []expr.Expr // conclusion arguments past the parameters
	recArgs  []recArg
	recCalls []expr.Expr // one per recursive field, for the computation rule
}

// recArg is a recursive field: its type is a telescope (the eps) ending in
// the family itself, applied to the parameters and some indices.
type recArg struct {
	field   *expr.Local
	eps     []*expr.Local
	indices []expr.Expr
}

// Compile derives the constructor and recursor declarations of item. The
// family declaration itself must already be committed.
func Compile(ck *checker.Checker, item *env.IndItem) (*Compiled, error) {
	c := &Compiled{item: item}
	if err := c.openFamily(ck); err != nil {
		return nil, report.At(err, item.Nm)
	}
	for _, intro := range item.Intros {
		if err := c.openCtor(ck, intro); err != nil {
			return nil, report.At(err, intro.Nm)
		}
	}
	if err := c.analyzeElim(ck); err != nil {
		return nil, report.At(err, item.Nm)
	}
	c.buildDecls()
	return c, nil
}

// openFamily splits the family type into parameters, indices and the
// codomain sort.
func (c *Compiled) openFamily(ck *checker.Checker) error {
	locals, body, err := unfoldPis(ck, c.item.Ty)
	if err != nil {
		return err
	}
	if len(locals) < c.item.NumParams {
		return report.New(report.MALFORMED_CONSTRUCTOR, "the family type binds fewer arguments than its declared parameter count")
	}
	sort, ok := body.(*expr.Sort)
	if !ok {
		return report.New(report.MALFORMED_CONSTRUCTOR, "the family type does not end in a sort")
	}
	c.paramLocals = locals[:c.item.NumParams]
	c.indexLocals = locals[c.item.NumParams:]
	c.codomainSort = sort.Lvl
	return nil
}

// familyApp is the family applied to the parameter locals and the given
// indices.
func (c *Compiled) familyApp(indices []expr.Expr) expr.Expr {
	e := expr.FoldAppsLocals(expr.NewConst(c.item.Nm, c.item.Params), c.paramLocals)
	return expr.FoldApps(e, indices...)
}

func (c *Compiled) openCtor(ck *checker.Checker, intro env.Intro) error {
	ty, err := consumeParams(ck, intro.Ty, c.paramLocals)
	if err != nil {
		return err
	}
	fields, concl, err := unfoldPis(ck, ty)
	if err != nil {
		return err
	}
	head, args := expr.UnfoldApps(concl)
	hc, ok := head.(*expr.Const)
	if !ok || hc.Nm != c.item.Nm {
		return report.New(report.MALFORMED_CONSTRUCTOR, "the conclusion is not an application of the family")
	}
	if len(args) < c.item.NumParams {
		return report.New(report.MALFORMED_CONSTRUCTOR, "the conclusion applies the family to fewer arguments than there are parameters")
	}
	for i, l := range c.paramLocals {
		if !expr.Eq(args[i], l.AsLocalExpr()) {
			return report.New(report.MALFORMED_CONSTRUCTOR, "conclusion parameter %d is not the declared parameter", i)
		}
	}
	shape := ctorShape{nm: intro.Nm, fields: fields, indices: args[c.item.NumParams:]}
	for _, f := range fields {
		eps, fBody, err := unfoldPis(ck, f.Bind.Ty)
		if err != nil {
			return err
		}
		fHead, fArgs := expr.UnfoldApps(fBody)
		if fhc, ok := fHead.(*expr.Const); ok && fhc.Nm == c.item.Nm {
			if len(fArgs) < c.item.NumParams {
				return report.New(report.MALFORMED_CONSTRUCTOR, "a recursive field applies the family to fewer arguments than there are parameters")
			}
			shape.recArgs = append(shape.recArgs, recArg{field: f, eps: eps, indices: fArgs[c.item.NumParams:]})
		}
	}
	c.ctorShapes = append(c.ctorShapes, shape)
	return nil
}

// consumeParams peels the leading parameter binders of a constructor type,
// substituting the shared parameter locals.
func consumeParams(ck *checker.Checker, ty expr.Expr, params []*expr.Local) (expr.Expr, error) {
	for _, p := range params {
		w, err := ck.Whnf(ty)
		if err != nil {
			return nil, err
		}
		pi, ok := w.(*expr.Pi)
		if !ok {
			return nil, report.New(report.MALFORMED_CONSTRUCTOR, "the constructor does not bind the family parameters")
		}
		ty = expr.Instantiate(pi.Body, p)
	}
	return ty, nil
}

// unfoldPis opens a telescope, normalizing between binders so that pis hidden
// behind definitions are still counted.
func unfoldPis(ck *checker.Checker, e expr.Expr) ([]*expr.Local, expr.Expr, error) {
	var locals []*expr.Local
	for {
		w, err := ck.Whnf(e)
		if err != nil {
			return nil, nil, err
		}
		pi, ok := w.(*expr.Pi)
		if !ok {
			return locals, w, nil
		}
		l := expr.NewLocal(pi.Bind)
		locals = append(locals, l)
		e = expr.Instantiate(pi.Body, l)
	}
}
