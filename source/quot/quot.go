package quot

// The quotient block. These four declarations are not read from the export
// stream; #QUOT asks for exactly this shape, assembled here and certified
// like anything else. quot.lift's soundness condition mentions equality, so
// the block refuses to materialize before 'eq' is committed.

import (
	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/report"
)

var (
	QuotName = name.Anon.Str("quot")
	MkName   = QuotName.Str("mk")
	LiftName = QuotName.Str("lift")
	IndName  = QuotName.Str("ind")
	eqName   = name.Anon.Str("eq")
)

// Decls builds the four quotient declarations against e.
func Decls(e *env.Env) ([]*env.Quot, error) {
	eqDecl, ok := e.Lookup(eqName)
	if !ok {
		return nil, report.New(report.UNKNOWN_REFERENCE, "the quotient block needs 'eq' to be committed first")
	}
	if len(eqDecl.LevelParams()) != 1 {
		return nil, report.New(report.UNIVERSE_ARITY, "the quotient block needs 'eq' to bind exactly one universe parameter")
	}

	u := level.Param(name.Anon.Str("u"))
	v := level.Param(name.Anon.Str("v"))
	us := []*level.Level{u}
	uvs := []*level.Level{u, v}

	alpha := expr.NewLocal(expr.Binder{Nm: name.Anon.Str("A"), Style: expr.IMPLICIT, Ty: expr.NewSort(u)})
	relTy := expr.Arrow(alpha, expr.Arrow(alpha, expr.Prop()))
	rel := expr.NewLocal(expr.Binder{Nm: name.Anon.Str("r"), Ty: relTy})

	// quot : Π {A : Sort u}, (A → A → Prop) → Sort u
	quotTy := expr.FoldPis([]*expr.Local{alpha, rel}, expr.NewSort(u))
	quotDecl := &env.Quot{
		Info:  env.Info{Nm: QuotName, Params: us, Ty: quotTy},
		QKind: env.QUOT_TYPE,
	}

	quotApp := expr.FoldApps(expr.NewConst(QuotName, us), alpha, rel)

	// quot.mk : Π {A : Sort u} (r : A → A → Prop), A → quot A r
	a := expr.NewLocal(expr.Binder{Nm: name.Anon.Str("a"), Ty: alpha})
	mkTy := expr.FoldPis([]*expr.Local{alpha, rel, a}, quotApp)
	mkDecl := &env.Quot{
		Info:  env.Info{Nm: MkName, Params: us, Ty: mkTy},
		QKind: env.QUOT_MK,
	}

	// quot.lift : Π {A} {r} {B : Sort v} (f : A → B),
	//             (Π a b, r a b → eq B (f a) (f b)) → quot A r → B
	beta := expr.NewLocal(expr.Binder{Nm: name.Anon.Str("B"), Style: expr.IMPLICIT, Ty: expr.NewSort(v)})
	f := expr.NewLocal(expr.Binder{Nm: name.Anon.Str("f"), Ty: expr.Arrow(alpha, beta)})
	b := expr.NewLocal(expr.Binder{Nm: name.Anon.Str("b"), Ty: alpha})
	sound := expr.FoldPis([]*expr.Local{a, b},
		expr.Arrow(
			expr.FoldApps(rel, a, b),
			expr.FoldApps(expr.NewConst(eqName, []*level.Level{v}), beta, expr.NewApp(f, a), expr.NewApp(f, b))))
	h := expr.NewLocal(expr.Binder{Nm: name.Anon.Str("h"), Ty: sound})
	liftTy := expr.FoldPis([]*expr.Local{alpha, rel, beta, f, h}, expr.Arrow(quotApp, beta))
	liftDecl := &env.Quot{
		Info:  env.Info{Nm: LiftName, Params: uvs, Ty: liftTy},
		QKind: env.QUOT_LIFT,
	}

	// quot.ind : Π {A} {r} {B : quot A r → Prop},
	//            (Π a, B (quot.mk r a)) → Π q, B q
	pred := expr.NewLocal(expr.Binder{Nm: name.Anon.Str("B"), Style: expr.IMPLICIT, Ty: expr.Arrow(quotApp, expr.Prop())})
	hyp := expr.NewLocal(expr.Binder{
		Nm: name.Anon.Str("h"),
		Ty: expr.FoldPis([]*expr.Local{a},
			expr.NewApp(pred, expr.FoldApps(expr.NewConst(MkName, us), alpha, rel, a))),
	})
	q := expr.NewLocal(expr.Binder{Nm: name.Anon.Str("q"), Ty: quotApp})
	indTy := expr.FoldPis([]*expr.Local{alpha, rel, pred, hyp, q}, expr.NewApp(pred, q))
	indDecl := &env.Quot{
		Info:  env.Info{Nm: IndName, Params: us, Ty: indTy},
		QKind: env.QUOT_IND,
	}

	return []*env.Quot{quotDecl, mkDecl, liftDecl, indDecl}, nil
}
