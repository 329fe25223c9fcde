package certify

// Certification of an item stream. Every item passes through the same two
// phases: registration, which checks the signature and commits the
// declaration(s) so later items can refer to them, and the deferred check,
// which certifies values, constructor telescopes and computation rules. In
// serial mode the two phases alternate; in parallel mode registration stays
// in stream order while deferred checks fan out to a worker pool.

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quern-dev/quern/source/checker"
	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/inductive"
	"github.com/quern-dev/quern/source/level"
	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/quot"
	"github.com/quern-dev/quern/source/report"
	"github.com/quern-dev/quern/source/settings"
)

type Status int

const (
	RECEIVED Status = iota
	TYPECHECKING
	COMMITTED
	REJECTED
)

func (s Status) String() string {
	switch s {
	case RECEIVED:
		return "received"
	case TYPECHECKING:
		return "typechecking"
	case COMMITTED:
		return "committed"
	default:
		return "rejected"
	}
}

type Certifier struct {
	Env       *env.Env
	Log       *zap.Logger
	Threads   int
	Lookahead int
}

func New(e *env.Env, log *zap.Logger) *Certifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Certifier{Env: e, Log: log, Threads: 1, Lookahead: 1024}
}

// Check certifies the whole stream, or reports why the earliest bad item was
// rejected.
func (c *Certifier) Check(items []env.Item) error {
	if c.Threads <= 1 {
		return c.serial(items)
	}
	return c.parallel(items)
}

func (c *Certifier) serial(items []env.Item) error {
	for _, item := range items {
		c.Log.Debug("item", zap.String("name", item.ItemName().String()), zap.String("status", TYPECHECKING.String()))
		deferred, err := c.register(item)
		if err == nil && deferred != nil {
			err = deferred(checker.New(c.Env))
		}
		if err != nil {
			err = report.At(err, item.ItemName())
			c.Log.Debug("item", zap.String("name", item.ItemName().String()), zap.String("status", REJECTED.String()))
			return err
		}
		c.Log.Debug("item", zap.String("name", item.ItemName().String()), zap.String("status", COMMITTED.String()))
	}
	return nil
}

// deferredCheck is the part of an item's certification that does not need to
// run before later items register.
type deferredCheck func(*checker.Checker) error

// register checks an item's signature, commits its declarations, and returns
// the deferred part.
func (c *Certifier) register(item env.Item) (deferredCheck, error) {
	if settings.SHOW_REGISTER {
		fmt.Println("registering", item.ItemName().String())
	}
	ck := checker.New(c.Env)
	switch it := item.(type) {
	case *env.AxiomItem:
		if err := c.checkSignature(ck, it.Nm, it.Params, it.Ty); err != nil {
			return nil, err
		}
		return nil, c.Env.Commit(&env.Axiom{Info: env.Info{Nm: it.Nm, Params: it.Params, Ty: it.Ty}})
	case *env.DefItem:
		if err := c.checkSignature(ck, it.Nm, it.Params, it.Ty); err != nil {
			return nil, err
		}
		if it.Value.VarBound() != 0 || it.Value.HasLocals() {
			return nil, &report.Error{Kind: report.UNKNOWN_REFERENCE, Name: it.Nm, Message: "the value is an open term"}
		}
		if !expr.LevelParamsSubset(it.Value, it.Params) {
			return nil, &report.Error{Kind: report.UNKNOWN_REFERENCE, Name: it.Nm, Message: "the value uses a universe parameter the definition does not bind"}
		}
		def := &env.Definition{
			Info:   env.Info{Nm: it.Nm, Params: it.Params, Ty: it.Ty},
			Value:  it.Value,
			Height: c.height(it.Value),
		}
		if err := c.Env.Commit(def); err != nil {
			return nil, err
		}
		return func(ck *checker.Checker) error {
			return ck.CheckType(it.Value, it.Ty)
		}, nil
	case *env.IndItem:
		if err := c.checkSignature(ck, it.Nm, it.Params, it.Ty); err != nil {
			return nil, err
		}
		if err := c.Env.Commit(inductive.FamilyDecl(it)); err != nil {
			return nil, err
		}
		compiled, err := inductive.Compile(ck, it)
		if err != nil {
			return nil, err
		}
		for _, ctor := range compiled.Ctors {
			if err := c.Env.Commit(ctor); err != nil {
				return nil, err
			}
		}
		if err := c.Env.Commit(compiled.Rec); err != nil {
			return nil, err
		}
		return compiled.Check, nil
	default:
		decls, err := quot.Decls(c.Env)
		if err != nil {
			return nil, err
		}
		for _, d := range decls {
			if err := c.Env.Commit(d); err != nil {
				return nil, err
			}
		}
		return func(ck *checker.Checker) error {
			for _, d := range decls {
				if _, err := ck.InferSortOf(d.DeclType()); err != nil {
					return report.At(err, d.Nm)
				}
			}
			return nil
		}, nil
	}
}

// checkSignature is the type-of-type check that gates registration: the type
// must be closed, bind distinct universe parameters covering everything it
// uses, and infer to a sort.
func (c *Certifier) checkSignature(ck *checker.Checker, nm *name.Name, params []*level.Level, ty expr.Expr) error {
	if ty.VarBound() != 0 || ty.HasLocals() {
		return &report.Error{Kind: report.UNKNOWN_REFERENCE, Name: nm, Message: "the type is an open term"}
	}
	seen := map[*name.Name]bool{}
	for _, p := range params {
		if p.Kind != level.PARAM || seen[p.Prm] {
			return &report.Error{Kind: report.UNIVERSE_ARITY, Name: nm, Message: "the universe parameter list is not a list of distinct parameters"}
		}
		seen[p.Prm] = true
	}
	if !expr.LevelParamsSubset(ty, params) {
		return &report.Error{Kind: report.UNKNOWN_REFERENCE, Name: nm, Message: "the type uses a universe parameter the declaration does not bind"}
	}
	_, err := ck.InferSortOf(ty)
	return report.At(err, nm)
}

// height is 1 + the tallest definition the value refers to; it orders delta
// unfolding during definitional equality.
func (c *Certifier) height(value expr.Expr) int {
	refs := map[*name.Name]bool{}
	expr.CollectConstNames(value, refs)
	h := 0
	for n := range refs {
		if hn := c.Env.Height(n); hn > h {
			h = hn
		}
	}
	return h + 1
}
