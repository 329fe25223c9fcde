package env

// The environment is append-only: declarations are committed one at a time,
// each validated against what is already present, and nothing is ever
// retracted or persisted. Reads vastly outnumber the single-writer commits,
// so the map sits behind an RWMutex.

import (
	"sync"

	"github.com/quern-dev/quern/source/expr"
	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/report"
)

type NotationKind int

const (
	PREFIX NotationKind = iota
	INFIX
	POSTFIX
)

// Notation is display-only metadata from the export stream, kept for the
// pretty printer and otherwise ignored.
type Notation struct {
	Kind     NotationKind
	Priority int
	Symbol   string
}

type Env struct {
	mu        sync.RWMutex
	decls     map[*name.Name]Declaration
	order     []*name.Name
	notations map[*name.Name]Notation
}

func New() *Env {
	return &Env{
		decls:     map[*name.Name]Declaration{},
		notations: map[*name.Name]Notation{},
	}
}

func (e *Env) Lookup(n *name.Name) (Declaration, bool) {
	e.mu.RLock()
	d, ok := e.decls[n]
	e.mu.RUnlock()
	return d, ok
}

func (e *Env) Contains(n *name.Name) bool {
	_, ok := e.Lookup(n)
	return ok
}

// Height returns the reducibility height of n, 0 for anything that is not a
// definition.
func (e *Env) Height(n *name.Name) int {
	if d, ok := e.Lookup(n); ok {
		if def, ok := d.(*Definition); ok {
			return def.Height
		}
	}
	return 0
}

func (e *Env) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order)
}

// Order returns the names in commit order.
func (e *Env) Order() []*name.Name {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*name.Name, len(e.order))
	copy(out, e.order)
	return out
}

// Commit adds d after checking the closure conditions: the name is new, every
// constant referred to is already committed and applied to the right number
// of levels, and every universe parameter used is one the declaration itself
// binds.
func (e *Env) Commit(d Declaration) error {
	n := d.DeclName()
	if e.Contains(n) {
		return &report.Error{Kind: report.DUPLICATE_NAME, Name: n, Message: "the name is already committed"}
	}
	if err := report.At(e.checkRefs(d.DeclType()), n); err != nil {
		return err
	}
	if !expr.LevelParamsSubset(d.DeclType(), d.LevelParams()) {
		return &report.Error{Kind: report.UNKNOWN_REFERENCE, Name: n, Message: "the type uses a universe parameter the declaration does not bind"}
	}
	if def, ok := d.(*Definition); ok {
		if err := report.At(e.checkRefs(def.Value), n); err != nil {
			return err
		}
		if !expr.LevelParamsSubset(def.Value, def.LevelParams()) {
			return &report.Error{Kind: report.UNKNOWN_REFERENCE, Name: n, Message: "the value uses a universe parameter the definition does not bind"}
		}
	}
	e.mu.Lock()
	e.decls[n] = d
	e.order = append(e.order, n)
	e.mu.Unlock()
	return nil
}

// checkRefs walks t checking every constant against the environment.
func (e *Env) checkRefs(t expr.Expr) error {
	switch x := t.(type) {
	case *expr.Const:
		d, ok := e.Lookup(x.Nm)
		if !ok {
			return report.New(report.UNKNOWN_REFERENCE, "reference to '%s', which is not committed", x.Nm)
		}
		if len(x.Lvls) != len(d.LevelParams()) {
			return report.New(report.UNIVERSE_ARITY, "'%s' takes %d universe argument(s), given %d", x.Nm, len(d.LevelParams()), len(x.Lvls))
		}
	case *expr.App:
		if err := e.checkRefs(x.Fn); err != nil {
			return err
		}
		return e.checkRefs(x.Arg)
	case *expr.Lambda:
		if err := e.checkRefs(x.Bind.Ty); err != nil {
			return err
		}
		return e.checkRefs(x.Body)
	case *expr.Pi:
		if err := e.checkRefs(x.Bind.Ty); err != nil {
			return err
		}
		return e.checkRefs(x.Body)
	case *expr.Let:
		if err := e.checkRefs(x.Bind.Ty); err != nil {
			return err
		}
		if err := e.checkRefs(x.Val); err != nil {
			return err
		}
		return e.checkRefs(x.Body)
	case *expr.Local:
		return e.checkRefs(x.Bind.Ty)
	}
	return nil
}

func (e *Env) AddNotation(n *name.Name, nt Notation) {
	e.mu.Lock()
	e.notations[n] = nt
	e.mu.Unlock()
}

func (e *Env) NotationFor(n *name.Name) (Notation, bool) {
	e.mu.RLock()
	nt, ok := e.notations[n]
	e.mu.RUnlock()
	return nt, ok
}
