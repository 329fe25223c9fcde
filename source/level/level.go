package level

// Universe levels: Zero, Succ, Max, IMax, and named parameters. The order on
// levels is semantic, not syntactic, so comparison goes through Simplify and
// the case analysis in leqCore rather than through plain structural equality.

import (
	"strconv"

	"github.com/quern-dev/quern/source/name"
)

type Kind int

const (
	ZERO Kind = iota
	SUCC
	MAX
	IMAX
	PARAM
)

type Level struct {
	Kind Kind
	A, B *Level // Succ uses A only
	Prm  *name.Name
	hash uint64
}

var Zero = &Level{Kind: ZERO, hash: 0xa0761d6478bd642f}

// One is Sort 1's level, the type of Prop.
var One = Succ(Zero)

func mix(h uint64, k uint64) uint64 {
	h ^= k
	h *= 0x100000001b3
	h ^= h >> 29
	return h
}

func Succ(l *Level) *Level {
	return &Level{Kind: SUCC, A: l, hash: mix(l.hash, 0x8ebc6af09c88c6e3)}
}

func Max(a, b *Level) *Level {
	return &Level{Kind: MAX, A: a, B: b, hash: mix(mix(a.hash, b.hash), 0x589965cc75374cc3)}
}

func IMax(a, b *Level) *Level {
	return &Level{Kind: IMAX, A: a, B: b, hash: mix(mix(a.hash, b.hash), 0x1d8e4e27c47d124f)}
}

func Param(n *name.Name) *Level {
	return &Level{Kind: PARAM, Prm: n, hash: mix(n.Hash(), 0xeb44accab455d165)}
}

func (l *Level) Hash() uint64 { return l.hash }

// Eq is syntactic equality. The semantic test is AntisymmEq.
func Eq(l, r *Level) bool {
	if l == r {
		return true
	}
	if l.Kind != r.Kind || l.hash != r.hash {
		return false
	}
	switch l.Kind {
	case ZERO:
		return true
	case SUCC:
		return Eq(l.A, r.A)
	case MAX, IMAX:
		return Eq(l.A, r.A) && Eq(l.B, r.B)
	default:
		return l.Prm == r.Prm
	}
}

// Simplify normalizes IMax nodes whose right side is known: IMax(_, 0) is 0,
// and IMax(a, Succ b) is Max(a, Succ b).
func (l *Level) Simplify() *Level {
	switch l.Kind {
	case ZERO, PARAM:
		return l
	case SUCC:
		return Succ(l.A.Simplify())
	case MAX:
		return combining(l.A.Simplify(), l.B.Simplify())
	default:
		b := l.B.Simplify()
		switch b.Kind {
		case ZERO:
			return Zero
		case SUCC:
			return combining(l.A.Simplify(), b)
		default:
			return IMax(l.A.Simplify(), b)
		}
	}
}

// combining is Max that folds matched Succ chains and zeros.
func combining(l, r *Level) *Level {
	switch {
	case l.Kind == ZERO:
		return r
	case r.Kind == ZERO:
		return l
	case l.Kind == SUCC && r.Kind == SUCC:
		return Succ(combining(l.A, r.A))
	default:
		return Max(l, r)
	}
}

// Leq is the semantic order on levels: l <= r under every assignment of the
// parameters.
func Leq(l, r *Level) bool {
	return leqCore(l.Simplify(), r.Simplify(), 0)
}

// leqCore decides simplify(l) <= simplify(r) + diff (diff may be negative).
func leqCore(l, r *Level, diff int) bool {
	switch {
	case l.Kind == ZERO && diff >= 0:
		return true
	case r.Kind == ZERO && diff < 0:
		return false
	case l.Kind == PARAM && r.Kind == PARAM:
		return l.Prm == r.Prm && diff >= 0
	case l.Kind == PARAM && r.Kind == ZERO:
		return false
	case l.Kind == ZERO && r.Kind == PARAM:
		return diff >= 0
	case l.Kind == SUCC:
		return leqCore(l.A, r, diff-1)
	case r.Kind == SUCC:
		return leqCore(l, r.A, diff+1)
	case l.Kind == MAX:
		return leqCore(l.A, r, diff) && leqCore(l.B, r, diff)
	case (l.Kind == PARAM || l.Kind == ZERO) && r.Kind == MAX:
		return leqCore(l, r.A, diff) || leqCore(l, r.B, diff)
	case l.Kind == IMAX && r.Kind == IMAX && Eq(l.A, r.A) && Eq(l.B, r.B):
		return true
	case l.Kind == IMAX && l.B.Kind == PARAM:
		return ensureIMaxLeq(l.B, l, r, diff)
	case r.Kind == IMAX && r.B.Kind == PARAM:
		return ensureIMaxLeq(r.B, l, r, diff)
	case l.Kind == IMAX && l.B.Kind == IMAX:
		a, x, y := l.A, l.B.A, l.B.B
		return leqCore(Max(IMax(a, y), IMax(x, y)), r, diff)
	case l.Kind == IMAX && l.B.Kind == MAX:
		a, x, y := l.A, l.B.A, l.B.B
		return leqCore(Max(IMax(a, x), IMax(a, y)).Simplify(), r, diff)
	case r.Kind == IMAX && r.B.Kind == IMAX:
		x, j, k := r.A, r.B.A, r.B.B
		return leqCore(l, Max(IMax(x, k), IMax(j, k)), diff)
	case r.Kind == IMAX && r.B.Kind == MAX:
		x, j, k := r.A, r.B.A, r.B.B
		return leqCore(l, Max(IMax(x, j), IMax(x, k)).Simplify(), diff)
	default:
		return false
	}
}

// ensureIMaxLeq handles an IMax whose right side is the parameter p by
// splitting on p: the inequality must hold both with p := 0 and with
// p := Succ p.
func ensureIMaxLeq(p *Level, l, r *Level, diff int) bool {
	zeroed := Subst{p.Prm: Zero}
	succed := Subst{p.Prm: Succ(p)}
	return leqCore(l.Instantiate(zeroed).Simplify(), r.Instantiate(zeroed).Simplify(), diff) &&
		leqCore(l.Instantiate(succed).Simplify(), r.Instantiate(succed).Simplify(), diff)
}

// AntisymmEq is semantic equality: leq both ways.
func AntisymmEq(l, r *Level) bool {
	return Leq(l, r) && Leq(r, l)
}

// EqLists compares two level lists pairwise by AntisymmEq.
func EqLists(ls, rs []*Level) bool {
	if len(ls) != len(rs) {
		return false
	}
	for i := range ls {
		if !AntisymmEq(ls[i], rs[i]) {
			return false
		}
	}
	return true
}

func (l *Level) IsZero() bool { return Leq(l, Zero) }

// IsNonzero reports that l is at least 1 under every parameter assignment.
func (l *Level) IsNonzero() bool { return Leq(One, l) }

func (l *Level) MaybeZero() bool { return !l.IsNonzero() }

func (l *Level) MaybeNonzero() bool { return !l.IsZero() }

// Subst maps universe parameters to levels.
type Subst map[*name.Name]*Level

// Instantiate replaces parameters according to s; parameters not in s are
// kept.
func (l *Level) Instantiate(s Subst) *Level {
	switch l.Kind {
	case ZERO:
		return l
	case SUCC:
		return Succ(l.A.Instantiate(s))
	case MAX:
		return Max(l.A.Instantiate(s), l.B.Instantiate(s))
	case IMAX:
		return IMax(l.A.Instantiate(s), l.B.Instantiate(s))
	default:
		if t, ok := s[l.Prm]; ok {
			return t
		}
		return l
	}
}

// MakeSubst zips a declaration's parameter list against the supplied level
// arguments. The caller has already checked the lengths match.
func MakeSubst(params, args []*Level) Subst {
	s := make(Subst, len(params))
	for i, p := range params {
		s[p.Prm] = args[i]
	}
	return s
}

// CollectParams adds every parameter name occurring in l to acc.
func (l *Level) CollectParams(acc map[*name.Name]bool) {
	switch l.Kind {
	case SUCC:
		l.A.CollectParams(acc)
	case MAX, IMAX:
		l.A.CollectParams(acc)
		l.B.CollectParams(acc)
	case PARAM:
		acc[l.Prm] = true
	}
}

// InstantiateMany applies s to each level in ls.
func InstantiateMany(ls []*Level, s Subst) []*Level {
	out := make([]*Level, len(ls))
	for i, l := range ls {
		out[i] = l.Instantiate(s)
	}
	return out
}

func (l *Level) String() string {
	// Peel the Succ chain so 'u+2' prints instead of 'Succ (Succ u)'.
	offset := 0
	base := l
	for base.Kind == SUCC {
		offset++
		base = base.A
	}
	var s string
	switch base.Kind {
	case ZERO:
		return strconv.Itoa(offset)
	case MAX:
		s = "(max " + base.A.String() + " " + base.B.String() + ")"
	case IMAX:
		s = "(imax " + base.A.String() + " " + base.B.String() + ")"
	default:
		s = base.Prm.String()
	}
	if offset > 0 {
		s = s + "+" + strconv.Itoa(offset)
	}
	return s
}
