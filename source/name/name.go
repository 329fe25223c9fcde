package name

// Hierarchical names, e.g. 'nat.rec' or 'foo.bar.2'. Names are interned in a
// process-global table, so two names built from the same components are the
// same pointer and comparison is pointer identity. The hash is computed once
// at construction.

import (
	"strconv"
	"strings"
	"sync"
)

type Name struct {
	parent *Name
	str    string
	num    uint64
	isNum  bool
	hash   uint64
}

// The anonymous name, root of every other name.
var Anon = &Name{hash: 0x9e3779b97f4a7c15}

type internKey struct {
	parent *Name
	str    string
	num    uint64
	isNum  bool
}

var (
	internMu  sync.Mutex
	internTab = map[internKey]*Name{}
)

func mix(h uint64, k uint64) uint64 {
	h ^= k
	h *= 0x100000001b3
	h ^= h >> 29
	return h
}

func hashString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h = mix(h, uint64(s[i]))
	}
	return h
}

func intern(key internKey) *Name {
	internMu.Lock()
	defer internMu.Unlock()
	if n, ok := internTab[key]; ok {
		return n
	}
	var h uint64
	if key.isNum {
		h = mix(mix(key.parent.hash, 0x517cc1b727220a95), key.num)
	} else {
		h = hashString(mix(key.parent.hash, 0x2545f4914f6cdd1d), key.str)
	}
	n := &Name{parent: key.parent, str: key.str, num: key.num, isNum: key.isNum, hash: h}
	internTab[key] = n
	return n
}

// Str extends a name with a string component.
func (n *Name) Str(s string) *Name {
	return intern(internKey{parent: n, str: s})
}

// Num extends a name with a numeric component.
func (n *Name) Num(i uint64) *Name {
	return intern(internKey{parent: n, num: i, isNum: true})
}

func (n *Name) IsAnon() bool { return n == Anon }

func (n *Name) Hash() uint64 { return n.hash }

// Parent returns the name with the last component removed; Anon for Anon.
func (n *Name) Parent() *Name {
	if n == Anon {
		return Anon
	}
	return n.parent
}

// FromString builds a name from dot-separated string components, so
// FromString("nat.rec") == Anon.Str("nat").Str("rec"). Purely numeric
// components become numeric extensions.
func FromString(s string) *Name {
	n := Anon
	if s == "" {
		return n
	}
	for _, part := range strings.Split(s, ".") {
		if i, err := strconv.ParseUint(part, 10, 64); err == nil {
			n = n.Num(i)
		} else {
			n = n.Str(part)
		}
	}
	return n
}

func (n *Name) String() string {
	if n == Anon {
		return "[anonymous]"
	}
	var parts []string
	for m := n; m != Anon; m = m.parent {
		if m.isNum {
			parts = append(parts, strconv.FormatUint(m.num, 10))
		} else {
			parts = append(parts, m.str)
		}
	}
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString(parts[i])
		if i > 0 {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// Fresh returns suggested, or suggested extended with the smallest numeric
// suffix that avoids everything in taken. Used when deriving a universe
// parameter for a recursor that must not clash with the declared parameters.
func Fresh(suggested *Name, taken map[*Name]bool) *Name {
	if !taken[suggested] {
		return suggested
	}
	for i := uint64(0); ; i++ {
		c := suggested.Num(i)
		if !taken[c] {
			return c
		}
	}
}
