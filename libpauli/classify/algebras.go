package classify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
)

// aliasRegistry maps an algebra name to its preferred form under the
// standard low-rank isomorphisms.  A preferred form may itself be a sum,
// e.g. so(4).
var aliasRegistry = redblacktree.NewWith(utils.StringComparator)

func init() {
	for name, preferred := range map[string]string{
		"so(2)": "u(1)",
		"so(3)": "su(2)",
		"sp(1)": "su(2)",
		"so(4)": "su(2)+su(2)",
		"sp(2)": "so(5)",
		"su(4)": "so(6)",
	} {
		aliasRegistry.Put(name, preferred)
	}
}

// NameForMorph names the algebra generated by one component's canonical
// vertices.  Path-shaped structures on m vertices generate so(m+1); other
// shapes have no registered name.
func NameForMorph(m *Morph) (string, bool) {
	if !isPathProfile(m.Profile()) {
		return "", false
	}
	name := fmt.Sprintf("so(%d)", m.NumVertices()+1)
	parts := canonicalParts(name)
	return strings.Join(parts, "+"), true
}

// isPathProfile reports whether the leg lengths describe a path graph:
// no legs, a single leg, or one length-1 leg plus the long leg.
func isPathProfile(profile []int) bool {
	switch len(profile) {
	case 0, 1:
		return true
	case 2:
		return profile[0] == 1
	}
	return false
}

// canonicalParts splits a "+"-joined name, resolves each part through the
// alias registry until fixpoint, and returns the parts sorted.
func canonicalParts(name string) []string {
	pending := strings.Split(name, "+")
	var parts []string
	for len(pending) > 0 {
		p := strings.TrimSpace(pending[0])
		pending = pending[1:]
		if preferred, ok := aliasRegistry.Get(p); ok {
			pending = append(strings.Split(preferred.(string), "+"), pending...)
			continue
		}
		parts = append(parts, p)
	}
	sort.Strings(parts)
	return parts
}

// SameAlgebra compares two algebra names as multisets of canonical simple
// parts, so "so(3)+u(1)" equals "u(1)+su(2)".
func SameAlgebra(a, b string) bool {
	pa, pb := canonicalParts(a), canonicalParts(b)
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
	}
	return true
}

// AlgebraDim returns the dimension of a named algebra, summing over "+"
// joined parts.  Recognized families are u(k), su(k), so(k), and sp(k).
func AlgebraDim(name string) (int, bool) {
	dim := 0
	for _, part := range canonicalParts(name) {
		d, ok := simpleDim(part)
		if !ok {
			return 0, false
		}
		dim += d
	}
	return dim, true
}

func simpleDim(part string) (int, bool) {
	open := strings.IndexByte(part, '(')
	if open < 0 || !strings.HasSuffix(part, ")") {
		return 0, false
	}
	k, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || k < 1 {
		return 0, false
	}
	switch part[:open] {
	case "u":
		return k * k, true
	case "su":
		return k*k - 1, true
	case "so":
		return k * (k - 1) / 2, true
	case "sp":
		return k * (2*k + 1), true
	}
	return 0, false
}
