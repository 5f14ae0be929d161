package classify

import (
	"github.com/pauli-systems/gopauli/gopauli"
)

// Morph is the canonical form of one connected component: a caterpillar
// of legs around a center, plus the generators found to be dependent while
// building it.  A Morph is immutable once built; probe operations work on
// throwaway copies of its legs.
type Morph struct {
	legs       *Legs
	dependents []gopauli.Pauli
}

// NumVertices counts the canonical vertices including the center.
func (m *Morph) NumVertices() int {
	return m.legs.NumVertices()
}

// Vertices returns the canonical vertices, center first, then legs in order.
func (m *Morph) Vertices() []gopauli.Pauli {
	return m.legs.Vertices()
}

// Center returns the caterpillar center.
func (m *Morph) Center() (gopauli.Pauli, bool) {
	return m.legs.Center()
}

// Dependents returns the generators that turned out to be implied by the
// canonical vertices.
func (m *Morph) Dependents() []gopauli.Pauli {
	return m.dependents
}

// Profile returns the ascending leg lengths, center excluded.
func (m *Morph) Profile() []int {
	return m.legs.Profile()
}

// Legs exposes the canonical structure.  Callers must treat it as read-only;
// use Clone for a mutable copy.
func (m *Morph) Legs() *Legs {
	return m.legs
}

// probe runs one candidate through a scratch engine in check mode.
func (m *Morph) probe(v gopauli.Pauli) (Outcome, error) {
	en := &Engine{
		legs:    m.legs.Clone(),
		isCheck: true,
	}
	return en.pipeline(v)
}

// IsEq reports whether the generators describe exactly this structure: every
// generator must already be implied, none may extend it.
func (m *Morph) IsEq(generators []gopauli.Pauli) bool {
	for _, g := range generators {
		out, err := m.probe(g)
		if err != nil {
			continue
		}
		if out == OutcomeAppended {
			return false
		}
	}
	return true
}

// SelectDependents returns the subset of generators that are implied by the
// canonical vertices without extending the structure.
func (m *Morph) SelectDependents(generators []gopauli.Pauli) []gopauli.Pauli {
	var deps []gopauli.Pauli
	for _, g := range generators {
		out, err := m.probe(g)
		if err != nil {
			continue
		}
		if out == OutcomeDependent {
			deps = append(deps, g)
		}
	}
	return deps
}

// AppendSpecTo appends a deterministic binary encoding of the canonical
// structure: leg count, then per leg its length and vertex encodings.
// The center counts as leg zero.
func (m *Morph) AppendSpecTo(dst []byte) []byte {
	dst = append(dst, byte(m.legs.NumLegs()+1))
	for _, leg := range m.legs.Export() {
		dst = append(dst, byte(len(leg)))
		for _, v := range leg {
			dst = v.AppendTo(dst)
		}
	}
	return dst
}
