package classify

import (
	"bytes"
	"sort"

	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pkg/errors"
)

// Classification holds the canonical form of a whole generating set: one
// Morph per connected component of its anticommutation graph.
type Classification struct {
	morphs []*Morph
}

func NewClassification() *Classification {
	return &Classification{}
}

func (c *Classification) Add(m *Morph) {
	c.morphs = append(c.morphs, m)
}

func (c *Classification) Morphs() []*Morph {
	return c.morphs
}

func (c *Classification) NumComponents() int {
	return len(c.morphs)
}

// Vertices returns the canonical vertices of all components.
func (c *Classification) Vertices() []gopauli.Pauli {
	var verts []gopauli.Pauli
	for _, m := range c.morphs {
		verts = append(verts, m.Vertices()...)
	}
	return verts
}

// Dependents returns the generators found redundant across all components.
func (c *Classification) Dependents() []gopauli.Pauli {
	var deps []gopauli.Pauli
	for _, m := range c.morphs {
		deps = append(deps, m.Dependents()...)
	}
	return deps
}

// DLADim returns the dimension of the Lie algebra generated by the
// canonical vertices: the size of their commutator closure.  Products of
// anticommuting pairs are again single strings, so the closure is exact.
func (c *Classification) DLADim() int {
	return DLADim(c.Vertices())
}

// DLADim computes the commutator closure size of the given strings.
func DLADim(generators []gopauli.Pauli) int {
	seen := make(map[gopauli.Pauli]struct{}, len(generators))
	basis := make([]gopauli.Pauli, 0, len(generators))
	add := func(p gopauli.Pauli) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			basis = append(basis, p)
		}
	}
	for _, g := range generators {
		add(g)
	}
	for i := 0; i < len(basis); i++ {
		for j := 0; j < i; j++ {
			if !basis[i].Commutes(basis[j]) {
				add(basis[i].Mul(basis[j]))
			}
		}
	}
	return len(basis)
}

// Algebra names the Lie algebra as a "+"-joined product of simple parts.
// Components whose leg profile has no known name produce ErrNotClassified.
func (c *Classification) Algebra() (string, error) {
	if len(c.morphs) == 0 {
		return "", errors.Wrap(gopauli.ErrNotClassified, "empty classification")
	}
	parts := make([]string, 0, len(c.morphs))
	for _, m := range c.morphs {
		name, ok := NameForMorph(m)
		if !ok {
			return "", errors.Wrapf(gopauli.ErrNotClassified, "no named algebra for leg profile %v", m.Profile())
		}
		parts = append(parts, name)
	}
	sort.Strings(parts)
	out := parts[0]
	for _, p := range parts[1:] {
		out += "+" + p
	}
	return out, nil
}

// IsAlgebra reports whether the classified algebra equals name up to the
// standard low-rank isomorphisms and part ordering.
func (c *Classification) IsAlgebra(name string) (bool, error) {
	got, err := c.Algebra()
	if err != nil {
		return false, err
	}
	return SameAlgebra(got, name), nil
}

// AppendSpecTo appends a deterministic encoding of the whole classification:
// the component count followed by each component's encoding, components
// sorted lexicographically so the result is order invariant.
func (c *Classification) AppendSpecTo(dst []byte) []byte {
	blobs := make([][]byte, len(c.morphs))
	for i, m := range c.morphs {
		blobs[i] = m.AppendSpecTo(nil)
	}
	sort.Slice(blobs, func(i, j int) bool {
		return bytes.Compare(blobs[i], blobs[j]) < 0
	})
	dst = append(dst, byte(len(blobs)))
	for _, b := range blobs {
		dst = append(dst, b...)
	}
	return dst
}
