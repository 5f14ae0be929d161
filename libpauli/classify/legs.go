// Package classify builds and compares the canonical "caterpillar" form of
// the anticommutation graph of a set of Pauli strings.  One connected
// component classifies to one Morph: a center vertex plus legs ordered by
// ascending length, the last leg being the long leg.  The multiset of leg
// lengths determines the dynamical Lie algebra the component generates.
package classify

import (
	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pkg/errors"
)

// MaxLongLeg caps the long leg length.  Appends that would grow it past
// this bound defer the tail vertices to the engine's delayed buffer.
const MaxLongLeg = 4

// Legs is the leg structure of one canonical component, exclusively owned
// by the engine instance building it.  Leg 0 holds the single center vertex;
// legs 1..n are kept sorted by ascending length.
type Legs struct {
	legs [][]gopauli.Pauli
}

func NewLegs() *Legs {
	return &Legs{}
}

// Clone deep-copies the structure, so probes against a frozen Morph
// never leak mutations back into it.
func (L *Legs) Clone() *Legs {
	c := &Legs{
		legs: make([][]gopauli.Pauli, len(L.legs)),
	}
	for i, leg := range L.legs {
		c.legs[i] = append([]gopauli.Pauli(nil), leg...)
	}
	return c
}

func (L *Legs) IsEmpty() bool {
	return len(L.legs) == 0
}

// HasCore reports whether the three-vertex bootstrap has completed,
// i.e. the structure has a center and at least two legs.
func (L *Legs) HasCore() bool {
	return len(L.legs) >= 3
}

// NumLegs counts legs excluding the center leg.
func (L *Legs) NumLegs() int {
	if len(L.legs) == 0 {
		return 0
	}
	return len(L.legs) - 1
}

func (L *Legs) NumVertices() int {
	n := 0
	for _, leg := range L.legs {
		n += len(leg)
	}
	return n
}

// Find locates v, returning its leg index and position within the leg,
// or (-1, -1) when absent.
func (L *Legs) Find(v gopauli.Pauli) (legIdx, vtxIdx int) {
	for i, leg := range L.legs {
		for j, u := range leg {
			if u == v {
				return i, j
			}
		}
	}
	return -1, -1
}

func (L *Legs) Contains(v gopauli.Pauli) bool {
	legIdx, _ := L.Find(v)
	return legIdx >= 0
}

// Vertices returns every vertex in leg order, center first.
func (L *Legs) Vertices() []gopauli.Pauli {
	verts := make([]gopauli.Pauli, 0, L.NumVertices())
	for _, leg := range L.legs {
		verts = append(verts, leg...)
	}
	return verts
}

func (L *Legs) Center() (gopauli.Pauli, bool) {
	if L.IsEmpty() {
		return gopauli.Pauli{}, false
	}
	return L.legs[0][0], true
}

func (L *Legs) SetCenter(v gopauli.Pauli) error {
	if !L.IsEmpty() {
		return errors.Wrap(gopauli.ErrStructuralViolation, "center already set")
	}
	L.legs = append(L.legs, []gopauli.Pauli{v})
	return nil
}

// LongLeg returns the last (longest) leg.  The returned slice aliases the
// structure and must be treated as read-only.
func (L *Legs) LongLeg() ([]gopauli.Pauli, error) {
	if !L.HasCore() {
		return nil, errors.Wrap(gopauli.ErrStructuralViolation, "no legs")
	}
	return L.legs[len(L.legs)-1], nil
}

// OneVertex returns the control vertex: the head of the first leg,
// which is always a leg of length 1 once the core exists.
func (L *Legs) OneVertex() (gopauli.Pauli, error) {
	if !L.HasCore() {
		return gopauli.Pauli{}, errors.Wrap(gopauli.ErrStructuralViolation, "no legs")
	}
	return L.legs[1][0], nil
}

// OneVertices returns the vertices of all length-1 legs.
func (L *Legs) OneVertices() ([]gopauli.Pauli, error) {
	if !L.HasCore() {
		return nil, errors.Wrap(gopauli.ErrStructuralViolation, "no legs")
	}
	var ones []gopauli.Pauli
	for i := 1; i < len(L.legs); i++ {
		if len(L.legs[i]) != 1 {
			break
		}
		ones = append(ones, L.legs[i][0])
	}
	return ones, nil
}

// TwoLegs returns copies of all length-2 legs in structure order.
func (L *Legs) TwoLegs() ([][2]gopauli.Pauli, error) {
	if !L.HasCore() {
		return nil, errors.Wrap(gopauli.ErrStructuralViolation, "no legs")
	}
	var twos [][2]gopauli.Pauli
	for i := 1; i < len(L.legs); i++ {
		if len(L.legs[i]) == 2 {
			twos = append(twos, [2]gopauli.Pauli{L.legs[i][0], L.legs[i][1]})
		} else if len(L.legs[i]) > 2 {
			break
		}
	}
	return twos, nil
}

// HasTwoLeg reports whether a length-2 leg exists that is not the long leg itself.
func (L *Legs) HasTwoLeg() (bool, error) {
	twos, err := L.TwoLegs()
	if err != nil {
		return false, err
	}
	if len(twos) == 0 {
		return false, nil
	}
	longLeg, err := L.LongLeg()
	if err != nil {
		return false, err
	}
	if len(longLeg) != 2 {
		return true, nil
	}
	return len(twos) > 1, nil
}

// insertSorted places leg back into the list keeping legs 1..n ordered
// by ascending length.  minIdx bounds the scan (1 for Append, 2 for Remove).
func (L *Legs) insertSorted(leg []gopauli.Pauli, minIdx int) error {
	if len(leg) >= len(L.legs[len(L.legs)-1]) {
		L.legs = append(L.legs, leg)
		return nil
	}
	for i := len(L.legs) - 1; i >= minIdx; i-- {
		if len(L.legs[i]) <= len(leg) {
			L.legs = append(L.legs, nil)
			copy(L.legs[i+2:], L.legs[i+1:])
			L.legs[i+1] = leg
			return nil
		}
	}
	return errors.Wrap(gopauli.ErrStructuralViolation, "no slot for leg")
}

// Append attaches v after lit.  When lit is the center, a new length-1 leg
// is spliced in right after the center; otherwise lit must be the tail of
// its leg, which grows by one and is re-ranked by length.
func (L *Legs) Append(v, lit gopauli.Pauli) error {
	legIdx, vtxIdx := L.Find(lit)
	if legIdx < 0 {
		return errors.Wrap(gopauli.ErrStructuralViolation, "lit vertex not in structure")
	}
	if legIdx == 0 {
		L.legs = append(L.legs, nil)
		copy(L.legs[2:], L.legs[1:])
		L.legs[1] = []gopauli.Pauli{v}
		return nil
	}
	if vtxIdx != len(L.legs[legIdx])-1 {
		return errors.Wrap(gopauli.ErrStructuralViolation, "lit vertex is not a leg tail")
	}
	leg := append([]gopauli.Pauli(nil), L.legs[legIdx]...)
	L.legs = append(L.legs[:legIdx], L.legs[legIdx+1:]...)
	leg = append(leg, v)
	return L.insertSorted(leg, 1)
}

// Remove truncates the leg holding v at v: the vertex and everything after
// it leave the structure, and the surviving prefix is re-ranked by length.
func (L *Legs) Remove(v gopauli.Pauli) error {
	legIdx, vtxIdx := L.Find(v)
	if legIdx < 0 {
		return errors.Wrap(gopauli.ErrStructuralViolation, "vertex not in structure")
	}
	if legIdx == 0 {
		return errors.Wrap(gopauli.ErrStructuralViolation, "cannot remove the center")
	}
	prefix := append([]gopauli.Pauli(nil), L.legs[legIdx][:vtxIdx]...)
	L.legs = append(L.legs[:legIdx], L.legs[legIdx+1:]...)
	if len(prefix) == 0 {
		return nil
	}
	if len(prefix) == 1 {
		L.legs = append(L.legs, nil)
		copy(L.legs[2:], L.legs[1:])
		L.legs[1] = prefix
		return nil
	}
	return L.insertSorted(prefix, 2)
}

// Replace swaps v for vNew in place.
func (L *Legs) Replace(v, vNew gopauli.Pauli) error {
	legIdx, vtxIdx := L.Find(v)
	if legIdx < 0 {
		return errors.Wrap(gopauli.ErrStructuralViolation, "vertex not in structure")
	}
	L.legs[legIdx][vtxIdx] = vNew
	return nil
}

// Profile returns the leg lengths excluding the center, ascending.
func (L *Legs) Profile() []int {
	if L.IsEmpty() {
		return nil
	}
	profile := make([]int, 0, len(L.legs)-1)
	for i := 1; i < len(L.legs); i++ {
		profile = append(profile, len(L.legs[i]))
	}
	return profile
}

// Export returns a deep copy of the raw leg slices, center leg first.
func (L *Legs) Export() [][]gopauli.Pauli {
	out := make([][]gopauli.Pauli, len(L.legs))
	for i, leg := range L.legs {
		out[i] = append([]gopauli.Pauli(nil), leg...)
	}
	return out
}
