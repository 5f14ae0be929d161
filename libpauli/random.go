package libpauli

import (
	"math/rand"

	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pkg/errors"
)

// Rand generates random Pauli strings and sets from an explicit seed so
// experiment runs reproduce exactly.
type Rand struct {
	rnd *rand.Rand
}

func NewRand(seed int64) *Rand {
	return &Rand{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

func (r *Rand) Intn(n int) int {
	return r.rnd.Intn(n)
}

// Pauli returns a uniformly random string of numQubits sites.
func (r *Rand) Pauli(numQubits int) gopauli.Pauli {
	p := gopauli.Identity(numQubits)
	for site := 0; site < numQubits; site++ {
		p = p.WithSite(site, gopauli.Op(r.rnd.Intn(4)))
	}
	return p
}

// KLocalPauli returns a random string whose non-identity support fits in a
// window of k contiguous sites, placed at a random offset.
func (r *Rand) KLocalPauli(numQubits, k int) (gopauli.Pauli, error) {
	if k < 1 || k > numQubits {
		return gopauli.Pauli{}, errors.Wrapf(gopauli.ErrBadSite, "locality %d of %d qubits", k, numQubits)
	}
	p := gopauli.Identity(numQubits)
	offset := r.rnd.Intn(numQubits - k + 1)
	for i := 0; i < k; i++ {
		p = p.WithSite(offset+i, gopauli.Op(r.rnd.Intn(4)))
	}
	return p, nil
}

// Set returns a pooled Set of numStrings random generators.
func (r *Rand) Set(numQubits, numStrings int) (*Set, error) {
	set := NewSet(nil)
	for i := 0; i < numStrings; i++ {
		if err := set.Add(r.Pauli(numQubits)); err != nil {
			set.Reclaim()
			return nil, err
		}
	}
	return set, nil
}

// ShiftedPaulis returns every placement of p's sites shifted across width
// sites, deduplicated.  This is the k-local expansion of one generator.
func ShiftedPaulis(p gopauli.Pauli, width int) ([]gopauli.Pauli, error) {
	if width < p.NumQubits() {
		return nil, errors.Wrapf(gopauli.ErrLengthMismatch, "width %d below %d", width, p.NumQubits())
	}
	span := p.NumQubits()
	var out []gopauli.Pauli
	for offset := 0; offset+span <= width; offset++ {
		shifted := gopauli.Identity(width)
		for site := 0; site < span; site++ {
			shifted = shifted.WithSite(offset+site, p.Site(site))
		}
		if !gopauli.ContainsPauli(out, shifted) {
			out = append(out, shifted)
		}
	}
	return out, nil
}

// KLocalSet expands every generator of src into all of its shifted
// placements over width sites, building the k-local generator set.
func KLocalSet(src *Set, width int) (*Set, error) {
	out := NewSet(nil)
	for _, g := range src.Generators() {
		shifts, err := ShiftedPaulis(g, width)
		if err != nil {
			out.Reclaim()
			return nil, err
		}
		for _, s := range shifts {
			if !out.Contains(s) {
				if err := out.Add(s); err != nil {
					out.Reclaim()
					return nil, err
				}
			}
		}
	}
	return out, nil
}
