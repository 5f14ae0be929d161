package libpauli

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pauli-systems/gopauli/libpauli/classify"
	"github.com/pkg/errors"
)

// Set is an ordered collection of Pauli-string generators plus its lazily
// computed canonical classification.  All generators share a common qubit
// count; shorter strings are padded with identities as they are added.
type Set struct {
	nq     int
	strs   []gopauli.Pauli
	class  *classify.Classification
	tracer classify.Tracer
}

// NewSet returns a pooled Set initialized as a copy of src (or empty if nil).
func NewSet(src *Set) *Set {
	set := setPool.Get().(*Set)
	set.Init(src)
	return set
}

var setPool = sync.Pool{
	New: func() interface{} {
		return &Set{}
	},
}

func (set *Set) Init(src *Set) {
	set.nq = 0
	set.strs = set.strs[:0]
	set.class = nil
	set.tracer = nil
	if src != nil {
		set.nq = src.nq
		set.strs = append(set.strs, src.strs...)
		set.class = src.class
	}
}

// Reclaim recycles this Set for reuse.  The caller asserts no references remain.
func (set *Set) Reclaim() {
	if set != nil {
		setPool.Put(set)
	}
}

func (set *Set) MakeCopy() gopauli.SetState {
	return NewSet(set)
}

// SetTracer routes classification progress to tr.  Must be set before Canonize.
func (set *Set) SetTracer(tr classify.Tracer) {
	set.tracer = tr
}

func (set *Set) NumQubits() int {
	return set.nq
}

func (set *Set) NumStrings() int {
	return len(set.strs)
}

func (set *Set) Generators() []gopauli.Pauli {
	return set.strs
}

// invalidate drops the cached classification after any mutation.
func (set *Set) invalidate() {
	set.class = nil
}

// Add appends generators, padding widths so all strings stay the same length.
func (set *Set) Add(strs ...gopauli.Pauli) error {
	for _, p := range strs {
		if p.NumQubits() > gopauli.MaxQubits {
			return errors.Wrapf(gopauli.ErrQubitsExceeded, "%d qubits", p.NumQubits())
		}
		if p.NumQubits() > set.nq {
			for i, s := range set.strs {
				grown, err := s.Expand(p.NumQubits())
				if err != nil {
					return err
				}
				set.strs[i] = grown
			}
			set.nq = p.NumQubits()
		} else if p.NumQubits() < set.nq {
			grown, err := p.Expand(set.nq)
			if err != nil {
				return err
			}
			p = grown
		}
		set.strs = append(set.strs, p)
	}
	set.invalidate()
	return nil
}

// Remove drops the first occurrence of p, reporting whether it was present.
func (set *Set) Remove(p gopauli.Pauli) bool {
	for i, s := range set.strs {
		if s == p {
			set.strs = append(set.strs[:i], set.strs[i+1:]...)
			set.invalidate()
			return true
		}
	}
	return false
}

// Replace swaps the first occurrence of p for pNew.
func (set *Set) Replace(p, pNew gopauli.Pauli) bool {
	for i, s := range set.strs {
		if s == p {
			set.strs[i] = pNew
			set.invalidate()
			return true
		}
	}
	return false
}

// Contract replaces p with the product p * q, merging the information q
// carries into p's slot.
func (set *Set) Contract(p, q gopauli.Pauli) bool {
	return set.Replace(p, p.Mul(q))
}

func (set *Set) Contains(p gopauli.Pauli) bool {
	return gopauli.ContainsPauli(set.strs, p)
}

// Sort orders the generators canonically in place.
func (set *Set) Sort() *Set {
	gopauli.SortPaulis(set.strs)
	return set
}

// Components splits the generators into the connected components of their
// anticommutation graph, largest first.
func (set *Set) Components() [][]gopauli.Pauli {
	var comps [][]gopauli.Pauli
	visited := make([]bool, len(set.strs))

	for i := range set.strs {
		if visited[i] {
			continue
		}
		comp := []gopauli.Pauli{set.strs[i]}
		visited[i] = true
		for scan := 0; scan < len(comp); scan++ {
			for j := range set.strs {
				if visited[j] {
					continue
				}
				// duplicates travel with their first occurrence
				if set.strs[j] == comp[scan] || !comp[scan].Commutes(set.strs[j]) {
					comp = append(comp, set.strs[j])
					visited[j] = true
				}
			}
		}
		comps = append(comps, comp)
	}
	sort.SliceStable(comps, func(i, j int) bool {
		return len(comps[i]) > len(comps[j])
	})
	return comps
}

// Canonize builds (or rebuilds) the canonical classification of this set.
func (set *Set) Canonize() error {
	if len(set.strs) == 0 {
		return errors.Wrap(gopauli.ErrEmptySet, "nothing to canonize")
	}
	class := classify.NewClassification()
	for _, comp := range set.Components() {
		en := classify.NewEngine(classify.BuildOpts{
			Tracer: set.tracer,
		})
		morph, err := en.Build(comp)
		if err != nil {
			return err
		}
		class.Add(morph)
	}
	set.class = class
	return nil
}

// Classification returns the cached classification, canonizing if needed.
func (set *Set) Classification() (*classify.Classification, error) {
	if set.class == nil {
		if err := set.Canonize(); err != nil {
			return nil, err
		}
	}
	return set.class, nil
}

// Algebra returns the classified algebra name.
func (set *Set) Algebra() (string, error) {
	class, err := set.Classification()
	if err != nil {
		return "", err
	}
	return class.Algebra()
}

// IsAlgebra reports whether this set generates the named algebra, up to the
// standard low-rank isomorphisms.
func (set *Set) IsAlgebra(name string) (bool, error) {
	class, err := set.Classification()
	if err != nil {
		return false, err
	}
	return class.IsAlgebra(name)
}

// DLADim returns the dimension of the generated dynamical Lie algebra.
func (set *Set) DLADim() (int, error) {
	class, err := set.Classification()
	if err != nil {
		return 0, err
	}
	return class.DLADim(), nil
}

// Dependents returns the generators found redundant during classification.
func (set *Set) Dependents() ([]gopauli.Pauli, error) {
	class, err := set.Classification()
	if err != nil {
		return nil, err
	}
	return class.Dependents(), nil
}

// Independents returns the generators that are not dependents.
func (set *Set) Independents() ([]gopauli.Pauli, error) {
	deps, err := set.Dependents()
	if err != nil {
		return nil, err
	}
	var out []gopauli.Pauli
	for _, s := range set.strs {
		if !gopauli.ContainsPauli(deps, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// CanonicVertices returns the canonical vertices of all components.
func (set *Set) CanonicVertices() ([]gopauli.Pauli, error) {
	class, err := set.Classification()
	if err != nil {
		return nil, err
	}
	return class.Vertices(), nil
}

// IsIn reports whether every component of other is already implied by this
// set's canonical structure.
func (set *Set) IsIn(other *Set) (bool, error) {
	if len(set.strs) == 0 {
		return false, nil
	}
	class, err := set.Classification()
	if err != nil {
		return false, err
	}
	for _, comp := range other.Components() {
		matched := false
		for _, morph := range class.Morphs() {
			if morph.IsEq(comp) {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// IsEq reports whether two generator sets describe the same algebra structure.
func (set *Set) IsEq(other *Set) (bool, error) {
	in, err := set.IsIn(other)
	if err != nil || !in {
		return false, err
	}
	return other.IsIn(set)
}

// SelectDependents returns the strings of other implied by this set.
func (set *Set) SelectDependents(other *Set) ([]gopauli.Pauli, error) {
	if len(set.strs) == 0 {
		return nil, errors.Wrap(gopauli.ErrEmptySet, "no structure to select against")
	}
	class, err := set.Classification()
	if err != nil {
		return nil, err
	}
	var deps []gopauli.Pauli
	for _, comp := range other.Components() {
		for _, morph := range class.Morphs() {
			deps = append(deps, morph.SelectDependents(comp)...)
		}
	}
	return deps, nil
}

// NumAnticommutingPairs counts the edges of the anticommutation graph.
func (set *Set) NumAnticommutingPairs() int {
	count := 0
	for i := 1; i < len(set.strs); i++ {
		for j := 0; j < i; j++ {
			if !set.strs[i].Commutes(set.strs[j]) {
				count++
			}
		}
	}
	return count
}

// AnticommutationFraction returns the edge density of the anticommutation graph.
func (set *Set) AnticommutationFraction() float64 {
	n := len(set.strs)
	if n < 2 {
		return 0
	}
	pairs := n * (n - 1) / 2
	return float64(set.NumAnticommutingPairs()) / float64(pairs)
}

// Anticommutates returns the generators that anticommute with p.
func (set *Set) Anticommutates(p gopauli.Pauli) []gopauli.Pauli {
	var out []gopauli.Pauli
	for _, s := range set.strs {
		if s != p && !s.Commutes(p) {
			out = append(out, s)
		}
	}
	return out
}

// enumLimit bounds all-strings enumeration; 4^n candidates above this blow up.
const enumLimit = 14

// Commutants returns every Pauli string over this set's qubit count that
// commutes with all generators, identity included.
func (set *Set) Commutants() ([]gopauli.Pauli, error) {
	if len(set.strs) == 0 {
		return nil, errors.Wrap(gopauli.ErrEmptySet, "no generators")
	}
	if set.nq > enumLimit {
		return nil, errors.Wrapf(gopauli.ErrQubitsExceeded, "cannot enumerate %d qubits", set.nq)
	}
	var out []gopauli.Pauli
	for p, ok := gopauli.Identity(set.nq), true; ok; p, ok = p.Inc() {
		commutes := true
		for _, s := range set.strs {
			if !s.Commutes(p) {
				commutes = false
				break
			}
		}
		if commutes {
			out = append(out, p)
		}
	}
	return out, nil
}

// Connection is one edge of the anticommutation graph with the degrees of
// its endpoints.
type Connection struct {
	X, Y       gopauli.Pauli
	DegX, DegY int
}

// ListConnections enumerates the anticommutation graph's edges.
func (set *Set) ListConnections() []Connection {
	var conns []Connection
	for i := 1; i < len(set.strs); i++ {
		for j := 0; j < i; j++ {
			if !set.strs[i].Commutes(set.strs[j]) {
				x, y := set.strs[j], set.strs[i]
				conns = append(conns, Connection{
					X:    x,
					Y:    y,
					DegX: len(set.Anticommutates(x)),
					DegY: len(set.Anticommutates(y)),
				})
			}
		}
	}
	return conns
}

// FindGeneratorsWithConnection greedily contracts edges of the canonical
// vertex set until the anticommutation graph has wantPairs edges, falling
// back to a random pick from rnd when no contraction strictly improves.
func (set *Set) FindGeneratorsWithConnection(rnd *Rand, wantPairs int) (*Set, error) {
	verts, err := set.CanonicVertices()
	if err != nil {
		return nil, err
	}
	gens := NewSet(nil)
	if err := gens.Add(verts...); err != nil {
		gens.Reclaim()
		return nil, err
	}

	delta := func(s *Set) int {
		return wantPairs - s.NumAnticommutingPairs()
	}

	for iter := 0; iter < wantPairs/2; iter++ {
		d := delta(gens)
		if d == 0 {
			break
		}
		best := gens
		bestDelta := abs(d)
		improved := false

		tryContract := func(s *Set, p, q gopauli.Pauli) {
			trial := NewSet(s)
			trial.Contract(p, q)
			dt := delta(trial)
			if dt >= 0 && abs(dt) < bestDelta {
				if improved && best != gens {
					best.Reclaim()
				}
				best = trial
				bestDelta = abs(dt)
				improved = true
			} else {
				trial.Reclaim()
			}
		}

		conns := gens.ListConnections()
		for _, c := range conns {
			tryContract(gens, c.X, c.Y)
			tryContract(gens, c.Y, c.X)
		}

		if !improved {
			if len(conns) == 0 {
				break
			}
			c := conns[rnd.Intn(len(conns))]
			trial := NewSet(gens)
			trial.Contract(c.X, c.Y)
			if delta(trial) <= 0 {
				trial.Reclaim()
				trial = NewSet(gens)
				trial.Contract(c.Y, c.X)
				if delta(trial) <= 0 {
					trial.Reclaim()
					break
				}
			}
			best = trial
		}
		if best != gens {
			gens.Reclaim()
			gens = best
		}
	}
	return gens, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (set *Set) GetInfo() gopauli.SetInfo {
	info := gopauli.SetInfo{
		NumQubits:  byte(set.nq),
		NumStrings: byte(len(set.strs)),
	}
	if set.class != nil {
		info.NumComponents = byte(set.class.NumComponents())
	} else {
		info.NumComponents = byte(len(set.Components()))
	}
	return info
}

// CanonicSignature appends a byte signature identifying this set's DLA class.
func (set *Set) CanonicSignature(in []byte) ([]byte, error) {
	class, err := set.Classification()
	if err != nil {
		return nil, err
	}
	out := append(in, byte(set.nq))
	return class.AppendSpecTo(out), nil
}

func (set *Set) WriteAsString(out io.Writer, opts gopauli.PrintOpts) {
	if opts.Exprs {
		fmt.Fprint(out, set.String())
	}
	if opts.Algebra {
		name, err := set.Algebra()
		if err != nil {
			name = "?"
		}
		fmt.Fprintf(out, ",%s", name)
	}
	if opts.DLADim {
		dim, err := set.DLADim()
		if err != nil {
			fmt.Fprint(out, ",?")
		} else {
			fmt.Fprintf(out, ",%d", dim)
		}
	}
	if opts.Morphs {
		if class, err := set.Classification(); err == nil {
			for _, m := range class.Morphs() {
				fmt.Fprintf(out, ",%v", m.Profile())
			}
		}
	}
	fmt.Fprintln(out)
}

func (set *Set) String() string {
	str := make([]byte, 0, len(set.strs)*(set.nq+1))
	for i, s := range set.strs {
		if i > 0 {
			str = append(str, ' ')
		}
		str = append(str, s.String()...)
	}
	return string(str)
}
