package classify

import (
	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pkg/errors"
)

// Outcome is the result of running one vertex through the insertion pipeline.
type Outcome int32

const (

	// OutcomeNone means the stage did not resolve the vertex; the pipeline continues.
	OutcomeNone Outcome = iota

	// OutcomeAppended means the vertex now lives in a leg.
	OutcomeAppended

	// OutcomeDependent means the vertex is structurally implied by the
	// vertices already placed and was not inserted.
	OutcomeDependent

	// OutcomeNotConnected means the lighting could not be linked to the
	// structure with present information; the vertex is retried later.
	OutcomeNotConnected
)

func (out Outcome) String() string {
	switch out {
	case OutcomeAppended:
		return "appended"
	case OutcomeDependent:
		return "dependent"
	case OutcomeNotConnected:
		return "not-connected"
	}
	return "continue"
}

// Tracer observes engine progress.  All calls happen on the goroutine
// running Build.
type Tracer interface {

	// OnStage fires when a pipeline stage starts working a lighting candidate.
	OnStage(stage string, lighting gopauli.Pauli)

	// OnOutcome fires once per queued vertex with its final outcome.
	OnOutcome(vertex gopauli.Pauli, out Outcome)
}

// BuildOpts configures an Engine.
type BuildOpts struct {

	// Tracer receives progress callbacks; nil disables tracing.
	Tracer Tracer

	// RetryCap bounds how often one vertex may come back NotConnected
	// before Build fails.  Zero means the component size.
	RetryCap int
}

// Engine incrementally folds one connected component's vertices into a
// canonical leg structure.  An Engine instance owns its structure outright
// and must not be shared across components or goroutines.
type Engine struct {
	opts       BuildOpts
	legs       *Legs
	lighting   gopauli.Pauli
	dependents []gopauli.Pauli
	delayed    []gopauli.Pauli
	isCheck    bool // probe mode: appends report without mutating
}

func NewEngine(opts BuildOpts) *Engine {
	return &Engine{
		opts: opts,
		legs: NewLegs(),
	}
}

// isLit reports whether v anticommutes with the lighting (equal values never light).
func (en *Engine) isLit(lighting, v gopauli.Pauli) bool {
	return v != lighting && !lighting.Commutes(v)
}

// litsOf filters verts down to those lit by the lighting.
func (en *Engine) litsOf(lighting gopauli.Pauli, verts []gopauli.Pauli) []gopauli.Pauli {
	var lits []gopauli.Pauli
	for _, v := range verts {
		if en.isLit(lighting, v) {
			lits = append(lits, v)
		}
	}
	return lits
}

func (en *Engine) litIndexes(lighting gopauli.Pauli, verts []gopauli.Pauli) []int {
	var idx []int
	for i, v := range verts {
		if en.isLit(lighting, v) {
			idx = append(idx, i)
		}
	}
	return idx
}

// lit folds the lighting through v.  If the folded value already exists in
// the structure the probe vertex is dependent.
func (en *Engine) lit(lighting, v gopauli.Pauli) (gopauli.Pauli, Outcome) {
	lighting = lighting.Mul(v)
	if en.legs.Contains(lighting) {
		return lighting, OutcomeDependent
	}
	return lighting, OutcomeNone
}

// litChain applies lit through each chain vertex in order.
func (en *Engine) litChain(lighting gopauli.Pauli, chain ...gopauli.Pauli) (gopauli.Pauli, Outcome) {
	for _, v := range chain {
		var out Outcome
		lighting, out = en.lit(lighting, v)
		if out != OutcomeNone {
			return lighting, out
		}
	}
	return lighting, OutcomeNone
}

// append attaches v after lit.  In check mode, nothing mutates and
// checked comes back true: the caller resolves the stage as appended.
func (en *Engine) append(v, lit gopauli.Pauli) (checked bool, err error) {
	if en.isCheck {
		return true, nil
	}
	return false, en.legs.Append(v, lit)
}

// trimLongLeg defers long-leg vertices past MaxLongLeg to the delayed buffer.
func (en *Engine) trimLongLeg() error {
	longLeg, err := en.legs.LongLeg()
	if err != nil {
		return err
	}
	if len(longLeg) <= MaxLongLeg {
		return nil
	}
	cut := longLeg[MaxLongLeg]
	en.delayed = append(en.delayed, longLeg[MaxLongLeg:]...)
	return en.legs.Remove(cut)
}

// getPQ scans the length-1 legs for a lit vertex p and an unlit vertex q,
// returning their product and p.
func (en *Engine) getPQ(lighting gopauli.Pauli) (pq, p gopauli.Pauli, ok bool, err error) {
	ones, err := en.legs.OneVertices()
	if err != nil {
		return pq, p, false, err
	}
	var q gopauli.Pauli
	var haveP, haveQ bool
	for _, v := range ones {
		if en.isLit(lighting, v) {
			p = v
			haveP = true
		} else {
			q = v
			haveQ = true
		}
		if haveP && haveQ {
			return p.Mul(q), p, true, nil
		}
	}
	return pq, p, false, nil
}

// checkDependencyOneLeg tests whether attaching the lighting at the center
// would duplicate information already in the structure.
func (en *Engine) checkDependencyOneLeg(lighting gopauli.Pauli) (Outcome, error) {
	ones, err := en.legs.OneVertices()
	if err != nil {
		return OutcomeNone, err
	}
	verts := en.legs.Vertices()
	for _, one := range ones {
		pq := one.Mul(lighting)
		for _, v := range verts {
			if v == one {
				continue
			}
			nv := pq.Mul(v)
			if nv == lighting || en.legs.Contains(nv) {
				return OutcomeDependent, nil
			}
		}
	}
	return OutcomeNone, nil
}

// appendToCenter splices the lighting in as a new length-1 leg.
func (en *Engine) appendToCenter(lighting gopauli.Pauli) (Outcome, error) {
	out, err := en.checkDependencyOneLeg(lighting)
	if out != OutcomeNone || err != nil {
		return out, err
	}
	center, _ := en.legs.Center()
	if _, err := en.append(lighting, center); err != nil {
		return OutcomeNone, err
	}
	return OutcomeAppended, nil
}

// appendToTwoCenter folds the lighting into a structure of at most two vertices.
func (en *Engine) appendToTwoCenter(lighting gopauli.Pauli) (Outcome, error) {
	center, _ := en.legs.Center()
	if en.legs.NumLegs() == 0 {
		if _, err := en.append(lighting, center); err != nil {
			return OutcomeNone, err
		}
		return OutcomeAppended, nil
	}
	lits := en.litsOf(lighting, en.legs.Vertices())

	var out Outcome
	switch len(lits) {
	case 1:
		if lits[0] != center {
			if lighting, out = en.litChain(lighting, lits[0], center); out != OutcomeNone {
				return out, nil
			}
		}
	case 2:
		if lighting, out = en.lit(lighting, center); out != OutcomeNone {
			return out, nil
		}
	default:
		return OutcomeNotConnected, nil
	}
	if _, err := en.append(lighting, center); err != nil {
		return OutcomeNone, err
	}
	return OutcomeAppended, nil
}

// Stage I: bootstrap the first three vertices.
func (en *Engine) appendThreeGraph() (Outcome, error) {
	lighting := en.lighting
	en.trace("three-graph", lighting)
	if en.legs.IsEmpty() {
		if en.isCheck {
			return OutcomeAppended, nil
		}
		if err := en.legs.SetCenter(lighting); err != nil {
			return OutcomeNone, err
		}
		return OutcomeAppended, nil
	}
	if en.legs.Contains(lighting) {
		return OutcomeDependent, nil
	}
	if !en.legs.HasCore() {
		return en.appendToTwoCenter(lighting)
	}
	return OutcomeNone, nil
}

// Stage II: reconcile length-1 legs found in different lit states.
func (en *Engine) appendOneLegsInDifferentState() (Outcome, error) {
	lighting := en.lighting
	en.trace("one-legs-reconcile", lighting)
	pq, p, ok, err := en.getPQ(lighting)
	if err != nil {
		return OutcomeNone, err
	}
	if ok {
		lits := en.litsOf(lighting, en.legs.Vertices())
		for _, lt := range lits {
			if lt != p && en.legs.Contains(pq.Mul(lt)) {
				return OutcomeDependent, nil
			}
		}
		for _, lt := range lits {
			if lt != p {
				if err := en.legs.Replace(lt, pq.Mul(lt)); err != nil {
					return OutcomeNone, err
				}
			}
		}
		checked, err := en.append(lighting, p)
		if err != nil {
			return OutcomeNone, err
		}
		if !checked {
			if err := en.trimLongLeg(); err != nil {
				return OutcomeNone, err
			}
		}
		return OutcomeAppended, nil
	}
	en.lighting = lighting
	return OutcomeNone, nil
}

// Stage III: fast path when the lighting touches exactly one vertex that is
// already a legal attachment point.
func (en *Engine) appendFast() (Outcome, error) {
	lighting := en.lighting
	en.trace("fast-append", lighting)
	center, _ := en.legs.Center()
	twoLegs, err := en.legs.TwoLegs()
	if err != nil {
		return OutcomeNone, err
	}
	longLeg, err := en.legs.LongLeg()
	if err != nil {
		return OutcomeNone, err
	}
	if len(longLeg) == 2 {
		twoLegs = twoLegs[:len(twoLegs)-1]
	}
	if len(twoLegs) == 0 {
		lits := en.litsOf(lighting, en.legs.Vertices())
		if len(lits) == 1 {
			if lits[0] == center {
				return en.appendToCenter(lighting)
			}
			if tail := longLeg[len(longLeg)-1]; lits[0] == tail {
				if _, err := en.append(lighting, tail); err != nil {
					return OutcomeNone, err
				}
				return OutcomeAppended, nil
			}
		}
	}
	return OutcomeNone, nil
}

// Stage IV: normalize the lighting so residual anticommutation sits only on
// the long leg, pivoting through length-2 legs where needed.
func (en *Engine) litOnlyLongLeg() (Outcome, error) {
	lighting := en.lighting
	en.trace("lit-only-long-leg", lighting)
	omega, err := en.legs.OneVertex()
	if err != nil {
		return OutcomeNone, err
	}
	center, _ := en.legs.Center()

	var out Outcome
	if en.isLit(lighting, omega) {
		if !en.isLit(lighting, center) {
			if lighting, out = en.lit(lighting, omega); out != OutcomeNone {
				return out, nil
			}
		}
		if lighting, out = en.lit(lighting, center); out != OutcomeNone {
			return out, nil
		}
	}
	twoLegs, err := en.legs.TwoLegs()
	if err != nil {
		return OutcomeNone, err
	}
	longLeg, err := en.legs.LongLeg()
	if err != nil {
		return OutcomeNone, err
	}
	if len(longLeg) == 2 {
		twoLegs = twoLegs[:len(twoLegs)-1]
	} else if len(longLeg) == 1 {
		en.lighting = lighting
		return OutcomeNone, nil
	}
	if len(twoLegs) == 0 {
		en.lighting = lighting
		return OutcomeNone, nil
	}

	if len(en.litsOf(lighting, longLeg)) == 0 {
		if en.isLit(lighting, center) {
			if lighting, out = en.litChain(lighting, center, longLeg[0], omega, center); out != OutcomeNone {
				return out, nil
			}
		} else {
			for _, leg := range twoLegs {
				v0, v1 := leg[0], leg[1]
				lit0 := en.isLit(lighting, v0)
				if en.isLit(lighting, v1) && !lit0 {
					if lighting, out = en.lit(lighting, v1); out != OutcomeNone {
						return out, nil
					}
					lit0 = true
				}
				if lit0 {
					if lighting, out = en.litChain(lighting, v0, center, longLeg[0], omega, center); out != OutcomeNone {
						return out, nil
					}
					break
				}
			}
		}
	}

	// lit the second vertex of the long leg
	litIdx := en.litIndexes(lighting, longLeg)
	if !containsInt(litIdx, 1) {
		if containsInt(litIdx, 0) {
			if lighting, out = en.lit(lighting, longLeg[0]); out != OutcomeNone {
				return out, nil
			}
		} else {
			if len(litIdx) == 0 {
				return OutcomeNotConnected, nil
			}
			for i := litIdx[0]; i >= 2; i-- {
				if lighting, out = en.lit(lighting, longLeg[i]); out != OutcomeNone {
					return out, nil
				}
			}
		}
	}

	longV0, longV1 := longLeg[0], longLeg[1]
	for _, leg := range twoLegs {
		v0, v1 := leg[0], leg[1]
		lit0 := en.isLit(lighting, v0)
		lit1 := en.isLit(lighting, v1)
		if !lit0 && !lit1 {
			continue
		}
		if lit0 && !lit1 {
			if lighting, out = en.lit(lighting, v0); out != OutcomeNone {
				return out, nil
			}
		} else if !lit0 && lit1 {
			if lighting, out = en.lit(lighting, v1); out != OutcomeNone {
				return out, nil
			}
		}
		if en.isLit(lighting, center) {
			if lighting, out = en.litChain(lighting, center, v1, v0, omega, center); out != OutcomeNone {
				return out, nil
			}
		} else {
			if !en.isLit(lighting, longV0) {
				if lighting, out = en.lit(lighting, longV1); out != OutcomeNone {
					return out, nil
				}
			}
			if lighting, out = en.litChain(lighting, longV0, center, omega, v1, v0, center); out != OutcomeNone {
				return out, nil
			}
		}
	}
	en.lighting = lighting
	return OutcomeNone, nil
}

// Stage V: make the center lit by folding through the long leg.
func (en *Engine) litCenter() (Outcome, error) {
	lighting := en.lighting
	en.trace("lit-center", lighting)
	center, _ := en.legs.Center()
	if !en.isLit(lighting, center) {
		longLeg, err := en.legs.LongLeg()
		if err != nil {
			return OutcomeNone, err
		}
		litIdx := en.litIndexes(lighting, longLeg)
		if len(litIdx) == 0 {
			return OutcomeNotConnected, nil
		}
		var out Outcome
		for i := litIdx[0]; i >= 0; i-- {
			if lighting, out = en.lit(lighting, longLeg[i]); out != OutcomeNone {
				return out, nil
			}
		}
	}
	en.lighting = lighting
	return OutcomeNone, nil
}

// Stage VI: shift the lit positions along the long leg toward its boundary
// until one of the three canonical patterns remains: none, a single
// endpoint, or both endpoints.
func (en *Engine) reduceLongLegLits() (Outcome, error) {
	lighting := en.lighting
	en.trace("reduce-long-leg", lighting)
	longLeg, err := en.legs.LongLeg()
	if err != nil {
		return OutcomeNone, err
	}
	var out Outcome
	for {
		litIdx := en.litIndexes(lighting, longLeg)
		if len(litIdx) == 0 {
			return en.appendToCenter(lighting)
		}
		if len(litIdx) == 2 && litIdx[0] == 0 && litIdx[1] == len(longLeg)-1 {
			break
		}
		if len(litIdx) == 1 {
			idx := litIdx[0]
			if idx == 0 || idx == len(longLeg)-1 {
				break
			}
			// A single interior lit: defer the tail past it and cut the leg there.
			if idx < len(longLeg)-1 {
				cut := longLeg[idx+1]
				en.delayed = append(en.delayed, longLeg[idx+1:]...)
				if err := en.legs.Remove(cut); err != nil {
					return OutcomeNone, err
				}
			}
			break
		}
		first, second := litIdx[0], litIdx[1]
		if first > 0 && first+1 != second {
			for i := second; i > first; i-- {
				if lighting, out = en.lit(lighting, longLeg[i]); out != OutcomeNone {
					return out, nil
				}
			}
		} else {
			if lighting, out = en.lit(lighting, longLeg[second]); out != OutcomeNone {
				return out, nil
			}
		}
	}
	en.lighting = lighting
	return OutcomeNone, nil
}

// Stage VII: resolve the pattern where the long leg head and the center are lit.
func (en *Engine) appendLongLegFirstAndCenterLit() (Outcome, error) {
	lighting := en.lighting
	en.trace("long-leg-first-and-center", lighting)
	omega, err := en.legs.OneVertex()
	if err != nil {
		return OutcomeNone, err
	}
	center, _ := en.legs.Center()
	isCenterLit := en.isLit(lighting, center)
	longLeg, err := en.legs.LongLeg()
	if err != nil {
		return OutcomeNone, err
	}
	litIdx := en.litIndexes(lighting, longLeg)
	if isCenterLit && len(litIdx) == 0 {
		return en.appendToCenter(lighting)
	}
	if len(litIdx) == 1 && litIdx[0] == 0 {
		hasTwoLeg, err := en.legs.HasTwoLeg()
		if err != nil {
			return OutcomeNone, err
		}
		var out Outcome
		if !hasTwoLeg || len(longLeg) <= 3 {
			// walk the lighting down the whole leg and extend it
			for _, v := range longLeg {
				if lighting, out = en.lit(lighting, v); out != OutcomeNone {
					return out, nil
				}
			}
			if _, err := en.append(lighting, longLeg[len(longLeg)-1]); err != nil {
				return OutcomeNone, err
			}
			return OutcomeAppended, nil
		}
		twoLegs, err := en.legs.TwoLegs()
		if err != nil {
			return OutcomeNone, err
		}
		v0, v1 := twoLegs[0][0], twoLegs[0][1]
		// rewrap the structure through a fixed fold sequence, then splice at the center
		lighting, out = en.litChain(lighting,
			center, v0, omega, center,
			longLeg[0], v1, v0, center,
			longLeg[1], longLeg[0], longLeg[2], longLeg[1], longLeg[3], longLeg[2],
			omega, center, longLeg[0], longLeg[1],
			v0, v1, center, longLeg[0], v0, center)
		if out != OutcomeNone {
			return out, nil
		}
		return en.appendToCenter(lighting)
	}
	en.lighting = lighting
	return OutcomeNone, nil
}

// Stage VIII: resolve the pattern where only the long leg tail is lit.
func (en *Engine) appendLongLegOnlyLastLit() (Outcome, error) {
	lighting := en.lighting
	en.trace("long-leg-last", lighting)
	center, _ := en.legs.Center()
	longLeg, err := en.legs.LongLeg()
	if err != nil {
		return OutcomeNone, err
	}
	litIdx := en.litIndexes(lighting, longLeg)
	if len(litIdx) == 1 {
		out, err := en.checkDependencyOneLeg(lighting)
		if out != OutcomeNone || err != nil {
			return out, err
		}
		lastV := longLeg[len(longLeg)-1]
		if len(longLeg) == 1 {
			if lighting, out = en.lit(lighting, lastV); out != OutcomeNone {
				return out, nil
			}
			if _, err := en.append(lighting, lastV); err != nil {
				return OutcomeNone, err
			}
			return OutcomeAppended, nil
		}
		omega, err := en.legs.OneVertex()
		if err != nil {
			return OutcomeNone, err
		}
		g := longLeg[len(longLeg)-2]
		newG := omega.Mul(lighting).Mul(g)
		if en.legs.Contains(newG) {
			return OutcomeDependent, nil
		}
		if err := en.legs.Remove(lastV); err != nil {
			return OutcomeNone, err
		}
		checked, err := en.append(lighting, center)
		if err != nil {
			return OutcomeNone, err
		}
		if checked {
			return OutcomeAppended, nil
		}
		if err := en.legs.Replace(g, newG); err != nil {
			return OutcomeNone, err
		}
		if _, err := en.append(lastV, lighting); err != nil {
			return OutcomeNone, err
		}
		if err := en.trimLongLeg(); err != nil {
			return OutcomeNone, err
		}
		return OutcomeAppended, nil
	}
	en.lighting = lighting
	return OutcomeNone, nil
}

// Stage IX: terminal fold when the long leg tail, head, and center are all lit.
func (en *Engine) appendLongLegLastAndFirstLit() (Outcome, error) {
	lighting := en.lighting
	en.trace("long-leg-last-and-first", lighting)
	omega, err := en.legs.OneVertex()
	if err != nil {
		return OutcomeNone, err
	}
	center, _ := en.legs.Center()
	longLeg, err := en.legs.LongLeg()
	if err != nil {
		return OutcomeNone, err
	}
	firstV := longLeg[0]
	var out Outcome
	for i := len(longLeg) - 1; i >= 1; i-- {
		if lighting, out = en.lit(lighting, longLeg[i]); out != OutcomeNone {
			return out, nil
		}
	}
	if lighting, out = en.litChain(lighting, center, omega, firstV, center); out != OutcomeNone {
		return out, nil
	}
	return en.appendToCenter(lighting)
}

func (en *Engine) trace(stage string, lighting gopauli.Pauli) {
	if en.opts.Tracer != nil {
		en.opts.Tracer.OnStage(stage, lighting)
	}
}

// pipeline runs one vertex through the insertion rules in order.
func (en *Engine) pipeline(lighting gopauli.Pauli) (Outcome, error) {
	en.lighting = lighting
	stages := []func() (Outcome, error){
		en.appendThreeGraph,
		en.appendOneLegsInDifferentState,
		en.appendFast,
		en.litOnlyLongLeg,
		en.litCenter,
		en.reduceLongLegLits,
		en.appendLongLegFirstAndCenterLit,
		en.appendLongLegOnlyLastLit,
		en.appendLongLegLastAndFirstLit,
	}
	for _, stage := range stages {
		out, err := stage()
		if err != nil {
			return OutcomeNone, err
		}
		if out != OutcomeNone {
			return out, nil
		}
	}
	return OutcomeNone, errors.Wrap(gopauli.ErrStructuralViolation, "pipeline did not resolve")
}

// restoreDelayed splices the delayed lane back to the front of the ready lane.
func (en *Engine) restoreDelayed(ready []gopauli.Pauli) []gopauli.Pauli {
	if len(en.delayed) == 0 {
		return ready
	}
	merged := make([]gopauli.Pauli, 0, len(en.delayed)+len(ready))
	merged = append(merged, en.delayed...)
	merged = append(merged, ready...)
	en.delayed = en.delayed[:0]
	return merged
}

// Build folds one connected component's generators into a Morph.
// Generators are reordered by BuildQueue first, so the result does not
// depend on input order.
func (en *Engine) Build(generators []gopauli.Pauli) (*Morph, error) {
	if len(generators) == 0 {
		return en.MorphOut(), nil
	}
	retryCap := en.opts.RetryCap
	if retryCap <= 0 {
		retryCap = len(generators)
	}

	ready := BuildQueue(generators)
	retries := make(map[gopauli.Pauli]int)

	for len(ready) > 0 {
		lighting := ready[0]
		ready = ready[1:]

		out, err := en.pipeline(lighting)
		if err != nil {
			return nil, err
		}
		ready = en.restoreDelayed(ready)

		switch out {
		case OutcomeAppended:
			delete(retries, lighting)
		case OutcomeDependent:
			en.dependents = append(en.dependents, lighting)
		case OutcomeNotConnected:
			retries[lighting]++
			if retries[lighting] > retryCap {
				return nil, errors.Wrapf(gopauli.ErrStructuralViolation,
					"vertex %s still not connected after %d attempts", lighting.String(), retryCap)
			}
			ready = append(ready, lighting)
		}
		if en.opts.Tracer != nil {
			en.opts.Tracer.OnOutcome(lighting, out)
		}
	}
	return en.MorphOut(), nil
}

// MorphOut exports the built structure.  The Morph owns deep copies, so the
// engine may be discarded or reused afterwards.
func (en *Engine) MorphOut() *Morph {
	return &Morph{
		legs:       en.legs.Clone(),
		dependents: append([]gopauli.Pauli(nil), en.dependents...),
	}
}

func containsInt(idx []int, want int) bool {
	for _, i := range idx {
		if i == want {
			return true
		}
	}
	return false
}
