package classify_test

import (
	"testing"

	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pauli-systems/gopauli/libpauli/classify"
	"github.com/stretchr/testify/require"
)

func pp(t *testing.T, strs ...string) []gopauli.Pauli {
	t.Helper()
	out := make([]gopauli.Pauli, len(strs))
	for i, s := range strs {
		p, err := gopauli.PauliFromString(s)
		require.NoError(t, err, "bad string %q", s)
		out[i] = p
	}
	return out
}

func build(t *testing.T, strs ...string) *classify.Morph {
	t.Helper()
	m, err := classify.NewEngine(classify.BuildOpts{}).Build(pp(t, strs...))
	require.NoError(t, err)
	return m
}

func TestSingleVertex(t *testing.T) {
	m := build(t, "X")

	require.Equal(t, 1, m.NumVertices())
	require.Empty(t, m.Profile())
	require.Empty(t, m.Dependents())

	center, ok := m.Center()
	require.True(t, ok)
	require.Equal(t, "X", center.String())
}

func TestThreeStar(t *testing.T) {
	// XX anticommutes with both ZI and IZ, which commute with each other.
	m := build(t, "ZI", "IZ", "XX")

	require.Equal(t, 3, m.NumVertices())
	require.Equal(t, []int{1, 1}, m.Profile())
	require.Empty(t, m.Dependents())

	center, ok := m.Center()
	require.True(t, ok)
	require.Equal(t, "XX", center.String())
}

func TestDuplicateGeneratorIsDependent(t *testing.T) {
	m := build(t, "X", "X")

	require.Equal(t, 1, m.NumVertices())
	require.Equal(t, pp(t, "X"), m.Dependents())
}

func TestRedundantGeneratorIsDependent(t *testing.T) {
	// YY folds into the span of {ZI, IZ, XX} without extending it.
	m := build(t, "ZI", "IZ", "XX", "YY")

	require.Equal(t, 3, m.NumVertices())
	require.Equal(t, pp(t, "YY"), m.Dependents())
}

func TestChainProfile(t *testing.T) {
	// A four-vertex anticommutation path folds into one short leg and a long leg.
	m := build(t, "ZIII", "XZII", "IXZI", "IIXZ")

	require.Equal(t, 4, m.NumVertices())
	require.Equal(t, []int{1, 2}, m.Profile())
	require.Empty(t, m.Dependents())
}

func TestOrderInvariance(t *testing.T) {
	gens := []string{"ZIII", "XZII", "IXZI", "IIXZ"}
	perms := [][]string{
		{"ZIII", "XZII", "IXZI", "IIXZ"},
		{"IIXZ", "IXZI", "XZII", "ZIII"},
		{"IXZI", "ZIII", "IIXZ", "XZII"},
		{"XZII", "IIXZ", "ZIII", "IXZI"},
	}

	want := build(t, gens...).AppendSpecTo(nil)
	for _, perm := range perms {
		m := build(t, perm...)
		require.Equal(t, want, m.AppendSpecTo(nil), "order %v", perm)
		require.True(t, m.IsEq(pp(t, gens...)))
	}
}

func TestIsEq(t *testing.T) {
	m := build(t, "IX", "XY")

	require.True(t, m.IsEq(pp(t, "IX", "XY")))
	require.True(t, m.IsEq(pp(t, "XY", "IX")))

	// ZZ anticommutes with both and would extend the structure.
	require.False(t, m.IsEq(pp(t, "IX", "XY", "ZZ")))
}

func TestIsEqIdempotent(t *testing.T) {
	// Rebuilding from the canonical vertices matches the original morph.
	m := build(t, "ZIII", "XZII", "IXZI", "IIXZ")
	require.True(t, m.IsEq(m.Vertices()))

	m2, err := classify.NewEngine(classify.BuildOpts{}).Build(m.Vertices())
	require.NoError(t, err)
	require.Equal(t, m.AppendSpecTo(nil), m2.AppendSpecTo(nil))
}

func TestSelectDependents(t *testing.T) {
	m := build(t, "ZI", "IZ", "XX")

	deps := m.SelectDependents(pp(t, "YY", "ZI", "ZZ"))
	require.Equal(t, pp(t, "YY", "ZI"), deps)
}

type countingTracer struct {
	stages   int
	outcomes int
}

func (tr *countingTracer) OnStage(stage string, lighting gopauli.Pauli) { tr.stages++ }
func (tr *countingTracer) OnOutcome(v gopauli.Pauli, out classify.Outcome) {
	tr.outcomes++
}

func TestTracerObservesEveryVertex(t *testing.T) {
	tr := &countingTracer{}
	en := classify.NewEngine(classify.BuildOpts{Tracer: tr})
	_, err := en.Build(pp(t, "ZI", "IZ", "XX"))
	require.NoError(t, err)

	require.Equal(t, 3, tr.outcomes)
	require.GreaterOrEqual(t, tr.stages, 3)
}
