package classify_test

import (
	"testing"

	"github.com/pauli-systems/gopauli/libpauli/classify"
	"github.com/stretchr/testify/require"
)

func TestDLADimClosure(t *testing.T) {
	// X and Z close into {X, Z, Y}.
	require.Equal(t, 3, classify.DLADim(pp(t, "X", "Z")))

	// Star {ZI, IZ, XX} closes into a six-dimensional algebra.
	require.Equal(t, 6, classify.DLADim(pp(t, "ZI", "IZ", "XX")))

	require.Equal(t, 1, classify.DLADim(pp(t, "X")))
}

func TestDLADimAdditiveOverComponents(t *testing.T) {
	// Two disjoint components on separate qubits contribute independently.
	c := classify.NewClassification()
	c.Add(build(t, "XI", "ZI"))
	c.Add(build(t, "IX", "IZ"))

	require.Equal(t, 2, c.NumComponents())
	require.Equal(t, 3+3, c.DLADim())
}

func TestAlgebraNames(t *testing.T) {
	for _, tc := range []struct {
		gens []string
		name string
		dim  int
	}{
		{[]string{"X"}, "u(1)", 1},
		{[]string{"X", "Z"}, "su(2)", 3},
		{[]string{"ZI", "IZ", "XX"}, "su(2)+su(2)", 6},
		{[]string{"ZIII", "XZII", "IXZI", "IIXZ"}, "so(5)", 10},
	} {
		c := classify.NewClassification()
		c.Add(build(t, tc.gens...))

		name, err := c.Algebra()
		require.NoError(t, err, "gens %v", tc.gens)
		require.Equal(t, tc.name, name)
		require.Equal(t, tc.dim, c.DLADim(), "dimension of %s", tc.name)

		dim, ok := classify.AlgebraDim(name)
		require.True(t, ok)
		require.Equal(t, tc.dim, dim)
	}
}

func TestIsAlgebraAliases(t *testing.T) {
	c := classify.NewClassification()
	c.Add(build(t, "ZIII", "XZII", "IXZI", "IIXZ"))

	for _, alias := range []string{"so(5)", "sp(2)"} {
		ok, err := c.IsAlgebra(alias)
		require.NoError(t, err)
		require.True(t, ok, "alias %s", alias)
	}

	ok, err := c.IsAlgebra("su(3)")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSameAlgebra(t *testing.T) {
	require.True(t, classify.SameAlgebra("so(3)", "su(2)"))
	require.True(t, classify.SameAlgebra("so(4)", "su(2)+su(2)"))
	require.True(t, classify.SameAlgebra("u(1)+su(2)", "so(3)+so(2)"))
	require.False(t, classify.SameAlgebra("so(5)", "so(6)"))
}

func TestClassificationSpecIsOrderInvariant(t *testing.T) {
	a := classify.NewClassification()
	a.Add(build(t, "XI", "ZI"))
	a.Add(build(t, "IX", "IZ"))

	b := classify.NewClassification()
	b.Add(build(t, "IX", "IZ"))
	b.Add(build(t, "XI", "ZI"))

	require.Equal(t, a.AppendSpecTo(nil), b.AppendSpecTo(nil))
}

func TestAlgebraComposite(t *testing.T) {
	c := classify.NewClassification()
	c.Add(build(t, "XI"))
	c.Add(build(t, "IX", "IZ"))

	name, err := c.Algebra()
	require.NoError(t, err)
	require.Equal(t, "su(2)+u(1)", name)

	ok, err := c.IsAlgebra("u(1)+so(3)")
	require.NoError(t, err)
	require.True(t, ok)
}
