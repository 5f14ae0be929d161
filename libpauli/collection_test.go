package libpauli_test

import (
	"strings"
	"testing"

	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pauli-systems/gopauli/libpauli"
	"github.com/stretchr/testify/require"
)

func TestInitFromString(t *testing.T) {
	set, err := libpauli.NewSetFromStr("ZI, IZ, XX")
	require.NoError(t, err)
	defer set.Reclaim()

	require.Equal(t, 2, set.NumQubits())
	require.Equal(t, 3, set.NumStrings())
	require.Equal(t, "ZI IZ XX", set.String())
}

func TestPositionalGrammar(t *testing.T) {
	// X1Z3:5 means X on site 1, Z on site 3, padded to 5 sites.
	set, err := libpauli.NewSetFromStr("X1Z3:5; Z2")
	require.NoError(t, err)
	defer set.Reclaim()

	require.Equal(t, 5, set.NumQubits())
	require.Equal(t, "XIZII IZIII", set.String())
}

func TestGrammarRejectsBadInput(t *testing.T) {
	for _, expr := range []string{"XQ", "X0", "XXX:2"} {
		_, err := libpauli.NewSetFromStr(expr)
		require.Error(t, err, "expr %q", expr)
	}
}

func TestAddNormalizesWidths(t *testing.T) {
	set := libpauli.NewSet(nil)
	defer set.Reclaim()

	require.NoError(t, set.Add(gopauli.MustPauli("X")))
	require.NoError(t, set.Add(gopauli.MustPauli("IZZ")))

	require.Equal(t, 3, set.NumQubits())
	require.Equal(t, "XII IZZ", set.String())
}

func TestComponentsLargestFirst(t *testing.T) {
	set := libpauli.MustSet("XI, ZI, IX")
	defer set.Reclaim()

	comps := set.Components()
	require.Len(t, comps, 2)
	require.Len(t, comps[0], 2)
	require.Len(t, comps[1], 1)
}

func TestSetAlgebra(t *testing.T) {
	for _, tc := range []struct {
		expr string
		name string
		dim  int
	}{
		{"X, Z", "su(2)", 3},
		{"ZI, IZ, XX", "su(2)+su(2)", 6},
		{"XI, ZI, IX, IZ", "su(2)+su(2)", 6},
		{"ZIII, XZII, IXZI, IIXZ", "so(5)", 10},
	} {
		set := libpauli.MustSet(tc.expr)

		name, err := set.Algebra()
		require.NoError(t, err, "expr %q", tc.expr)
		require.Equal(t, tc.name, name)

		dim, err := set.DLADim()
		require.NoError(t, err)
		require.Equal(t, tc.dim, dim)

		set.Reclaim()
	}
}

func TestDependentsAndIndependents(t *testing.T) {
	set := libpauli.MustSet("ZI, IZ, XX, YY")
	defer set.Reclaim()

	deps, err := set.Dependents()
	require.NoError(t, err)
	require.Equal(t, []gopauli.Pauli{gopauli.MustPauli("YY")}, deps)

	indeps, err := set.Independents()
	require.NoError(t, err)
	require.Len(t, indeps, 3)
	require.NotContains(t, indeps, gopauli.MustPauli("YY"))
}

func TestIsEqAcrossComponents(t *testing.T) {
	a := libpauli.MustSet("XI, IX, IZ")
	b := libpauli.MustSet("IZ, XI, IX")
	defer a.Reclaim()
	defer b.Reclaim()

	eq, err := a.IsEq(b)
	require.NoError(t, err)
	require.True(t, eq)

	c := libpauli.MustSet("XI, IX")
	defer c.Reclaim()

	eq, err = a.IsEq(c)
	require.NoError(t, err)
	require.False(t, eq)
}

func TestSelectDependents(t *testing.T) {
	set := libpauli.MustSet("ZI, IZ, XX")
	probe := libpauli.MustSet("YY, ZZ")
	defer set.Reclaim()
	defer probe.Reclaim()

	deps, err := set.SelectDependents(probe)
	require.NoError(t, err)
	require.Equal(t, []gopauli.Pauli{gopauli.MustPauli("YY")}, deps)
}

func TestCommutants(t *testing.T) {
	set := libpauli.MustSet("XX, ZZ")
	defer set.Reclaim()

	commutants, err := set.Commutants()
	require.NoError(t, err)

	// II, XX, YY, ZZ commute with both generators.
	require.Len(t, commutants, 4)
	for _, name := range []string{"II", "XX", "YY", "ZZ"} {
		require.Contains(t, commutants, gopauli.MustPauli(name))
	}
}

func TestAnticommutationMetrics(t *testing.T) {
	set := libpauli.MustSet("ZI, IZ, XX")
	defer set.Reclaim()

	require.Equal(t, 2, set.NumAnticommutingPairs())
	require.InDelta(t, 2.0/3.0, set.AnticommutationFraction(), 1e-9)

	conns := set.ListConnections()
	require.Len(t, conns, 2)
	for _, c := range conns {
		require.False(t, c.X.Commutes(c.Y))
	}
}

func TestCanonicSignatureOrderInvariant(t *testing.T) {
	a := libpauli.MustSet("ZIII, XZII, IXZI, IIXZ")
	b := libpauli.MustSet("IIXZ, IXZI, ZIII, XZII")
	defer a.Reclaim()
	defer b.Reclaim()

	sigA, err := a.CanonicSignature(nil)
	require.NoError(t, err)
	sigB, err := b.CanonicSignature(nil)
	require.NoError(t, err)
	require.Equal(t, sigA, sigB)
}

func TestDefRoundTrip(t *testing.T) {
	src := libpauli.MustSet("ZI, IZ, XX")
	defer src.Reclaim()

	enc, err := src.MarshalOut(nil)
	require.NoError(t, err)

	dst, err := libpauli.NewSetFromDef(enc)
	require.NoError(t, err)
	defer dst.Reclaim()

	require.Equal(t, src.NumQubits(), dst.NumQubits())
	require.Equal(t, src.Generators(), dst.Generators())
}

func TestDropDupes(t *testing.T) {
	dd := libpauli.NewDropDupes()

	a := libpauli.MustSet("ZI, IZ, XX")
	b := libpauli.MustSet("IZ, ZI, XX") // same class, different order
	c := libpauli.MustSet("X, Z")
	defer a.Reclaim()
	defer b.Reclaim()
	defer c.Reclaim()

	require.True(t, dd.TryAddSet(a))
	require.False(t, dd.TryAddSet(b))
	require.True(t, dd.TryAddSet(c))
}

func TestRandIsSeeded(t *testing.T) {
	r1 := libpauli.NewRand(42)
	r2 := libpauli.NewRand(42)

	for i := 0; i < 16; i++ {
		require.Equal(t, r1.Pauli(6), r2.Pauli(6))
	}

	set, err := libpauli.NewRand(7).Set(4, 5)
	require.NoError(t, err)
	defer set.Reclaim()
	require.Equal(t, 5, set.NumStrings())
	require.Equal(t, 4, set.NumQubits())
}

func TestKLocalSet(t *testing.T) {
	src := libpauli.MustSet("XZ")
	defer src.Reclaim()

	out, err := libpauli.KLocalSet(src, 4)
	require.NoError(t, err)
	defer out.Reclaim()

	// XZ slides into three placements over four sites.
	require.Equal(t, 3, out.NumStrings())
	require.Equal(t, "XZII IXZI IIXZ", out.String())
}

func TestWriteAsString(t *testing.T) {
	set := libpauli.MustSet("X, Z")
	defer set.Reclaim()

	var b strings.Builder
	set.WriteAsString(&b, gopauli.DefaultPrintOpts)
	require.Equal(t, "X Z,su(2),3\n", b.String())
}
