package gopauli_test

import (
	"testing"
	"time"

	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/stretchr/testify/require"
)

func TestPauliFromString(t *testing.T) {
	p, err := gopauli.PauliFromString("IXYZ")
	require.NoError(t, err)
	require.Equal(t, 4, p.NumQubits())
	require.Equal(t, "IXYZ", p.String())

	require.Equal(t, gopauli.OpI, p.Site(0))
	require.Equal(t, gopauli.OpX, p.Site(1))
	require.Equal(t, gopauli.OpY, p.Site(2))
	require.Equal(t, gopauli.OpZ, p.Site(3))

	_, err = gopauli.PauliFromString("IXQ")
	require.ErrorIs(t, err, gopauli.ErrBadOp)
}

func TestCommutes(t *testing.T) {
	for _, tc := range []struct {
		a, b     string
		commutes bool
	}{
		{"X", "X", true},
		{"X", "Z", false},
		{"X", "Y", false},
		{"X", "I", true},
		{"XX", "ZZ", true}, // two anticommuting sites cancel
		{"XX", "ZI", false},
		{"XYZ", "YXI", true},
		{"XI", "IX", true},
	} {
		a, b := gopauli.MustPauli(tc.a), gopauli.MustPauli(tc.b)
		require.Equal(t, tc.commutes, a.Commutes(b), "%s vs %s", tc.a, tc.b)
		require.Equal(t, tc.commutes, b.Commutes(a), "%s vs %s", tc.b, tc.a)
	}

	require.Panics(t, func() {
		gopauli.MustPauli("X").Commutes(gopauli.MustPauli("XX"))
	})
}

func TestMul(t *testing.T) {
	// phase-free products: X*Z = Y, X*Y = Z, Z*Y = X
	require.Equal(t, "Y", gopauli.MustPauli("X").Mul(gopauli.MustPauli("Z")).String())
	require.Equal(t, "Z", gopauli.MustPauli("X").Mul(gopauli.MustPauli("Y")).String())
	require.Equal(t, "X", gopauli.MustPauli("Z").Mul(gopauli.MustPauli("Y")).String())
	require.Equal(t, "II", gopauli.MustPauli("XY").Mul(gopauli.MustPauli("XY")).String())
	require.Equal(t, "XY", gopauli.MustPauli("XZ").Mul(gopauli.MustPauli("IX")).String())
}

func TestCanonicalOrder(t *testing.T) {
	// site order I < Z < X < Y, site 0 most significant
	ordered := []string{"II", "IZ", "IX", "IY", "ZI", "ZZ", "XI", "YY"}
	for i := 1; i < len(ordered); i++ {
		a := gopauli.MustPauli(ordered[i-1])
		b := gopauli.MustPauli(ordered[i])
		require.True(t, a.Less(b), "%s < %s", ordered[i-1], ordered[i])
	}

	// shorter strings sort first
	require.True(t, gopauli.MustPauli("Y").Less(gopauli.MustPauli("II")))
}

func TestInc(t *testing.T) {
	p := gopauli.Identity(2)
	seen := 0
	for ok := true; ok; p, ok = p.Inc() {
		seen++
	}
	require.Equal(t, 16, seen)
}

func TestByteCodec(t *testing.T) {
	src := gopauli.MustPauli("XIZZYIX")

	enc := src.AppendTo(nil)
	require.Len(t, enc, gopauli.PauliSz)

	dec, err := gopauli.PauliFromBytes(src.NumQubits(), enc)
	require.NoError(t, err)
	require.Equal(t, src, dec)
}

func TestWeightAndExpand(t *testing.T) {
	p := gopauli.MustPauli("XIZ")
	require.Equal(t, 2, p.Weight())

	grown, err := p.Expand(5)
	require.NoError(t, err)
	require.Equal(t, "XIZII", grown.String())

	_, err = grown.Expand(2)
	require.ErrorIs(t, err, gopauli.ErrLengthMismatch)
}

func TestCatalogContextClose(t *testing.T) {
	ctx := gopauli.NewCatalogContext()
	ctx.Close()

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context did not close")
	}
}
