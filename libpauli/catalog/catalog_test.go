package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pauli-systems/gopauli/libpauli"
	"github.com/pauli-systems/gopauli/libpauli/catalog"
)

func openTestCatalog(t *testing.T) (gopauli.CatalogContext, gopauli.Catalog) {
	t.Helper()
	ctx := gopauli.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, gopauli.CatalogOpts{})
	require.NoError(t, err)
	return ctx, cat
}

func TestTryAddSet(t *testing.T) {
	ctx, cat := openTestCatalog(t)
	defer ctx.Close()
	defer cat.Close()

	a := libpauli.MustSet("ZI, IZ, XX")
	defer a.Reclaim()
	require.True(t, cat.TryAddSet(a))
	require.False(t, cat.TryAddSet(a), "exact duplicate must be rejected")

	// Same class, different generator encoding: new set, old class.
	b := libpauli.MustSet("IZ, ZI, XX")
	defer b.Reclaim()
	require.True(t, cat.TryAddSet(b))

	c := libpauli.MustSet("X, Z")
	defer c.Reclaim()
	require.True(t, cat.TryAddSet(c))

	require.Equal(t, int64(1), cat.NumClasses(2))
	require.Equal(t, int64(2), cat.NumSets(2))
	require.Equal(t, int64(1), cat.NumClasses(1))
	require.Equal(t, int64(1), cat.NumSets(1))
	require.Equal(t, int64(0), cat.NumSets(3))
}

func pullAll(stream *gopauli.SetStream) []gopauli.SetState {
	var hits []gopauli.SetState
	for S := range stream.Outlet {
		hits = append(hits, S)
	}
	return hits
}

func TestSelect(t *testing.T) {
	ctx, cat := openTestCatalog(t)
	defer ctx.Close()
	defer cat.Close()

	for _, expr := range []string{
		"ZI, IZ, XX",
		"IZ, ZI, XX",
		"X, Z",
		"ZIII, XZII, IXZI, IIXZ",
	} {
		set := libpauli.MustSet(expr)
		require.True(t, cat.TryAddSet(set))
		set.Reclaim()
	}

	hits := pullAll(gopauli.SelectFromCatalog(cat, gopauli.DefaultSetSelector))
	require.Len(t, hits, 4)
	for _, S := range hits {
		S.Reclaim()
	}

	// UniqueClasses keeps the first set of each class.
	sel := gopauli.DefaultSetSelector
	sel.UniqueClasses = true
	hits = pullAll(gopauli.SelectFromCatalog(cat, sel))
	require.Len(t, hits, 3)
	for _, S := range hits {
		S.Reclaim()
	}

	// Algebra filtering skips whole classes.
	sel = gopauli.DefaultSetSelector
	sel.Algebra = "so(5)"
	hits = pullAll(gopauli.SelectFromCatalog(cat, sel))
	require.Len(t, hits, 1)
	require.Equal(t, 4, hits[0].NumQubits())
	hits[0].Reclaim()

	// Qubit bounds.
	sel = gopauli.DefaultSetSelector
	sel.Min.NumQubits = 2
	sel.Max.NumQubits = 2
	hits = pullAll(gopauli.SelectFromCatalog(cat, sel))
	require.Len(t, hits, 2)
	for _, S := range hits {
		require.Equal(t, 2, S.NumQubits())
		S.Reclaim()
	}
}

func TestReadOnlyRequiresPath(t *testing.T) {
	ctx := gopauli.NewCatalogContext()
	defer ctx.Close()

	_, err := catalog.OpenCatalog(ctx, gopauli.CatalogOpts{ReadOnly: true})
	require.Error(t, err)
}

func TestQubitLimit(t *testing.T) {
	ctx := gopauli.NewCatalogContext()
	defer ctx.Close()

	cat, err := catalog.OpenCatalog(ctx, gopauli.CatalogOpts{QubitLimit: 2})
	require.NoError(t, err)
	defer cat.Close()

	tooWide := libpauli.MustSet("XIZ")
	defer tooWide.Reclaim()
	require.False(t, cat.TryAddSet(tooWide))
}
