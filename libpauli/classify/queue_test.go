package classify_test

import (
	"testing"

	"github.com/pauli-systems/gopauli/libpauli/classify"
	"github.com/stretchr/testify/require"
)

func TestBuildQueueSeedsMostConnected(t *testing.T) {
	// XX anticommutes with both others; the others have one partner each.
	gens := pp(t, "ZI", "IZ", "XX")
	queue := classify.BuildQueue(gens)

	require.Len(t, queue, 3)
	require.Equal(t, "XX", queue[0].String())
	require.ElementsMatch(t, gens, queue)
}

func TestBuildQueueIsOrderInvariant(t *testing.T) {
	want := classify.BuildQueue(pp(t, "ZIII", "XZII", "IXZI", "IIXZ"))
	got := classify.BuildQueue(pp(t, "IIXZ", "ZIII", "IXZI", "XZII"))
	require.Equal(t, want, got)
}

func TestBuildQueueKeepsDuplicates(t *testing.T) {
	queue := classify.BuildQueue(pp(t, "X", "X"))

	require.Len(t, queue, 2)
	require.Equal(t, queue[0], queue[1])
}

func TestBuildQueueKeepsDuplicateSeedPartners(t *testing.T) {
	// both ZI copies anticommute with the seed XX and must survive queueing
	queue := classify.BuildQueue(pp(t, "XX", "ZI", "ZI"))

	require.Len(t, queue, 3)
	require.Equal(t, "XX", queue[0].String())
	require.Equal(t, "ZI", queue[1].String())
	require.Equal(t, "ZI", queue[2].String())
}

func TestBuildQueueNeighborsStayAdjacent(t *testing.T) {
	queue := classify.BuildQueue(pp(t, "ZIII", "XZII", "IXZI", "IIXZ"))
	require.Len(t, queue, 4)

	// every vertex after the seed anticommutes with some earlier vertex
	for i := 1; i < len(queue); i++ {
		linked := false
		for j := 0; j < i; j++ {
			if !queue[i].Commutes(queue[j]) {
				linked = true
				break
			}
		}
		require.True(t, linked, "queue[%d]=%s has no earlier partner", i, queue[i].String())
	}
}
