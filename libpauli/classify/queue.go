package classify

import (
	"github.com/pauli-systems/gopauli/gopauli"
)

// antiCommutates returns the vertices of pool that anticommute with v,
// excluding v itself.
func antiCommutates(v gopauli.Pauli, pool []gopauli.Pauli) []gopauli.Pauli {
	var out []gopauli.Pauli
	for _, u := range pool {
		if u != v && !v.Commutes(u) {
			out = append(out, u)
		}
	}
	return out
}

// maxConnected picks the vertex with the most anticommuting partners.
// The pool is scanned in order, so a canonical pre-sort makes the pick deterministic.
func maxConnected(pool []gopauli.Pauli) (gopauli.Pauli, []gopauli.Pauli) {
	seed := pool[0]
	partners := antiCommutates(seed, pool)
	for _, v := range pool[1:] {
		vp := antiCommutates(v, pool)
		if len(vp) > len(partners) {
			seed = v
			partners = vp
		}
	}
	return seed, partners
}

func queueIndex(queue []gopauli.Pauli, v gopauli.Pauli) int {
	for i, u := range queue {
		if u == v {
			return i
		}
	}
	return -1
}

// BuildQueue orders one connected component's vertices into the insertion
// sequence consumed by the engine.  The seed is the vertex with the most
// anticommuting partners; every later vertex is placed so that it
// anticommutes with at least one vertex queued before it:
//
//   - a vertex linked to exactly one queued vertex goes to the queue end,
//   - a vertex linked to several goes right after its earliest-queued partner,
//   - an unlinked vertex waits for a later pass.
//
// A duplicate of an already-queued vertex is appended as-is so the engine
// can flag it as dependent.
func BuildQueue(generators []gopauli.Pauli) []gopauli.Pauli {
	if len(generators) == 0 {
		return nil
	}
	pool := append([]gopauli.Pauli(nil), generators...)
	gopauli.SortPaulis(pool)

	seed, partners := maxConnected(pool)
	queue := make([]gopauli.Pauli, 0, len(pool))
	queue = append(queue, seed)
	pool = removePauli(pool, seed)
	// partners holds one entry per pool element, so duplicates carry through
	for _, p := range partners {
		pool = removePauli(pool, p)
		queue = append(queue, p)
	}

	for len(pool) > 0 {
		taken := false
		for i := 0; i < len(pool); i++ {
			v := pool[i]
			if queueIndex(queue, v) >= 0 {
				queue = append(queue, v)
				pool = append(pool[:i], pool[i+1:]...)
				taken = true
				break
			}
			links := antiCommutates(v, queue)
			if len(links) == 0 {
				continue
			}
			if len(links) == 1 {
				queue = append(queue, v)
			} else {
				minIdx := len(queue)
				for _, link := range links {
					if idx := queueIndex(queue, link); idx < minIdx {
						minIdx = idx
					}
				}
				queue = append(queue, gopauli.Pauli{})
				copy(queue[minIdx+2:], queue[minIdx+1:])
				queue[minIdx+1] = v
			}
			pool = append(pool[:i], pool[i+1:]...)
			taken = true
			break
		}
		if !taken {
			// Disconnected leftovers still enter the queue; the engine
			// reports them as NotConnected.
			queue = append(queue, pool...)
			break
		}
	}
	return queue
}

func removePauli(pool []gopauli.Pauli, v gopauli.Pauli) []gopauli.Pauli {
	for i, u := range pool {
		if u == v {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
