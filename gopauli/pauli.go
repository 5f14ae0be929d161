package gopauli

import (
	"encoding/binary"
	"math/bits"
	"sort"
	"strings"
)

// Op is a single-site Pauli operator encoded as two bits: the X bit and the Z bit.
// Y carries both bits, so Mul on Ops is a plain XOR.
type Op byte

const (
	OpI Op = 0b00
	OpZ Op = 0b01
	OpX Op = 0b10
	OpY Op = 0b11
)

var opNames = [4]byte{'I', 'Z', 'X', 'Y'}

func (op Op) String() string {
	return string(opNames[op&3])
}

// OpFromRune returns the Op for one of 'I', 'X', 'Y', 'Z'.
func OpFromRune(r rune) (Op, error) {
	switch r {
	case 'I', 'i':
		return OpI, nil
	case 'X', 'x':
		return OpX, nil
	case 'Y', 'y':
		return OpY, nil
	case 'Z', 'z':
		return OpZ, nil
	}
	return OpI, ErrBadOp
}

// Pauli is a phase-free Pauli string over up to MaxQubits sites.
//
// Each site carries an X bit and a Z bit, stored in two packed words
// with site 0 at the high bit.  This makes Pauli a comparable value type:
// equality, map keys, and ordering all work on the raw words.
type Pauli struct {
	count byte   // number of sites
	xbits uint64 // X bit per site, site 0 at bit 63
	zbits uint64 // Z bit per site, site 0 at bit 63
}

// PauliSz is the byte length of a marshaled Pauli (two big-endian words).
const PauliSz = 16

// Identity returns the all-identity string over numQubits sites.
func Identity(numQubits int) Pauli {
	if numQubits < 0 || numQubits > MaxQubits {
		panic(ErrQubitsExceeded)
	}
	return Pauli{count: byte(numQubits)}
}

// PauliFromString parses a plain operator string such as "XIZZY".
func PauliFromString(str string) (Pauli, error) {
	if len(str) > MaxQubits {
		return Pauli{}, ErrQubitsExceeded
	}
	p := Pauli{count: byte(len(str))}
	for i, r := range str {
		op, err := OpFromRune(r)
		if err != nil {
			return Pauli{}, err
		}
		p = p.WithSite(i, op)
	}
	return p, nil
}

// MustPauli is PauliFromString that panics on a bad operator string.
func MustPauli(str string) Pauli {
	p, err := PauliFromString(str)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pauli) NumQubits() int {
	return int(p.count)
}

func siteMask(site int) uint64 {
	return uint64(1) << (63 - site)
}

// Site returns the operator at the given zero-based site.
func (p Pauli) Site(site int) Op {
	if site < 0 || site >= int(p.count) {
		panic(ErrBadSite)
	}
	mask := siteMask(site)
	op := OpI
	if p.xbits&mask != 0 {
		op |= OpX
	}
	if p.zbits&mask != 0 {
		op |= OpZ
	}
	return op
}

// WithSite returns a copy of p with the operator at the given site replaced.
func (p Pauli) WithSite(site int, op Op) Pauli {
	if site < 0 || site >= int(p.count) {
		panic(ErrBadSite)
	}
	mask := siteMask(site)
	p.xbits &^= mask
	p.zbits &^= mask
	if op&OpX != 0 {
		p.xbits |= mask
	}
	if op&OpZ != 0 {
		p.zbits |= mask
	}
	return p
}

// Commutes reports whether p and q commute, via the symplectic form:
// the parity of X/Z bit overlaps in both directions must agree.
func (p Pauli) Commutes(q Pauli) bool {
	if p.count != q.count {
		panic(ErrLengthMismatch)
	}
	return (bits.OnesCount64(p.xbits&q.zbits)^bits.OnesCount64(p.zbits&q.xbits))&1 == 0
}

// Mul returns the phase-free product of p and q.  When p and q anticommute
// this is the commutator representative [p,q] up to phase.
func (p Pauli) Mul(q Pauli) Pauli {
	if p.count != q.count {
		panic(ErrLengthMismatch)
	}
	return Pauli{
		count: p.count,
		xbits: p.xbits ^ q.xbits,
		zbits: p.zbits ^ q.zbits,
	}
}

// Compare orders Pauli strings canonically: shorter strings first, then
// site by site with I < Z < X < Y.
func (p Pauli) Compare(q Pauli) int {
	if p.count != q.count {
		return int(p.count) - int(q.count)
	}
	d := (p.xbits ^ q.xbits) | (p.zbits ^ q.zbits)
	if d == 0 {
		return 0
	}
	mask := siteMask(bits.LeadingZeros64(d))
	pc := Op(0)
	qc := Op(0)
	if p.xbits&mask != 0 {
		pc |= OpX
	}
	if p.zbits&mask != 0 {
		pc |= OpZ
	}
	if q.xbits&mask != 0 {
		qc |= OpX
	}
	if q.zbits&mask != 0 {
		qc |= OpZ
	}
	return int(pc) - int(qc)
}

func (p Pauli) Less(q Pauli) bool {
	return p.Compare(q) < 0
}

func (p Pauli) IsIdentity() bool {
	return p.xbits == 0 && p.zbits == 0
}

// Weight returns the number of non-identity sites.
func (p Pauli) Weight() int {
	return bits.OnesCount64(p.xbits | p.zbits)
}

// Expand widens p to numQubits sites by tensoring identities on the right.
func (p Pauli) Expand(numQubits int) (Pauli, error) {
	if numQubits > MaxQubits {
		return Pauli{}, ErrQubitsExceeded
	}
	if numQubits < int(p.count) {
		return Pauli{}, ErrLengthMismatch
	}
	p.count = byte(numQubits)
	return p, nil
}

// Inc returns the next Pauli string in canonical order, treating the string
// as a base-4 counter with site 0 most significant.  ok is false after the
// all-Y string wraps back to identity.
func (p Pauli) Inc() (next Pauli, ok bool) {
	for site := int(p.count) - 1; site >= 0; site-- {
		op := p.Site(site)
		if op != OpY {
			return p.WithSite(site, op+1), true
		}
		p = p.WithSite(site, OpI)
	}
	return p, false
}

func (p Pauli) String() string {
	var b strings.Builder
	b.Grow(int(p.count))
	for i := 0; i < int(p.count); i++ {
		b.WriteByte(opNames[p.Site(i)])
	}
	return b.String()
}

// AppendTo appends the fixed 16-byte encoding of p.
func (p Pauli) AppendTo(dst []byte) []byte {
	var buf [PauliSz]byte
	binary.BigEndian.PutUint64(buf[0:8], p.xbits)
	binary.BigEndian.PutUint64(buf[8:16], p.zbits)
	return append(dst, buf[:]...)
}

// PauliFromBytes is the inverse of AppendTo.
func PauliFromBytes(numQubits int, src []byte) (Pauli, error) {
	if len(src) < PauliSz {
		return Pauli{}, ErrBadEncoding
	}
	if numQubits < 0 || numQubits > MaxQubits {
		return Pauli{}, ErrQubitsExceeded
	}
	return Pauli{
		count: byte(numQubits),
		xbits: binary.BigEndian.Uint64(src[0:8]),
		zbits: binary.BigEndian.Uint64(src[8:16]),
	}, nil
}

// Bits exposes the raw packed words, used by compact wire encodings.
func (p Pauli) Bits() (xbits, zbits uint64) {
	return p.xbits, p.zbits
}

// PauliFromBits rebuilds a Pauli from its packed words.
func PauliFromBits(numQubits int, xbits, zbits uint64) (Pauli, error) {
	if numQubits < 0 || numQubits > MaxQubits {
		return Pauli{}, ErrQubitsExceeded
	}
	return Pauli{count: byte(numQubits), xbits: xbits, zbits: zbits}, nil
}

// SortPaulis sorts a slice in ascending canonical order.
func SortPaulis(strs []Pauli) {
	sort.Slice(strs, func(i, j int) bool {
		return strs[i].Less(strs[j])
	})
}

// ContainsPauli reports whether v occurs in strs.
func ContainsPauli(strs []Pauli, v Pauli) bool {
	for _, s := range strs {
		if s == v {
			return true
		}
	}
	return false
}
