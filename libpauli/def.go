package libpauli

import (
	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// SetDef is the wire encoding of a Set: the shared qubit count plus the
// packed symplectic words of each generator in collection order.
type SetDef struct {
	NumQubits int      `msgpack:"n"`
	XBits     []uint64 `msgpack:"x"`
	ZBits     []uint64 `msgpack:"z"`
}

func (set *Set) ExportDef() *SetDef {
	def := &SetDef{
		NumQubits: set.nq,
		XBits:     make([]uint64, len(set.strs)),
		ZBits:     make([]uint64, len(set.strs)),
	}
	for i, p := range set.strs {
		def.XBits[i], def.ZBits[i] = p.Bits()
	}
	return def
}

// MarshalOut appends the full wire encoding of this set.
func (set *Set) MarshalOut(in []byte) ([]byte, error) {
	enc, err := msgpack.Marshal(set.ExportDef())
	if err != nil {
		return nil, errors.Wrap(gopauli.ErrUnmarshal, err.Error())
	}
	return append(in, enc...), nil
}

// InitFromDef resets the set from a SetDef encoding.
func (set *Set) InitFromDef(setDef []byte) error {
	set.Init(nil)

	var def SetDef
	if err := msgpack.Unmarshal(setDef, &def); err != nil {
		return errors.Wrap(gopauli.ErrUnmarshal, err.Error())
	}
	if len(def.XBits) != len(def.ZBits) {
		return errors.Wrap(gopauli.ErrUnmarshal, "x/z word count mismatch")
	}
	for i := range def.XBits {
		p, err := gopauli.PauliFromBits(def.NumQubits, def.XBits[i], def.ZBits[i])
		if err != nil {
			return err
		}
		if err := set.Add(p); err != nil {
			return err
		}
	}
	set.nq = def.NumQubits
	return nil
}

// NewSetFromDef builds a pooled Set from a SetDef encoding.
func NewSetFromDef(setDef []byte) (*Set, error) {
	set := NewSet(nil)
	if err := set.InitFromDef(setDef); err != nil {
		set.Reclaim()
		return nil, err
	}
	return set, nil
}
