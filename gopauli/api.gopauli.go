package gopauli

import (
	"io"
)

const (

	// MaxQubits is the max number of sites a Pauli string can carry.
	// It is bounded so a string packs into two machine words and stays a comparable value.
	MaxQubits = 64
)

// SetState is a set of Pauli-string generators together with its (lazily
// computed) canonical classification.
type SetState interface {

	// NumQubits returns the common site count of the generators.
	NumQubits() int

	// NumStrings returns the number of generators in the set.
	NumStrings() int

	// Generators returns the generator list in collection order.
	// The returned slice must not be mutated.
	Generators() []Pauli

	// Canonize builds (or rebuilds) the canonical classification of this set.
	Canonize() error

	// Algebra returns the classified algebra name, canonizing first if needed.
	Algebra() (string, error)

	// CanonicSignature appends a byte signature that identifies the DLA class
	// of this set: equal signatures mean equivalent canonical structures.
	CanonicSignature(in []byte) ([]byte, error)

	// MarshalOut appends the full wire encoding of this set.
	MarshalOut(in []byte) ([]byte, error)

	WriteAsString(out io.Writer, opts PrintOpts)

	// Returns info about this set
	GetInfo() SetInfo

	// Returns a new copy of this instance.
	MakeCopy() SetState

	// Recycles this SetState instance into a pool for reuse.
	// Caller asserts that no more references to this instance will persist.
	Reclaim()
}

// OnSetHit is a callback channel used to return sets meeting a set of selection criteria.
// Ownership of a SetState also travels through the channel.
type OnSetHit chan<- SetState

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs to be closed then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a Catalog
type CatalogOpts struct {
	DbPathName string // omit for in-memory db
	ReadOnly   bool   // open in read-only mode
	QubitLimit int32  // max qubit count this catalog accepts
}

type SetAdder interface {

	// Tries to add the given set to this catalog.
	// If true is returned, S did not exist and was added.
	TryAddSet(S SetState) bool
}

// Catalog wraps a database of classified Pauli generator sets.
type Catalog interface {
	SetAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumClasses returns the number of unique DLA classes in this catalog for a given qubit count.
	// A zero or out of bounds qubit count returns 0.
	NumClasses(forQubitCount byte) int64

	// NumSets returns the number of stored generator sets for a given qubit count.
	// A zero or out of bounds qubit count returns 0.
	NumSets(forQubitCount byte) int64

	// Select fires the given callback with each set that meets the selection criteria.
	Select(sel SetSelector, onHit OnSetHit)

	Close() error
}

type SetInfo struct {
	NumQubits     byte
	NumStrings    byte
	NumComponents byte
}

// SetSelector is an operator that either selects a given set or not.
type SetSelector struct {
	Algebra       string  // If set, only sets classifying to this algebra name
	UniqueClasses bool    // Only select the first set for each unique DLA class
	Min           SetInfo // lower select bounds
	Max           SetInfo // upper select bounds
}

// PrintOpts specifies what is printed when printing a set
type PrintOpts struct {
	Label   string // Prefix label
	Exprs   bool   // If set, prints the generator expression
	Algebra bool   // If set, prints the classified algebra name
	DLADim  bool   // If set, prints the DLA dimension
	Morphs  bool   // If set, prints the canonical leg structure per component
}

var DefaultPrintOpts = PrintOpts{
	Exprs:   true,
	Algebra: true,
	DLADim:  true,
}
