package gopauli

import "errors"

// Errors
var (
	ErrUnmarshal           = errors.New("unmarshal failed")
	ErrBadCatalogParam     = errors.New("bad catalog param")
	ErrBadEncoding         = errors.New("bad pauli string encoding")
	ErrBadOp               = errors.New("bad pauli operator")
	ErrBadSite             = errors.New("site index out of range")
	ErrQubitsExceeded      = errors.New("qubit count exceeds MaxQubits")
	ErrLengthMismatch      = errors.New("pauli string lengths differ")
	ErrEmptySet            = errors.New("empty pauli set")
	ErrNilSet              = errors.New("nil pauli set")
	ErrStructuralViolation = errors.New("canonical structure violation")
	ErrNotClassified       = errors.New("set has not been classified")
)
