package libpauli

import (
	"github.com/dgraph-io/badger/v3"
	"github.com/pauli-systems/gopauli/gopauli"
)

// SignatureSet holds canonical signatures of classified sets and reports
// whether an equivalent set has already been added.
type SignatureSet interface {

	// TryAdd adds the given set if its DLA class is not already present.
	//
	// If the class of S is already in this SignatureSet, this call has no
	// effect and TryAdd() returns false.  Otherwise S's class is added and
	// TryAdd() returns true.
	//
	// After one or more calls to TryAdd(), call Close() for cleanup.
	TryAdd(S gopauli.SetState) bool

	// Close removes all previously added items from this set.
	//
	// If you make subsequent calls to TryAdd(), be sure you call Close()
	// when you're done.
	Close()
}

func NewSignatureSet() SignatureSet {
	return &sigSet{}
}

type sigSet struct {
	lsmSet
}

func (ss *sigSet) TryAdd(S gopauli.SetState) bool {
	var buf [192]byte
	key, err := S.CanonicSignature(buf[:0])
	if err != nil {
		return false
	}
	return ss.tryAdd(key)
}

// NewDropDupes returns a SetAdder that accepts only the first set seen for
// each unique DLA class.  Callers typically chain it in front of a catalog
// or a print stream.
func NewDropDupes() gopauli.SetAdder {
	return &dropDupes{
		sigs: NewSignatureSet(),
	}
}

type dropDupes struct {
	sigs SignatureSet
}

func (dd *dropDupes) TryAddSet(S gopauli.SetState) bool {
	return dd.sigs.TryAdd(S)
}

func (dd *dropDupes) Close() error {
	dd.sigs.Close()
	return nil
}

type lsmSet struct {
	db *badger.DB
}

func (set *lsmSet) autoOpen() {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			panic(err)
		}
	}
}

func (set *lsmSet) tryAdd(key []byte) bool {
	set.autoOpen()

	txn := set.db.NewTransaction(true)
	defer txn.Commit()

	added := false
	_, err := txn.Get(key)
	if err == nil {
		// no-op since the key is already in the db
	} else if err == badger.ErrKeyNotFound {
		err = txn.Set(key, nil)
		added = true
	}

	if err != nil {
		panic(err)
	}

	return added
}

func (set *lsmSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}
