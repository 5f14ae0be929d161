package catalog

import (
	"bytes"
	"runtime"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pauli-systems/gopauli/gopauli"
	"github.com/pauli-systems/gopauli/libpauli"
)

/***

Catalog database format:

	gCatalogStateKey => CatalogState

	ClassKey := NumQubits (byte), ClassSpec, NUL, NUL    => algebra name (or empty)
		ClassKey, SetDef    => SetDef
		...
	...

A class header key is always a strict prefix of its member keys, so headers
sort immediately before their members and a forward scan sees each class
header first.  Skipping to the next class means bumping the last NUL of the
header key and re-seeking.

***/

var gCatalogStateKey = []byte{0x00, 0x00, 0x01}

// CatalogState is the persisted db header: per-qubit-count tallies of
// stored classes and sets.
type CatalogState struct {
	MajorVers  int32    `msgpack:"vmaj"`
	MinorVers  int32    `msgpack:"vmin"`
	QubitLimit int32    `msgpack:"nq"`
	NumClasses []uint64 `msgpack:"classes"`
	NumSets    []uint64 `msgpack:"sets"`
}

// catalog is a db wrapper for a classified generator-set catalog.
type catalog struct {
	ctx        gopauli.CatalogContext
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
}

func OpenCatalog(ctx gopauli.CatalogContext, opts gopauli.CatalogOpts) (gopauli.Catalog, error) {

	if opts.QubitLimit <= 0 {
		opts.QubitLimit = 12
	}

	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	var err error

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gopauli.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, the catalog ctx is blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state.MajorVers = 2026
		cat.state.MinorVers = 1
		cat.state.QubitLimit = opts.QubitLimit
		cat.state.NumClasses = make([]uint64, opts.QubitLimit+1)
		cat.state.NumSets = make([]uint64, opts.QubitLimit+1)
	}

	if err == nil {
		if cat.state.MajorVers != 2026 || cat.state.MinorVers != 1 {
			err = errors.New("catalog version is incompatible")
		} else if opts.QubitLimit > cat.state.QubitLimit {
			err = errors.New("catalog's QubitLimit is below the requested QubitLimit")
		}
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *catalog) NumClasses(forQubitCount byte) int64 {
	if forQubitCount == 0 || int(forQubitCount) >= len(cat.state.NumClasses) {
		return 0
	}
	return int64(cat.state.NumClasses[forQubitCount])
}

func (cat *catalog) NumSets(forQubitCount byte) int64 {
	if forQubitCount == 0 || int(forQubitCount) >= len(cat.state.NumSets) {
		return 0
	}
	return int64(cat.state.NumSets[forQubitCount])
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &cat.state)
		})
	})
}

func (cat *catalog) flushState() {
	if cat.stateDirty && !cat.readOnly {
		err := cat.db.Update(func(txn *badger.Txn) error {
			stateBuf, err := msgpack.Marshal(&cat.state)
			if err != nil {
				return err
			}
			return txn.Set(gCatalogStateKey, stateBuf)
		})
		if err != nil {
			panic(err)
		}
		cat.stateDirty = false
	}
}

func (cat *catalog) Close() error {
	cat.flushState()
	if cat.db != nil {
		cat.db.Close()
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

// formClassKey appends the double-NUL terminated class header key for S.
func (cat *catalog) formClassKey(key []byte, S gopauli.SetState) ([]byte, error) {
	key, err := S.CanonicSignature(key)
	if err != nil {
		return nil, err
	}
	return append(key, 0, 0), nil
}

// TryAddSet adds the given set if it doesn't already exist (in its current form).
//
// If true is returned, S was not present and was added.
//
// If false is returned, S already exists in the catalog (or the set is not valid).
func (cat *catalog) TryAddSet(S gopauli.SetState) bool {
	if cat.readOnly {
		return false
	}
	nq := S.NumQubits()
	if nq < 1 || nq > int(cat.state.QubitLimit) {
		return false
	}

	var keyBuf, valBuf [256]byte

	classKey, err := cat.formClassKey(keyBuf[:0], S)
	if err != nil {
		return false
	}
	setKey, err := S.MarshalOut(classKey)
	if err != nil {
		return false
	}

	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	isNewClass := false
	isNewSet := false
	_, err = txn.Get(classKey)
	if err == badger.ErrKeyNotFound {
		isNewClass = true
		isNewSet = true
	} else {
		_, err = txn.Get(setKey)
		if err == badger.ErrKeyNotFound {
			isNewSet = true
		}
	}

	if !isNewSet {
		return false
	}

	if isNewClass {
		// The header value carries the algebra name so selection can
		// filter whole classes without decoding members.
		name, err := S.Algebra()
		if err != nil {
			name = ""
		}
		if err := txn.Set(classKey, []byte(name)); err != nil {
			panic(err)
		}
		cat.state.NumClasses[nq]++
		cat.stateDirty = true
	}

	val, err := S.MarshalOut(valBuf[:0])
	if err != nil {
		return false
	}
	if err := txn.Set(setKey, val); err != nil {
		panic(err)
	}
	cat.state.NumSets[nq]++
	cat.stateDirty = true

	if err := txn.Commit(); err != nil {
		panic(err)
	}
	return true
}

func loadAndPushSet(item *badger.Item, sel *gopauli.SetSelector, onHit gopauli.OnSetHit) {
	err := item.Value(func(val []byte) error {
		set, err := libpauli.NewSetFromDef(val)
		if err != nil {
			return err
		}
		if sel.SelectsSet(set) {
			onHit <- set
		} else {
			set.Reclaim()
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
}

// Select will call onHit with all sets matching the given search criteria.
//
// Enumeration stops when there are no more matches.
func (cat *catalog) Select(sel gopauli.SetSelector, onHit gopauli.OnSetHit) {
	minKey := [1]byte{sel.Min.NumQubits}
	maxQubits := sel.Max.NumQubits
	if maxQubits == 0 {
		maxQubits = byte(cat.state.QubitLimit)
	}

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   300,
	})
	defer it.Close()

	var keyBuf [256]byte
	classKey := append(keyBuf[:0], 0xFF, 0xFF) // suffix ensures no match
	classWanted := false

	for it.Seek(minKey[:]); it.Valid(); {
		curItem := it.Item()
		curKey := curItem.Key()

		if bytes.Equal(curKey, gCatalogStateKey) {
			it.Next()
			continue
		}

		// Stop when the qubit count is over the max
		if curKey[0] > maxQubits {
			break
		}

		nextClass := false

		if bytes.HasPrefix(curKey, classKey) {
			if classWanted {
				loadAndPushSet(curItem, &sel, onHit)
				if sel.UniqueClasses {
					nextClass = true
				}
			} else {
				nextClass = true
			}
		} else {
			n := len(curKey)
			if curKey[n-2] != 0 || curKey[n-1] != 0 { // check double NUL suffix
				panic("unexpected catalog entry")
			}

			// A new prefix means a new class header
			classKey = append(classKey[:0], curKey...)
			classWanted = true
			if sel.Algebra != "" {
				err := curItem.Value(func(val []byte) error {
					classWanted = val != nil && string(val) == sel.Algebra
					return nil
				})
				if err != nil {
					panic(err)
				}
			}
		}

		if nextClass {
			classKey[len(classKey)-1] = 1
			it.Seek(classKey)
			classKey = append(keyBuf[:0], 0xFF, 0xFF)
		} else {
			it.Next()
		}
	}
}
