package store

import (
	"context"

	"airledger-backend/internal/domain"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelBackend keeps records in a LevelDB database keyed kind||address.
type LevelBackend struct {
	db *leveldb.DB
}

// OpenLevelDB opens or creates the database directory at path.
func OpenLevelDB(path string) (*LevelBackend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelBackend{db: db}, nil
}

// OpenLevelDBMemory opens a database with no files behind it.
func OpenLevelDBMemory() (*LevelBackend, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelBackend{db: db}, nil
}

// Update runs fn inside a LevelDB transaction. Only one transaction can be
// open at a time, so units are fully serialized.
func (b *LevelBackend) Update(ctx context.Context, fn func(Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tr, err := b.db.OpenTransaction()
	if err != nil {
		return err
	}
	if err := fn(&levelTxn{r: tr, tr: tr}); err != nil {
		tr.Discard()
		return err
	}
	if err := ctx.Err(); err != nil {
		tr.Discard()
		return err
	}
	return tr.Commit()
}

func (b *LevelBackend) View(ctx context.Context, fn func(Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap, err := b.db.GetSnapshot()
	if err != nil {
		return err
	}
	defer snap.Release()
	return fn(&levelTxn{r: snap})
}

func (b *LevelBackend) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap, err := b.db.GetSnapshot()
	if err != nil {
		return err
	}
	snap.Release()
	return nil
}

func (b *LevelBackend) Close() error {
	return b.db.Close()
}

type levelReader interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

type levelTxn struct {
	r  levelReader
	tr *leveldb.Transaction // nil inside View
}

func levelKey(kind RecordKind, address domain.Address) []byte {
	key := make([]byte, 0, 1+domain.AddressLength)
	key = append(key, byte(kind))
	return append(key, address[:]...)
}

func (t *levelTxn) Get(kind RecordKind, address domain.Address) ([]byte, error) {
	v, err := t.r.Get(levelKey(kind, address), nil)
	if err == leveldb.ErrNotFound {
		return nil, domain.ErrRecordNotFound
	}
	return v, err
}

func (t *levelTxn) Put(e Entry) error {
	if t.tr == nil {
		return ErrReadOnly
	}
	return t.tr.Put(levelKey(e.Kind, e.Address), e.Payload, nil)
}

// Insert checks then writes; the open transaction excludes every other writer.
func (t *levelTxn) Insert(e Entry) error {
	if t.tr == nil {
		return ErrReadOnly
	}
	key := levelKey(e.Kind, e.Address)
	taken, err := t.tr.Has(key, nil)
	if err != nil {
		return err
	}
	if taken {
		return ErrRecordExists
	}
	return t.tr.Put(key, e.Payload, nil)
}

func (t *levelTxn) Scan(kind RecordKind, fn func(domain.Address, []byte) error) error {
	iter := t.r.NewIterator(util.BytesPrefix([]byte{byte(kind)}), nil)
	defer iter.Release()
	for iter.Next() {
		key := iter.Key()
		if len(key) != 1+domain.AddressLength {
			return &ErrCorruptRecord{Kind: kind, Reason: "bad key length"}
		}
		var addr domain.Address
		copy(addr[:], key[1:])
		// iterator buffers are reused on Next
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if err := fn(addr, value); err != nil {
			return err
		}
	}
	return iter.Error()
}
