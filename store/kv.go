package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/lunfardo314/fairwheel/util"
	"github.com/lunfardo314/fairwheel/wheel"
	"github.com/lunfardo314/unitrie/adaptors/badger_adaptor"
	"github.com/lunfardo314/unitrie/common"
)

// accounts are stored in own partition of the key/value store
const accountPartition = byte(0x01)

type (
	KVStore interface {
		common.KVReader
		common.BatchedUpdatable
		common.Traversable
	}

	// KVAccountStore keeps accounts in the key/value store: badger DB or in-memory store
	KVAccountStore struct {
		kv    KVStore
		close func() error
	}
)

func NewKVAccountStore(kv KVStore) *KVAccountStore {
	return &KVAccountStore{kv: kv}
}

func NewInMemory() *KVAccountStore {
	return NewKVAccountStore(common.NewInMemoryKVStore())
}

// OpenBadger creates the database if it does not exist
func OpenBadger(name string) (*KVAccountStore, error) {
	if name == "" {
		return nil, fmt.Errorf("badger database name not specified")
	}
	var db *badger.DB
	err := util.CatchPanicOrError(func() error {
		db = badger_adaptor.MustCreateOrOpenBadgerDB(name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("can't open badger database '%s': %w", name, err)
	}
	ret := NewKVAccountStore(badger_adaptor.New(db))
	ret.close = db.Close
	return ret, nil
}

func accountKey(id AccountID) []byte {
	return common.Concat(accountPartition, id[:])
}

func (s *KVAccountStore) Load(id AccountID) (*wheel.Account, error) {
	data := s.kv.Get(accountKey(id))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.Short())
	}
	return decodeAccount(id, data)
}

func (s *KVAccountStore) Save(id AccountID, acc *wheel.Account) error {
	batch := s.kv.BatchedWriter()
	batch.Set(accountKey(id), acc.Bytes())
	return batch.Commit()
}

func (s *KVAccountStore) Delete(id AccountID) error {
	batch := s.kv.BatchedWriter()
	batch.Set(accountKey(id), nil)
	return batch.Commit()
}

func (s *KVAccountStore) ForEach(fun func(id AccountID, acc *wheel.Account) bool) (err error) {
	s.kv.Iterator([]byte{accountPartition}).Iterate(func(k, data []byte) bool {
		util.Assertf(len(k) == 33, "wrong account key length %d", len(k))
		var id AccountID
		copy(id[:], k[1:])
		var acc *wheel.Account
		if acc, err = decodeAccount(id, data); err != nil {
			return false
		}
		return fun(id, acc)
	})
	return
}

func (s *KVAccountStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
