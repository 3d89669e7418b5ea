package store

import (
	"fmt"
	"time"

	"github.com/lunfardo314/fairwheel/wheel"
	bolt "go.etcd.io/bbolt"
)

var accountsBucket = []byte("accounts")

// BoltAccountStore keeps accounts in a single bbolt file
type BoltAccountStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltAccountStore, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt database file name not specified")
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("can't open bolt database '%s': %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(accountsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltAccountStore{db: db}, nil
}

func (s *BoltAccountStore) Load(id AccountID) (ret *wheel.Account, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(accountsBucket).Get(id[:])
		if len(data) == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id.Short())
		}
		// data is valid only inside the transaction, decoding copies it
		ret, err = decodeAccount(id, data)
		return err
	})
	return
}

func (s *BoltAccountStore) Save(id AccountID, acc *wheel.Account) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(accountsBucket).Put(id[:], acc.Bytes())
	})
}

func (s *BoltAccountStore) Delete(id AccountID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(accountsBucket).Delete(id[:])
	})
}

func (s *BoltAccountStore) ForEach(fun func(id AccountID, acc *wheel.Account) bool) error {
	return s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(accountsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var id AccountID
			copy(id[:], k)
			acc, err := decodeAccount(id, v)
			if err != nil {
				return err
			}
			if !fun(id, acc) {
				return nil
			}
		}
		return nil
	})
}

func (s *BoltAccountStore) Close() error {
	return s.db.Close()
}
