// Package store persists wheel accounts
package store

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/lunfardo314/fairwheel/wheel"
	"golang.org/x/crypto/blake2b"
)

const (
	TypeBadger = "badger"
	TypeBolt   = "bolt"
	TypeMemory = "memory"
)

var ErrNotFound = errors.New("account not found")

type (
	// AccountID is the key of the wheel account in the store
	AccountID [32]byte

	AccountStore interface {
		// Load returns ErrNotFound if the account does not exist
		Load(id AccountID) (*wheel.Account, error)
		Save(id AccountID, acc *wheel.Account) error
		Delete(id AccountID) error
		ForEach(fun func(id AccountID, acc *wheel.Account) bool) error
		Close() error
	}
)

// AccountIDFromName derives account ID from the human-readable name
func AccountIDFromName(name string) AccountID {
	return blake2b.Sum256([]byte("fairwheel/account/" + name))
}

// ParseAccountID accepts 64 hex characters or any other string as a name
func ParseAccountID(s string) AccountID {
	s = strings.TrimSpace(s)
	if len(s) == 64 {
		if data, err := hex.DecodeString(s); err == nil {
			var ret AccountID
			copy(ret[:], data)
			return ret
		}
	}
	return AccountIDFromName(s)
}

func (id AccountID) String() string {
	return hex.EncodeToString(id[:])
}

func (id AccountID) Short() string {
	return hex.EncodeToString(id[:4]) + ".."
}

// LoadOrNew returns new uninitialized account if it does not exist
func LoadOrNew(s AccountStore, id AccountID) (*wheel.Account, error) {
	acc, err := s.Load(id)
	if errors.Is(err, ErrNotFound) {
		return wheel.NewAccount(), nil
	}
	return acc, err
}

// Open creates store of the type. Name is a directory (badger) or file (bolt) name, ignored for memory
func Open(typ, name string) (AccountStore, error) {
	switch typ {
	case TypeBadger, "":
		return OpenBadger(name)
	case TypeBolt:
		return OpenBolt(name)
	case TypeMemory:
		return NewInMemory(), nil
	}
	return nil, fmt.Errorf("unknown store type '%s'", typ)
}

func decodeAccount(id AccountID, data []byte) (*wheel.Account, error) {
	acc, err := wheel.AccountFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", id.Short(), err)
	}
	return acc, nil
}
