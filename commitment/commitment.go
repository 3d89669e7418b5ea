// Package commitment binds a player to a 32-byte secret before the outcome is known.
// The commitment is a domain-separated blake2b-256 hash of the secret: one-way and hiding.
package commitment

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	SecretSize = 32
	Size       = 32

	domainTag = "fairwheel/commitment/v1"
)

type (
	Secret     [SecretSize]byte
	Commitment [Size]byte
)

var Nil Commitment

func Commit(secret Secret) (ret Commitment) {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(domainTag))
	h.Write(secret[:])
	copy(ret[:], h.Sum(nil))
	return
}

// Verify checks the secret against the commitment in constant time
func Verify(secret Secret, c Commitment) bool {
	expected := Commit(secret)
	return subtle.ConstantTimeCompare(expected[:], c[:]) == 1
}

func FromBytes(data []byte) (ret Commitment, err error) {
	if len(data) != Size {
		err = fmt.Errorf("commitment: wrong data length %d", len(data))
		return
	}
	copy(ret[:], data)
	return
}

func FromHex(s string) (Commitment, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Nil, fmt.Errorf("commitment: %w", err)
	}
	return FromBytes(data)
}

func SecretFromBytes(data []byte) (ret Secret, err error) {
	if len(data) != SecretSize {
		err = fmt.Errorf("secret: wrong data length %d", len(data))
		return
	}
	copy(ret[:], data)
	return
}

func SecretFromHex(s string) (Secret, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Secret{}, fmt.Errorf("secret: %w", err)
	}
	return SecretFromBytes(data)
}

func (c Commitment) Bytes() []byte {
	return c[:]
}

func (c Commitment) IsZero() bool {
	return c == Nil
}

func (c Commitment) String() string {
	return hex.EncodeToString(c[:])
}

func (s Secret) String() string {
	return hex.EncodeToString(s[:])
}
