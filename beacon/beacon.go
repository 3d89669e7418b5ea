// Package beacon provides the randomness beacon oracle: an external value which is hard
// to predict before the sequence it belongs to
package beacon

import (
	"encoding/binary"

	"github.com/lunfardo314/fairwheel/clock"
	"golang.org/x/crypto/blake2b"
)

type (
	Source interface {
		Current() ([32]byte, error)
	}

	// Fixed always returns the same value
	Fixed [32]byte

	// Func adapts a function to the Source interface
	Func func() ([32]byte, error)

	// HashChain derives the beacon from the seed and the current sequence.
	// Predictable by anyone who knows the seed, for simulations and tests only
	HashChain struct {
		seed  [32]byte
		clock clock.Clock
	}
)

func (f Fixed) Current() ([32]byte, error) {
	return f, nil
}

func (f Func) Current() ([32]byte, error) {
	return f()
}

func NewHashChain(seed [32]byte, clk clock.Clock) *HashChain {
	return &HashChain{seed: seed, clock: clk}
}

func (h *HashChain) At(seq uint64) [32]byte {
	var buf [40]byte
	copy(buf[:32], h.seed[:])
	binary.BigEndian.PutUint64(buf[32:], seq)
	return blake2b.Sum256(buf[:])
}

func (h *HashChain) Current() ([32]byte, error) {
	return h.At(h.clock.Sequence()), nil
}
