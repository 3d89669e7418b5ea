// Package entropy combines weakly trusted entropy sources into a 256-bit digest.
//
// The four inputs (beacon, revealed secret, sequence, previous beacon) first go through
// rounds of non-linear byte mixing over the whole 32-byte state, and the state together
// with the raw inputs is then compressed by a cryptographic Digest. Anyone holding the
// same four inputs recomputes the same digest, which is how a draw is verified.
package entropy

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

const (
	DefaultRounds = 8
	// MinRounds is the minimum for every input byte to reach every state byte
	MinRounds = 2
	MaxRounds = 64

	mixTag = "fairwheel/mix/v1"
)

// odd multipliers are invertible mod 256, so each step is a byte permutation
var oddMultipliers = [...]byte{0x9d, 0x3b, 0xc5, 0x6f, 0xa7, 0x1d, 0xe3, 0x55}

type (
	Mixer struct {
		rounds int
		digest Digest
	}

	Option func(m *Mixer)
)

func WithRounds(r int) Option {
	return func(m *Mixer) {
		m.rounds = r
	}
}

func WithDigest(d Digest) Option {
	return func(m *Mixer) {
		m.digest = d
	}
}

func New(opts ...Option) (*Mixer, error) {
	ret := &Mixer{
		rounds: DefaultRounds,
		digest: Blake2b,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.rounds < MinRounds || ret.rounds > MaxRounds {
		return nil, fmt.Errorf("entropy: number of rounds must be in [%d, %d], got %d", MinRounds, MaxRounds, ret.rounds)
	}
	if ret.digest == nil {
		return nil, fmt.Errorf("entropy: digest not specified")
	}
	return ret, nil
}

// Default returns the mixer with default parameters
func Default() *Mixer {
	ret, err := New()
	if err != nil {
		panic(err)
	}
	return ret
}

func (m *Mixer) Rounds() int {
	return m.rounds
}

func (m *Mixer) Digest() Digest {
	return m.digest
}

// Precondition runs the mixing rounds only
func (m *Mixer) Precondition(beacon, secret [32]byte, sequence uint64, previous [32]byte) (state [32]byte) {
	var seq [8]byte
	binary.LittleEndian.PutUint64(seq[:], sequence)

	for i := range state {
		state[i] = beacon[i] ^ bits.RotateLeft8(secret[i], 3) ^ bits.RotateLeft8(previous[i], 5) ^ seq[i%8]
	}
	keys := [3]*[32]byte{&beacon, &secret, &previous}
	for r := 0; r < m.rounds; r++ {
		key := keys[r%len(keys)]
		mul := oddMultipliers[r%len(oddMultipliers)]
		for i := 0; i < len(state); i++ {
			// state[31] of the previous round feeds state[0], so chaining wraps between rounds
			prev := state[(i+len(state)-1)%len(state)]
			k := key[(i+r)%len(key)] ^ seq[(i+r)%len(seq)] ^ byte(r)
			x := state[i]*mul + prev + k
			state[i] = bits.RotateLeft8(x, (r+i)%7+1)
		}
	}
	return
}

// Mix returns the verification digest of the draw
func (m *Mixer) Mix(beacon, secret [32]byte, sequence uint64, previous [32]byte) [32]byte {
	state := m.Precondition(beacon, secret, sequence, previous)
	var seq [8]byte
	binary.LittleEndian.PutUint64(seq[:], sequence)
	// all parts are fixed length, concatenation is unambiguous
	return m.digest.Sum256([]byte(mixTag), state[:], beacon[:], secret[:], seq[:], previous[:])
}

func (m *Mixer) String() string {
	return fmt.Sprintf("mixer(rounds=%d, digest=%s)", m.rounds, m.digest.Name())
}
