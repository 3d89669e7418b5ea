package testutil

import (
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"

	"github.com/lunfardo314/fairwheel/util"
	"golang.org/x/crypto/blake2b"
)

const TestingDeterministicOriginPrivateKey = "8ec47313c15c3a4443c41619735109b56bc818f4a6b71d6a1f186ec96d15f28f14117899305d99fb4775de9223ce9886cfaa3195da1e40c5db47c61266f04dd2"

func GetTestingPrivateKey(idx ...int) ed25519.PrivateKey {
	var ret ed25519.PrivateKey
	if len(idx) == 0 {
		pkBin, err := hex.DecodeString(TestingDeterministicOriginPrivateKey)
		ret = pkBin
		util.AssertNoError(err)
	} else {
		var u64 [8]byte
		binary.BigEndian.PutUint64(u64[:], uint64(idx[0]))
		seed := blake2b.Sum256(append([]byte(TestingDeterministicOriginPrivateKey), u64[:]...))
		ret = ed25519.NewKeyFromSeed(seed[:])
	}
	return ret
}

// DeterministicBytes32 returns reproducible pseudo-random 32 bytes for the index
func DeterministicBytes32(idx uint64, tag ...string) [32]byte {
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], idx)
	data := u64[:]
	if len(tag) > 0 {
		data = append([]byte(tag[0]), data...)
	}
	return blake2b.Sum256(data)
}
