package entropy

import (
	"crypto/sha256"

	"golang.org/x/crypto/blake2b"
)

// Digest is the final compression step of the mixer. Parts are written in order
type Digest interface {
	Sum256(parts ...[]byte) [32]byte
	Name() string
}

type (
	blake2bDigest struct{}
	sha256Digest  struct{}
)

var (
	Blake2b Digest = blake2bDigest{}
	SHA256  Digest = sha256Digest{}
)

func (blake2bDigest) Sum256(parts ...[]byte) (ret [32]byte) {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	for _, p := range parts {
		h.Write(p)
	}
	copy(ret[:], h.Sum(nil))
	return
}

func (blake2bDigest) Name() string {
	return "blake2b-256"
}

func (sha256Digest) Sum256(parts ...[]byte) (ret [32]byte) {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	copy(ret[:], h.Sum(nil))
	return
}

func (sha256Digest) Name() string {
	return "sha256"
}

// DigestByName returns nil for unknown names
func DigestByName(name string) Digest {
	switch name {
	case "", Blake2b.Name(), "blake2b":
		return Blake2b
	case SHA256.Name():
		return SHA256
	}
	return nil
}
