package beacon

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"github.com/lunfardo314/fairwheel/clock"
	"github.com/lunfardo314/fairwheel/util"
	"github.com/yoseplee/vrf"
	"golang.org/x/crypto/blake2b"
)

// VRF beacon: for every sequence the beacon operator produces an ECVRF proof over the
// sequence bytes. The proof is unique for the key and the sequence, so the operator
// cannot grind beacon values, and anyone with the public key verifies it
type VRF struct {
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
	clock      clock.Clock
}

func NewVRF(privateKey ed25519.PrivateKey, clk clock.Clock) (*VRF, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("beacon: wrong private key length %d", len(privateKey))
	}
	return &VRF{
		publicKey:  privateKey.Public().(ed25519.PublicKey),
		privateKey: privateKey,
		clock:      clk,
	}, nil
}

func (v *VRF) PublicKey() ed25519.PublicKey {
	return v.publicKey
}

func (v *VRF) Current() ([32]byte, error) {
	value, _, err := v.ProveAt(v.clock.Sequence())
	return value, err
}

// ProveAt returns the beacon value and the proof for the sequence
func (v *VRF) ProveAt(seq uint64) (value [32]byte, proof []byte, err error) {
	err = util.CatchPanicOrError(func() error {
		var err1 error
		proof, _, err1 = vrf.Prove(v.publicKey, v.privateKey, sequenceBytes(seq))
		return err1
	})
	if err != nil {
		err = fmt.Errorf("beacon: VRF prove failed at sequence %d: %w", seq, err)
		return
	}
	value = ValueFromProof(proof)
	return
}

// ValueFromProof the beacon value is the hash of the VRF proof
func ValueFromProof(proof []byte) [32]byte {
	return blake2b.Sum256(proof)
}

// VerifyAt checks the proof against the public key and the sequence, and the value against the proof
func VerifyAt(publicKey ed25519.PublicKey, seq uint64, proof []byte, value [32]byte) (bool, error) {
	var ok bool
	err := util.CatchPanicOrError(func() error {
		var err1 error
		ok, err1 = vrf.Verify(publicKey, proof, sequenceBytes(seq))
		return err1
	})
	if err != nil {
		return false, err
	}
	return ok && ValueFromProof(proof) == value, nil
}

func sequenceBytes(seq uint64) []byte {
	var ret [8]byte
	binary.BigEndian.PutUint64(ret[:], seq)
	return ret[:]
}
