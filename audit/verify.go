// Package audit lets a third party check spin outcomes from public values and the revealed secret
package audit

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/lunfardo314/fairwheel/beacon"
	"github.com/lunfardo314/fairwheel/commitment"
	"github.com/lunfardo314/fairwheel/entropy"
	"github.com/lunfardo314/fairwheel/selector"
	"github.com/lunfardo314/fairwheel/wheel"
)

var (
	ErrDigestMismatch = errors.New("audit: verification digest does not match")
	ErrPrizeMismatch  = errors.New("audit: prize index does not match")
	ErrBrokenChain    = errors.New("audit: beacon chain is broken")
	ErrBeaconProof    = errors.New("audit: beacon proof is not valid")
)

// VerifyOutcome recomputes digest and prize index. Mixer must be the one the wheel was run with, nil means default
func VerifyOutcome(o *wheel.SpinOutcome, secret commitment.Secret, prizes wheel.PrizeTable, mixer *entropy.Mixer) error {
	if mixer == nil {
		mixer = entropy.Default()
	}
	digest := mixer.Mix(o.Beacon, secret, o.Sequence, o.PreviousBeacon)
	if digest != o.Digest {
		return ErrDigestMismatch
	}
	if idx := selector.Select(digest, prizes.Weights()); idx != o.PrizeIndex {
		return fmt.Errorf("%w: expected #%d, recorded #%d", ErrPrizeMismatch, idx, o.PrizeIndex)
	}
	return nil
}

// VerifyChain checks that each outcome of the history refers to the beacon of the previous one
// and sequences strictly increase
func VerifyChain(history []wheel.SpinOutcome) error {
	for i := 1; i < len(history); i++ {
		if history[i].PreviousBeacon != history[i-1].Beacon {
			return fmt.Errorf("%w at #%d", ErrBrokenChain, i)
		}
		if history[i].Sequence <= history[i-1].Sequence {
			return fmt.Errorf("%w: sequence is not increasing at #%d", ErrBrokenChain, i)
		}
	}
	return nil
}

// VerifyVRFBeacon checks the beacon of the outcome against the VRF proof of the beacon operator
func VerifyVRFBeacon(publicKey ed25519.PublicKey, o *wheel.SpinOutcome, proof []byte) error {
	ok, err := beacon.VerifyAt(publicKey, o.Sequence, proof, o.Beacon)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeaconProof, err)
	}
	if !ok {
		return ErrBeaconProof
	}
	return nil
}
