package dispatch

import (
	"fmt"

	"github.com/lunfardo314/fairwheel/commitment"
	"github.com/lunfardo314/fairwheel/util"
	"github.com/lunfardo314/fairwheel/wheel"
	"github.com/lunfardo314/unitrie/common"
)

const (
	TagInitializeWheel = byte(iota)
	TagCommitSpin
	TagRevealSpin
	TagClaimPrize
)

type (
	// Instruction is one of InitializeWheel, CommitSpin, RevealSpin, ClaimPrize
	Instruction interface {
		Op() wheel.Op
		Bytes() []byte
		instruction()
	}

	InitializeWheel struct {
		Prizes  []string
		Weights []uint8
	}

	CommitSpin struct {
		Commitment commitment.Commitment
	}

	RevealSpin struct {
		Secret commitment.Secret
	}

	ClaimPrize struct{}
)

func (InitializeWheel) instruction() {}
func (CommitSpin) instruction()      {}
func (RevealSpin) instruction()      {}
func (ClaimPrize) instruction()      {}

func (InitializeWheel) Op() wheel.Op { return wheel.OpInitialize }
func (CommitSpin) Op() wheel.Op      { return wheel.OpCommit }
func (RevealSpin) Op() wheel.Op      { return wheel.OpReveal }
func (ClaimPrize) Op() wheel.Op      { return wheel.OpClaim }

// Bytes of InitializeWheel: tag, number of weights, weights, number of prizes, then
// length-prefixed names. The counts are independent, mismatch is detected by the wheel
func (i InitializeWheel) Bytes() []byte {
	util.Assertf(len(i.Weights) <= wheel.MaxPrizes, "too many weights: %d", len(i.Weights))
	util.Assertf(len(i.Prizes) <= wheel.MaxPrizes, "too many prizes: %d", len(i.Prizes))
	ret := []byte{TagInitializeWheel, byte(len(i.Weights))}
	ret = append(ret, i.Weights...)
	ret = append(ret, byte(len(i.Prizes)))
	for _, name := range i.Prizes {
		util.Assertf(len(name) <= wheel.MaxNameLen, "prize name too long: %d bytes", len(name))
		ret = append(ret, byte(len(name)))
		ret = append(ret, name...)
	}
	return ret
}

func (c CommitSpin) Bytes() []byte {
	return common.Concat(TagCommitSpin, c.Commitment[:])
}

func (r RevealSpin) Bytes() []byte {
	return common.Concat(TagRevealSpin, r.Secret[:])
}

func (ClaimPrize) Bytes() []byte {
	return []byte{TagClaimPrize}
}

func InstructionFromBytes(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty instruction", wheel.ErrInvalidArgument)
	}
	switch data[0] {
	case TagInitializeWheel:
		return parseInitializeWheel(data[1:])
	case TagCommitSpin:
		c, err := commitment.FromBytes(data[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wheel.ErrInvalidArgument, err)
		}
		return CommitSpin{Commitment: c}, nil
	case TagRevealSpin:
		s, err := commitment.SecretFromBytes(data[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wheel.ErrInvalidArgument, err)
		}
		return RevealSpin{Secret: s}, nil
	case TagClaimPrize:
		if len(data) != 1 {
			return nil, fmt.Errorf("%w: wrong claim instruction", wheel.ErrInvalidArgument)
		}
		return ClaimPrize{}, nil
	}
	return nil, fmt.Errorf("%w: unknown instruction tag %d", wheel.ErrInvalidArgument, data[0])
}

func parseInitializeWheel(data []byte) (Instruction, error) {
	wrong := fmt.Errorf("%w: wrong initialize instruction", wheel.ErrInvalidArgument)
	if len(data) < 1 || len(data) < 1+int(data[0]) {
		return nil, wrong
	}
	var ret InitializeWheel
	if n := int(data[0]); n > 0 {
		ret.Weights = append([]uint8(nil), data[1:1+n]...)
	}
	data = data[1+int(data[0]):]
	if len(data) < 1 {
		return nil, wrong
	}
	if n := int(data[0]); n > 0 {
		ret.Prizes = make([]string, n)
	}
	data = data[1:]
	for i := range ret.Prizes {
		if len(data) < 1 || len(data) < 1+int(data[0]) {
			return nil, wrong
		}
		ret.Prizes[i] = string(data[1 : 1+int(data[0])])
		data = data[1+int(data[0]):]
	}
	if len(data) != 0 {
		return nil, wrong
	}
	return ret, nil
}
