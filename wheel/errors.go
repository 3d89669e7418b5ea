package wheel

import (
	"errors"
	"fmt"

	"github.com/lunfardo314/fairwheel/replay"
)

// authorization
var ErrMissingSignature = errors.New("missing required signature")

// validation
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrWeightsNot100   = fmt.Errorf("%w: weights must sum up to 100", ErrInvalidArgument)
	ErrLengthMismatch  = fmt.Errorf("%w: number of prizes and weights must be equal", ErrInvalidArgument)
	ErrEmptyPrizeTable = fmt.Errorf("%w: prize table must not be empty", ErrInvalidArgument)
	ErrTooManyPrizes   = fmt.Errorf("%w: too many prizes", ErrInvalidArgument)
	ErrBadPrizeName    = fmt.Errorf("%w: prize name must be non-empty and not longer than %d bytes", ErrInvalidArgument, MaxNameLen)
)

// state
var (
	ErrUninitialized       = errors.New("wheel account is not initialized")
	ErrAlreadyInitialized  = errors.New("wheel account is already initialized")
	ErrNoCommitment        = errors.New("no live commitment")
	ErrNoOutcome           = errors.New("no outcome available")
	ErrUnclaimedOutcome    = errors.New("previous outcome is not claimed")
	ErrNotPlayer           = errors.New("caller is not the player of the outcome")
	ErrBeaconUnavailable   = errors.New("beacon unavailable")
	ErrIllegalTransition   = errors.New("illegal transition")
	ErrCorruptedAccount    = errors.New("corrupted account data")
	ErrUnsupportedEncoding = fmt.Errorf("%w: unsupported encoding version", ErrCorruptedAccount)
)

// cryptographic mismatch and timing/replay errors are those of the replay guard
var (
	ErrCommitmentMismatch = replay.ErrCommitmentMismatch
	ErrStaleSequence      = replay.ErrStaleSequence
	ErrOutOfWindow        = replay.ErrOutOfWindow
	ErrTooEarly           = replay.ErrTooEarly
	ErrTooLate            = replay.ErrTooLate
	ErrStaleBeacon        = replay.ErrStaleBeacon
)

// RejectionReason short label for metrics and logs
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingSignature):
		return "missing_signature"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrUninitialized):
		return "uninitialized"
	case errors.Is(err, ErrAlreadyInitialized):
		return "already_initialized"
	case errors.Is(err, ErrNoCommitment):
		return "no_commitment"
	case errors.Is(err, ErrNoOutcome):
		return "no_outcome"
	case errors.Is(err, ErrUnclaimedOutcome):
		return "unclaimed_outcome"
	case errors.Is(err, ErrNotPlayer):
		return "not_player"
	case errors.Is(err, ErrBeaconUnavailable):
		return "beacon_unavailable"
	}
	return replay.Reason(err)
}
