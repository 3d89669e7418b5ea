// Package replay validates a reveal attempt before it is allowed to consume entropy.
package replay

import (
	"errors"
	"fmt"
	"math"

	"github.com/lunfardo314/fairwheel/commitment"
)

var (
	ErrCommitmentMismatch = errors.New("commitment mismatch")
	ErrStaleSequence      = errors.New("stale or out-of-order reveal")
	ErrOutOfWindow        = errors.New("reveal out of window")
	ErrTooEarly           = fmt.Errorf("%w: too early", ErrOutOfWindow)
	ErrTooLate            = fmt.Errorf("%w: too late", ErrOutOfWindow)
	ErrStaleBeacon        = errors.New("stale beacon reuse")
)

type (
	// Window is the inclusive range of sequences during which the commitment can be revealed
	Window struct {
		Min uint64
		Max uint64
	}

	Attempt struct {
		Secret     commitment.Secret
		Commitment commitment.Commitment
		Sequence   uint64
		Window     Window
		Beacon     [32]byte
		// FirstReveal is true when there was no successful reveal yet.
		// LastSequence is meaningless then
		FirstReveal  bool
		LastSequence uint64
		LastBeacon   [32]byte
	}
)

// NewWindow opens the window relative to the sequence at commit time. Saturates on overflow
func NewWindow(current, minDelay, maxDelay uint64) Window {
	return Window{
		Min: addSaturated(current, minDelay),
		Max: addSaturated(current, maxDelay),
	}
}

func addSaturated(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func (w Window) Contains(seq uint64) bool {
	return w.Min <= seq && seq <= w.Max
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d]", w.Min, w.Max)
}

// Check evaluates, in this order: commitment match, sequence monotonicity, window bounds
// and beacon freshness. The first failing check is reported
func Check(a *Attempt) error {
	if !commitment.Verify(a.Secret, a.Commitment) {
		return ErrCommitmentMismatch
	}
	if !a.FirstReveal && a.Sequence <= a.LastSequence {
		return fmt.Errorf("%w: sequence %d, last revealed at %d", ErrStaleSequence, a.Sequence, a.LastSequence)
	}
	if a.Sequence < a.Window.Min {
		return fmt.Errorf("%w: sequence %d, window %s", ErrTooEarly, a.Sequence, a.Window.String())
	}
	if a.Sequence > a.Window.Max {
		return fmt.Errorf("%w: sequence %d, window %s", ErrTooLate, a.Sequence, a.Window.String())
	}
	if a.Beacon == a.LastBeacon {
		return ErrStaleBeacon
	}
	return nil
}

// Reason is a short label of the rejection, for metrics
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCommitmentMismatch):
		return "commitment_mismatch"
	case errors.Is(err, ErrStaleSequence):
		return "stale_sequence"
	case errors.Is(err, ErrTooEarly):
		return "too_early"
	case errors.Is(err, ErrTooLate):
		return "too_late"
	case errors.Is(err, ErrStaleBeacon):
		return "stale_beacon"
	}
	return "other"
}
