// Package clock provides the sequence oracle: a monotonically advancing counter used to
// bound and order reveals. In production the sequence is the time slot since the baseline
package clock

import (
	"fmt"
	"time"

	"github.com/lunfardo314/fairwheel/util"
	"github.com/lunfardo314/fairwheel/util/lines"
	"go.uber.org/atomic"
)

const (
	DefaultSlotDuration = 400 * time.Millisecond
)

var BaselineTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type (
	Clock interface {
		Sequence() uint64
	}

	// SlotClock counts slots of fixed duration since the baseline time
	SlotClock struct {
		baseline     time.Time
		slotDuration time.Duration
		now          func() time.Time
	}

	// ManualClock is advanced explicitly. Used in tests and simulations
	ManualClock struct {
		seq atomic.Uint64
	}

	// Func adapts a function to the Clock interface
	Func func() uint64
)

func NewSlotClock(slotDuration ...time.Duration) *SlotClock {
	d := DefaultSlotDuration
	if len(slotDuration) > 0 {
		d = slotDuration[0]
	}
	util.Assertf(d > 0, "NewSlotClock: slot duration must be positive")
	return &SlotClock{
		baseline:     BaselineTime,
		slotDuration: d,
		now:          time.Now,
	}
}

// SlotFromTime is 0 for any time before the baseline
func (c *SlotClock) SlotFromTime(t time.Time) uint64 {
	if t.Before(c.baseline) {
		return 0
	}
	return uint64(t.Sub(c.baseline) / c.slotDuration)
}

func (c *SlotClock) TimeOfSlot(slot uint64) time.Time {
	return c.baseline.Add(time.Duration(slot) * c.slotDuration)
}

func (c *SlotClock) Sequence() uint64 {
	return c.SlotFromTime(c.now())
}

func (c *SlotClock) SlotDuration() time.Duration {
	return c.slotDuration
}

func (c *SlotClock) Lines(prefix ...string) *lines.Lines {
	seq := c.Sequence()
	return lines.New(prefix...).
		Add("BaselineTime = %v", c.baseline).
		Add("SlotDuration = %v", c.slotDuration).
		Add("current slot = %s, starts at %v", util.Th(seq), c.TimeOfSlot(seq))
}

func NewManualClock(start uint64) *ManualClock {
	ret := &ManualClock{}
	ret.seq.Store(start)
	return ret
}

func (c *ManualClock) Sequence() uint64 {
	return c.seq.Load()
}

func (c *ManualClock) Set(seq uint64) {
	c.seq.Store(seq)
}

// Advance returns the new sequence
func (c *ManualClock) Advance(n uint64) uint64 {
	return c.seq.Add(n)
}

func (c *ManualClock) String() string {
	return fmt.Sprintf("manual(%d)", c.Sequence())
}

func (f Func) Sequence() uint64 {
	return f()
}
