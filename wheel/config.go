package wheel

import (
	"fmt"
	"strings"
)

type OutcomePolicy byte

const (
	// PolicyOverwrite a new commit is accepted regardless of the previous outcome
	PolicyOverwrite = OutcomePolicy(iota)
	// PolicyBlockUnclaimed a new commit is rejected while the current outcome is not claimed.
	// The outcome can then be claimed only by its player, so nobody else can unblock the wheel
	PolicyBlockUnclaimed
)

const (
	DefaultMinDelay     = 1
	DefaultMaxDelay     = 150
	DefaultHistoryLimit = 16
	MaxHistoryLimit     = 255
)

type Config struct {
	// reveal window relative to the sequence at commit time
	MinDelay     uint64
	MaxDelay     uint64
	Policy       OutcomePolicy
	HistoryLimit int
}

func DefaultConfig() Config {
	return Config{
		MinDelay:     DefaultMinDelay,
		MaxDelay:     DefaultMaxDelay,
		Policy:       PolicyOverwrite,
		HistoryLimit: DefaultHistoryLimit,
	}
}

func (c *Config) Validate() error {
	if c.MinDelay == 0 {
		return fmt.Errorf("wheel config: min delay must be at least 1, otherwise reveal in the commit slot is possible")
	}
	if c.MaxDelay < c.MinDelay {
		return fmt.Errorf("wheel config: max delay %d is less than min delay %d", c.MaxDelay, c.MinDelay)
	}
	if c.HistoryLimit < 0 || c.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("wheel config: history limit must be in [0, %d]", MaxHistoryLimit)
	}
	if c.Policy != PolicyOverwrite && c.Policy != PolicyBlockUnclaimed {
		return fmt.Errorf("wheel config: unknown outcome policy %d", c.Policy)
	}
	return nil
}

func (p OutcomePolicy) String() string {
	switch p {
	case PolicyOverwrite:
		return "overwrite"
	case PolicyBlockUnclaimed:
		return "block_unclaimed"
	}
	return fmt.Sprintf("policy(%d)", byte(p))
}

func ParseOutcomePolicy(s string) (OutcomePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite":
		return PolicyOverwrite, nil
	case "block_unclaimed", "block-unclaimed":
		return PolicyBlockUnclaimed, nil
	}
	return 0, fmt.Errorf("unknown outcome policy '%s'", s)
}
