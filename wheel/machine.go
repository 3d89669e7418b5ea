package wheel

import (
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	"github.com/lunfardo314/fairwheel/beacon"
	"github.com/lunfardo314/fairwheel/clock"
	"github.com/lunfardo314/fairwheel/commitment"
	"github.com/lunfardo314/fairwheel/entropy"
	"github.com/lunfardo314/fairwheel/global"
	"github.com/lunfardo314/fairwheel/metrics"
	"github.com/lunfardo314/fairwheel/replay"
	"github.com/lunfardo314/fairwheel/selector"
)

type (
	// Machine sequences the commit → reveal → claim lifecycle of a wheel account.
	// Operations never mutate the account passed in: on success a new account value is
	// returned, on failure the caller keeps the old one
	Machine struct {
		clock   clock.Clock
		beacon  beacon.Source
		mixer   *entropy.Mixer
		cfg     Config
		log     global.Logging
		metrics *metrics.Wheel
	}

	Option func(m *Machine)

	ClaimResult struct {
		Prize          Prize
		Outcome        SpinOutcome
		AlreadyClaimed bool
	}
)

func WithConfig(cfg Config) Option {
	return func(m *Machine) {
		m.cfg = cfg
	}
}

func WithMixer(mixer *entropy.Mixer) Option {
	return func(m *Machine) {
		m.mixer = mixer
	}
}

func WithLogging(log global.Logging) Option {
	return func(m *Machine) {
		m.log = log
	}
}

func WithMetrics(w *metrics.Wheel) Option {
	return func(m *Machine) {
		m.metrics = w
	}
}

func NewMachine(clk clock.Clock, bcn beacon.Source, opts ...Option) (*Machine, error) {
	ret := &Machine{
		clock:  clk,
		beacon: bcn,
		mixer:  entropy.Default(),
		cfg:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.clock == nil || ret.beacon == nil {
		return nil, fmt.Errorf("wheel: clock and beacon must be provided")
	}
	if err := ret.cfg.Validate(); err != nil {
		return nil, err
	}
	if ret.log == nil {
		ret.log = global.Logger().Sub("wheel")
	}
	return ret, nil
}

func (m *Machine) Config() Config {
	return m.cfg
}

func (m *Machine) Mixer() *entropy.Mixer {
	return m.mixer
}

func (m *Machine) reject(op Op, err error) error {
	m.metrics.ObserveRejection(string(op), RejectionReason(err))
	m.log.Log().Debugf("%s rejected: %v", op, err)
	return err
}

func checkSigner(call Call) error {
	if call.Signers == nil || !call.Signers.IsSigner(call.Caller) {
		return fmt.Errorf("%w: %s", ErrMissingSignature, call.Caller.Short())
	}
	return nil
}

func validatePrizeTable(names []string, weights []uint8) error {
	if len(names) != len(weights) {
		return fmt.Errorf("%w: %d prizes, %d weights", ErrLengthMismatch, len(names), len(weights))
	}
	if len(names) == 0 {
		return ErrEmptyPrizeTable
	}
	if len(names) > MaxPrizes {
		return fmt.Errorf("%w: %d > %d", ErrTooManyPrizes, len(names), MaxPrizes)
	}
	for i, n := range names {
		if len(n) == 0 || len(n) > MaxNameLen || !utf8.ValidString(n) {
			return fmt.Errorf("%w: prize #%d", ErrBadPrizeName, i)
		}
	}
	if err := selector.ValidateWeights(weights); err != nil {
		return fmt.Errorf("%w: %v", ErrWeightsNot100, err)
	}
	return nil
}

// Initialize makes the caller the authority of the wheel
func (m *Machine) Initialize(acc *Account, call Call, names []string, weights []uint8) (*Account, error) {
	if acc == nil {
		acc = NewAccount()
	}
	if err := checkSigner(call); err != nil {
		return nil, m.reject(OpInitialize, err)
	}
	if err := checkTransition(acc, OpInitialize); err != nil {
		return nil, m.reject(OpInitialize, err)
	}
	if err := validatePrizeTable(names, weights); err != nil {
		return nil, m.reject(OpInitialize, err)
	}
	ret := acc.Clone()
	ret.Initialized = true
	ret.Authority = call.Caller
	ret.Prizes = NewPrizeTable(names, weights)
	ret.TotalSpins = 0

	m.metrics.ObserveInitialize()
	m.log.Log().Infof("wheel initialized by %s with %d prizes", call.Caller.Short(), len(names))
	return ret, nil
}

// Commit overwrites the live commitment, if any, and opens a new reveal window
func (m *Machine) Commit(acc *Account, call Call, c commitment.Commitment) (*Account, error) {
	if err := checkSigner(call); err != nil {
		return nil, m.reject(OpCommit, err)
	}
	if err := checkTransition(acc, OpCommit); err != nil {
		return nil, m.reject(OpCommit, err)
	}
	if m.cfg.Policy == PolicyBlockUnclaimed && acc.Outcome != nil && !acc.Outcome.Claimed {
		return nil, m.reject(OpCommit, ErrUnclaimedOutcome)
	}
	seq := m.clock.Sequence()
	ret := acc.Clone()
	ret.Commitment = c
	ret.HasCommitment = true
	ret.Committer = call.Caller
	ret.Window = replay.NewWindow(seq, m.cfg.MinDelay, m.cfg.MaxDelay)

	m.metrics.ObserveCommit()
	m.log.Tracef(global.TraceTagCommit, "commit %s by %s at %d, window %s",
		c.String, call.Caller.Short, seq, ret.Window.String)
	return ret, nil
}

// Reveal verifies the secret and the timing, mixes entropy and selects the prize.
// The commitment is consumed
func (m *Machine) Reveal(acc *Account, call Call, secret commitment.Secret) (*Account, *SpinOutcome, error) {
	if err := checkSigner(call); err != nil {
		return nil, nil, m.reject(OpReveal, err)
	}
	if err := checkTransition(acc, OpReveal); err != nil {
		return nil, nil, m.reject(OpReveal, err)
	}
	seq := m.clock.Sequence()
	bcn, err := m.beacon.Current()
	if err != nil {
		return nil, nil, m.reject(OpReveal, fmt.Errorf("%w: %v", ErrBeaconUnavailable, err))
	}
	err = replay.Check(&replay.Attempt{
		Secret:       secret,
		Commitment:   acc.Commitment,
		Sequence:     seq,
		Window:       acc.Window,
		Beacon:       bcn,
		FirstReveal:  acc.TotalSpins == 0,
		LastSequence: acc.LastSequence,
		LastBeacon:   acc.LastBeacon,
	})
	if err != nil {
		return nil, nil, m.reject(OpReveal, err)
	}

	digest := m.mixer.Mix(bcn, secret, seq, acc.LastBeacon)
	idx, draw := selector.SelectWithDraw(digest, acc.Prizes.Weights())
	outcome := SpinOutcome{
		PrizeIndex:     idx,
		Digest:         digest,
		Sequence:       seq,
		Beacon:         bcn,
		PreviousBeacon: acc.LastBeacon,
		Player:         acc.Committer,
	}

	ret := acc.Clone()
	ret.Outcome = &outcome
	ret.pushHistory(outcome, m.cfg.HistoryLimit)
	ret.TotalSpins++
	ret.LastSequence = seq
	ret.LastBeacon = bcn
	ret.Commitment = commitment.Nil
	ret.HasCommitment = false
	ret.Committer = Identity{}
	ret.Window = RevealWindow{}

	m.metrics.ObserveSpin(acc.Prizes[idx].Name)
	m.log.Log().Infof("spin #%d by %s: draw %d -> prize #%d '%s', verification digest %s",
		ret.TotalSpins, call.Caller.Short(), draw, idx, acc.Prizes[idx].Name, hex.EncodeToString(digest[:]))
	m.log.Tracef(global.TraceTagReveal, "reveal at %d, beacon %s, previous beacon %s",
		seq, func() string { return hex.EncodeToString(bcn[:]) }, func() string { return hex.EncodeToString(outcome.PreviousBeacon[:]) })

	ret2 := outcome
	return ret, &ret2, nil
}

// Claim reads the current outcome. Only the claimed flag of the outcome is changed,
// spin and commitment state stay as they are. Claiming again returns the same prize.
// Under PolicyBlockUnclaimed only the player of the outcome can claim it
func (m *Machine) Claim(acc *Account, call Call) (*Account, *ClaimResult, error) {
	if err := checkSigner(call); err != nil {
		return nil, nil, m.reject(OpClaim, err)
	}
	if err := checkTransition(acc, OpClaim); err != nil {
		return nil, nil, m.reject(OpClaim, err)
	}
	if acc.Outcome == nil {
		return nil, nil, m.reject(OpClaim, ErrNoOutcome)
	}
	if acc.Outcome.PrizeIndex < 0 || acc.Outcome.PrizeIndex >= len(acc.Prizes) {
		return nil, nil, m.reject(OpClaim, fmt.Errorf("%w: prize index %d out of range", ErrCorruptedAccount, acc.Outcome.PrizeIndex))
	}
	if m.cfg.Policy == PolicyBlockUnclaimed && call.Caller != acc.Outcome.Player {
		return nil, nil, m.reject(OpClaim, fmt.Errorf("%w: %s", ErrNotPlayer, call.Caller.Short()))
	}
	res := &ClaimResult{
		Prize:          acc.Prizes[acc.Outcome.PrizeIndex],
		AlreadyClaimed: acc.Outcome.Claimed,
	}
	ret := acc.Clone()
	ret.Outcome.Claimed = true
	if n := len(ret.History); n > 0 && ret.History[n-1].Sequence == ret.Outcome.Sequence {
		ret.History[n-1].Claimed = true
	}
	res.Outcome = *ret.Outcome

	m.metrics.ObserveClaim()
	m.log.Log().Infof("prize claimed by %s: '%s' (spin at sequence %d, claimed before: %v)",
		call.Caller.Short(), res.Prize.Name, res.Outcome.Sequence, res.AlreadyClaimed)
	return ret, res, nil
}
