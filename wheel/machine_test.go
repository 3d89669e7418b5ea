package wheel

import (
	"crypto/ed25519"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/lunfardo314/fairwheel/beacon"
	"github.com/lunfardo314/fairwheel/clock"
	"github.com/lunfardo314/fairwheel/commitment"
	"github.com/lunfardo314/fairwheel/entropy"
	"github.com/lunfardo314/fairwheel/global"
	"github.com/lunfardo314/fairwheel/metrics"
	"github.com/lunfardo314/fairwheel/selector"
	"github.com/lunfardo314/fairwheel/util/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const startSequence = 100

type testEnv struct {
	clock   *clock.ManualClock
	beacon  *beacon.HashChain
	machine *Machine
	auth    Identity
	player  Identity
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	clk := clock.NewManualClock(startSequence)
	bcn := beacon.NewHashChain(testutil.DeterministicBytes32(0, "seed"), clk)
	log := global.NewLoggingFrom(testutil.NewNamedLogger("wheel", zapcore.WarnLevel))
	m, err := NewMachine(clk, bcn, append([]Option{WithLogging(log)}, opts...)...)
	require.NoError(t, err)
	return &testEnv{
		clock:   clk,
		beacon:  bcn,
		machine: m,
		auth:    IdentityFromPublicKey(testutil.GetTestingPrivateKey(1).Public().(ed25519.PublicKey)),
		player:  IdentityFromPublicKey(testutil.GetTestingPrivateKey(2).Public().(ed25519.PublicKey)),
	}
}

func (e *testEnv) initialized(t *testing.T, names []string, weights []uint8) *Account {
	acc, err := e.machine.Initialize(NewAccount(), SignedBy(e.auth), names, weights)
	require.NoError(t, err)
	return acc
}

func secretN(i uint64) commitment.Secret {
	return commitment.Secret(testutil.DeterministicBytes32(i, "secret"))
}

// spin commits, moves the clock by one and reveals
func (e *testEnv) spin(t *testing.T, acc *Account, secret commitment.Secret) (*Account, *SpinOutcome) {
	acc, err := e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secret))
	require.NoError(t, err)
	e.clock.Advance(1)
	acc, outcome, err := e.machine.Reveal(acc, SignedBy(e.player), secret)
	require.NoError(t, err)
	return acc, outcome
}

func TestNewMachine(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		m, err := NewMachine(clock.NewManualClock(0), beacon.Fixed{})
		require.NoError(t, err)
		require.EqualValues(t, DefaultConfig(), m.Config())
		require.EqualValues(t, entropy.DefaultRounds, m.Mixer().Rounds())
	})
	t.Run("missing collaborators", func(t *testing.T) {
		_, err := NewMachine(nil, beacon.Fixed{})
		require.Error(t, err)
		_, err = NewMachine(clock.NewManualClock(0), nil)
		require.Error(t, err)
	})
	t.Run("wrong config", func(t *testing.T) {
		_, err := NewMachine(clock.NewManualClock(0), beacon.Fixed{}, WithConfig(Config{MinDelay: 10, MaxDelay: 5}))
		require.Error(t, err)
		_, err = NewMachine(clock.NewManualClock(0), beacon.Fixed{}, WithConfig(Config{MinDelay: 0, MaxDelay: 5}))
		require.Error(t, err)
	})
}

func TestInitialize(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"Gold", "Silver"}, []uint8{30, 70})
		require.True(t, acc.Initialized)
		require.EqualValues(t, 0, acc.TotalSpins)
		require.EqualValues(t, e.auth, acc.Authority)
		require.EqualValues(t, StateInitialized, acc.State())
		require.EqualValues(t, []string{"Gold", "Silver"}, acc.Prizes.Names())
		require.EqualValues(t, []uint8{30, 70}, acc.Prizes.Weights())
	})
	t.Run("nil account", func(t *testing.T) {
		e := newTestEnv(t)
		acc, err := e.machine.Initialize(nil, SignedBy(e.auth), []string{"All"}, []uint8{100})
		require.NoError(t, err)
		require.True(t, acc.Initialized)
	})
	t.Run("already initialized", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"Gold", "Silver"}, []uint8{30, 70})
		_, err := e.machine.Initialize(acc, SignedBy(e.auth), []string{"All"}, []uint8{100})
		require.True(t, errors.Is(err, ErrAlreadyInitialized))
	})
	t.Run("missing signature", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.machine.Initialize(NewAccount(), Call{Caller: e.auth, Signers: NewSignerSet(e.player)}, []string{"All"}, []uint8{100})
		require.True(t, errors.Is(err, ErrMissingSignature))
		_, err = e.machine.Initialize(NewAccount(), Call{Caller: e.auth}, []string{"All"}, []uint8{100})
		require.True(t, errors.Is(err, ErrMissingSignature))
	})
	t.Run("invalid arguments", func(t *testing.T) {
		e := newTestEnv(t)
		tooMany := make([]string, MaxPrizes+1)
		tooManyWeights := make([]uint8, MaxPrizes+1)
		for i := range tooMany {
			tooMany[i] = "p"
		}
		tooManyWeights[0] = 100
		cases := []struct {
			name    string
			names   []string
			weights []uint8
			err     error
		}{
			{"sum 90", []string{"Gold", "Silver"}, []uint8{30, 60}, ErrWeightsNot100},
			{"sum 110", []string{"Gold", "Silver"}, []uint8{30, 80}, ErrWeightsNot100},
			{"length mismatch", []string{"Gold"}, []uint8{30, 70}, ErrLengthMismatch},
			{"empty", nil, nil, ErrEmptyPrizeTable},
			{"empty name", []string{"", "Silver"}, []uint8{30, 70}, ErrBadPrizeName},
			{"long name", []string{strings.Repeat("x", MaxNameLen+1), "Silver"}, []uint8{30, 70}, ErrBadPrizeName},
			{"too many", tooMany, tooManyWeights, ErrTooManyPrizes},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				acc := NewAccount()
				_, err := e.machine.Initialize(acc, SignedBy(e.auth), c.names, c.weights)
				require.True(t, errors.Is(err, c.err), "%v", err)
				require.True(t, errors.Is(err, ErrInvalidArgument))
				require.False(t, acc.Initialized)
			})
		}
	})
	t.Run("weight sum property", func(t *testing.T) {
		e := newTestEnv(t)
		for i := uint64(0); i < 500; i++ {
			r := testutil.DeterministicBytes32(i, "weights")
			n := int(r[0]%8) + 1
			weights := make([]uint8, n)
			names := make([]string, n)
			sum := 0
			for j := range weights {
				weights[j] = r[j+1] % 60
				names[j] = "prize"
				sum += int(weights[j])
			}
			_, err := e.machine.Initialize(NewAccount(), SignedBy(e.auth), names, weights)
			if sum == selector.TotalWeight {
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, ErrWeightsNot100), "sum=%d", sum)
			}
		}
	})
}

func TestScenarios(t *testing.T) {
	t.Run("A: initialize, commit, reveal", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"Gold", "Silver"}, []uint8{30, 70})
		require.EqualValues(t, 0, acc.TotalSpins)

		var secret commitment.Secret
		copy(secret[:], "abcdefghijklmnopqrstuvwxyz012345")
		acc, err := e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secret))
		require.NoError(t, err)
		require.EqualValues(t, StateCommitted, acc.State())
		require.EqualValues(t, RevealWindow{Min: startSequence + 1, Max: startSequence + 150}, acc.Window)
		require.EqualValues(t, e.player, acc.Committer)

		seq := e.clock.Advance(5)
		expectedBeacon := e.beacon.At(seq)
		require.NotEqualValues(t, [32]byte{}, expectedBeacon)

		acc, outcome, err := e.machine.Reveal(acc, SignedBy(e.player), secret)
		require.NoError(t, err)
		require.EqualValues(t, 1, acc.TotalSpins)
		require.EqualValues(t, StateRevealed, acc.State())
		require.False(t, acc.HasCommitment)

		digest := entropy.Default().Mix(expectedBeacon, secret, seq, [32]byte{})
		require.EqualValues(t, digest, outcome.Digest)
		require.EqualValues(t, selector.Select(digest, []uint8{30, 70}), outcome.PrizeIndex)
		require.True(t, outcome.PrizeIndex == 0 || outcome.PrizeIndex == 1)
		require.EqualValues(t, seq, outcome.Sequence)
		require.EqualValues(t, expectedBeacon, outcome.Beacon)
		require.EqualValues(t, *outcome, *acc.Outcome)
		require.EqualValues(t, seq, acc.LastSequence)
		require.EqualValues(t, expectedBeacon, acc.LastBeacon)
		require.EqualValues(t, 1, len(acc.History))
		t.Logf("\n%s", acc.Lines("    ").String())
	})
	t.Run("B: wrong secret", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"Gold", "Silver"}, []uint8{30, 70})
		acc, err := e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(1)))
		require.NoError(t, err)
		e.clock.Advance(5)
		before := acc.Bytes()

		ret, outcome, err := e.machine.Reveal(acc, SignedBy(e.player), secretN(2))
		require.True(t, errors.Is(err, ErrCommitmentMismatch))
		require.Nil(t, ret)
		require.Nil(t, outcome)
		require.EqualValues(t, 0, acc.TotalSpins)
		require.EqualValues(t, before, acc.Bytes())
	})
	t.Run("C: double reveal", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"Gold", "Silver"}, []uint8{30, 70})
		acc, err := e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(1)))
		require.NoError(t, err)
		e.clock.Advance(5)

		acc1, _, err := e.machine.Reveal(acc, SignedBy(e.player), secretN(1))
		require.NoError(t, err)
		_, _, err = e.machine.Reveal(acc1, SignedBy(e.player), secretN(1))
		require.True(t, errors.Is(err, ErrNoCommitment))
		require.EqualValues(t, 1, acc1.TotalSpins)
	})
}

func TestReveal(t *testing.T) {
	committed := func(t *testing.T, opts ...Option) (*testEnv, *Account) {
		e := newTestEnv(t, opts...)
		acc := e.initialized(t, []string{"Gold", "Silver"}, []uint8{30, 70})
		acc, err := e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(1)))
		require.NoError(t, err)
		return e, acc
	}
	t.Run("uninitialized", func(t *testing.T) {
		e := newTestEnv(t)
		_, _, err := e.machine.Reveal(NewAccount(), SignedBy(e.player), secretN(1))
		require.True(t, errors.Is(err, ErrUninitialized))
	})
	t.Run("no commitment", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		_, _, err := e.machine.Reveal(acc, SignedBy(e.player), secretN(1))
		require.True(t, errors.Is(err, ErrNoCommitment))
	})
	t.Run("missing signature", func(t *testing.T) {
		e, acc := committed(t)
		e.clock.Advance(1)
		_, _, err := e.machine.Reveal(acc, Call{Caller: e.player, Signers: NewSignerSet(e.auth)}, secretN(1))
		require.True(t, errors.Is(err, ErrMissingSignature))
	})
	t.Run("window edges", func(t *testing.T) {
		e, acc := committed(t)
		for _, c := range []struct {
			seq uint64
			err error
		}{
			{startSequence, ErrTooEarly},
			{startSequence + DefaultMinDelay - 1, ErrTooEarly},
			{startSequence + DefaultMaxDelay + 1, ErrTooLate},
			{math.MaxUint64, ErrTooLate},
			{startSequence + DefaultMinDelay, nil},
			{startSequence + DefaultMaxDelay, nil},
		} {
			e.clock.Set(c.seq)
			_, _, err := e.machine.Reveal(acc, SignedBy(e.player), secretN(1))
			if c.err == nil {
				require.NoError(t, err, "seq=%d", c.seq)
			} else {
				require.True(t, errors.Is(err, c.err), "seq=%d: %v", c.seq, err)
				require.True(t, errors.Is(err, ErrOutOfWindow))
			}
		}
	})
	t.Run("custom window", func(t *testing.T) {
		e, acc := committed(t, WithConfig(Config{MinDelay: 3, MaxDelay: 4, HistoryLimit: 1}))
		e.clock.Set(startSequence + 2)
		_, _, err := e.machine.Reveal(acc, SignedBy(e.player), secretN(1))
		require.True(t, errors.Is(err, ErrTooEarly))
		e.clock.Set(startSequence + 5)
		_, _, err = e.machine.Reveal(acc, SignedBy(e.player), secretN(1))
		require.True(t, errors.Is(err, ErrTooLate))
		e.clock.Set(startSequence + 4)
		_, _, err = e.machine.Reveal(acc, SignedBy(e.player), secretN(1))
		require.NoError(t, err)
	})
	t.Run("stale sequence", func(t *testing.T) {
		e, acc := committed(t)
		seq := e.clock.Advance(10)
		acc, _, err := e.machine.Reveal(acc, SignedBy(e.player), secretN(1))
		require.NoError(t, err)

		acc, err = e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(2)))
		require.NoError(t, err)
		// sequence did not move since the last reveal
		_, _, err = e.machine.Reveal(acc, SignedBy(e.player), secretN(2))
		require.True(t, errors.Is(err, ErrStaleSequence))

		e.clock.Set(seq - 1)
		_, _, err = e.machine.Reveal(acc, SignedBy(e.player), secretN(2))
		require.True(t, errors.Is(err, ErrStaleSequence))

		e.clock.Set(seq + 1)
		_, _, err = e.machine.Reveal(acc, SignedBy(e.player), secretN(2))
		require.NoError(t, err)
	})
	t.Run("stale beacon", func(t *testing.T) {
		clk := clock.NewManualClock(startSequence)
		fixed := beacon.Fixed(testutil.DeterministicBytes32(1, "beacon"))
		m, err := NewMachine(clk, fixed)
		require.NoError(t, err)
		auth := Identity(testutil.DeterministicBytes32(1, "id"))

		acc, err := m.Initialize(NewAccount(), SignedBy(auth), []string{"All"}, []uint8{100})
		require.NoError(t, err)
		acc, err = m.Commit(acc, SignedBy(auth), commitment.Commit(secretN(1)))
		require.NoError(t, err)
		clk.Advance(1)
		acc, _, err = m.Reveal(acc, SignedBy(auth), secretN(1))
		require.NoError(t, err)

		acc, err = m.Commit(acc, SignedBy(auth), commitment.Commit(secretN(2)))
		require.NoError(t, err)
		clk.Advance(1)
		_, _, err = m.Reveal(acc, SignedBy(auth), secretN(2))
		require.True(t, errors.Is(err, ErrStaleBeacon))
	})
	t.Run("zero beacon on first reveal", func(t *testing.T) {
		clk := clock.NewManualClock(startSequence)
		m, err := NewMachine(clk, beacon.Fixed{})
		require.NoError(t, err)
		auth := Identity(testutil.DeterministicBytes32(1, "id"))
		acc, err := m.Initialize(NewAccount(), SignedBy(auth), []string{"All"}, []uint8{100})
		require.NoError(t, err)
		acc, err = m.Commit(acc, SignedBy(auth), commitment.Commit(secretN(1)))
		require.NoError(t, err)
		clk.Advance(1)
		_, _, err = m.Reveal(acc, SignedBy(auth), secretN(1))
		require.True(t, errors.Is(err, ErrStaleBeacon))
	})
	t.Run("beacon unavailable", func(t *testing.T) {
		clk := clock.NewManualClock(startSequence)
		m, err := NewMachine(clk, beacon.Func(func() ([32]byte, error) {
			return [32]byte{}, errors.New("oracle down")
		}))
		require.NoError(t, err)
		auth := Identity(testutil.DeterministicBytes32(1, "id"))
		acc, err := m.Initialize(NewAccount(), SignedBy(auth), []string{"All"}, []uint8{100})
		require.NoError(t, err)
		acc, err = m.Commit(acc, SignedBy(auth), commitment.Commit(secretN(1)))
		require.NoError(t, err)
		clk.Advance(1)
		before := acc.Bytes()
		_, _, err = m.Reveal(acc, SignedBy(auth), secretN(1))
		require.True(t, errors.Is(err, ErrBeaconUnavailable))
		require.EqualValues(t, before, acc.Bytes())
	})
	t.Run("check order", func(t *testing.T) {
		// wrong secret and out of window: commitment mismatch is reported first
		e, acc := committed(t)
		_, _, err := e.machine.Reveal(acc, SignedBy(e.player), secretN(2))
		require.True(t, errors.Is(err, ErrCommitmentMismatch))
	})
	t.Run("anyone who knows the secret can reveal", func(t *testing.T) {
		e, acc := committed(t)
		e.clock.Advance(1)
		_, outcome, err := e.machine.Reveal(acc, SignedBy(e.auth), secretN(1))
		require.NoError(t, err)
		require.EqualValues(t, e.player, outcome.Player)
	})
}

func TestCommit(t *testing.T) {
	t.Run("uninitialized", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.machine.Commit(NewAccount(), SignedBy(e.player), commitment.Commit(secretN(1)))
		require.True(t, errors.Is(err, ErrUninitialized))
	})
	t.Run("missing signature", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		_, err := e.machine.Commit(acc, Call{Caller: e.player}, commitment.Commit(secretN(1)))
		require.True(t, errors.Is(err, ErrMissingSignature))
	})
	t.Run("overwrite commitment", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		acc, err := e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(1)))
		require.NoError(t, err)
		e.clock.Advance(3)
		acc, err = e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(2)))
		require.NoError(t, err)
		require.EqualValues(t, startSequence+3+DefaultMinDelay, acc.Window.Min)

		e.clock.Advance(1)
		_, _, err = e.machine.Reveal(acc, SignedBy(e.player), secretN(1))
		require.True(t, errors.Is(err, ErrCommitmentMismatch))
		_, _, err = e.machine.Reveal(acc, SignedBy(e.player), secretN(2))
		require.NoError(t, err)
	})
	t.Run("window saturates", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		e.clock.Set(math.MaxUint64 - 10)
		acc, err := e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(1)))
		require.NoError(t, err)
		require.EqualValues(t, uint64(math.MaxUint64-9), acc.Window.Min)
		require.EqualValues(t, uint64(math.MaxUint64), acc.Window.Max)
	})
	t.Run("policy overwrite", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		acc, _ = e.spin(t, acc, secretN(1))
		_, err := e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(2)))
		require.NoError(t, err)
	})
	t.Run("policy block unclaimed", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Policy = PolicyBlockUnclaimed
		e := newTestEnv(t, WithConfig(cfg))
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		acc, _ = e.spin(t, acc, secretN(1))
		_, err := e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(2)))
		require.True(t, errors.Is(err, ErrUnclaimedOutcome))

		acc, _, err = e.machine.Claim(acc, SignedBy(e.player))
		require.NoError(t, err)
		_, err = e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(2)))
		require.NoError(t, err)
	})
}

func TestClaim(t *testing.T) {
	t.Run("uninitialized", func(t *testing.T) {
		e := newTestEnv(t)
		_, _, err := e.machine.Claim(NewAccount(), SignedBy(e.player))
		require.True(t, errors.Is(err, ErrUninitialized))
	})
	t.Run("no outcome", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		_, _, err := e.machine.Claim(acc, SignedBy(e.player))
		require.True(t, errors.Is(err, ErrNoOutcome))

		acc, err = e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(1)))
		require.NoError(t, err)
		_, _, err = e.machine.Claim(acc, SignedBy(e.player))
		require.True(t, errors.Is(err, ErrNoOutcome))
	})
	t.Run("missing signature", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		acc, _ = e.spin(t, acc, secretN(1))
		_, _, err := e.machine.Claim(acc, Call{Caller: e.player, Signers: NewSignerSet()})
		require.True(t, errors.Is(err, ErrMissingSignature))
	})
	t.Run("ok", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"Gold", "Silver"}, []uint8{30, 70})
		acc, outcome := e.spin(t, acc, secretN(1))

		claimed, res, err := e.machine.Claim(acc, SignedBy(e.player))
		require.NoError(t, err)
		require.False(t, res.AlreadyClaimed)
		require.EqualValues(t, acc.Prizes[outcome.PrizeIndex], res.Prize)
		require.True(t, res.Outcome.Claimed)
		require.True(t, claimed.Outcome.Claimed)
		require.True(t, claimed.History[len(claimed.History)-1].Claimed)
		require.EqualValues(t, acc.TotalSpins, claimed.TotalSpins)
		require.EqualValues(t, acc.LastBeacon, claimed.LastBeacon)
		// input not mutated
		require.False(t, acc.Outcome.Claimed)
		require.False(t, acc.History[len(acc.History)-1].Claimed)

		_, res, err = e.machine.Claim(claimed, SignedBy(e.player))
		require.NoError(t, err)
		require.True(t, res.AlreadyClaimed)
		require.EqualValues(t, acc.Prizes[outcome.PrizeIndex], res.Prize)
	})
	t.Run("claim while committed", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		acc, _ = e.spin(t, acc, secretN(1))
		acc, err := e.machine.Commit(acc, SignedBy(e.player), commitment.Commit(secretN(2)))
		require.NoError(t, err)
		acc, res, err := e.machine.Claim(acc, SignedBy(e.player))
		require.NoError(t, err)
		require.EqualValues(t, "All", res.Prize.Name)
		require.EqualValues(t, StateCommitted, acc.State())
		require.True(t, acc.HasCommitment)
	})
	t.Run("any signer claims under policy overwrite", func(t *testing.T) {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		acc, _ = e.spin(t, acc, secretN(1))
		_, res, err := e.machine.Claim(acc, SignedBy(e.auth))
		require.NoError(t, err)
		require.EqualValues(t, e.player, res.Outcome.Player)
	})
	t.Run("only the player claims under policy block unclaimed", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Policy = PolicyBlockUnclaimed
		e := newTestEnv(t, WithConfig(cfg))
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		acc, _ = e.spin(t, acc, secretN(1))

		_, _, err := e.machine.Claim(acc, SignedBy(e.auth))
		require.True(t, errors.Is(err, ErrNotPlayer))
		require.EqualValues(t, "not_player", RejectionReason(err))
		require.False(t, acc.Outcome.Claimed)
		_, err = e.machine.Commit(acc, SignedBy(e.auth), commitment.Commit(secretN(2)))
		require.True(t, errors.Is(err, ErrUnclaimedOutcome))

		acc, _, err = e.machine.Claim(acc, SignedBy(e.player))
		require.NoError(t, err)
		_, err = e.machine.Commit(acc, SignedBy(e.auth), commitment.Commit(secretN(2)))
		require.NoError(t, err)
	})
}

func TestHistory(t *testing.T) {
	t.Run("bounded", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.HistoryLimit = 3
		e := newTestEnv(t, WithConfig(cfg))
		acc := e.initialized(t, []string{"Gold", "Silver"}, []uint8{30, 70})
		outcomes := make([]SpinOutcome, 0)
		for i := uint64(0); i < 5; i++ {
			var o *SpinOutcome
			acc, o = e.spin(t, acc, secretN(i))
			outcomes = append(outcomes, *o)
		}
		require.EqualValues(t, 5, acc.TotalSpins)
		require.EqualValues(t, outcomes[2:], acc.History)
		require.EqualValues(t, *acc.Outcome, acc.History[2])
		for i := 1; i < len(outcomes); i++ {
			require.EqualValues(t, outcomes[i-1].Beacon, outcomes[i].PreviousBeacon)
		}
	})
	t.Run("disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.HistoryLimit = 0
		e := newTestEnv(t, WithConfig(cfg))
		acc := e.initialized(t, []string{"All"}, []uint8{100})
		acc, _ = e.spin(t, acc, secretN(1))
		require.EqualValues(t, 0, len(acc.History))
		require.NotNil(t, acc.Outcome)
	})
}

func TestDeterminism(t *testing.T) {
	run := func() []SpinOutcome {
		e := newTestEnv(t)
		acc := e.initialized(t, []string{"Gold", "Silver", "Bronze"}, []uint8{10, 30, 60})
		ret := make([]SpinOutcome, 0)
		for i := uint64(0); i < 20; i++ {
			var o *SpinOutcome
			acc, o = e.spin(t, acc, secretN(i))
			ret = append(ret, *o)
		}
		return ret
	}
	require.EqualValues(t, run(), run())
}

func TestDistribution(t *testing.T) {
	const n = 2000
	e := newTestEnv(t, WithMetrics(metrics.NewWheel(prometheus.NewRegistry())))
	acc := e.initialized(t, []string{"Heads", "Tails"}, []uint8{50, 50})
	var counts [2]int
	for i := uint64(0); i < n; i++ {
		var o *SpinOutcome
		acc, o = e.spin(t, acc, secretN(i))
		counts[o.PrizeIndex]++
	}
	expected := float64(n) / 2
	chi2 := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	t.Logf("counts: %v, chi2 = %.3f", counts, chi2)
	// p = 0.0001 for 1 degree of freedom
	require.True(t, chi2 < 15.14)
}
