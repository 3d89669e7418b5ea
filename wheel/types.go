package wheel

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/lunfardo314/fairwheel/commitment"
	"github.com/lunfardo314/fairwheel/replay"
	"github.com/lunfardo314/fairwheel/util/lines"
	"github.com/lunfardo314/fairwheel/util/set"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"
)

const (
	IdentitySize = 32
	MaxPrizes    = 255
	MaxNameLen   = 255
)

type (
	Identity [IdentitySize]byte

	Prize struct {
		Name   string
		Weight uint8
	}

	// PrizeTable is immutable after initialization
	PrizeTable []Prize

	RevealWindow = replay.Window

	SpinOutcome struct {
		PrizeIndex     int
		Digest         [32]byte
		Sequence       uint64
		Beacon         [32]byte
		PreviousBeacon [32]byte
		// Player committed the revealed secret
		Player  Identity
		Claimed bool
	}

	// Account is the persisted state of one wheel
	Account struct {
		Initialized   bool
		Authority     Identity
		Prizes        PrizeTable
		TotalSpins    uint64
		LastSequence  uint64
		LastBeacon    [32]byte
		Commitment    commitment.Commitment
		HasCommitment bool
		Committer     Identity
		Window        RevealWindow
		Outcome       *SpinOutcome
		// History bounded, oldest first. The last element is the current outcome
		History []SpinOutcome
	}

	// Signers tells if the identity signed the call
	Signers interface {
		IsSigner(id Identity) bool
	}

	SignerSet set.Set[Identity]

	// Call is the identity on behalf of which the operation is invoked together with the signers of the call
	Call struct {
		Caller  Identity
		Signers Signers
	}
)

func IdentityFromPublicKey(pub ed25519.PublicKey) Identity {
	return blake2b.Sum256(pub)
}

func IdentityFromHex(s string) (ret Identity, err error) {
	var data []byte
	if data, err = hex.DecodeString(s); err != nil {
		return
	}
	if len(data) != IdentitySize {
		err = fmt.Errorf("wrong identity length %d", len(data))
		return
	}
	copy(ret[:], data)
	return
}

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

func (id Identity) Short() string {
	return hex.EncodeToString(id[:4]) + ".."
}

func NewSignerSet(ids ...Identity) SignerSet {
	return SignerSet(set.New(ids...))
}

func (s SignerSet) IsSigner(id Identity) bool {
	return set.Set[Identity](s).Contains(id)
}

// SignedBy is the call signed by the caller itself
func SignedBy(id Identity) Call {
	return Call{Caller: id, Signers: NewSignerSet(id)}
}

func NewPrizeTable(names []string, weights []uint8) PrizeTable {
	ret := make(PrizeTable, len(names))
	for i := range names {
		ret[i] = Prize{Name: names[i], Weight: weights[i]}
	}
	return ret
}

func (p PrizeTable) Weights() []uint8 {
	ret := make([]uint8, len(p))
	for i := range p {
		ret[i] = p[i].Weight
	}
	return ret
}

func (p PrizeTable) Names() []string {
	ret := make([]string, len(p))
	for i := range p {
		ret[i] = p[i].Name
	}
	return ret
}

func (o *SpinOutcome) Lines(prizes PrizeTable, prefix ...string) *lines.Lines {
	name := "(unknown)"
	if o.PrizeIndex >= 0 && o.PrizeIndex < len(prizes) {
		name = prizes[o.PrizeIndex].Name
	}
	return lines.New(prefix...).
		Add("prize: #%d '%s'", o.PrizeIndex, name).
		Add("sequence: %d", o.Sequence).
		Add("beacon: %s", hex.EncodeToString(o.Beacon[:])).
		Add("previous beacon: %s", hex.EncodeToString(o.PreviousBeacon[:])).
		Add("verification digest: %s", hex.EncodeToString(o.Digest[:])).
		Add("player: %s", o.Player.String()).
		Add("claimed: %v", o.Claimed)
}

func NewAccount() *Account {
	return &Account{}
}

// Clone is deep, the copy shares nothing with the original
func (a *Account) Clone() *Account {
	ret := *a
	ret.Prizes = slices.Clone(a.Prizes)
	ret.History = slices.Clone(a.History)
	if a.Outcome != nil {
		o := *a.Outcome
		ret.Outcome = &o
	}
	return &ret
}

func (a *Account) pushHistory(o SpinOutcome, limit int) {
	if limit <= 0 {
		a.History = nil
		return
	}
	a.History = append(a.History, o)
	if over := len(a.History) - limit; over > 0 {
		a.History = slices.Clone(a.History[over:])
	}
}

func (a *Account) Lines(prefix ...string) *lines.Lines {
	ret := lines.New(prefix...)
	ret.Add("state: %s", a.State().String())
	if !a.Initialized {
		return ret
	}
	ret.Add("authority: %s", a.Authority.String())
	for i, p := range a.Prizes {
		ret.Add("prize #%d: '%s' weight %d%%", i, p.Name, p.Weight)
	}
	ret.Add("total spins: %d", a.TotalSpins).
		Add("last sequence: %d", a.LastSequence).
		Add("last beacon: %s", hex.EncodeToString(a.LastBeacon[:]))
	if a.HasCommitment {
		ret.Add("commitment: %s by %s, reveal window %s", a.Commitment.String(), a.Committer.Short(), a.Window.String())
	}
	if a.Outcome != nil {
		ret.Add("outcome:")
		ret.Append(a.Outcome.Lines(a.Prizes, "    "))
	}
	ret.Add("history length: %d", len(a.History))
	return ret
}
