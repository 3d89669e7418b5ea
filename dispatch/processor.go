// Package dispatch routes instructions to the wheel state machine and persists the resulting account
package dispatch

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/lunfardo314/fairwheel/global"
	"github.com/lunfardo314/fairwheel/store"
	"github.com/lunfardo314/fairwheel/util"
	"github.com/lunfardo314/fairwheel/util/lines"
	"github.com/lunfardo314/fairwheel/wheel"
)

type (
	// Processor serializes instructions: load, transition and save is atomic within the process
	Processor struct {
		mutex   sync.Mutex
		store   store.AccountStore
		machine *wheel.Machine
		log     global.Logging
	}

	Result struct {
		Op      wheel.Op
		Account *wheel.Account
		// Outcome is set for reveal and claim
		Outcome        *wheel.SpinOutcome
		PrizeIndex     int
		PrizeName      string
		AlreadyClaimed bool
	}
)

func NewProcessor(st store.AccountStore, m *wheel.Machine, log global.Logging) *Processor {
	if log == nil {
		log = global.Logger().Sub("dispatch")
	}
	return &Processor{
		store:   st,
		machine: m,
		log:     log,
	}
}

func (p *Processor) Machine() *wheel.Machine {
	return p.machine
}

// Process applies the instruction to the account. The account is saved only if the instruction succeeds
func (p *Processor) Process(ctx context.Context, accountID store.AccountID, caller wheel.Identity, signers wheel.Signers, instr Instruction) (*Result, error) {
	if instr == nil {
		return nil, fmt.Errorf("%w: nil instruction", wheel.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()

	acc, err := store.LoadOrNew(p.store, accountID)
	if err != nil {
		return nil, err
	}
	call := wheel.Call{Caller: caller, Signers: signers}
	ret := &Result{Op: instr.Op(), PrizeIndex: -1}

	err = util.CatchPanicOrError(func() error {
		var err1 error
		switch in := instr.(type) {
		case InitializeWheel:
			ret.Account, err1 = p.machine.Initialize(acc, call, in.Prizes, in.Weights)
		case CommitSpin:
			ret.Account, err1 = p.machine.Commit(acc, call, in.Commitment)
		case RevealSpin:
			ret.Account, ret.Outcome, err1 = p.machine.Reveal(acc, call, in.Secret)
		case ClaimPrize:
			var res *wheel.ClaimResult
			if ret.Account, res, err1 = p.machine.Claim(acc, call); err1 == nil {
				o := res.Outcome
				ret.Outcome = &o
				ret.AlreadyClaimed = res.AlreadyClaimed
			}
		default:
			util.Panicf("unsupported instruction type %T", instr)
		}
		return err1
	})
	if err != nil {
		p.log.Tracef(global.TraceTagDispatch, "%s on %s failed: %v", instr.Op(), accountID.Short, err)
		return nil, err
	}
	if ret.Outcome != nil {
		ret.PrizeIndex = ret.Outcome.PrizeIndex
		ret.PrizeName = ret.Account.Prizes[ret.PrizeIndex].Name
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if err = p.store.Save(accountID, ret.Account); err != nil {
		return nil, fmt.Errorf("failed to save account %s: %w", accountID.Short(), err)
	}
	p.log.Tracef(global.TraceTagStore, "account %s saved", accountID.Short)
	p.log.Tracef(global.TraceTagDispatch, "%s on %s: %s -> %s", instr.Op(), accountID.Short,
		acc.State().String, ret.Account.State().String)
	return ret, nil
}

// ProcessBytes parses the instruction and processes it
func (p *Processor) ProcessBytes(ctx context.Context, accountID store.AccountID, caller wheel.Identity, signers wheel.Signers, data []byte) (*Result, error) {
	instr, err := InstructionFromBytes(data)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, accountID, caller, signers, instr)
}

// Account returns the persisted account or the new one if it does not exist
func (p *Processor) Account(accountID store.AccountID) (*wheel.Account, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return store.LoadOrNew(p.store, accountID)
}

func (r *Result) Lines(prefix ...string) *lines.Lines {
	ret := lines.New(prefix...).Add("operation: %s", r.Op)
	if r.Outcome != nil {
		ret.Add("prize: #%d '%s'", r.PrizeIndex, r.PrizeName).
			Add("verification digest: %s", hex.EncodeToString(r.Outcome.Digest[:])).
			Add("sequence: %d", r.Outcome.Sequence)
	}
	if r.Op == wheel.OpClaim {
		ret.Add("claimed before: %v", r.AlreadyClaimed)
	}
	ret.Add("state: %s", r.Account.State().String())
	return ret
}
