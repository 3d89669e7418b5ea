package wheel

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/lunfardo314/fairwheel/selector"
	"github.com/lunfardo314/fairwheel/util"
)

const EncodingVersion = byte(1)

const (
	flagInitialized = byte(1 << iota)
	flagHasCommitment
	flagHasOutcome
)

// Bytes serializes account into the canonical binary form. The form is deterministic:
// equal accounts produce equal bytes
func (a *Account) Bytes() []byte {
	util.Assertf(len(a.Prizes) <= MaxPrizes, "too many prizes")
	util.Assertf(len(a.History) <= MaxHistoryLimit, "history too long")

	var buf bytes.Buffer
	var flags byte
	if a.Initialized {
		flags |= flagInitialized
	}
	if a.HasCommitment {
		flags |= flagHasCommitment
	}
	if a.Outcome != nil {
		flags |= flagHasOutcome
	}
	buf.WriteByte(EncodingVersion)
	buf.WriteByte(flags)
	buf.Write(a.Authority[:])
	writeUint64(&buf, a.TotalSpins)
	writeUint64(&buf, a.LastSequence)
	buf.Write(a.LastBeacon[:])
	buf.Write(a.Commitment[:])
	buf.Write(a.Committer[:])
	writeUint64(&buf, a.Window.Min)
	writeUint64(&buf, a.Window.Max)

	buf.WriteByte(byte(len(a.Prizes)))
	for _, p := range a.Prizes {
		util.Assertf(len(p.Name) > 0 && len(p.Name) <= MaxNameLen, "wrong prize name length")
		buf.WriteByte(p.Weight)
		buf.WriteByte(byte(len(p.Name)))
		buf.WriteString(p.Name)
	}
	if a.Outcome != nil {
		writeOutcome(&buf, a.Outcome)
	}
	buf.WriteByte(byte(len(a.History)))
	for i := range a.History {
		writeOutcome(&buf, &a.History[i])
	}
	return buf.Bytes()
}

func writeUint64(w *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

func writeOutcome(w *bytes.Buffer, o *SpinOutcome) {
	util.Assertf(o.PrizeIndex >= 0 && o.PrizeIndex < MaxPrizes, "wrong prize index %d", o.PrizeIndex)
	w.WriteByte(byte(o.PrizeIndex))
	if o.Claimed {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
	w.Write(o.Digest[:])
	writeUint64(w, o.Sequence)
	w.Write(o.Beacon[:])
	w.Write(o.PreviousBeacon[:])
	w.Write(o.Player[:])
}

// AccountFromBytes parses and validates the account. Trailing bytes are not allowed
func AccountFromBytes(data []byte) (*Account, error) {
	ret, err := parseAccount(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, ErrCorruptedAccount) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCorruptedAccount, err)
	}
	return ret, nil
}

func parseAccount(r *bytes.Reader) (*Account, error) {
	var version, flags byte
	var err error
	if version, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if version != EncodingVersion {
		return nil, fmt.Errorf("%w %d", ErrUnsupportedEncoding, version)
	}
	if flags, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if flags&^(flagInitialized|flagHasCommitment|flagHasOutcome) != 0 {
		return nil, fmt.Errorf("unknown flags %08b", flags)
	}
	ret := &Account{
		Initialized:   flags&flagInitialized != 0,
		HasCommitment: flags&flagHasCommitment != 0,
	}
	if _, err = io.ReadFull(r, ret.Authority[:]); err != nil {
		return nil, err
	}
	if ret.TotalSpins, err = readUint64(r); err != nil {
		return nil, err
	}
	if ret.LastSequence, err = readUint64(r); err != nil {
		return nil, err
	}
	if _, err = io.ReadFull(r, ret.LastBeacon[:]); err != nil {
		return nil, err
	}
	if _, err = io.ReadFull(r, ret.Commitment[:]); err != nil {
		return nil, err
	}
	if _, err = io.ReadFull(r, ret.Committer[:]); err != nil {
		return nil, err
	}
	if ret.Window.Min, err = readUint64(r); err != nil {
		return nil, err
	}
	if ret.Window.Max, err = readUint64(r); err != nil {
		return nil, err
	}
	if ret.Prizes, err = readPrizes(r); err != nil {
		return nil, err
	}
	if flags&flagHasOutcome != 0 {
		var o SpinOutcome
		if o, err = readOutcome(r, len(ret.Prizes)); err != nil {
			return nil, err
		}
		ret.Outcome = &o
	}
	var n byte
	if n, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if n > 0 {
		ret.History = make([]SpinOutcome, n)
		for i := range ret.History {
			if ret.History[i], err = readOutcome(r, len(ret.Prizes)); err != nil {
				return nil, fmt.Errorf("history #%d: %w", i, err)
			}
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes", r.Len())
	}
	if err = ret.validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func readPrizes(r *bytes.Reader) (PrizeTable, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	ret := make(PrizeTable, n)
	for i := range ret {
		var nameLen byte
		if ret[i].Weight, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if nameLen, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if nameLen == 0 {
			return nil, fmt.Errorf("prize #%d: empty name", i)
		}
		name := make([]byte, nameLen)
		if _, err = io.ReadFull(r, name); err != nil {
			return nil, err
		}
		ret[i].Name = string(name)
	}
	return ret, nil
}

func readOutcome(r *bytes.Reader, nPrizes int) (ret SpinOutcome, err error) {
	var idx, claimed byte
	if idx, err = r.ReadByte(); err != nil {
		return
	}
	if int(idx) >= nPrizes {
		err = fmt.Errorf("prize index %d out of range", idx)
		return
	}
	ret.PrizeIndex = int(idx)
	if claimed, err = r.ReadByte(); err != nil {
		return
	}
	if claimed > 1 {
		err = fmt.Errorf("wrong claimed flag %d", claimed)
		return
	}
	ret.Claimed = claimed == 1
	if _, err = io.ReadFull(r, ret.Digest[:]); err != nil {
		return
	}
	if ret.Sequence, err = readUint64(r); err != nil {
		return
	}
	if _, err = io.ReadFull(r, ret.Beacon[:]); err != nil {
		return
	}
	if _, err = io.ReadFull(r, ret.PreviousBeacon[:]); err != nil {
		return
	}
	_, err = io.ReadFull(r, ret.Player[:])
	return
}

// validate checks consistency of the parsed account
func (a *Account) validate() error {
	if !a.Initialized {
		if len(a.Prizes) != 0 || a.HasCommitment || a.Outcome != nil || len(a.History) != 0 || a.TotalSpins != 0 {
			return fmt.Errorf("uninitialized account must be empty")
		}
		return nil
	}
	if len(a.Prizes) == 0 {
		return fmt.Errorf("initialized account without prizes")
	}
	if err := selector.ValidateWeights(a.Prizes.Weights()); err != nil {
		return err
	}
	if a.HasCommitment && a.Window.Min > a.Window.Max {
		return fmt.Errorf("wrong reveal window %s", a.Window.String())
	}
	if a.Outcome != nil && a.TotalSpins == 0 {
		return fmt.Errorf("outcome without spins")
	}
	return nil
}
