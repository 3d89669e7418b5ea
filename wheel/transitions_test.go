package wheel

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextState(t *testing.T) {
	legal := []struct {
		from State
		op   Op
		to   State
	}{
		{StateUninitialized, OpInitialize, StateInitialized},
		{StateInitialized, OpCommit, StateCommitted},
		{StateCommitted, OpCommit, StateCommitted},
		{StateCommitted, OpClaim, StateCommitted},
		{StateCommitted, OpReveal, StateRevealed},
		{StateRevealed, OpCommit, StateCommitted},
		{StateRevealed, OpClaim, StateRevealed},
	}
	for _, c := range legal {
		to, ok := NextState(c.from, c.op)
		require.True(t, ok, "%s --%s-->", c.from, c.op)
		require.EqualValues(t, c.to, to, "%s --%s-->", c.from, c.op)
	}
	illegal := []struct {
		from State
		op   Op
	}{
		{StateUninitialized, OpCommit},
		{StateUninitialized, OpReveal},
		{StateUninitialized, OpClaim},
		{StateInitialized, OpInitialize},
		{StateInitialized, OpReveal},
		{StateInitialized, OpClaim},
		{StateCommitted, OpInitialize},
		{StateRevealed, OpReveal},
		{StateRevealed, OpInitialize},
	}
	for _, c := range illegal {
		_, ok := NextState(c.from, c.op)
		require.False(t, ok, "%s --%s-->", c.from, c.op)
	}
}

func TestCheckTransition(t *testing.T) {
	require.True(t, errors.Is(checkTransition(nil, OpCommit), ErrUninitialized))
	require.True(t, errors.Is(checkTransition(NewAccount(), OpClaim), ErrUninitialized))

	acc := &Account{Initialized: true, Prizes: PrizeTable{{Name: "All", Weight: 100}}}
	require.NoError(t, checkTransition(acc, OpCommit))
	require.True(t, errors.Is(checkTransition(acc, OpInitialize), ErrAlreadyInitialized))
	require.True(t, errors.Is(checkTransition(acc, OpReveal), ErrNoCommitment))
	require.True(t, errors.Is(checkTransition(acc, OpClaim), ErrNoOutcome))
}

func TestTransitionGraph(t *testing.T) {
	g := TransitionGraph()
	order, err := g.Order()
	require.NoError(t, err)
	require.EqualValues(t, 4, order)
	size, err := g.Size()
	require.NoError(t, err)
	require.EqualValues(t, 6, size)

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf))
	dot := buf.String()
	require.Contains(t, dot, "digraph")
	require.Contains(t, dot, "uninitialized")
	require.Contains(t, dot, "commit,claim")
	t.Logf("\n%s", dot)
}
