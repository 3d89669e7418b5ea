package wheel

import (
	"fmt"
	"io"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/lunfardo314/fairwheel/util"
)

type (
	State byte
	Op    string
)

const (
	StateUninitialized = State(iota)
	StateInitialized
	StateCommitted
	StateRevealed
)

const (
	OpInitialize = Op("initialize")
	OpCommit     = Op("commit")
	OpReveal     = Op("reveal")
	OpClaim      = Op("claim")
)

const opsAttribute = "label"

var (
	allStates       = []State{StateUninitialized, StateInitialized, StateCommitted, StateRevealed}
	transitionGraph = mustBuildTransitionGraph()
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateCommitted:
		return "committed"
	case StateRevealed:
		return "revealed"
	}
	return fmt.Sprintf("state(%d)", byte(s))
}

// State is derived from the account data
func (a *Account) State() State {
	switch {
	case !a.Initialized:
		return StateUninitialized
	case a.HasCommitment:
		return StateCommitted
	case a.Outcome != nil:
		return StateRevealed
	}
	return StateInitialized
}

func mustBuildTransitionGraph() graph.Graph[string, string] {
	g := graph.New(graph.StringHash, graph.Directed())
	for _, s := range allStates {
		util.AssertNoError(g.AddVertex(s.String()))
	}
	addEdge := func(from, to State, ops ...Op) {
		labels := make([]string, len(ops))
		for i := range ops {
			labels[i] = string(ops[i])
		}
		err := g.AddEdge(from.String(), to.String(), graph.EdgeAttribute(opsAttribute, strings.Join(labels, ",")))
		util.AssertNoError(err)
	}
	addEdge(StateUninitialized, StateInitialized, OpInitialize)
	addEdge(StateInitialized, StateCommitted, OpCommit)
	// re-commit overwrites the commitment, claim reads the outcome of the previous cycle
	addEdge(StateCommitted, StateCommitted, OpCommit, OpClaim)
	addEdge(StateCommitted, StateRevealed, OpReveal)
	addEdge(StateRevealed, StateCommitted, OpCommit)
	addEdge(StateRevealed, StateRevealed, OpClaim)
	return g
}

// TransitionGraph vertices are state names, edges are labeled with operations
func TransitionGraph() graph.Graph[string, string] {
	return transitionGraph
}

func WriteDOT(w io.Writer) error {
	return draw.DOT(transitionGraph, w)
}

// NextState returns the state after the operation and false if the operation is illegal in the state
func NextState(from State, op Op) (State, bool) {
	adj, err := transitionGraph.AdjacencyMap()
	util.AssertNoError(err)
	for to, edge := range adj[from.String()] {
		for _, o := range strings.Split(edge.Properties.Attributes[opsAttribute], ",") {
			if Op(o) == op {
				return stateByName(to), true
			}
		}
	}
	return 0, false
}

func stateByName(name string) State {
	for _, s := range allStates {
		if s.String() == name {
			return s
		}
	}
	util.Panicf("unknown state name '%s'", name)
	return 0
}

func checkTransition(a *Account, op Op) error {
	if a == nil {
		return ErrUninitialized
	}
	from := a.State()
	if _, ok := NextState(from, op); ok {
		return nil
	}
	switch {
	case from == StateUninitialized:
		return ErrUninitialized
	case op == OpInitialize:
		return ErrAlreadyInitialized
	case op == OpReveal:
		return ErrNoCommitment
	case op == OpClaim:
		return ErrNoOutcome
	}
	return fmt.Errorf("%w: '%s' in state '%s'", ErrIllegalTransition, op, from.String())
}
