package npc

import (
	"sync"

	"holdem-tourney/holdem"
)

// ScriptedBrain replays a fixed list of decisions, then checks/calls.
type ScriptedBrain struct {
	name string

	mu    sync.Mutex
	steps []Decision
	next  int
}

func NewScriptedBrain(name string, steps ...Decision) *ScriptedBrain {
	return &ScriptedBrain{name: name, steps: steps}
}

// Kinds is shorthand for a script without amounts.
func Kinds(kinds ...holdem.ActionKind) []Decision {
	out := make([]Decision, len(kinds))
	for i, k := range kinds {
		out[i] = Decision{Kind: k}
	}
	return out
}

func (b *ScriptedBrain) Name() string { return b.name }

func (b *ScriptedBrain) Decide(holdem.Observation) Decision {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.next >= len(b.steps) {
		return Decision{Kind: holdem.ActionCheckCall}
	}
	d := b.steps[b.next]
	b.next++
	return d
}

// Remaining is the number of scripted decisions not yet used.
func (b *ScriptedBrain) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.steps) - b.next
}
