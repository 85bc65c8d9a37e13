package npc

import (
	"math/rand"

	"holdem-tourney/holdem"
)

// RandomBrain picks uniformly among fold, check/call and bet/raise.
type RandomBrain struct {
	name string
	rng  *rand.Rand
}

func NewRandomBrain(name string, seed int64) *RandomBrain {
	return &RandomBrain{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBrain) Name() string { return b.name }

func (b *RandomBrain) Decide(obs holdem.Observation) Decision {
	kind := actionWeights{1, 1, 1}.sample(b.rng)
	if kind == holdem.ActionBetRaise && obs.CanRaise && obs.MaxRaise > obs.MinRaise {
		span := obs.MaxRaise - obs.MinRaise
		return Decision{Kind: kind, Amount: obs.MinRaise + b.rng.Int63n(span+1)}
	}
	return bind(obs, kind, 0)
}
