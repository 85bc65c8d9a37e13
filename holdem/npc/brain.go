package npc

import (
	"math/rand"

	"holdem-tourney/holdem"
)

// Decision is what a Decider returns. Amount is only read for BetRaise in
// variable bet mode, where it is the raise size above the highest bet.
type Decision struct {
	Kind   holdem.ActionKind
	Amount int64
}

// Decider is the core interface every seat driver implements.
type Decider interface {
	// Decide is called with the acting seat's own observation.
	Decide(obs holdem.Observation) Decision
	// Name returns a human-readable identifier for logs and standings.
	Name() string
}

// HandObserver is implemented by deciders that learn from results. net is
// the seat's chip delta for the hand.
type HandObserver interface {
	HandFinished(seat uint16, net int64)
}

// actionWeights is a fold / check-call / bet-raise distribution.
type actionWeights [3]float64

var actionOrder = [3]holdem.ActionKind{holdem.ActionFold, holdem.ActionCheckCall, holdem.ActionBetRaise}

func (w actionWeights) sample(rng *rand.Rand) holdem.ActionKind {
	total := w[0] + w[1] + w[2]
	x := rng.Float64() * total
	for i, v := range w {
		if x < v {
			return actionOrder[i]
		}
		x -= v
	}
	return actionOrder[len(actionOrder)-1]
}

// raiseAmount picks a size inside the observation's raise bounds. Fixed
// mode ignores it.
func raiseAmount(obs holdem.Observation, fraction float64) int64 {
	amt := int64(float64(obs.Pot) * fraction)
	if amt < obs.MinRaise {
		amt = obs.MinRaise
	}
	if amt > obs.MaxRaise {
		amt = obs.MaxRaise
	}
	return amt
}

// bind turns a kind into a Decision the engine will accept for obs.
func bind(obs holdem.Observation, kind holdem.ActionKind, fraction float64) Decision {
	if kind == holdem.ActionBetRaise && obs.CanRaise {
		return Decision{Kind: kind, Amount: raiseAmount(obs, fraction)}
	}
	if kind == holdem.ActionBetRaise {
		return Decision{Kind: holdem.ActionCheckCall}
	}
	return Decision{Kind: kind}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
