package npc

import (
	"math/rand"

	"holdem-tourney/holdem"
)

const defaultEquitySamples = 300

// HeuristicBrain makes decisions based on a PersonalityProfile. Preflop it
// scores the two hole cards; postflop it estimates equity by simulation.
type HeuristicBrain struct {
	Persona *Persona
	Samples int // postflop simulations per decision
	rng     *rand.Rand
}

func NewHeuristicBrain(persona *Persona, seed int64) *HeuristicBrain {
	return &HeuristicBrain{
		Persona: persona,
		Samples: defaultEquitySamples,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (b *HeuristicBrain) Name() string { return b.Persona.Name }

// Decide implements Decider.
func (b *HeuristicBrain) Decide(obs holdem.Observation) Decision {
	if !obs.IsMyTurn() {
		return Decision{Kind: holdem.ActionCheckCall}
	}
	p := b.Persona.Brain

	// Add randomness noise to parameters for this decision
	aggression := clamp01(p.Aggression + (b.rng.Float64()-0.5)*p.Randomness*0.4)
	tightness := clamp01(p.Tightness + (b.rng.Float64()-0.5)*p.Randomness*0.3)

	strength := b.estimateHandStrength(obs)
	free := obs.ToCall == 0

	// Preflop: tight players fold marginal hands, but never a free look
	if obs.Street == holdem.StreetPreflop && !free && strength < tightness*0.6 {
		return Decision{Kind: holdem.ActionFold}
	}

	raiseThreshold := 0.85 - 0.35*aggression
	if strength >= raiseThreshold && obs.CanRaise {
		return bind(obs, holdem.ActionBetRaise, 0.33+aggression*0.67)
	}

	// Bluff attempt
	if obs.CanRaise && b.rng.Float64() < p.Bluffing*0.3 {
		return bind(obs, holdem.ActionBetRaise, 0.4)
	}

	if free {
		return Decision{Kind: holdem.ActionCheckCall}
	}

	// Loose players call more often; tight players fold facing bets
	callThreshold := tightness * 0.4
	if strength > callThreshold || strength > potOddsNeeded(obs) || b.rng.Float64() < (1.0-tightness)*0.3 {
		return Decision{Kind: holdem.ActionCheckCall}
	}
	return Decision{Kind: holdem.ActionFold}
}

// estimateHandStrength returns 0.0–1.0.
func (b *HeuristicBrain) estimateHandStrength(obs holdem.Observation) float64 {
	if len(obs.HoleCards) < 2 {
		return 0.3
	}
	if len(obs.Board) >= 3 {
		opponents := obs.ActiveCount() - 1
		if opponents < 1 {
			opponents = 1
		}
		eq := Equity(obs.HoleCards, obs.Board, opponents, b.Samples, b.rng)
		// equity against several opponents is naturally low; scale back up
		return clamp01(eq * float64(opponents+1) / 2)
	}
	return preflopStrength(obs)
}

func preflopStrength(obs holdem.Observation) float64 {
	c0, c1 := obs.HoleCards[0], obs.HoleCards[1]
	rank0, rank1 := int(c0.Rank()), int(c1.Rank())

	strength := (float64(rank0) + float64(rank1)) / 28.0

	// Pair bonus
	if rank0 == rank1 {
		strength += 0.25
	}
	// Suited bonus
	if c0.Suit() == c1.Suit() {
		strength += 0.05
	}
	// Connected bonus
	gap := rank0 - rank1
	if gap < 0 {
		gap = -gap
	}
	if gap <= 2 {
		strength += 0.05
	}
	// any pocket pair or ace is a raising hand
	if rank0 == rank1 || c0.IsAce() || c1.IsAce() {
		strength += 0.1
	}
	return clamp01(strength)
}

// potOddsNeeded is the equity a call needs to break even.
func potOddsNeeded(obs holdem.Observation) float64 {
	if obs.ToCall <= 0 {
		return 0
	}
	return float64(obs.ToCall) / float64(obs.Pot+obs.ToCall)
}
