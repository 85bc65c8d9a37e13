package npc

// PersonalityProfile defines the tunable parameters for a HeuristicBrain.
type PersonalityProfile struct {
	Aggression float64 `json:"aggression"` // 0.0–1.0: tendency to bet/raise vs check/call
	Tightness  float64 `json:"tightness"`  // 0.0–1.0: hand range width (1.0 = only premiums)
	Bluffing   float64 `json:"bluffing"`   // 0.0–1.0: bluff frequency
	Randomness float64 `json:"randomness"` // 0.0–1.0: decision noise
}

// Persona is a named bot: which brain drives it and how it is tuned.
type Persona struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Kind    string             `json:"kind"` // random | heuristic | policy | calling
	Tagline string             `json:"tagline,omitempty"`
	Brain   PersonalityProfile `json:"brain"`
}

// DefaultPersonas is the built-in lineup used when no personas file is given.
func DefaultPersonas() []*Persona {
	return []*Persona{
		{ID: "rock", Name: "Rock", Kind: KindHeuristic, Tagline: "only plays premiums",
			Brain: PersonalityProfile{Aggression: 0.35, Tightness: 0.85, Bluffing: 0.05, Randomness: 0.1}},
		{ID: "tag", Name: "Shark", Kind: KindHeuristic, Tagline: "tight and aggressive",
			Brain: PersonalityProfile{Aggression: 0.7, Tightness: 0.6, Bluffing: 0.2, Randomness: 0.15}},
		{ID: "maniac", Name: "Maniac", Kind: KindHeuristic, Tagline: "never saw a pot it did not raise",
			Brain: PersonalityProfile{Aggression: 0.95, Tightness: 0.1, Bluffing: 0.6, Randomness: 0.4}},
		{ID: "station", Name: "Station", Kind: KindCalling, Tagline: "calls everything"},
		{ID: "learner", Name: "Learner", Kind: KindPolicy, Tagline: "remembers what worked"},
		{ID: "chaos", Name: "Chaos", Kind: KindRandom, Tagline: "coin flips"},
	}
}
