package npc

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"holdem-tourney/holdem"
)

// initial policy leans towards calling
var policyPrior = actionWeights{0.2, 0.5, 0.3}

// PolicyBrain memoises one action per observation key. Unknown keys are
// sampled from a prior; HandFinished reinforces what won.
type PolicyBrain struct {
	name string

	mu      sync.Mutex
	rng     *rand.Rand
	policy  map[string]holdem.ActionKind
	visited map[string]holdem.ActionKind // this hand
	Explore float64                      // chance to re-roll a losing key
}

func NewPolicyBrain(name string, seed int64) *PolicyBrain {
	return &PolicyBrain{
		name:    name,
		rng:     rand.New(rand.NewSource(seed)),
		policy:  make(map[string]holdem.ActionKind),
		visited: make(map[string]holdem.ActionKind),
		Explore: 0.1,
	}
}

func (b *PolicyBrain) Name() string { return b.name }

func (b *PolicyBrain) Decide(obs holdem.Observation) Decision {
	key := ObservationKey(obs)

	b.mu.Lock()
	kind, ok := b.policy[key]
	if !ok {
		kind = policyPrior.sample(b.rng)
		b.policy[key] = kind
	}
	b.visited[key] = kind
	b.mu.Unlock()

	return bind(obs, kind, 0.5)
}

// HandFinished implements HandObserver.
func (b *PolicyBrain) HandFinished(_ uint16, net int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, kind := range b.visited {
		b.update(key, kind, net)
	}
	b.visited = make(map[string]holdem.ActionKind)
}

// Update applies one reward to key.
func (b *PolicyBrain) Update(key string, kind holdem.ActionKind, reward int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.update(key, kind, reward)
	// a reinforced override is what the hand settles on
	if _, ok := b.visited[key]; ok && reward > 0 {
		b.visited[key] = kind
	}
}

func (b *PolicyBrain) update(key string, kind holdem.ActionKind, reward int64) {
	if _, ok := b.policy[key]; !ok {
		return
	}
	switch {
	case reward > 0:
		b.policy[key] = kind
	case reward < 0 && b.rng.Float64() < b.Explore:
		b.policy[key] = actionWeights{1, 1, 1}.sample(b.rng)
	}
}

func (b *PolicyBrain) Lookup(key string) (holdem.ActionKind, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k, ok := b.policy[key]
	return k, ok
}

func (b *PolicyBrain) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.policy)
}

// Save writes the policy as a JSON object of key -> action name.
func (b *PolicyBrain) Save(w io.Writer) error {
	b.mu.Lock()
	out := make(map[string]string, len(b.policy))
	for k, v := range b.policy {
		out[k] = v.String()
	}
	b.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Load merges a policy written by Save.
func (b *PolicyBrain) Load(r io.Reader) error {
	var in map[string]string
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("decode policy: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range in {
		kind, ok := holdem.ParseActionKind(v)
		if !ok || kind == holdem.ActionNone {
			return fmt.Errorf("policy key %q: unknown action %q", k, v)
		}
		b.policy[k] = kind
	}
	return nil
}

// ObservationKey is the structural state a PolicyBrain memoises on:
// street, own cards, board, whether a call is owed and raises so far.
func ObservationKey(obs holdem.Observation) string {
	hole := make([]string, len(obs.HoleCards))
	for i, c := range obs.HoleCards {
		hole[i] = c.Code()
	}
	sort.Strings(hole)
	board := make([]string, len(obs.Board))
	for i, c := range obs.Board {
		board[i] = c.Code()
	}
	return fmt.Sprintf("%s|%s|%s|%t|%d",
		obs.Street, strings.Join(hole, ""), strings.Join(board, ""), obs.ToCall > 0, obs.RaisesThisStreet)
}
