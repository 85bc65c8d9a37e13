package npc

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Brain kinds a Persona can ask for.
const (
	KindRandom    = "random"
	KindHeuristic = "heuristic"
	KindPolicy    = "policy"
	KindCalling   = "calling"
)

// PersonaRegistry holds all persona definitions.
type PersonaRegistry struct {
	mu       sync.RWMutex
	personas map[string]*Persona
}

// NewRegistry creates an empty registry.
func NewRegistry() *PersonaRegistry {
	return &PersonaRegistry{
		personas: make(map[string]*Persona),
	}
}

// NewDefaultRegistry is a registry preloaded with DefaultPersonas.
func NewDefaultRegistry() *PersonaRegistry {
	r := NewRegistry()
	for _, p := range DefaultPersonas() {
		r.personas[p.ID] = p
	}
	return r
}

// LoadFromFile loads personas from a JSON file.
func (r *PersonaRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read personas file: %w", err)
	}
	return r.LoadFromJSON(data)
}

// LoadFromJSON loads personas from raw JSON bytes.
func (r *PersonaRegistry) LoadFromJSON(data []byte) error {
	var list []*Persona
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse personas JSON: %w", err)
	}
	for _, p := range list {
		if p.ID != "" && !validKind(p.Kind) {
			return fmt.Errorf("persona %q: unknown kind %q", p.ID, p.Kind)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range list {
		if p.ID == "" {
			continue
		}
		r.personas[p.ID] = p
	}
	return nil
}

// Get returns a persona by ID.
func (r *PersonaRegistry) Get(id string) *Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.personas[id]
}

// All returns a snapshot of all personas, sorted by ID.
func (r *PersonaRegistry) All() []*Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Persona, 0, len(r.personas))
	for _, p := range r.personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the total number of registered personas.
func (r *PersonaRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.personas)
}

func validKind(kind string) bool {
	switch kind {
	case KindRandom, KindHeuristic, KindPolicy, KindCalling, "":
		return true
	}
	return false
}

// Build constructs the Decider a persona asks for. An empty kind means heuristic.
func Build(p *Persona, seed int64) (Decider, error) {
	if p == nil {
		return nil, fmt.Errorf("build decider: nil persona")
	}
	switch p.Kind {
	case KindHeuristic, "":
		return NewHeuristicBrain(p, seed), nil
	case KindRandom:
		return NewRandomBrain(p.Name, seed), nil
	case KindPolicy:
		return NewPolicyBrain(p.Name, seed), nil
	case KindCalling:
		return NewScriptedBrain(p.Name), nil
	}
	return nil, fmt.Errorf("build decider %q: unknown kind %q", p.ID, p.Kind)
}
