package npc

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Instance is a bot seated for a tournament.
type Instance struct {
	Seat       uint16
	Persona    *Persona
	Brain      Decider
	ThinkDelay time.Duration
}

// Manager hands out seeded deciders for personas. Seeds come from one
// master seed so a lineup is reproducible.
type Manager struct {
	registry *PersonaRegistry
	log      zerolog.Logger

	mu        sync.Mutex
	rng       *rand.Rand
	instances map[uint16]*Instance
	thinking  bool
}

type ManagerOption func(*Manager)

func WithManagerLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l.With().Str("component", "npc").Logger() }
}

// WithThinkDelay gives every spawned bot a persona-dependent think delay.
func WithThinkDelay() ManagerOption {
	return func(m *Manager) { m.thinking = true }
}

// NewManager creates a bot manager with the given persona registry.
func NewManager(registry *PersonaRegistry, seed int64, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry:  registry,
		log:       zerolog.Nop(),
		rng:       rand.New(rand.NewSource(seed)),
		instances: make(map[uint16]*Instance),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the underlying PersonaRegistry.
func (m *Manager) Registry() *PersonaRegistry {
	return m.registry
}

// Spawn builds the decider for persona id and seats it at seat.
func (m *Manager) Spawn(seat uint16, id string) (*Instance, error) {
	persona := m.registry.Get(id)
	if persona == nil {
		return nil, fmt.Errorf("spawn seat %d: unknown persona %q", seat, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.instances[seat] != nil {
		return nil, fmt.Errorf("spawn %s: seat %d already taken", persona.Name, seat)
	}
	brain, err := Build(persona, m.rng.Int63())
	if err != nil {
		return nil, err
	}

	inst := &Instance{Seat: seat, Persona: persona, Brain: brain}
	if m.thinking {
		// 0.2–0.7s base, plus jitter; noisy personas dither longer
		baseMs := 200 + int(persona.Brain.Randomness*500)
		inst.ThinkDelay = time.Duration(baseMs+m.rng.Intn(200)) * time.Millisecond
	}
	m.instances[seat] = inst

	m.log.Debug().Str("persona", persona.ID).Uint16("seat", seat).Str("kind", persona.Kind).Msg("spawned")
	return inst, nil
}

// Lineup spawns the given personas on seats 0..n-1, cycling through ids.
func (m *Manager) Lineup(n int, ids ...string) ([]*Instance, error) {
	if len(ids) == 0 {
		for _, p := range m.registry.All() {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("lineup: no personas")
	}
	out := make([]*Instance, 0, n)
	for i := 0; i < n; i++ {
		inst, err := m.Spawn(uint16(i), ids[i%len(ids)])
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// Instance returns the bot on seat, or nil.
func (m *Manager) Instance(seat uint16) *Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instances[seat]
}

// Despawn removes a bot from tracking.
func (m *Manager) Despawn(seat uint16) {
	m.mu.Lock()
	inst := m.instances[seat]
	delete(m.instances, seat)
	m.mu.Unlock()

	if inst != nil {
		m.log.Debug().Str("persona", inst.Persona.ID).Uint16("seat", seat).Msg("despawned")
	}
}
