package game

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Ruleset is the per-variant transition logic plugged into the engine. The
// engine owns the generic room lifecycle (join, ready gate, reconnect,
// disconnect, persistence); rulesets own everything the variants disagree
// on.
type Ruleset interface {
	// Kind is the ruleset's route key, e.g. "paranoia".
	Kind() string

	// NewGame returns the variant's initial game payload for a new room.
	NewGame() GameData

	// NewPlayer returns a player with the variant's default fields.
	NewPlayer(id, name string) *Player

	// RejectsDuplicateName reports whether a join with an already-taken
	// name is refused with a name_exists error and a closed connection.
	RejectsDuplicateName() bool

	// OnJoin announces a newly added player (the engine has already sent
	// the joiner its players_list).
	OnJoin(rc *Context, room *Room, p *Player)

	// StartRound fires when every player is ready and the game is in its
	// waiting phase. Rulesets with extra preconditions check them here.
	StartRound(rc *Context, room *Room)

	// OnMessage dispatches a variant-specific message type. Unrecognized
	// types and precondition failures are silently dropped.
	OnMessage(rc *Context, room *Room, playerID, msgType string, payload json.RawMessage)

	// OnLeave handles a disconnect: remove the player or mark the seat
	// disconnected, and announce it.
	OnLeave(rc *Context, room *Room, p *Player)
}

// Registry maps route keys to engine instances, one per game variant.
type Registry struct {
	engines map[string]*Engine
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]*Engine)}
}

func (r *Registry) Register(e *Engine) error {
	if e == nil {
		return fmt.Errorf("cannot register nil engine")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e.Kind()] = e
	return nil
}

func (r *Registry) Get(kind string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[kind]
	return e, ok
}

func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.engines))
	for kind := range r.engines {
		kinds = append(kinds, kind)
	}
	return kinds
}
