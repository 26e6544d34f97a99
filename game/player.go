// Package game implements the room engine and the four party-game rulesets
// (Paranoia, Murder, OddsOn, UltimateCup) plugged into it.
package game

import "github.com/solaris-soft/Party-games/deck"

// Player is one seat in a room. Identity is the caller-supplied id, unique
// within the room. Only the engine mutates a Player, and only while it is
// processing a message for that player's room.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`

	// Murder
	IsMurderer bool `json:"isMurderer,omitempty"`
	IsAlive    bool `json:"isAlive,omitempty"`

	// OddsOn
	SecretsSubmitted int `json:"secretsSubmitted,omitempty"`

	// UltimateCup
	PowerCards     []string      `json:"powerCards,omitempty"`
	CurrentEffects []deck.Effect `json:"currentEffects,omitempty"`
	IsEliminated   bool          `json:"isEliminated,omitempty"`
	Disconnected   bool          `json:"disconnected,omitempty"`
}

// Room is one live game session. Players is the single authoritative
// collection; game payloads reference players by id only.
type Room struct {
	ID      string   `json:"id"`
	Players *Roster  `json:"players"`
	Game    GameData `json:"game"`
}

// GameData is the ruleset-specific game payload held by a Room.
type GameData interface {
	// CurrentPhase returns the game's phase string. Every ruleset starts
	// in "waiting" and returns to it at round end.
	CurrentPhase() string
}

const phaseWaiting = "waiting"
