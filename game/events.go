package game

import (
	"encoding/json"

	"github.com/solaris-soft/Party-games/deck"
)

// Outbound events. Names and fields are part of the wire protocol the
// frontends already speak; keep them exactly as they are.

// parseError is the only frame without a type field: it answers a payload
// that could not be parsed at all.
type parseError struct {
	Error string `json:"error"`
}

type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newErrorEvent(code string) errorEvent {
	return errorEvent{Type: "error", Error: code}
}

// debugDropEvent is only emitted when the engine's debug_drops flag is on,
// to the sender of a message that was silently dropped.
type debugDropEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type playersListEvent struct {
	Type    string    `json:"type"`
	Players []*Player `json:"players"`
}

func newPlayersList(room *Room) playersListEvent {
	return playersListEvent{Type: "players_list", Players: room.Players.Players()}
}

type playerJoinedEvent struct {
	Type   string  `json:"type"`
	Player *Player `json:"player"`
}

type playerReadyEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type playerLeftEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type playerReconnectedEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

// gameStateEvent resyncs a reconnecting player.
type gameStateEvent struct {
	Type    string    `json:"type"`
	Players []*Player `json:"players"`
	Game    GameData  `json:"game"`
}

// --- Paranoia ---

type paranoiaRoundStartEvent struct {
	Type          string  `json:"type"`
	CurrentPlayer *Player `json:"currentPlayer"`
	QuestionAsker *Player `json:"questionAsker"`
	Round         int     `json:"round"`
}

type questionSubmittedEvent struct {
	Type     string `json:"type"`
	Question string `json:"question"`
}

type answerSubmittedEvent struct {
	Type        string  `json:"type"`
	Answer      *Player `json:"answer"`
	CoinFlipper *Player `json:"coinFlipper"`
}

type coinFlipEvent struct {
	Type     string  `json:"type"`
	Result   bool    `json:"result"`
	Question *string `json:"question"`
	Answer   *Player `json:"answer"`
}

type roundEndEvent struct {
	Type    string    `json:"type"`
	Players []*Player `json:"players"`
}

// --- Murder ---

type murderGameStartEvent struct {
	Type  string `json:"type"`
	Round int    `json:"round"`
	Phase string `json:"phase"`
}

type youAreMurdererEvent struct {
	Type string `json:"type"`
}

type playerEliminatedEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Reason   string `json:"reason"`
}

type murderGameEndEvent struct {
	Type     string  `json:"type"`
	Winner   string  `json:"winner"`
	Murderer *Player `json:"murderer"`
}

type murderVotingResultsEvent struct {
	Type      string         `json:"type"`
	AccusedID string         `json:"accusedPlayerId"`
	Tally     map[string]int `json:"votes"`
}

type phaseChangeEvent struct {
	Type  string `json:"type"`
	Phase string `json:"phase"`
}

type murderRoundStartEvent struct {
	Type  string `json:"type"`
	Round int    `json:"round"`
	Phase string `json:"phase"`
}

// --- OddsOn ---

type secretSubmittedEvent struct {
	Type          string `json:"type"`
	PlayerID      string `json:"playerId"`
	SecretsInPool int    `json:"secretsInPool"`
}

type oddsOnRoundStartEvent struct {
	Type   string `json:"type"`
	Secret string `json:"secret"`
	Round  int    `json:"round"`
}

type playerVotedEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type votingResultsEvent struct {
	Type    string  `json:"type"`
	Accused *Player `json:"accused"`
	Author  *Player `json:"author"`
	Correct bool    `json:"correct"`
	Secret  string  `json:"secret"`
}

type oddsOnGameEndEvent struct {
	Type string `json:"type"`
}

// --- UltimateCup ---

type cupGameStartEvent struct {
	Type          string  `json:"type"`
	CurrentPlayer *Player `json:"currentPlayer"`
}

type cardDrawnEvent struct {
	Type     string    `json:"type"`
	Card     deck.Card `json:"card"`
	PlayerID string    `json:"playerId"`
}

type ultimateCupActivatedEvent struct {
	Type   string `json:"type"`
	Drinks int    `json:"drinks"`
}

type powerCardReceivedEvent struct {
	Type     string      `json:"type"`
	PlayerID string      `json:"playerId"`
	Power    deck.Effect `json:"power"`
}

type challengeStartedEvent struct {
	Type      string       `json:"type"`
	PlayerID  string       `json:"playerId"`
	Challenge string       `json:"challenge"`
	Effect    *deck.Effect `json:"effect"`
}

type minigameStartedEvent struct {
	Type     string       `json:"type"`
	Minigame string       `json:"minigame"`
	Effect   *deck.Effect `json:"effect"`
}

type protectionUsedEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type challengeCompletedEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Success  bool   `json:"success"`
	Phase    string `json:"phase"`
}

type minigameCompletedEvent struct {
	Type     string          `json:"type"`
	Results  json.RawMessage `json:"results"`
	PlayerID string          `json:"playerId"`
}

type powerUsedEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Power    string `json:"power"`
}

type powerEffectEvent struct {
	Type     string `json:"type"`
	Effect   string `json:"effect"`
	PlayerID string `json:"playerId"`
}

type turnChangedEvent struct {
	Type          string  `json:"type"`
	CurrentPlayer *Player `json:"currentPlayer"`
}

type turnSkippedEvent struct {
	Type          string  `json:"type"`
	CurrentPlayer *Player `json:"currentPlayer"`
}

type turnOrderReversedEvent struct {
	Type    string    `json:"type"`
	Players []*Player `json:"players"`
}

type ultimateCupPhaseStartedEvent struct {
	Type          string  `json:"type"`
	CurrentPlayer *Player `json:"currentPlayer"`
	Drinks        int     `json:"drinks"`
}

type cupGameEndEvent struct {
	Type              string    `json:"type"`
	Winner            *Player   `json:"winner"`
	EliminatedPlayers []*Player `json:"eliminatedPlayers"`
}
