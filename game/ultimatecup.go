package game

import (
	"encoding/json"

	"github.com/solaris-soft/Party-games/deck"
)

const (
	cupPlaying    = "playing"
	cupChallenge  = "challenge"
	cupMinigame   = "minigame"
	cupUltimate   = "ultimate_cup"
	cupEnded      = "ended"
	effectProtect = deck.PowerProtection
)

// cupState is the shared drink pot. Once the last king is drawn it goes
// active and failed challenges eliminate instead of adding drinks.
type cupState struct {
	Drinks   int  `json:"drinks"`
	IsActive bool `json:"isActive"`
}

// cupGame is the card-driven turn game. Turn order is roster order,
// eliminated players are skipped, and the deck drives every phase change.
type cupGame struct {
	Phase           string     `json:"phase"`
	CurrentPlayerID string     `json:"currentPlayerId,omitempty"`
	Deck            *deck.Deck `json:"deck"`
	UltimateCup     cupState   `json:"ultimateCup"`
	CurrentCard     *deck.Card `json:"currentCard,omitempty"`
	EliminatedIDs   []string   `json:"eliminatedPlayers"`
}

func (g *cupGame) CurrentPhase() string { return g.Phase }

// UltimateCup is the drinking card-game ruleset.
type UltimateCup struct{}

func NewUltimateCup() *UltimateCup { return &UltimateCup{} }

func (*UltimateCup) Kind() string { return "ultimatecup" }

// NewGame starts without a deck; the deck is shuffled when the game
// actually starts so every playthrough gets a fresh order.
func (*UltimateCup) NewGame() GameData {
	return &cupGame{Phase: phaseWaiting}
}

func (*UltimateCup) NewPlayer(id, name string) *Player {
	return &Player{
		ID:             id,
		Name:           name,
		PowerCards:     []string{},
		CurrentEffects: []deck.Effect{},
	}
}

func (*UltimateCup) RejectsDuplicateName() bool { return true }

func (*UltimateCup) OnJoin(rc *Context, room *Room, p *Player) {
	rc.Broadcast(newPlayersList(room))
}

func (*UltimateCup) StartRound(rc *Context, room *Room) {
	g := room.Game.(*cupGame)

	g.Deck = deck.NewShuffled(rc.Rand())
	g.UltimateCup = cupState{}
	g.CurrentCard = nil
	g.EliminatedIDs = nil
	for _, p := range room.Players.Players() {
		p.IsEliminated = false
		p.PowerCards = []string{}
		p.CurrentEffects = []deck.Effect{}
	}

	g.Phase = cupPlaying
	first := room.Players.At(0)
	g.CurrentPlayerID = first.ID

	rc.Broadcast(cupGameStartEvent{Type: "game_start", CurrentPlayer: first})
}

func (uc *UltimateCup) OnMessage(rc *Context, room *Room, playerID, msgType string, payload json.RawMessage) {
	g := room.Game.(*cupGame)

	switch msgType {
	case "draw_card":
		uc.tryDraw(rc, room, g, playerID)

	case "use_power":
		var msg struct {
			PowerCard string `json:"powerCard"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if msg.PowerCard == "" {
			rc.Send(playerID, parseError{Error: "Missing power card"})
			return
		}
		uc.usePower(rc, room, g, playerID, msg.PowerCard)

	case "complete_challenge":
		var msg struct {
			Success *bool `json:"success"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if msg.Success == nil {
			rc.Send(playerID, parseError{Error: "Missing success status"})
			return
		}
		uc.completeChallenge(rc, room, g, playerID, *msg.Success)

	case "finish_minigame":
		var msg struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if len(msg.Results) == 0 {
			rc.Send(playerID, parseError{Error: "Missing minigame results"})
			return
		}
		uc.finishMinigame(rc, room, g, playerID, msg.Results)

	default:
		rc.Drop(playerID, "unknown message type")
	}
}

// tryDraw checks the draw preconditions before popping a card: the game
// must be in a drawable phase and the draw must come from the current
// player. Replayed draws (draw_two) go through the same gate, so a draw
// that ended the turn or opened a sub-phase blocks the next one.
func (uc *UltimateCup) tryDraw(rc *Context, room *Room, g *cupGame, playerID string) {
	if g.Phase != cupPlaying && g.Phase != cupUltimate {
		rc.Drop(playerID, "no draw in this phase")
		return
	}
	p, ok := room.Players.Get(playerID)
	if !ok || p.ID != g.CurrentPlayerID {
		rc.Drop(playerID, "not your turn")
		return
	}
	uc.drawCard(rc, room, g, p)
}

func (uc *UltimateCup) drawCard(rc *Context, room *Room, g *cupGame, p *Player) {
	card, ok := g.Deck.Draw()
	if !ok {
		rc.Broadcast(newErrorEvent("no_cards_left"))
		return
	}
	g.CurrentCard = &card

	rc.Broadcast(cardDrawnEvent{Type: "card_drawn", Card: card, PlayerID: p.ID})

	switch card.Type {
	case deck.TypeKing:
		uc.drawKing(rc, room, g)
	case deck.TypePower:
		uc.drawPower(rc, room, g, p, card)
	case deck.TypeChallenge:
		uc.drawChallenge(rc, room, g, p, card)
	case deck.TypeMinigame:
		g.Phase = cupMinigame
		rc.Broadcast(minigameStartedEvent{
			Type:     "minigame_started",
			Minigame: card.Content,
			Effect:   card.Effect,
		})
	}
}

// drawKing adds a drink to the cup. The last king tips the game into its
// terminal phase, restarting the turn order at the drawer.
func (uc *UltimateCup) drawKing(rc *Context, room *Room, g *cupGame) {
	g.UltimateCup.Drinks++

	if g.Deck.RemainingOfType(deck.TypeKing) > 0 {
		uc.nextTurn(rc, room, g)
		return
	}

	g.UltimateCup.IsActive = true
	g.Phase = cupUltimate
	rc.Broadcast(ultimateCupActivatedEvent{
		Type:   "ultimate_cup_activated",
		Drinks: g.UltimateCup.Drinks,
	})

	room.Players.RotateTo(g.CurrentPlayerID)
	first := pickFirstActive(room)
	if first == nil {
		return
	}
	g.CurrentPlayerID = first.ID
	rc.Broadcast(ultimateCupPhaseStartedEvent{
		Type:          "ultimate_cup_phase_started",
		CurrentPlayer: first,
		Drinks:        g.UltimateCup.Drinks,
	})
}

func (uc *UltimateCup) drawPower(rc *Context, room *Room, g *cupGame, p *Player, card deck.Card) {
	if card.Effect != nil {
		p.PowerCards = append(p.PowerCards, card.Effect.Name)
		p.CurrentEffects = append(p.CurrentEffects, *card.Effect)
		rc.Broadcast(powerCardReceivedEvent{
			Type:     "power_card_received",
			PlayerID: p.ID,
			Power:    *card.Effect,
		})
	}
	uc.nextTurn(rc, room, g)
}

// drawChallenge opens a challenge sub-phase, unless a banked protection
// effect eats the card: then the challenge is skipped and the turn passes
// on like any other completed draw.
func (uc *UltimateCup) drawChallenge(rc *Context, room *Room, g *cupGame, p *Player, card deck.Card) {
	for i, e := range p.CurrentEffects {
		if e.Name == effectProtect {
			p.CurrentEffects = append(p.CurrentEffects[:i], p.CurrentEffects[i+1:]...)
			rc.Broadcast(protectionUsedEvent{Type: "protection_used", PlayerID: p.ID})
			uc.nextTurn(rc, room, g)
			return
		}
	}

	g.Phase = cupChallenge
	rc.Broadcast(challengeStartedEvent{
		Type:      "challenge_started",
		PlayerID:  p.ID,
		Challenge: card.Content,
		Effect:    card.Effect,
	})
}

func (uc *UltimateCup) usePower(rc *Context, room *Room, g *cupGame, playerID, powerCard string) {
	p, ok := room.Players.Get(playerID)
	if !ok {
		rc.Drop(playerID, "unknown player")
		return
	}

	idx := -1
	for i, name := range p.PowerCards {
		if name == powerCard {
			idx = i
			break
		}
	}
	if idx == -1 {
		rc.Drop(playerID, "power card not held")
		return
	}
	p.PowerCards = append(p.PowerCards[:idx], p.PowerCards[idx+1:]...)
	for i, e := range p.CurrentEffects {
		if e.Name == powerCard {
			p.CurrentEffects = append(p.CurrentEffects[:i], p.CurrentEffects[i+1:]...)
			break
		}
	}

	switch powerCard {
	case deck.PowerSkipTurn:
		uc.nextTurn(rc, room, g)
		if cur, ok := room.Players.Get(g.CurrentPlayerID); ok {
			rc.Broadcast(turnSkippedEvent{Type: "turn_skipped", CurrentPlayer: cur})
		}
	case deck.PowerReverseOrder:
		room.Players.Reverse()
		rc.Broadcast(turnOrderReversedEvent{
			Type:    "turn_order_reversed",
			Players: room.Players.Players(),
		})
	case deck.PowerForceDrink:
		rc.Broadcast(powerEffectEvent{
			Type:     "power_effect",
			Effect:   deck.PowerForceDrink,
			PlayerID: playerID,
		})
	case deck.PowerProtection:
		p.CurrentEffects = append(p.CurrentEffects, deck.Effect{
			Name:        deck.PowerProtection,
			Description: "Protected from next challenge",
		})
	case deck.PowerDrawTwo:
		uc.tryDraw(rc, room, g, playerID)
		uc.tryDraw(rc, room, g, playerID)
	}

	rc.Broadcast(powerUsedEvent{Type: "power_used", PlayerID: playerID, Power: powerCard})
}

func (uc *UltimateCup) completeChallenge(rc *Context, room *Room, g *cupGame, playerID string, success bool) {
	if g.Phase != cupChallenge {
		rc.Drop(playerID, "no challenge in progress")
		return
	}
	p, ok := room.Players.Get(playerID)
	if !ok {
		rc.Drop(playerID, "unknown player")
		return
	}

	if !success {
		if g.UltimateCup.IsActive {
			p.IsEliminated = true
			g.EliminatedIDs = append(g.EliminatedIDs, p.ID)
			if uc.checkGameEnd(rc, room, g) {
				return
			}
		} else {
			g.UltimateCup.Drinks++
		}
	}

	g.Phase = cupPlaying
	if g.UltimateCup.IsActive {
		g.Phase = cupUltimate
	}
	uc.nextTurn(rc, room, g)

	rc.Broadcast(challengeCompletedEvent{
		Type:     "challenge_completed",
		PlayerID: playerID,
		Success:  success,
		Phase:    g.Phase,
	})
}

func (uc *UltimateCup) finishMinigame(rc *Context, room *Room, g *cupGame, playerID string, results json.RawMessage) {
	if g.Phase != cupMinigame {
		rc.Drop(playerID, "no minigame in progress")
		return
	}
	p, ok := room.Players.Get(playerID)
	if !ok {
		rc.Drop(playerID, "unknown player")
		return
	}

	var outcome struct {
		Success bool `json:"success"`
	}
	_ = json.Unmarshal(results, &outcome)

	if !outcome.Success {
		if g.UltimateCup.IsActive {
			p.IsEliminated = true
			g.EliminatedIDs = append(g.EliminatedIDs, p.ID)
			if uc.checkGameEnd(rc, room, g) {
				return
			}
		} else {
			g.UltimateCup.Drinks++
		}
	}

	g.Phase = cupPlaying
	if g.UltimateCup.IsActive {
		g.Phase = cupUltimate
	}
	uc.nextTurn(rc, room, g)

	rc.Broadcast(minigameCompletedEvent{
		Type:     "minigame_completed",
		Results:  results,
		PlayerID: playerID,
	})
}

// pickFirstActive returns the first non-eliminated player in roster order,
// or nil when everyone is out.
func pickFirstActive(room *Room) *Player {
	for _, p := range room.Players.Players() {
		if !p.IsEliminated {
			return p
		}
	}
	return nil
}

// nextTurn advances to the next non-eliminated player in roster order.
func (*UltimateCup) nextTurn(rc *Context, room *Room, g *cupGame) {
	n := room.Players.Len()
	if n == 0 || pickFirstActive(room) == nil {
		return
	}

	i := room.Players.IndexOf(g.CurrentPlayerID)
	for step := 0; step < n; step++ {
		i = (i + 1) % n
		next := room.Players.At(i)
		if !next.IsEliminated {
			g.CurrentPlayerID = next.ID
			rc.Broadcast(turnChangedEvent{Type: "turn_changed", CurrentPlayer: next})
			return
		}
	}
}

// checkGameEnd fires the end event once zero or one players remain
// standing.
func (*UltimateCup) checkGameEnd(rc *Context, room *Room, g *cupGame) bool {
	var active []*Player
	for _, p := range room.Players.Players() {
		if !p.IsEliminated {
			active = append(active, p)
		}
	}
	if len(active) > 1 {
		return false
	}

	g.Phase = cupEnded
	var winner *Player
	if len(active) == 1 {
		winner = active[0]
	}
	eliminated := make([]*Player, 0, len(g.EliminatedIDs))
	for _, id := range g.EliminatedIDs {
		if p, ok := room.Players.Get(id); ok {
			eliminated = append(eliminated, p)
		}
	}
	rc.Broadcast(cupGameEndEvent{
		Type:              "game_end",
		Winner:            winner,
		EliminatedPlayers: eliminated,
	})
	return true
}

// OnLeave keeps the seat and flags it disconnected so the player can
// rejoin with the same id and pick their hand back up.
func (*UltimateCup) OnLeave(rc *Context, room *Room, p *Player) {
	p.Disconnected = true
	rc.Broadcast(playerLeftEvent{Type: "player_left", PlayerID: p.ID})
}
