package game

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solaris-soft/Party-games/deck"
)

func cupEnv(t *testing.T, playerCount int) *testEnv {
	t.Helper()
	env := newTestEnv(t, NewUltimateCup())
	for i := 1; i <= playerCount; i++ {
		env.join("r1", fmt.Sprintf("p%d", i), fmt.Sprintf("player-%d", i))
	}
	for i := 1; i <= playerCount; i++ {
		env.ready("r1", fmt.Sprintf("p%d", i))
	}
	env.drainAll()
	return env
}

// craftDeck builds a draw pile from its wire form, which the tests use to
// stage exact card sequences. Cards draw from the end of the array.
func craftDeck(t *testing.T, cardsJSON string) *deck.Deck {
	t.Helper()
	d := &deck.Deck{}
	require.NoError(t, json.Unmarshal([]byte(cardsJSON), d))
	return d
}

func TestCupStartDealsFreshGame(t *testing.T) {
	env := cupEnv(t, 3)

	room := env.room("r1")
	g := room.Game.(*cupGame)
	assert.Equal(t, cupPlaying, g.Phase)
	assert.Equal(t, "p1", g.CurrentPlayerID)
	assert.Equal(t, 19, g.Deck.Remaining())
	assert.Equal(t, 0, g.UltimateCup.Drinks)
	assert.False(t, g.UltimateCup.IsActive)
}

func TestCupDrawOutOfTurnDropped(t *testing.T) {
	env := cupEnv(t, 3)
	g := env.room("r1").Game.(*cupGame)

	env.send("r1", "p2", `{"type":"draw_card"}`)

	assert.Equal(t, 19, g.Deck.Remaining())
	assert.Empty(t, env.frames("p1"))
}

func TestCupDeckExhaustionLeavesStateUntouched(t *testing.T) {
	env := cupEnv(t, 2)
	g := env.room("r1").Game.(*cupGame)
	g.Deck = &deck.Deck{}
	g.UltimateCup.Drinks = 2

	env.send("r1", "p1", `{"type":"draw_card"}`)

	errFrame := findFrame(env.frames("p2"), "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "no_cards_left", errFrame["error"])
	assert.Equal(t, cupPlaying, g.Phase)
	assert.Equal(t, 2, g.UltimateCup.Drinks)
	assert.Equal(t, "p1", g.CurrentPlayerID)
}

func TestCupLastKingActivatesUltimatePhase(t *testing.T) {
	env := cupEnv(t, 3)
	g := env.room("r1").Game.(*cupGame)

	g.Deck = craftDeck(t, `[{"type":"king","content":"Add drinks to the Ultimate Cup","effect":{"name":"add_drink","description":"Add drinks to the Ultimate Cup"}}]`)
	g.UltimateCup.Drinks = 3
	g.CurrentPlayerID = "p2"

	env.send("r1", "p2", `{"type":"draw_card"}`)

	frames := env.frames("p3")
	activated := findFrame(frames, "ultimate_cup_activated")
	require.NotNil(t, activated)
	assert.Equal(t, float64(4), activated["drinks"])

	// Turn order restarts at the player who drew the last king.
	started := findFrame(frames, "ultimate_cup_phase_started")
	require.NotNil(t, started)
	assert.Equal(t, "p2", started["currentPlayer"].(map[string]any)["id"])
	assert.Equal(t, []string{"p2", "p3", "p1"}, rosterIDs(env.room("r1").Players))

	assert.Equal(t, cupUltimate, g.Phase)
	assert.True(t, g.UltimateCup.IsActive)
	assert.Equal(t, "p2", g.CurrentPlayerID)
}

func TestCupNonFinalKingAdvancesTurn(t *testing.T) {
	env := cupEnv(t, 3)
	g := env.room("r1").Game.(*cupGame)

	king := `{"type":"king","content":"Add drinks to the Ultimate Cup","effect":{"name":"add_drink","description":"Add drinks to the Ultimate Cup"}}`
	g.Deck = craftDeck(t, `[`+king+`,`+king+`]`)

	env.send("r1", "p1", `{"type":"draw_card"}`)

	frames := env.frames("p2")
	assert.NotNil(t, findFrame(frames, "card_drawn"))
	assert.Nil(t, findFrame(frames, "ultimate_cup_activated"))
	turn := findFrame(frames, "turn_changed")
	require.NotNil(t, turn)
	assert.Equal(t, "p2", turn["currentPlayer"].(map[string]any)["id"])
	assert.Equal(t, 1, g.UltimateCup.Drinks)
	assert.Equal(t, cupPlaying, g.Phase)
}

func TestCupPowerDrawGrantsCardAndAdvances(t *testing.T) {
	env := cupEnv(t, 2)
	g := env.room("r1").Game.(*cupGame)

	g.Deck = craftDeck(t, `[{"type":"power","content":"Skip next turn","effect":{"name":"skip_turn","description":"Skip next turn"}}]`)

	env.send("r1", "p1", `{"type":"draw_card"}`)

	frames := env.frames("p2")
	received := findFrame(frames, "power_card_received")
	require.NotNil(t, received)
	assert.Equal(t, "p1", received["playerId"])
	assert.Equal(t, "skip_turn", received["power"].(map[string]any)["name"])

	p1, _ := env.room("r1").Players.Get("p1")
	assert.Equal(t, []string{"skip_turn"}, p1.PowerCards)
	assert.Equal(t, "p2", g.CurrentPlayerID)
}

func TestCupChallengeFailureAddsDrinkBeforeUltimate(t *testing.T) {
	env := cupEnv(t, 3)
	room := env.room("r1")
	g := room.Game.(*cupGame)

	g.Deck = craftDeck(t, `[{"type":"challenge","content":"Complete a dare","effect":{"name":"dare","description":"Complete a dare"}}]`)
	env.send("r1", "p1", `{"type":"draw_card"}`)

	started := findFrame(env.frames("p2"), "challenge_started")
	require.NotNil(t, started)
	assert.Equal(t, "p1", started["playerId"])
	assert.Equal(t, "Complete a dare", started["challenge"])
	require.Equal(t, cupChallenge, g.Phase)
	env.drainAll()

	env.send("r1", "p1", `{"type":"complete_challenge","success":false}`)

	frames := env.frames("p2")
	completed := findFrame(frames, "challenge_completed")
	require.NotNil(t, completed)
	assert.Equal(t, false, completed["success"])
	assert.Equal(t, cupPlaying, completed["phase"])

	assert.Equal(t, 1, g.UltimateCup.Drinks)
	assert.Equal(t, "p2", g.CurrentPlayerID)
	p1, _ := room.Players.Get("p1")
	assert.False(t, p1.IsEliminated)
}

func TestCupChallengeFailureEliminatesInUltimate(t *testing.T) {
	env := cupEnv(t, 3)
	room := env.room("r1")
	g := room.Game.(*cupGame)
	g.UltimateCup.IsActive = true
	g.Phase = cupChallenge
	env.drainAll()

	env.send("r1", "p1", `{"type":"complete_challenge","success":false}`)

	p1, _ := room.Players.Get("p1")
	assert.True(t, p1.IsEliminated)
	assert.Equal(t, []string{"p1"}, g.EliminatedIDs)

	// Two players still stand, so play continues in the terminal phase.
	frames := env.frames("p2")
	assert.Nil(t, findFrame(frames, "game_end"))
	completed := findFrame(frames, "challenge_completed")
	require.NotNil(t, completed)
	assert.Equal(t, cupUltimate, completed["phase"])
	assert.Equal(t, "p2", g.CurrentPlayerID)
}

func TestCupLastPlayerStandingWins(t *testing.T) {
	env := cupEnv(t, 2)
	room := env.room("r1")
	g := room.Game.(*cupGame)
	g.UltimateCup.IsActive = true
	g.Phase = cupChallenge
	env.drainAll()

	env.send("r1", "p1", `{"type":"complete_challenge","success":false}`)

	end := findFrame(env.frames("p2"), "game_end")
	require.NotNil(t, end)
	assert.Equal(t, "p2", end["winner"].(map[string]any)["id"])
	eliminated := end["eliminatedPlayers"].([]any)
	require.Len(t, eliminated, 1)
	assert.Equal(t, "p1", eliminated[0].(map[string]any)["id"])
	assert.Equal(t, cupEnded, g.Phase)
}

func TestCupProtectionConsumesChallenge(t *testing.T) {
	env := cupEnv(t, 2)
	room := env.room("r1")
	g := room.Game.(*cupGame)
	p1, _ := room.Players.Get("p1")
	p1.CurrentEffects = append(p1.CurrentEffects, deck.Effect{Name: deck.PowerProtection, Description: "Protected from next challenge"})

	g.Deck = craftDeck(t, `[{"type":"challenge","content":"Take a shot","effect":{"name":"shot","description":"Take a shot or drink"}}]`)
	env.send("r1", "p1", `{"type":"draw_card"}`)

	frames := env.frames("p2")
	used := findFrame(frames, "protection_used")
	require.NotNil(t, used)
	assert.Equal(t, "p1", used["playerId"])
	assert.Nil(t, findFrame(frames, "challenge_started"))
	assert.NotNil(t, findFrame(frames, "turn_changed"))

	assert.Empty(t, p1.CurrentEffects)
	assert.Equal(t, cupPlaying, g.Phase)
	assert.Equal(t, "p2", g.CurrentPlayerID)
}

func TestCupMinigameFlow(t *testing.T) {
	env := cupEnv(t, 3)
	room := env.room("r1")
	g := room.Game.(*cupGame)

	g.Deck = craftDeck(t, `[{"type":"minigame","content":"Never have I ever","effect":{"name":"never_have_i_ever","description":"Play a round of Never Have I Ever"}}]`)
	env.send("r1", "p1", `{"type":"draw_card"}`)

	started := findFrame(env.frames("p2"), "minigame_started")
	require.NotNil(t, started)
	assert.Equal(t, "Never have I ever", started["minigame"])
	require.Equal(t, cupMinigame, g.Phase)
	env.drainAll()

	env.send("r1", "p1", `{"type":"finish_minigame","results":{"success":false,"loser":"p1"}}`)

	frames := env.frames("p3")
	completed := findFrame(frames, "minigame_completed")
	require.NotNil(t, completed)
	results := completed["results"].(map[string]any)
	assert.Equal(t, "p1", results["loser"])

	assert.Equal(t, 1, g.UltimateCup.Drinks)
	assert.Equal(t, cupPlaying, g.Phase)
	assert.Equal(t, "p2", g.CurrentPlayerID)
}

func TestCupUsePowerSkipTurn(t *testing.T) {
	env := cupEnv(t, 3)
	room := env.room("r1")
	g := room.Game.(*cupGame)
	p1, _ := room.Players.Get("p1")
	p1.PowerCards = []string{deck.PowerSkipTurn}
	p1.CurrentEffects = []deck.Effect{{Name: deck.PowerSkipTurn, Description: "Skip next turn"}}
	env.drainAll()

	env.send("r1", "p1", `{"type":"use_power","powerCard":"skip_turn"}`)

	frames := env.frames("p2")
	skipped := findFrame(frames, "turn_skipped")
	require.NotNil(t, skipped)
	assert.NotNil(t, findFrame(frames, "power_used"))

	assert.Empty(t, p1.PowerCards)
	assert.Empty(t, p1.CurrentEffects)
	assert.Equal(t, "p2", g.CurrentPlayerID)
}

func TestCupUsePowerReverseOrder(t *testing.T) {
	env := cupEnv(t, 3)
	room := env.room("r1")
	p2, _ := room.Players.Get("p2")
	p2.PowerCards = []string{deck.PowerReverseOrder}
	env.drainAll()

	env.send("r1", "p2", `{"type":"use_power","powerCard":"reverse_order"}`)

	reversed := findFrame(env.frames("p1"), "turn_order_reversed")
	require.NotNil(t, reversed)
	assert.Equal(t, []string{"p3", "p2", "p1"}, rosterIDs(room.Players))
}

func TestCupUsePowerProtectionBanksEffect(t *testing.T) {
	env := cupEnv(t, 2)
	room := env.room("r1")
	p1, _ := room.Players.Get("p1")
	p1.PowerCards = []string{deck.PowerProtection}
	p1.CurrentEffects = []deck.Effect{{Name: deck.PowerProtection, Description: "Protection from next challenge"}}
	env.drainAll()

	env.send("r1", "p1", `{"type":"use_power","powerCard":"protection"}`)

	assert.Empty(t, p1.PowerCards)
	require.Len(t, p1.CurrentEffects, 1)
	assert.Equal(t, deck.PowerProtection, p1.CurrentEffects[0].Name)
}

func TestCupDrawTwoOutOfTurnDrawsNothing(t *testing.T) {
	env := cupEnv(t, 3)
	room := env.room("r1")
	g := room.Game.(*cupGame)
	p2, _ := room.Players.Get("p2")
	p2.PowerCards = []string{deck.PowerDrawTwo}
	env.drainAll()

	env.send("r1", "p2", `{"type":"use_power","powerCard":"draw_two"}`)

	frames := env.frames("p1")
	assert.Nil(t, findFrame(frames, "card_drawn"))
	assert.NotNil(t, findFrame(frames, "power_used"))
	assert.Equal(t, 19, g.Deck.Remaining())
	assert.Equal(t, "p1", g.CurrentPlayerID)
}

func TestCupDrawTwoStopsWhenFirstDrawOpensChallenge(t *testing.T) {
	env := cupEnv(t, 3)
	room := env.room("r1")
	g := room.Game.(*cupGame)
	p1, _ := room.Players.Get("p1")
	p1.PowerCards = []string{deck.PowerDrawTwo}
	g.Deck = craftDeck(t, `[
		{"type":"king","content":"King!","effect":{"name":"add_drink","description":"Add a drink to the Ultimate Cup"}},
		{"type":"challenge","content":"Take a shot","effect":{"name":"shot","description":"Take a shot or drink"}}
	]`)
	env.drainAll()

	env.send("r1", "p1", `{"type":"use_power","powerCard":"draw_two"}`)

	frames := env.frames("p2")
	drawn := 0
	for _, ft := range frameTypes(frames) {
		if ft == "card_drawn" {
			drawn++
		}
	}
	assert.Equal(t, 1, drawn)
	assert.Equal(t, cupChallenge, g.Phase)
	assert.Equal(t, 1, g.Deck.Remaining())
}

func TestCupUsePowerNotHeldDropped(t *testing.T) {
	env := cupEnv(t, 2)
	env.drainAll()

	env.send("r1", "p1", `{"type":"use_power","powerCard":"skip_turn"}`)

	assert.Empty(t, env.frames("p2"))
}

func TestCupTurnAdvanceSkipsEliminated(t *testing.T) {
	env := cupEnv(t, 3)
	room := env.room("r1")
	g := room.Game.(*cupGame)
	p2, _ := room.Players.Get("p2")
	p2.IsEliminated = true

	uc := NewUltimateCup()
	rc := &Context{eng: env.eng, room: room}
	uc.nextTurn(rc, room, g)

	assert.Equal(t, "p3", g.CurrentPlayerID)
}

// Plays a seeded game start to Ultimate Cup activation, succeeding every
// challenge and minigame along the way, to cover the real deck end to end.
func TestCupPlayThroughToUltimate(t *testing.T) {
	env := cupEnv(t, 3)
	room := env.room("r1")
	g := room.Game.(*cupGame)

	for turns := 0; !g.UltimateCup.IsActive; turns++ {
		require.Less(t, turns, 50, "ultimate cup never activated")

		drawer := g.CurrentPlayerID
		env.send("r1", drawer, `{"type":"draw_card"}`)

		switch g.Phase {
		case cupChallenge:
			env.send("r1", drawer, `{"type":"complete_challenge","success":true}`)
		case cupMinigame:
			env.send("r1", drawer, `{"type":"finish_minigame","results":{"success":true}}`)
		}
	}

	assert.Equal(t, cupUltimate, g.Phase)
	assert.Equal(t, 4, g.UltimateCup.Drinks)
	assert.Equal(t, 0, g.Deck.RemainingOfType(deck.TypeKing))
	assert.NotNil(t, findFrame(env.frames("p3"), "ultimate_cup_activated"))
}
