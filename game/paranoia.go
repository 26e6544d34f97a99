package game

import (
	"encoding/json"
	"time"
)

const (
	paranoiaAnswering = "answering"
	paranoiaFlipping  = "flipping"
	paranoiaRevealing = "revealing"
)

// narrationDelay is how long a revealed result stays on screen before the
// round resets and players have to ready up again.
const narrationDelay = 5 * time.Second

// paranoiaGame is the round state for the whisper-question game: one player
// is secretly asked a question, answers with another player's name, and a
// coin flip decides whether the room gets to hear the question.
type paranoiaGame struct {
	CurrentRound    int    `json:"currentRound"`
	Status          string `json:"status"`
	CurrentPlayerID string `json:"currentPlayerId,omitempty"`
	QuestionAskerID string `json:"questionAskerId,omitempty"`
	CurrentQuestion string `json:"currentQuestion,omitempty"`
	CurrentAnswerID string `json:"currentAnswerId,omitempty"`
	CoinFlipperID   string `json:"coinFlipperId,omitempty"`
}

func (g *paranoiaGame) CurrentPhase() string { return g.Status }

// Paranoia is the whisper-question ruleset.
type Paranoia struct{}

func NewParanoia() *Paranoia { return &Paranoia{} }

func (*Paranoia) Kind() string { return "paranoia" }

func (*Paranoia) NewGame() GameData {
	return &paranoiaGame{Status: phaseWaiting}
}

func (*Paranoia) NewPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name}
}

func (*Paranoia) RejectsDuplicateName() bool { return false }

func (*Paranoia) OnJoin(rc *Context, room *Room, p *Player) {
	rc.Broadcast(playerJoinedEvent{Type: "player_joined", Player: p}, p.ID)
}

// StartRound picks the answerer and a distinct asker. The flip needs a
// third player distinct from both, so rounds below three players never
// start.
func (*Paranoia) StartRound(rc *Context, room *Room) {
	if room.Players.Len() < 3 {
		rc.Broadcast(newErrorEvent("not_enough_players"))
		return
	}
	g := room.Game.(*paranoiaGame)

	answerer := pickPlayer(rc.Rand(), room)
	asker := pickPlayer(rc.Rand(), room, answerer.ID)

	g.CurrentPlayerID = answerer.ID
	g.QuestionAskerID = asker.ID
	g.CurrentRound++
	g.Status = paranoiaAnswering

	rc.Broadcast(paranoiaRoundStartEvent{
		Type:          "round_start",
		CurrentPlayer: answerer,
		QuestionAsker: asker,
		Round:         g.CurrentRound,
	})
}

func (pa *Paranoia) OnMessage(rc *Context, room *Room, playerID, msgType string, payload json.RawMessage) {
	g := room.Game.(*paranoiaGame)

	switch msgType {
	case "submit_question":
		var msg struct {
			Question string `json:"question"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if g.QuestionAskerID != playerID {
			rc.Drop(playerID, "not the question asker")
			return
		}
		g.CurrentQuestion = msg.Question
		rc.Broadcast(questionSubmittedEvent{Type: "question_submitted", Question: msg.Question})

	case "submit_answer":
		var msg struct {
			Answer string `json:"answer"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if g.CurrentPlayerID != playerID {
			rc.Drop(playerID, "not the current player")
			return
		}
		answer, ok := room.Players.Get(msg.Answer)
		if !ok {
			rc.Drop(playerID, "answer names an unknown player")
			return
		}

		g.CurrentAnswerID = answer.ID
		g.Status = paranoiaFlipping

		flipper := pickPlayer(rc.Rand(), room, playerID, answer.ID)
		if flipper == nil {
			rc.Drop(playerID, "no eligible coin flipper")
			return
		}
		g.CoinFlipperID = flipper.ID

		rc.Broadcast(answerSubmittedEvent{
			Type:        "answer_submitted",
			Answer:      answer,
			CoinFlipper: flipper,
		})

	case "flip_coin":
		if g.CoinFlipperID != playerID {
			rc.Drop(playerID, "not the coin flipper")
			return
		}
		pa.flipCoin(rc, room, g)

	default:
		rc.Drop(playerID, "unknown message type")
	}
}

// flipCoin reveals the question on heads, then resets the round after the
// narration delay so everyone has to ready up again.
func (*Paranoia) flipCoin(rc *Context, room *Room, g *paranoiaGame) {
	heads := rc.Rand().Intn(2) == 0
	g.Status = paranoiaRevealing

	var question *string
	if heads {
		q := g.CurrentQuestion
		question = &q
	}
	var answer *Player
	if p, ok := room.Players.Get(g.CurrentAnswerID); ok {
		answer = p
	}

	rc.Broadcast(coinFlipEvent{
		Type:     "coin_flip",
		Result:   heads,
		Question: question,
		Answer:   answer,
	})

	rc.After(narrationDelay, func(rc *Context) {
		g.CurrentQuestion = ""
		g.CurrentAnswerID = ""
		g.CoinFlipperID = ""
		g.QuestionAskerID = ""
		g.CurrentPlayerID = ""
		g.Status = phaseWaiting

		for _, p := range rc.room.Players.Players() {
			p.Ready = false
		}
		rc.Broadcast(roundEndEvent{Type: "round_end", Players: rc.room.Players.Players()})
	})
}

func (*Paranoia) OnLeave(rc *Context, room *Room, p *Player) {
	room.Players.Remove(p.ID)
	if room.Players.Len() > 0 {
		rc.Broadcast(playerLeftEvent{Type: "player_left", PlayerID: p.ID})
	}
}
