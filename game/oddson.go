package game

import (
	"encoding/json"

	"github.com/google/uuid"
)

const (
	oddsOnVoting = "voting"
	oddsOnAnswer = "answer"
)

// secret is one anonymous confession in the shared pool. The author is
// only revealed when the vote on it resolves.
type secret struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	AuthorID string `json:"authorId"`
}

// oddsOnGame runs guess-the-author rounds over a pool of player-submitted
// secrets until the pool runs dry.
type oddsOnGame struct {
	Phase         string   `json:"phase"`
	Round         int      `json:"currentRound"`
	Secrets       []secret `json:"secrets"`
	CurrentSecret *secret  `json:"currentSecret,omitempty"`
	Votes         *Ballot  `json:"votes"`
}

func (g *oddsOnGame) CurrentPhase() string { return g.Phase }

// OddsOn is the anonymous-secrets guessing ruleset.
type OddsOn struct{}

func NewOddsOn() *OddsOn { return &OddsOn{} }

func (*OddsOn) Kind() string { return "oddson" }

func (*OddsOn) NewGame() GameData {
	return &oddsOnGame{Phase: phaseWaiting, Votes: NewBallot()}
}

func (*OddsOn) NewPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name}
}

func (*OddsOn) RejectsDuplicateName() bool { return true }

func (*OddsOn) OnJoin(rc *Context, room *Room, p *Player) {
	rc.Broadcast(newPlayersList(room))
}

// StartRound opens a round only when every player has banked at least one
// secret and the pool still has one to draw. Ready flags alone are not
// enough: a round with nothing to guess at is meaningless.
func (*OddsOn) StartRound(rc *Context, room *Room) {
	g := room.Game.(*oddsOnGame)
	if len(g.Secrets) == 0 {
		return
	}
	for _, p := range room.Players.Players() {
		if p.SecretsSubmitted == 0 {
			return
		}
	}

	i := rc.Rand().Intn(len(g.Secrets))
	s := g.Secrets[i]
	g.Secrets = append(g.Secrets[:i], g.Secrets[i+1:]...)

	g.CurrentSecret = &s
	g.Votes.Clear()
	g.Round++
	g.Phase = oddsOnVoting

	rc.Broadcast(oddsOnRoundStartEvent{
		Type:   "round_start",
		Secret: s.Text,
		Round:  g.Round,
	})
}

func (o *OddsOn) OnMessage(rc *Context, room *Room, playerID, msgType string, payload json.RawMessage) {
	g := room.Game.(*oddsOnGame)

	switch msgType {
	case "submit_secret":
		var msg struct {
			Secret string `json:"secret"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if g.Phase != phaseWaiting {
			rc.Drop(playerID, "secrets only accepted between rounds")
			return
		}
		p, ok := room.Players.Get(playerID)
		if !ok || msg.Secret == "" {
			rc.Drop(playerID, "empty secret")
			return
		}

		g.Secrets = append(g.Secrets, secret{
			ID:       uuid.NewString(),
			Text:     msg.Secret,
			AuthorID: playerID,
		})
		p.SecretsSubmitted++

		rc.Broadcast(secretSubmittedEvent{
			Type:          "secret_submitted",
			PlayerID:      playerID,
			SecretsInPool: len(g.Secrets),
		})

		// The ready gate may already be satisfied, with everyone waiting
		// on this one contribution.
		if allReady(room) {
			o.StartRound(rc, room)
		}

	case "vote":
		var msg struct {
			VotedPlayerID string `json:"votedPlayerId"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if g.Phase != oddsOnVoting {
			rc.Drop(playerID, "not in voting phase")
			return
		}
		if _, ok := room.Players.Get(playerID); !ok {
			rc.Drop(playerID, "unknown voter")
			return
		}
		if _, ok := room.Players.Get(msg.VotedPlayerID); !ok {
			rc.Drop(playerID, "vote names an unknown player")
			return
		}

		g.Votes.Cast(playerID, msg.VotedPlayerID)
		rc.Broadcast(playerVotedEvent{Type: "player_voted", PlayerID: playerID})

		if g.Votes.Len() == room.Players.Len() {
			o.resolveVoting(rc, room, g)
		}

	default:
		rc.Drop(playerID, "unknown message type")
	}
}

// resolveVoting reveals the author, compares them against the room's
// plurality pick, and after the narration delay either resets for the next
// round or ends the game when the pool is exhausted.
func (*OddsOn) resolveVoting(rc *Context, room *Room, g *oddsOnGame) {
	accusedID := g.Votes.Plurality()
	accused, _ := room.Players.Get(accusedID)
	author, _ := room.Players.Get(g.CurrentSecret.AuthorID)
	correct := accused != nil && author != nil && accused.ID == author.ID

	g.Phase = oddsOnAnswer
	rc.Broadcast(votingResultsEvent{
		Type:    "voting_results",
		Accused: accused,
		Author:  author,
		Correct: correct,
		Secret:  g.CurrentSecret.Text,
	})

	rc.After(narrationDelay, func(rc *Context) {
		g.CurrentSecret = nil
		g.Votes.Clear()
		g.Phase = phaseWaiting
		for _, p := range rc.room.Players.Players() {
			p.Ready = false
		}

		if len(g.Secrets) == 0 {
			rc.Broadcast(oddsOnGameEndEvent{Type: "game_end"})
			return
		}
		rc.Broadcast(roundEndEvent{Type: "round_end", Players: rc.room.Players.Players()})
	})
}

func (*OddsOn) OnLeave(rc *Context, room *Room, p *Player) {
	room.Players.Remove(p.ID)
	if room.Players.Len() > 0 {
		rc.Broadcast(playerLeftEvent{Type: "player_left", PlayerID: p.ID})
	}
}
