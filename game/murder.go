package game

import "encoding/json"

const (
	murderVoting    = "voting"
	murderMurdering = "murder"
)

// murderGame tracks the accusation cycle: living players vote on a suspect;
// a wrong accusation costs the accused their life and hands the murderer a
// free kill, then voting resumes.
type murderGame struct {
	Round         int      `json:"currentRound"`
	Phase         string   `json:"phase"`
	MurdererID    string   `json:"murdererId,omitempty"`
	Votes         *Ballot  `json:"votes"`
	EliminatedIDs []string `json:"eliminatedPlayers"`
	VictimIDs     []string `json:"victims"`
}

func (g *murderGame) CurrentPhase() string { return g.Phase }

// Murder is the secret-murderer deduction ruleset.
type Murder struct{}

func NewMurder() *Murder { return &Murder{} }

func (*Murder) Kind() string { return "murder" }

func (*Murder) NewGame() GameData {
	return &murderGame{Phase: phaseWaiting, Votes: NewBallot()}
}

func (*Murder) NewPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name, IsAlive: true}
}

func (*Murder) RejectsDuplicateName() bool { return false }

func (*Murder) OnJoin(rc *Context, room *Room, p *Player) {
	rc.Broadcast(newPlayersList(room))
}

// StartRound begins a fresh game: everyone back alive, one secret murderer.
func (*Murder) StartRound(rc *Context, room *Room) {
	g := room.Game.(*murderGame)

	for _, p := range room.Players.Players() {
		p.IsAlive = true
		p.IsMurderer = false
	}
	g.Votes.Clear()
	g.EliminatedIDs = nil
	g.VictimIDs = nil

	murderer := pickPlayer(rc.Rand(), room)
	murderer.IsMurderer = true
	g.MurdererID = murderer.ID
	g.Phase = murderVoting
	g.Round = 1

	rc.Broadcast(murderGameStartEvent{
		Type:  "game_start",
		Round: g.Round,
		Phase: g.Phase,
	})
	rc.Send(murderer.ID, youAreMurdererEvent{Type: "you_are_murderer"})
}

func (m *Murder) OnMessage(rc *Context, room *Room, playerID, msgType string, payload json.RawMessage) {
	g := room.Game.(*murderGame)

	switch msgType {
	case "vote":
		var msg struct {
			VotedPlayerID string `json:"votedPlayerId"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if g.Phase != murderVoting {
			rc.Drop(playerID, "not in voting phase")
			return
		}
		voter, ok := room.Players.Get(playerID)
		if !ok || !voter.IsAlive {
			rc.Drop(playerID, "voter not alive")
			return
		}
		voted, ok := room.Players.Get(msg.VotedPlayerID)
		if !ok || !voted.IsAlive {
			rc.Drop(playerID, "voted player not alive")
			return
		}

		g.Votes.Cast(playerID, msg.VotedPlayerID)
		if g.Votes.Len() == countAlive(room) {
			m.resolveVoting(rc, room, g)
		}

	case "murder":
		var msg struct {
			TargetPlayerID string `json:"targetPlayerId"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if g.Phase != murderMurdering {
			rc.Drop(playerID, "not in murder phase")
			return
		}
		if g.MurdererID != playerID {
			rc.Drop(playerID, "not the murderer")
			return
		}
		target, ok := room.Players.Get(msg.TargetPlayerID)
		if !ok || !target.IsAlive {
			rc.Drop(playerID, "target not alive")
			return
		}

		target.IsAlive = false
		g.VictimIDs = append(g.VictimIDs, target.ID)
		g.EliminatedIDs = append(g.EliminatedIDs, target.ID)

		rc.Broadcast(playerEliminatedEvent{
			Type:     "player_eliminated",
			PlayerID: target.ID,
			Reason:   "murdered",
		})

		if m.checkGameEnd(rc, room, g) {
			return
		}

		g.Phase = murderVoting
		g.Round++
		g.Votes.Clear()
		rc.Broadcast(murderRoundStartEvent{
			Type:  "round_start",
			Round: g.Round,
			Phase: g.Phase,
		})

	default:
		rc.Drop(playerID, "unknown message type")
	}
}

// resolveVoting fires once every living player has voted. The accused is
// the plurality pick with first-to-reach-max tie-breaking (see Ballot).
func (m *Murder) resolveVoting(rc *Context, room *Room, g *murderGame) {
	accusedID := g.Votes.Plurality()
	accused, ok := room.Players.Get(accusedID)
	if !ok {
		return
	}

	rc.Broadcast(murderVotingResultsEvent{
		Type:      "voting_results",
		AccusedID: accused.ID,
		Tally:     g.Votes.Tally(),
	})

	if accused.IsMurderer {
		m.endGame(rc, room, g, "players")
		return
	}

	accused.IsAlive = false
	g.EliminatedIDs = append(g.EliminatedIDs, accused.ID)
	rc.Broadcast(playerEliminatedEvent{
		Type:     "player_eliminated",
		PlayerID: accused.ID,
		Reason:   "wrong_accusation",
	})

	if m.checkGameEnd(rc, room, g) {
		return
	}

	g.Phase = murderMurdering
	rc.Broadcast(phaseChangeEvent{Type: "phase_change", Phase: g.Phase})
}

// checkGameEnd reports whether the murderer has won: no living
// non-murderer remains.
func (m *Murder) checkGameEnd(rc *Context, room *Room, g *murderGame) bool {
	for _, p := range room.Players.Players() {
		if p.IsAlive && !p.IsMurderer {
			return false
		}
	}
	m.endGame(rc, room, g, "murderer")
	return true
}

// endGame announces the winner and drops back to waiting. Ready flags
// clear so the next game needs everyone to ready up again.
func (*Murder) endGame(rc *Context, room *Room, g *murderGame, winner string) {
	var murderer *Player
	if p, ok := room.Players.Get(g.MurdererID); ok {
		murderer = p
	}
	rc.Broadcast(murderGameEndEvent{
		Type:     "game_end",
		Winner:   winner,
		Murderer: murderer,
	})

	g.Phase = phaseWaiting
	for _, p := range room.Players.Players() {
		p.Ready = false
	}
}

func (*Murder) OnLeave(rc *Context, room *Room, p *Player) {
	room.Players.Remove(p.ID)
	if room.Players.Len() > 0 {
		rc.Broadcast(playerLeftEvent{Type: "player_left", PlayerID: p.ID})
	}
}

func countAlive(room *Room) int {
	n := 0
	for _, p := range room.Players.Players() {
		if p.IsAlive {
			n++
		}
	}
	return n
}
