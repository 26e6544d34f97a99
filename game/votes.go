package game

import "encoding/json"

// vote is one voter's current choice.
type vote struct {
	VoterID string `json:"voterId"`
	VotedID string `json:"votedPlayerId"`
}

// Ballot collects one vote per voter in insertion order. A re-vote replaces
// the voter's choice in its original position, so tallying order is stable.
type Ballot struct {
	votes []vote
}

func NewBallot() *Ballot {
	return &Ballot{}
}

// Cast records or replaces the voter's vote.
func (b *Ballot) Cast(voterID, votedID string) {
	for i := range b.votes {
		if b.votes[i].VoterID == voterID {
			b.votes[i].VotedID = votedID
			return
		}
	}
	b.votes = append(b.votes, vote{VoterID: voterID, VotedID: votedID})
}

func (b *Ballot) Len() int {
	return len(b.votes)
}

func (b *Ballot) Clear() {
	b.votes = nil
}

// Tally returns vote counts per candidate.
func (b *Ballot) Tally() map[string]int {
	counts := make(map[string]int, len(b.votes))
	for _, v := range b.votes {
		counts[v.VotedID]++
	}
	return counts
}

// Plurality returns the candidate with the most votes. Ties break
// deterministically: walking the ballot in insertion order, the winner is
// the first candidate to reach the maximal count. Returns "" on an empty
// ballot.
func (b *Ballot) Plurality() string {
	max := 0
	winner := ""
	counts := make(map[string]int, len(b.votes))
	for _, v := range b.votes {
		counts[v.VotedID]++
		if counts[v.VotedID] > max {
			max = counts[v.VotedID]
			winner = v.VotedID
		}
	}
	return winner
}

func (b *Ballot) MarshalJSON() ([]byte, error) {
	if b.votes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b.votes)
}

func (b *Ballot) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &b.votes)
}
