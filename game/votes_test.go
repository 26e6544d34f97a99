package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBallotCastReplacesInPlace(t *testing.T) {
	b := NewBallot()
	b.Cast("p1", "x")
	b.Cast("p2", "y")
	b.Cast("p1", "z")

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, map[string]int{"y": 1, "z": 1}, b.Tally())
}

// A 2-2 tie resolves to the candidate that reached the maximal count
// first in casting order: X's second vote arrives after Y's first, but X
// was the first to stand at two.
func TestBallotPluralityTieBreak(t *testing.T) {
	b := NewBallot()
	b.Cast("p1", "X")
	b.Cast("p2", "Y")
	b.Cast("p3", "X")
	b.Cast("p4", "Y")

	assert.Equal(t, "X", b.Plurality())
}

func TestBallotPluralityEmpty(t *testing.T) {
	assert.Equal(t, "", NewBallot().Plurality())
}

func TestBallotPluralityClearMajority(t *testing.T) {
	b := NewBallot()
	b.Cast("p1", "Y")
	b.Cast("p2", "X")
	b.Cast("p3", "X")

	assert.Equal(t, "X", b.Plurality())
}

func TestBallotJSONRoundTrip(t *testing.T) {
	b := NewBallot()
	b.Cast("p1", "X")
	b.Cast("p2", "Y")

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"voterId":"p1","votedPlayerId":"X"},{"voterId":"p2","votedPlayerId":"Y"}]`, string(data))

	var restored Ballot
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, b.Tally(), restored.Tally())
}

func TestBallotEmptyMarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(NewBallot())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

// The plurality winner always holds a maximal vote count, whatever the
// casting order and however often voters change their minds.
func TestBallotPluralityIsMaximalProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		voters := rapid.SliceOfNDistinct(rapid.StringMatching(`v[0-9]`), 1, 10, rapid.ID[string]).Draw(rt, "voters")
		candidates := []string{"a", "b", "c"}

		b := NewBallot()
		for _, v := range voters {
			b.Cast(v, candidates[rapid.IntRange(0, 2).Draw(rt, "choice")])
		}
		// Some voters revise their vote.
		for _, v := range voters {
			if rapid.Bool().Draw(rt, "revise") {
				b.Cast(v, candidates[rapid.IntRange(0, 2).Draw(rt, "newChoice")])
			}
		}

		winner := b.Plurality()
		tally := b.Tally()
		max := 0
		for _, n := range tally {
			if n > max {
				max = n
			}
		}
		if tally[winner] != max {
			rt.Fatalf("winner %q has %d votes, max is %d", winner, tally[winner], max)
		}
		if b.Len() != len(voters) {
			rt.Fatalf("ballot holds %d votes for %d voters", b.Len(), len(voters))
		}
	})
}
