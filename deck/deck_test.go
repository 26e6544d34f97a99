package deck

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShuffledComposition(t *testing.T) {
	d := NewShuffled(rand.New(rand.NewSource(1)))

	assert.Equal(t, 19, d.Remaining())
	assert.Equal(t, 4, d.RemainingOfType(TypeKing))
	assert.Equal(t, 5, d.RemainingOfType(TypePower))
	assert.Equal(t, 5, d.RemainingOfType(TypeChallenge))
	assert.Equal(t, 5, d.RemainingOfType(TypeMinigame))
}

func TestDrawRemovesFromPile(t *testing.T) {
	d := NewShuffled(rand.New(rand.NewSource(1)))

	seen := map[string]int{}
	for i := 18; i >= 0; i-- {
		card, ok := d.Draw()
		require.True(t, ok)
		assert.Equal(t, i, d.Remaining())
		seen[string(card.Type)]++
	}

	assert.Equal(t, 4, seen["king"])
	assert.Equal(t, 5, seen["power"])
	assert.Equal(t, 5, seen["challenge"])
	assert.Equal(t, 5, seen["minigame"])
}

func TestDrawExhausted(t *testing.T) {
	d := &Deck{}

	card, ok := d.Draw()
	assert.False(t, ok)
	assert.Equal(t, Card{}, card)
	assert.Equal(t, 0, d.Remaining())
}

func TestShuffleDeterministicPerSeed(t *testing.T) {
	a := NewShuffled(rand.New(rand.NewSource(42)))
	b := NewShuffled(rand.New(rand.NewSource(42)))

	for a.Remaining() > 0 {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		assert.Equal(t, ca, cb)
	}
}

func TestPowerCardsCarryEffects(t *testing.T) {
	d := NewShuffled(rand.New(rand.NewSource(7)))

	powers := map[string]bool{}
	for {
		card, ok := d.Draw()
		if !ok {
			break
		}
		if card.Type == TypePower {
			require.NotNil(t, card.Effect)
			powers[card.Effect.Name] = true
		}
	}

	assert.Len(t, powers, 5)
	for _, name := range []string{PowerSkipTurn, PowerReverseOrder, PowerForceDrink, PowerProtection, PowerDrawTwo} {
		assert.True(t, powers[name], "missing power %q", name)
	}
}

func TestDeckJSONRoundTrip(t *testing.T) {
	d := NewShuffled(rand.New(rand.NewSource(3)))
	d.Draw()
	d.Draw()

	data, err := json.Marshal(d)
	require.NoError(t, err)
	// Serializes as a plain array, not a wrapper object.
	assert.Equal(t, byte('['), data[0])

	var restored Deck
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, d.Remaining(), restored.Remaining())
	assert.Equal(t, d.RemainingOfType(TypeKing), restored.RemainingOfType(TypeKing))
}
