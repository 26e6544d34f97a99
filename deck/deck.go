// Package deck holds the UltimateCup card pool: a fixed, fully enumerated
// card set shuffled once at construction and drawn from the top.
package deck

import (
	"encoding/json"
	"math/rand"
)

type CardType string

const (
	TypeKing      CardType = "king"
	TypePower     CardType = "power"
	TypeChallenge CardType = "challenge"
	TypeMinigame  CardType = "minigame"
)

type Effect struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Card struct {
	Type    CardType `json:"type"`
	Content string   `json:"content"`
	Effect  *Effect  `json:"effect,omitempty"`
}

// Deck is an ordered, mutable draw pile. It serializes as a plain card
// array so persisted game state keeps the original wire layout.
type Deck struct {
	cards []Card
}

// NewShuffled builds the full card set and shuffles it with rng.
func NewShuffled(rng *rand.Rand) *Deck {
	d := &Deck{cards: fullCardSet()}
	d.shuffle(rng)
	return d
}

// shuffle is an in-place backward-pass Fisher-Yates permutation.
func (d *Deck) shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the last card. The second return is false when
// the deck is exhausted.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}

// RemainingOfType counts cards of the given type still in the pile.
func (d *Deck) RemainingOfType(t CardType) int {
	n := 0
	for _, c := range d.cards {
		if c.Type == t {
			n++
		}
	}
	return n
}

func (d *Deck) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.cards)
}

func (d *Deck) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.cards)
}
