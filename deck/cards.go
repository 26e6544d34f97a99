package deck

const (
	kingCount = 4

	PowerSkipTurn     = "skip_turn"
	PowerReverseOrder = "reverse_order"
	PowerForceDrink   = "force_drink"
	PowerProtection   = "protection"
	PowerDrawTwo      = "draw_two"
)

// fullCardSet enumerates every card in the game: 4 kings, 5 powers,
// 5 challenges and 5 minigames. Content is configuration, not logic.
func fullCardSet() []Card {
	cards := make([]Card, 0, 19)

	for i := 0; i < kingCount; i++ {
		cards = append(cards, Card{
			Type:    TypeKing,
			Content: "Add drinks to the Ultimate Cup",
			Effect:  &Effect{Name: "add_drink", Description: "Add drinks to the Ultimate Cup"},
		})
	}

	powers := []Effect{
		{Name: PowerSkipTurn, Description: "Skip next turn"},
		{Name: PowerReverseOrder, Description: "Reverse turn order"},
		{Name: PowerForceDrink, Description: "Force another player to drink"},
		{Name: PowerProtection, Description: "Protection from next challenge"},
		{Name: PowerDrawTwo, Description: "Draw two cards"},
	}
	for _, p := range powers {
		effect := p
		cards = append(cards, Card{Type: TypePower, Content: p.Description, Effect: &effect})
	}

	challenges := []Effect{
		{Name: "dare", Description: "Complete a dare"},
		{Name: "question", Description: "Answer a question"},
		{Name: "task", Description: "Perform a task"},
		{Name: "shot", Description: "Take a shot"},
		{Name: "laugh", Description: "Make someone laugh"},
	}
	for _, c := range challenges {
		effect := c
		cards = append(cards, Card{Type: TypeChallenge, Content: c.Description, Effect: &effect})
	}

	minigames := []Effect{
		{Name: "never_have_i_ever", Description: "Never Have I Ever"},
		{Name: "truth_or_dare", Description: "Truth or Dare"},
		{Name: "categories", Description: "Categories"},
		{Name: "word_association", Description: "Word Association"},
		{Name: "rhyme_time", Description: "Rhyme Time"},
	}
	for _, m := range minigames {
		effect := m
		cards = append(cards, Card{Type: TypeMinigame, Content: m.Description, Effect: &effect})
	}

	return cards
}
