package game

import "math/rand"

// pickPlayer draws uniformly from the room's players, skipping excluded
// ids. Filtering the candidate set first (instead of rejection-sampling)
// keeps the draw uniform and makes termination structural: an empty
// eligible set yields nil, which callers must guard against before
// starting a round that needs the pick.
func pickPlayer(rng *rand.Rand, room *Room, exclude ...string) *Player {
	return pickPlayerFunc(rng, room, func(p *Player) bool {
		for _, id := range exclude {
			if p.ID == id {
				return false
			}
		}
		return true
	})
}

// pickPlayerFunc draws uniformly from the players satisfying keep.
func pickPlayerFunc(rng *rand.Rand, room *Room, keep func(*Player) bool) *Player {
	candidates := make([]*Player, 0, room.Players.Len())
	for _, p := range room.Players.Players() {
		if keep(p) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rng.Intn(len(candidates))]
}
