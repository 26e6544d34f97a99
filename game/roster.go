package game

import "encoding/json"

// Roster is an insertion-ordered, id-keyed player collection. It replaces
// the two separately mutated player lists the naive design keeps on Room
// and Game, so there is exactly one place a player can be added or removed.
// It serializes as the plain player array the wire format expects.
type Roster struct {
	order []string
	byID  map[string]*Player
}

func NewRoster() *Roster {
	return &Roster{
		byID: make(map[string]*Player),
	}
}

// Add appends p in insertion order. Returns false if the id is taken.
func (r *Roster) Add(p *Player) bool {
	if _, exists := r.byID[p.ID]; exists {
		return false
	}
	r.order = append(r.order, p.ID)
	r.byID[p.ID] = p
	return true
}

func (r *Roster) Get(id string) (*Player, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Remove deletes the player, preserving the order of the rest.
func (r *Roster) Remove(id string) bool {
	if _, exists := r.byID[id]; !exists {
		return false
	}
	delete(r.byID, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Roster) Len() int {
	return len(r.order)
}

// Players returns the players in insertion order. The slice is a copy; the
// players are not.
func (r *Roster) Players() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// At returns the player at position i in insertion order.
func (r *Roster) At(i int) *Player {
	return r.byID[r.order[i]]
}

// IndexOf returns the player's position, or -1.
func (r *Roster) IndexOf(id string) int {
	for i, pid := range r.order {
		if pid == id {
			return i
		}
	}
	return -1
}

// Reverse flips the turn order in place.
func (r *Roster) Reverse() {
	for i, j := 0, len(r.order)-1; i < j; i, j = i+1, j-1 {
		r.order[i], r.order[j] = r.order[j], r.order[i]
	}
}

// RotateTo rotates the order so the given player is first. No-op if the id
// is not present.
func (r *Roster) RotateTo(id string) {
	i := r.IndexOf(id)
	if i <= 0 {
		return
	}
	r.order = append(r.order[i:], r.order[:i]...)
}

func (r *Roster) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Players())
}

func (r *Roster) UnmarshalJSON(data []byte) error {
	var players []*Player
	if err := json.Unmarshal(data, &players); err != nil {
		return err
	}
	r.order = nil
	r.byID = make(map[string]*Player, len(players))
	for _, p := range players {
		r.Add(p)
	}
	return nil
}
