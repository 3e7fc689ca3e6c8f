package game

import "github.com/google/uuid"

// Perception is a hint about what lies in a neighbouring room.
type Perception string

// Perceptions in the order they are reported.
const (
	Stench   Perception = "stench"   // the Wumpus is next door
	Breeze   Perception = "breeze"   // a pit is next door
	Chirp    Perception = "chirp"    // bats are next door
	Movement Perception = "movement" // another hunter is next door
)

// Message describes the perception to the player.
func (p Perception) Message() string {
	switch p {
	case Stench:
		return "There's a stench coming from a nearby room."
	case Breeze:
		return "There's a cold breeze coming from a nearby room."
	case Chirp:
		return "There is some chirping coming from a nearby room."
	case Movement:
		return "Sounds like there is a fellow adventurer in a nearby room."
	default:
		return ""
	}
}

// perceive computes what a player standing in room senses. self is excluded from
// the movement check.
func (g *Game) perceive(room int, self uuid.UUID) []Perception {
	neighbors := g.layout.Neighbors(room)
	perceptions := make([]Perception, 0, 4)

	if g.wumpus != NoRoom && neighbors.Contains(g.wumpus) {
		perceptions = append(perceptions, Stench)
	}
	if g.anyNeighbor(neighbors.Rooms(), g.pits) {
		perceptions = append(perceptions, Breeze)
	}
	if g.anyNeighbor(neighbors.Rooms(), g.bats) {
		perceptions = append(perceptions, Chirp)
	}

	for _, id := range g.joinOrder {
		other := g.players[id]
		if id != self && other.Alive && neighbors.Contains(other.Location) {
			perceptions = append(perceptions, Movement)
			break
		}
	}

	return perceptions
}

func (g *Game) anyNeighbor(rooms []int, set map[int]struct{}) bool {
	for _, r := range rooms {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
