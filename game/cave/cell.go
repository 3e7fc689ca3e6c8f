package cave

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// None marks a missing link in Links.
const None = -1

// Direction is one of the four cardinal directions a cell can link in.
type Direction int

// Directions in link order. The order is part of the wire format of Links.
const (
	West Direction = iota
	North
	East
	South
)

var directionNames = [...]string{"West", "North", "East", "South"}

// Opposite returns the direction pointing back the other way.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// String returns the direction name.
func (d Direction) String() string {
	if d < West || d > South {
		return "Unknown"
	}
	return directionNames[d]
}

// offsets maps a direction to its grid delta.
var offsets = [4]struct{ dx, dy int }{
	West:  {dx: -1, dy: 0},
	North: {dx: 0, dy: -1},
	East:  {dx: 1, dy: 0},
	South: {dx: 0, dy: 1},
}

// directionOf returns the direction of the unit step (dx, dy).
func directionOf(dx, dy int) (Direction, bool) {
	for d, o := range offsets {
		if o.dx == dx && o.dy == dy {
			return Direction(d), true
		}
	}
	return 0, false
}

// Kind tags what a grid cell holds.
type Kind int

const (
	Void        Kind = iota // Void is an empty, unreachable cell.
	Room                    // Room is a plain room or a carved corridor.
	Trap                    // Trap is a bottomless pit.
	Bat                     // Bat is a room with giant bats.
	PlayerSpawn             // PlayerSpawn is a player start corner.
	WumpusSpawn             // WumpusSpawn is where the Wumpus starts.
)

var kindNames = [...]string{"void", "room", "trap", "bat", "player_spawn", "wumpus_spawn"}

// String returns the kind name.
func (k Kind) String() string {
	if k < Void || k > WumpusSpawn {
		return "unknown"
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Links holds the neighbour index in each direction, or None.
type Links [4]int

// NoLinks returns a Links value with every direction unset.
func NoLinks() Links {
	return Links{None, None, None, None}
}

// Contains reports whether room is linked in any direction.
func (l Links) Contains(room int) bool {
	if room < 0 {
		return false
	}
	for _, n := range l {
		if n == room {
			return true
		}
	}
	return false
}

// Rooms returns the linked neighbours in direction order.
func (l Links) Rooms() []int {
	rooms := make([]int, 0, len(l))
	for _, n := range l {
		if n != None {
			rooms = append(rooms, n)
		}
	}
	return rooms
}

// MarshalJSON encodes missing links as null.
func (l Links) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, n := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		if n == None {
			buf.WriteString("null")
		} else {
			buf.WriteString(strconv.Itoa(n))
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes null entries as None.
func (l *Links) UnmarshalJSON(data []byte) error {
	var raw [4]*int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for i, n := range raw {
		if n == nil {
			l[i] = None
		} else {
			l[i] = *n
		}
	}
	return nil
}

// Cell is a single grid square of the cave.
type Cell struct {
	X     int   `json:"x"`     // X is the column.
	Y     int   `json:"y"`     // Y is the row.
	Kind  Kind  `json:"kind"`  // Kind is what the cell holds.
	Links Links `json:"links"` // Links are the neighbours reachable from this cell.
}

// IsVoid reports whether the cell is not part of the cave.
func (c *Cell) IsVoid() bool {
	return c.Kind == Void
}
