package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/beka-birhanu/wumpus-api/game/cave"
	"github.com/google/uuid"
)

// Game-related errors.
var (
	ErrNilLayout      = errors.New("cave layout is required")
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already in game")
	ErrNoSpawnSlots   = errors.New("all spawn slots are taken")
	ErrPlayerDeparted = errors.New("player has left the game")
)

const (
	// MaxPlayers is the number of spawn corners and so the player cap.
	MaxPlayers = cave.SpawnCount

	// NoTarget is passed to HandleTurn for actions without a target room.
	NoTarget = -1

	// NoRoom is the Wumpus location once it has been killed.
	NoRoom = -1

	initialArrows    = 5
	wumpusWakeChance = 0.75 // chance a missed shot makes the Wumpus move
	maxBatFlights    = 32   // bound on chained bat drops within one turn
)

// Game holds the mutable state of one hunt on a fixed cave.
//
// Game does no locking: callers must serialise access to an instance.
type Game struct {
	layout    *cave.Layout          // Static room graph and hazard layout.
	rng       cave.Source           // Source for bat drops and Wumpus moves.
	rooms     []int                 // Non-void rooms a bat may drop a player into.
	players   map[uuid.UUID]*Player // Players indexed by ID.
	joinOrder []uuid.UUID           // Player IDs in the order they joined.
	slots     [MaxPlayers]uuid.UUID // Spawn slot owners, uuid.Nil when free.
	wumpus    int                   // Current Wumpus room, NoRoom once killed.
	pits      map[int]struct{}      // Pit rooms.
	bats      map[int]struct{}      // Bat rooms.
}

// New creates a Game on the given layout. A nil rng is replaced by a time-seeded source.
func New(layout *cave.Layout, rng cave.Source) (*Game, error) {
	if layout == nil {
		return nil, ErrNilLayout
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	g := &Game{
		layout:  layout,
		rng:     rng,
		rooms:   layout.Rooms(),
		players: make(map[uuid.UUID]*Player),
		wumpus:  layout.WumpusSpawn,
		pits:    make(map[int]struct{}, len(layout.Pits)),
		bats:    make(map[int]struct{}, len(layout.Bats)),
	}
	for _, p := range layout.Pits {
		g.pits[p] = struct{}{}
	}
	for _, b := range layout.Bats {
		g.bats[b] = struct{}{}
	}
	return g, nil
}

// InitializePlayer places a new player on the first free spawn and returns that room.
func (g *Game) InitializePlayer(id uuid.UUID) (int, error) {
	if _, ok := g.players[id]; ok {
		return NoRoom, ErrPlayerExists
	}
	slot := -1
	for i, owner := range g.slots {
		if owner == uuid.Nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return NoRoom, ErrNoSpawnSlots
	}

	start := g.layout.PlayerSpawns[slot]
	g.slots[slot] = id
	g.players[id] = &Player{
		ID:       id,
		Location: start,
		Arrows:   initialArrows,
		Alive:    true,
		Visited:  []int{start},
	}
	g.joinOrder = append(g.joinOrder, id)
	return start, nil
}

// RemovePlayer marks a player as departed. Their state stays readable, they no
// longer count as alive, and freeSlot hands their spawn corner back for a new joiner.
func (g *Game) RemovePlayer(id uuid.UUID, freeSlot bool) error {
	p, ok := g.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	if p.Departed {
		return ErrPlayerDeparted
	}
	p.Departed = true
	p.Alive = false
	if !freeSlot {
		return nil
	}
	for i, owner := range g.slots {
		if owner == id {
			g.slots[i] = uuid.Nil
		}
	}
	return nil
}

// Status returns a snapshot of a player. It does not change any state.
func (g *Game) Status(id uuid.UUID) (PlayerStatus, error) {
	p, ok := g.players[id]
	if !ok {
		return PlayerStatus{}, ErrPlayerNotFound
	}

	perceptions := []Perception{}
	if p.Alive {
		perceptions = g.perceive(p.Location, p.ID)
	}
	return PlayerStatus{
		Location:    p.Location,
		Arrows:      p.Arrows,
		Perceptions: perceptions,
		Alive:       p.Alive,
		Visited:     append([]int{}, p.Visited...),
	}, nil
}

// Neighbors returns the links of the player's current room.
func (g *Game) Neighbors(id uuid.UUID) (cave.Links, error) {
	p, ok := g.players[id]
	if !ok {
		return cave.NoLinks(), ErrPlayerNotFound
	}
	return g.layout.Neighbors(p.Location), nil
}

// HandleTurn applies one action for a player. Turn order is the caller's concern.
// target is ignored for ActionPass; use NoTarget when there is none.
func (g *Game) HandleTurn(id uuid.UUID, action Action, target int) TurnResult {
	p, ok := g.players[id]
	if !ok {
		return TurnResult{Status: StatusError, Message: "Unknown player.", Perceptions: []Perception{}}
	}
	if p.Departed {
		return TurnResult{Status: StatusLost, Message: "You have left the game.", Perceptions: []Perception{}}
	}
	if !p.Alive {
		return TurnResult{Status: StatusLost, Message: "You are dead and cannot act.", Perceptions: []Perception{}}
	}

	switch action {
	case ActionMove:
		return g.move(p, target)
	case ActionShoot:
		return g.shoot(p, target)
	case ActionPass:
		return g.finish(p, TurnResult{Status: StatusOK, Message: "You passed your turn."})
	default:
		return g.reject(p, "Unknown action.")
	}
}

func (g *Game) move(p *Player, target int) TurnResult {
	if !g.layout.Neighbors(p.Location).Contains(target) {
		return g.reject(p, "Invalid move. Choose an adjacent cave.")
	}

	p.Location = target
	p.Visited = append(p.Visited, target)
	result := TurnResult{Status: StatusOK, Message: fmt.Sprintf("You moved to room %d.", target)}
	g.resolveHazards(p, &result)
	return g.finish(p, result)
}

func (g *Game) shoot(p *Player, target int) TurnResult {
	if p.Arrows <= 0 {
		return g.reject(p, "You have no arrows left!")
	}
	if !g.layout.Neighbors(p.Location).Contains(target) {
		return g.reject(p, "Invalid target. You can only shoot into an adjacent cave.")
	}

	p.Arrows--
	result := TurnResult{
		Status:  StatusOK,
		Message: fmt.Sprintf("You shoot into room %d. Arrows remaining: %d.", target, p.Arrows),
	}

	if target == g.wumpus {
		result.Status = StatusWin
		result.Message = "Victory! You killed the Wumpus!"
		g.wumpus = NoRoom
	}

	for _, id := range g.joinOrder {
		other := g.players[id]
		if id != p.ID && other.Alive && other.Location == target {
			other.Alive = false
			result.Message += fmt.Sprintf(" You shot and killed player %s!", id)
		}
	}

	if result.Status != StatusWin && g.wumpus != NoRoom && g.moveWumpus() {
		if g.wumpus == p.Location {
			p.Alive = false
			result.Status = StatusLost
			result.Message += " The Wumpus woke up and ate you!"
		}
	}

	return g.finish(p, result)
}

// resolveHazards settles the room the player just entered, following bat drops
// until the player lands somewhere quiet, dies, or the flight bound is reached.
func (g *Game) resolveHazards(p *Player, result *TurnResult) {
	for flights := 0; ; flights++ {
		room := p.Location
		if room == g.wumpus {
			p.Alive = false
			result.Status = StatusLost
			result.Message += " You bumped into the Wumpus! The Wumpus ate you. Game over!"
			return
		}
		if _, ok := g.pits[room]; ok {
			p.Alive = false
			result.Status = StatusLost
			result.Message += " You fell into a pit! Game over."
			return
		}
		if _, ok := g.bats[room]; !ok || flights >= maxBatFlights {
			return
		}

		drop := g.rooms[cave.Intn(g.rng, len(g.rooms))]
		p.Location = drop
		p.Visited = append(p.Visited, drop)
		result.Message += fmt.Sprintf(" A giant bat picks you up and drops you in room %d.", drop)
	}
}

// moveWumpus may move the Wumpus to a random neighbouring room and reports whether it did.
func (g *Game) moveWumpus() bool {
	if g.rng.Float64() >= wumpusWakeChance {
		return false
	}
	next := g.layout.Neighbors(g.wumpus).Rooms()
	if len(next) == 0 {
		return false
	}
	g.wumpus = next[cave.Intn(g.rng, len(next))]
	return true
}

// reject reports an invalid action without changing state.
func (g *Game) reject(p *Player, msg string) TurnResult {
	return TurnResult{Status: StatusError, Message: msg, Perceptions: g.perceive(p.Location, p.ID)}
}

// finish attaches the perceptions of the player's final room.
func (g *Game) finish(p *Player, result TurnResult) TurnResult {
	if p.Alive {
		result.Perceptions = g.perceive(p.Location, p.ID)
	} else {
		result.Perceptions = []Perception{}
	}
	return result
}

// IsAlive reports whether the player exists and is alive.
func (g *Game) IsAlive(id uuid.UUID) bool {
	p, ok := g.players[id]
	return ok && p.Alive
}

// AlivePlayers counts the living players.
func (g *Game) AlivePlayers() int {
	n := 0
	for _, p := range g.players {
		if p.Alive {
			n++
		}
	}
	return n
}

// WumpusAlive reports whether the Wumpus is still roaming.
func (g *Game) WumpusAlive() bool {
	return g.wumpus != NoRoom
}

// Hazards returns the current hazard rooms.
func (g *Game) Hazards() Hazards {
	h := Hazards{
		Pits: append([]int{}, g.layout.Pits...),
		Bats: append([]int{}, g.layout.Bats...),
	}
	if g.wumpus != NoRoom {
		w := g.wumpus
		h.Wumpus = &w
	}
	return h
}

// MapData returns a copy of the adjacency of every room.
func (g *Game) MapData() []cave.Links {
	return g.layout.Links()
}

// Layout returns the cave the game is played on. It must not be modified.
func (g *Game) Layout() *cave.Layout {
	return g.layout
}

// NumRooms returns the number of cells in the map, void ones included.
func (g *Game) NumRooms() int {
	return g.layout.Size()
}
