/*
Package cave builds the room graph a Hunt the Wumpus game is played on.

A Generator lays four player spawns near the corners of a grid, a hub room near the
centre and the Wumpus close to the hub, then carves A* corridors between them. Extra
rooms, pits and bat rooms are scattered at random and chained back to the hub, so every
non-void cell is reachable from the hub by following links.

Generation is fully determined by the random Source: the same seed always produces the
same Layout.
*/
package cave

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/beka-birhanu/wumpus-api/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const (
	spawnMargin       = 2    // how far a spawn may drift from its anchor
	hazardChance      = 0.25 // a scattered room is a trap or bat when the roll exceeds this
	hubShortcutChance = 0.25 // chance a scattered room also gets a corridor to the hub
	maxTrapRatio      = 0.6  // traps must stay below this share of the room count
	minDimension      = 6    // smallest side that keeps the four corner spawns apart

	// SpawnCount is the number of player start corners.
	SpawnCount = 4
)

// Configuration errors.
var (
	ErrAlreadyGenerated  = errors.New("cave has already been generated")
	ErrTooManyRooms      = errors.New("too many rooms for the grid size")
	ErrTooManyTraps      = errors.New("too many traps for the room count")
	ErrDimensionTooSmall = errors.New("grid dimension is too small")
	ErrInvalidOptions    = errors.New("invalid cave options")
)

// Logger receives non-fatal generation warnings.
type Logger interface {
	Warning(string)
}

type nopLogger struct{}

func (nopLogger) Warning(string) {}

// Options configures the size and density of a cave.
type Options struct {
	Width     int // Width is the number of grid columns.
	Height    int // Height is the number of grid rows.
	RoomCount int // RoomCount is how many rooms are scattered besides spawns and corridors.
	TrapCount int // TrapCount caps the number of pits.
	BatCount  int // BatCount caps the number of bat rooms.
}

// DefaultOptions returns an 8×8 cave with 30 scattered rooms, 4 pits and 4 bat rooms.
func DefaultOptions() Options {
	return Options{
		Width:     8,
		Height:    8,
		RoomCount: 30,
		TrapCount: 4,
		BatCount:  4,
	}
}

// Validate checks that the grid can hold the requested rooms and hazards.
func (o Options) Validate() error {
	if o.RoomCount < 0 || o.TrapCount < 0 || o.BatCount < 0 {
		return ErrInvalidOptions
	}
	if o.Width < minDimension || o.Height < minDimension {
		return fmt.Errorf("%w: %dx%d, minimum is %d", ErrDimensionTooSmall, o.Width, o.Height, minDimension)
	}
	if o.Width*o.Height < o.RoomCount {
		return fmt.Errorf("%w: width %d, height %d, rooms %d", ErrTooManyRooms, o.Width, o.Height, o.RoomCount)
	}
	if float64(o.TrapCount) >= maxTrapRatio*float64(o.RoomCount) {
		return fmt.Errorf("%w: rooms %d, traps %d", ErrTooManyTraps, o.RoomCount, o.TrapCount)
	}
	return nil
}

// Layout is the generated cave: the room graph, the hazard rooms and the spawn points.
type Layout struct {
	Seed         string          `json:"seed,omitempty"`
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	Cells        []Cell          `json:"cells"`
	Hub          int             `json:"hub"`
	PlayerSpawns [SpawnCount]int `json:"player_spawns"`
	WumpusSpawn  int             `json:"wumpus_spawn"`
	Pits         []int           `json:"pits"`
	Bats         []int           `json:"bats"`
}

// Size returns the number of cells, void ones included.
func (l *Layout) Size() int {
	return len(l.Cells)
}

// Neighbors returns the links of room i.
func (l *Layout) Neighbors(i int) Links {
	if i < 0 || i >= len(l.Cells) {
		return NoLinks()
	}
	return l.Cells[i].Links
}

// Links returns the adjacency of every cell in index order.
func (l *Layout) Links() []Links {
	links := make([]Links, len(l.Cells))
	for i := range l.Cells {
		links[i] = l.Cells[i].Links
	}
	return links
}

// Rooms returns the indices of all non-void cells.
func (l *Layout) Rooms() []int {
	rooms := make([]int, 0, len(l.Cells))
	for i := range l.Cells {
		if !l.Cells[i].IsVoid() {
			rooms = append(rooms, i)
		}
	}
	return rooms
}

// Generator produces a single Layout. It is not safe for concurrent use.
type Generator struct {
	seed      string
	opts      Options
	rng       Source
	logger    Logger
	generated bool

	grid         *Grid
	hub          *Cell
	playerSpawns [SpawnCount]*Cell
	wumpusSpawn  *Cell
	pits         []int
	bats         []int
}

// New returns a Generator seeded from a string.
func New(seed string, opts Options, logger Logger) *Generator {
	g := NewWithSource(NewSeededSource(seed), opts, logger)
	g.seed = seed
	return g
}

// NewWithSource returns a Generator drawing from the given Source.
func NewWithSource(src Source, opts Options, logger Logger) *Generator {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Generator{
		opts:   opts,
		rng:    src,
		logger: logger,
	}
}

// Generate builds the cave. It may only be called once per Generator.
func (g *Generator) Generate(ctx context.Context) (*Layout, error) {
	if g.generated {
		return nil, ErrAlreadyGenerated
	}
	if err := g.opts.Validate(); err != nil {
		return nil, err
	}
	g.generated = true

	_, span := telemetry.Tracer("cave").Start(ctx, "cave.generate")
	defer span.End()
	startTime := time.Now()

	g.grid = NewGrid(g.opts.Width, g.opts.Height)
	g.placeEntities()
	g.scatterRooms()

	layout := g.layout()
	span.SetAttributes(
		attribute.Int("cave.width", layout.Width),
		attribute.Int("cave.height", layout.Height),
		attribute.Int("cave.room_count", len(layout.Rooms())),
		attribute.Int("cave.pits", len(layout.Pits)),
		attribute.Int("cave.bats", len(layout.Bats)),
		attribute.Int64("cave.generation_ms", time.Since(startTime).Milliseconds()),
	)
	return layout, nil
}

// drift returns a random offset in [0, spawnMargin].
func (g *Generator) drift() int {
	return int(math.Round(g.rng.Float64() * spawnMargin))
}

// placeEntities marks the spawns and the hub and links them together.
func (g *Generator) placeEntities() {
	w, h := g.opts.Width, g.opts.Height

	corners := [SpawnCount][2]int{}
	corners[0] = [2]int{g.drift(), g.drift()}
	corners[1] = [2]int{w - 1 - g.drift(), g.drift()}
	corners[2] = [2]int{g.drift(), h - 1 - g.drift()}
	corners[3] = [2]int{w - 1 - g.drift(), h - 1 - g.drift()}
	for i, c := range corners {
		cell := g.grid.At(c[0], c[1])
		cell.Kind = PlayerSpawn
		g.playerSpawns[i] = cell
	}

	cx := min(int(math.Round(float64(w)/2)), w-1)
	cy := min(int(math.Round(float64(h)/2)), h-1)
	g.hub = g.claimNear(cx, cy, Room)

	wx := min(g.hub.X+g.drift(), w-1)
	wy := min(g.hub.Y+g.drift(), h-1)
	if wx == g.hub.X && wy == g.hub.Y {
		// one step east, or west on the last column
		wx = g.hub.X + 1
		if wx >= w {
			wx = g.hub.X - 1
		}
	}
	g.wumpusSpawn = g.claimNear(wx, wy, WumpusSpawn)

	p := g.playerSpawns
	g.link(p[0], p[1])
	g.link(p[2], p[3])
	for _, c := range []*Cell{p[0], p[1], p[2], p[3], g.wumpusSpawn} {
		g.link(c, g.hub)
	}
}

// claimNear tags the void cell closest to (x, y) with k. Distance ties go to the lowest index.
func (g *Generator) claimNear(x, y int, k Kind) *Cell {
	var best *Cell
	bestDist := math.MaxInt
	for i := range g.grid.cells {
		c := &g.grid.cells[i]
		if c.Kind != Void {
			continue
		}
		d := abs(c.X-x) + abs(c.Y-y)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	best.Kind = k
	return best
}

// scatterRooms drops the requested rooms on random empty cells and connects them.
func (g *Generator) scatterRooms() {
	placed := make([]*Cell, 0, g.opts.RoomCount)
	traps, bats := 0, 0

	for len(placed) < g.opts.RoomCount {
		if !g.grid.hasEmpty() {
			g.logger.Warning(fmt.Sprintf("cave is full after %d of %d rooms", len(placed), g.opts.RoomCount))
			break
		}

		x := Intn(g.rng, g.opts.Width)
		y := Intn(g.rng, g.opts.Height)
		placeTrap := g.rng.Float64() > hazardChance && traps < g.opts.TrapCount
		placeBat := g.rng.Float64() > hazardChance && bats < g.opts.BatCount

		cell := g.grid.At(x, y)
		if cell.Kind != Void {
			continue
		}

		switch {
		case placeTrap:
			traps++
			cell.Kind = Trap
			g.pits = append(g.pits, g.grid.Index(x, y))
		case placeBat:
			bats++
			cell.Kind = Bat
			g.bats = append(g.bats, g.grid.Index(x, y))
		default:
			cell.Kind = Room
		}
		placed = append(placed, cell)
	}

	for i, room := range placed {
		if i == 0 {
			g.link(g.hub, room)
			continue
		}
		g.link(placed[i-1], room)
		if g.rng.Float64() < hubShortcutChance {
			g.link(room, g.hub)
		}
	}
}

// link carves a corridor between two cells. A missing path is logged and skipped.
func (g *Generator) link(from, to *Cell) {
	path, ok := g.grid.findPath(from, to)
	if !ok {
		g.logger.Warning(fmt.Sprintf("no path from (%d,%d) to (%d,%d)", from.X, from.Y, to.X, to.Y))
		return
	}
	if err := g.grid.carve(path); err != nil {
		g.logger.Warning(fmt.Sprintf("carving corridor: %s", err))
	}
}

func (g *Generator) layout() *Layout {
	l := &Layout{
		Seed:        g.seed,
		Width:       g.opts.Width,
		Height:      g.opts.Height,
		Cells:       g.grid.snapshot(),
		Hub:         g.grid.Index(g.hub.X, g.hub.Y),
		WumpusSpawn: g.grid.Index(g.wumpusSpawn.X, g.wumpusSpawn.Y),
		Pits:        append([]int{}, g.pits...),
		Bats:        append([]int{}, g.bats...),
	}
	for i, c := range g.playerSpawns {
		l.PlayerSpawns[i] = g.grid.Index(c.X, c.Y)
	}
	return l
}

// String draws the generated grid, or an empty string before Generate.
func (g *Generator) String() string {
	if g.grid == nil {
		return ""
	}
	return g.grid.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
