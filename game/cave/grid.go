package cave

import (
	"fmt"
	"strings"
)

// Grid is a width × height field of cells stored row-major.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid returns a grid where every cell is Void and unlinked.
func NewGrid(width, height int) *Grid {
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = Cell{
			X:     i % width,
			Y:     i / width,
			Kind:  Void,
			Links: NoLinks(),
		}
	}

	return &Grid{
		width:  width,
		height: height,
		cells:  cells,
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.height
}

// InBound reports whether (x, y) lies inside the grid.
func (g *Grid) InBound(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Index returns the flat index of (x, y).
func (g *Grid) Index(x, y int) int {
	return x + y*g.width
}

// At returns the cell at (x, y), or nil when out of bounds.
func (g *Grid) At(x, y int) *Cell {
	if !g.InBound(x, y) {
		return nil
	}
	return &g.cells[g.Index(x, y)]
}

// Cell returns the cell at flat index i.
func (g *Grid) Cell(i int) *Cell {
	return &g.cells[i]
}

// Set tags the cell at (x, y).
func (g *Grid) Set(x, y int, k Kind) {
	g.cells[g.Index(x, y)].Kind = k
}

// neighbors returns the in-bound orthogonal neighbours of c, ignoring links.
func (g *Grid) neighbors(c *Cell) []*Cell {
	result := make([]*Cell, 0, 4)
	for _, o := range offsets {
		if n := g.At(c.X+o.dx, c.Y+o.dy); n != nil {
			result = append(result, n)
		}
	}
	return result
}

// connect links a and b in both directions. The cells must be orthogonally adjacent.
func (g *Grid) connect(a, b *Cell) error {
	dir, ok := directionOf(b.X-a.X, b.Y-a.Y)
	if !ok {
		return fmt.Errorf("cells (%d,%d) and (%d,%d) are not adjacent", a.X, a.Y, b.X, b.Y)
	}

	a.Links[dir] = g.Index(b.X, b.Y)
	b.Links[dir.Opposite()] = g.Index(a.X, a.Y)
	return nil
}

// hasEmpty reports whether any cell is still Void.
func (g *Grid) hasEmpty() bool {
	for i := range g.cells {
		if g.cells[i].Kind == Void {
			return true
		}
	}
	return false
}

// snapshot copies the cells so callers cannot mutate the grid.
func (g *Grid) snapshot() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

var kindSymbols = map[Kind]string{
	Void:        "-",
	Trap:        "X",
	Bat:         "B",
	PlayerSpawn: "P",
	WumpusSpawn: "W",
}

var junctions = map[string]string{
	"W": "╸", "N": "╹", "E": "╺", "S": "╻",
	"WE": "━", "NS": "┃", "NE": "┗", "WN": "┛", "ES": "┏", "WS": "┓",
	"WNE": "┻", "WNS": "┫", "WES": "┳", "NES": "┣",
	"WNES": "╋",
}

// String draws the grid with box characters for rooms and letters for special cells.
func (g *Grid) String() string {
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := g.At(x, y)
			if c.Kind != Room {
				sb.WriteString(kindSymbols[c.Kind])
				continue
			}

			key := ""
			for d, n := range c.Links {
				if n != None {
					key += directionNames[d][:1]
				}
			}
			if j, ok := junctions[key]; ok {
				sb.WriteString(j)
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
