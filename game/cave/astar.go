package cave

import (
	"container/heap"
	"math"
)

// Step costs used when carving corridors.
const (
	corridorCost  = 0.1 // reuse existing rooms and corridors
	plainCost     = 1.0
	trapCost      = 10.0 // route around pits when possible
	turnPenalty   = 5.0  // changing axis relative to the previous step
	besidePenalty = 5.0  // opening a cell next to an existing corridor
)

type frontierNode struct {
	index int
	f     float64
}

// frontier is a min-heap on (f, index), so equal scores resolve to the lowest cell index.
type frontier []frontierNode

func (q frontier) Len() int { return len(q) }

func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].index < q[j].index
}

func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontier) Push(x interface{}) {
	*q = append(*q, x.(frontierNode))
}

func (q *frontier) Pop() interface{} {
	old := *q
	n := len(old)
	node := old[n-1]
	*q = old[:n-1]
	return node
}

// manhattan is the A* heuristic.
func manhattan(a, b *Cell) float64 {
	return math.Abs(float64(a.X-b.X)) + math.Abs(float64(a.Y-b.Y))
}

// stepCost prices the move from current into next. prev is the index current was
// reached from, or None at the start of the path.
func (g *Grid) stepCost(current, next *Cell, prev int) float64 {
	cost := plainCost
	switch next.Kind {
	case Room:
		cost = corridorCost
	case Trap:
		cost = trapCost
	}

	if prev != None {
		p := g.Cell(prev)
		wasHorizontal := p.Y == current.Y
		isHorizontal := current.Y == next.Y
		if wasHorizontal != isHorizontal {
			cost += turnPenalty
		}
	}

	if next.Kind == Void {
		for _, n := range g.neighbors(next) {
			if n != current && n.Kind == Room {
				cost += besidePenalty
				break
			}
		}
	}

	return cost
}

// findPath runs A* between two cells over the whole grid, void cells included.
// It returns the cells from start to goal, or false when the goal is unreachable.
func (g *Grid) findPath(start, goal *Cell) ([]*Cell, bool) {
	size := len(g.cells)
	gScore := make([]float64, size)
	fScore := make([]float64, size)
	cameFrom := make([]int, size)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		fScore[i] = math.Inf(1)
		cameFrom[i] = None
	}

	startIdx := g.Index(start.X, start.Y)
	goalIdx := g.Index(goal.X, goal.Y)
	gScore[startIdx] = 0
	fScore[startIdx] = manhattan(start, goal)

	open := &frontier{{index: startIdx, f: fScore[startIdx]}}
	for open.Len() > 0 {
		cur := heap.Pop(open).(frontierNode)
		if cur.f > fScore[cur.index] {
			continue // stale entry
		}
		if cur.index == goalIdx {
			return g.reconstruct(cameFrom, goalIdx), true
		}

		current := g.Cell(cur.index)
		for _, next := range g.neighbors(current) {
			nextIdx := g.Index(next.X, next.Y)
			tentative := gScore[cur.index] + g.stepCost(current, next, cameFrom[cur.index])
			if tentative < gScore[nextIdx] {
				cameFrom[nextIdx] = cur.index
				gScore[nextIdx] = tentative
				fScore[nextIdx] = tentative + manhattan(next, goal)
				heap.Push(open, frontierNode{index: nextIdx, f: fScore[nextIdx]})
			}
		}
	}

	return nil, false
}

func (g *Grid) reconstruct(cameFrom []int, end int) []*Cell {
	var path []*Cell
	for i := end; i != None; i = cameFrom[i] {
		path = append(path, g.Cell(i))
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// carve promotes every void cell on path to a room and links consecutive cells.
func (g *Grid) carve(path []*Cell) error {
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		if a.Kind == Void {
			a.Kind = Room
		}
		if b.Kind == Void {
			b.Kind = Room
		}
		if err := g.connect(a, b); err != nil {
			return err
		}
	}
	return nil
}
