package cave

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPath(t *testing.T) {
	t.Run("straight line on an empty grid", func(t *testing.T) {
		g := NewGrid(6, 6)
		path, ok := g.findPath(g.At(0, 2), g.At(5, 2))
		require.True(t, ok)
		require.Len(t, path, 6)
		for i, c := range path {
			assert.Equal(t, i, c.X)
			assert.Equal(t, 2, c.Y)
		}
	})

	t.Run("steps are orthogonal", func(t *testing.T) {
		g := NewGrid(8, 8)
		path, ok := g.findPath(g.At(0, 0), g.At(7, 5))
		require.True(t, ok)
		require.GreaterOrEqual(t, len(path), 13)
		assert.Equal(t, g.At(0, 0), path[0])
		assert.Equal(t, g.At(7, 5), path[len(path)-1])
		for i := 0; i+1 < len(path); i++ {
			_, adjacent := directionOf(path[i+1].X-path[i].X, path[i+1].Y-path[i].Y)
			assert.True(t, adjacent)
		}
	})

	t.Run("equal scores resolve the same way every time", func(t *testing.T) {
		base := NewGrid(7, 7)
		first, ok := base.findPath(base.At(0, 0), base.At(6, 6))
		require.True(t, ok)
		for i := 0; i < 5; i++ {
			g := NewGrid(7, 7)
			again, ok := g.findPath(g.At(0, 0), g.At(6, 6))
			require.True(t, ok)
			require.Len(t, again, len(first))
			for j := range first {
				assert.Equal(t, first[j].X, again[j].X)
				assert.Equal(t, first[j].Y, again[j].Y)
			}
		}
	})

	t.Run("start equals goal", func(t *testing.T) {
		g := NewGrid(6, 6)
		path, ok := g.findPath(g.At(3, 3), g.At(3, 3))
		require.True(t, ok)
		assert.Len(t, path, 1)
	})
}

func TestStepCost(t *testing.T) {
	g := NewGrid(6, 6)
	g.Set(2, 0, Room)
	g.Set(3, 1, Trap)
	g.Set(0, 4, Room)

	current := g.At(2, 1)

	assert.InDelta(t, corridorCost, g.stepCost(current, g.At(2, 0), None), 1e-9)
	assert.InDelta(t, trapCost, g.stepCost(current, g.At(3, 1), None), 1e-9)
	assert.InDelta(t, plainCost, g.stepCost(current, g.At(2, 2), None), 1e-9)

	// arriving from the west and turning south changes axis
	assert.InDelta(t, plainCost+turnPenalty, g.stepCost(current, g.At(2, 2), g.Index(1, 1)), 1e-9)
	// continuing east into the trap keeps the axis
	assert.InDelta(t, trapCost, g.stepCost(current, g.At(3, 1), g.Index(1, 1)), 1e-9)

	// (1,4) touches the corridor at (0,4)
	assert.InDelta(t, plainCost+besidePenalty, g.stepCost(g.At(1, 3), g.At(1, 4), None), 1e-9)
	// the cell being left does not count as a neighbouring corridor
	assert.InDelta(t, plainCost, g.stepCost(g.At(0, 4), g.At(0, 5), None), 1e-9)
}

func TestCarve(t *testing.T) {
	g := NewGrid(6, 6)
	g.Set(0, 0, PlayerSpawn)
	path, ok := g.findPath(g.At(0, 0), g.At(2, 0))
	require.True(t, ok)
	require.NoError(t, g.carve(path))

	assert.Equal(t, PlayerSpawn, g.At(0, 0).Kind)
	assert.Equal(t, Room, g.At(1, 0).Kind)
	assert.Equal(t, Room, g.At(2, 0).Kind)

	assert.Equal(t, g.Index(1, 0), g.At(0, 0).Links[East])
	assert.Equal(t, g.Index(0, 0), g.At(1, 0).Links[West])
	assert.Equal(t, g.Index(2, 0), g.At(1, 0).Links[East])
	assert.Equal(t, None, g.At(1, 0).Links[North])

	assert.Error(t, g.connect(g.At(0, 0), g.At(1, 1)))
}

func TestLinks(t *testing.T) {
	links := Links{4, None, 6, None}

	t.Run("neighbour lookup", func(t *testing.T) {
		assert.True(t, links.Contains(6))
		assert.False(t, links.Contains(7))
		assert.False(t, links.Contains(None))
		assert.Equal(t, []int{4, 6}, links.Rooms())
	})

	t.Run("missing links encode as null", func(t *testing.T) {
		data, err := json.Marshal(links)
		require.NoError(t, err)
		assert.JSONEq(t, `[4,null,6,null]`, string(data))

		var decoded Links
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, links, decoded)
	})

	t.Run("directions", func(t *testing.T) {
		assert.Equal(t, East, West.Opposite())
		assert.Equal(t, South, North.Opposite())
		assert.Equal(t, "North", North.String())
	})
}
