package sosi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroup(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		stride int
		want   []Coordinate
	}{
		{"pairs", "1000 2000\n3000 4000", 2, []Coordinate{{1000, 2000}, {3000, 4000}}},
		{"negative", "-5 7", 2, []Coordinate{{-5, 7}}},
		{"odd length", "1 2 3", 2, []Coordinate{{1, 2}}},
		{"malformed stops", "1 2 x 3 4", 2, []Coordinate{{1, 2}}},
		{"triples drop height", "1 2 99 3 4 98", 3, []Coordinate{{1, 2}, {3, 4}}},
		{"empty", "", 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := ParseGroup(tt.data, tt.stride)
			assert.Equal(t, tt.want, g.Coordinates)
		})
	}
}

func TestGroupTransformKeepsBox(t *testing.T) {
	g := ParseGroup("100 200\n300 50", 2)
	assert.Equal(t, Box{MinX: 50, MinY: 100, MaxX: 200, MaxY: 300}, g.Bounds())

	g.Shift(1000, 2000)
	assert.Equal(t, Box{MinX: 2050, MinY: 1100, MaxX: 2200, MaxY: 1300}, g.Bounds())

	g.Scale(10)
	assert.Equal(t, Box{MinX: 205, MinY: 110, MaxX: 220, MaxY: 130}, g.Bounds())
	assert.Equal(t, []Coordinate{{110, 220}, {130, 205}}, g.Coordinates)

	// The box stays the exact bound of the current points.
	box := EmptyBox()
	for _, c := range g.Coordinates {
		box.ExpandPoint(c)
	}
	assert.Equal(t, box, g.Bounds())
}

func TestGroupScaleIgnoresInvalidDivisor(t *testing.T) {
	g := ParseGroup("10 20", 2)
	g.Scale(0)
	g.Scale(-3)
	assert.Equal(t, []Coordinate{{10, 20}}, g.Coordinates)
}

func TestTransformMatchesTextbook(t *testing.T) {
	tree := newHeadTree("6600000 300000", "0.01")
	p := tree.Append(tree.Root(), "PUNKT", "1", "", 1)
	ne := tree.Append(p, "NØ", "", "12345 -678", 2)

	g := tree.CoordinateGroup(ne)
	require.NotNil(t, g)
	require.Len(t, g.Coordinates, 1)
	assert.InDelta(t, (12345.0+6600000)/100, g.Coordinates[0].North, 1e-9)
	assert.InDelta(t, (-678.0+300000)/100, g.Coordinates[0].East, 1e-9)

	assert.Nil(t, tree.CoordinateGroup(p), "PUNKT itself carries no coordinates")
}

func TestRightOf(t *testing.T) {
	origin := Coordinate{North: 0, East: 0}
	assert.True(t, Coordinate{North: 5, East: 1}.RightOf(origin))
	assert.False(t, Coordinate{North: 5, East: -1}.RightOf(origin))
	assert.False(t, Coordinate{North: 5, East: 0}.RightOf(origin), "collinear is not right")
}

func TestOrderedPointsWinding(t *testing.T) {
	t.Run("second point right is reversed", func(t *testing.T) {
		tree := newHeadTree("0 0", "1")
		k := tree.Append(tree.Root(), "KURVE", "1", "", 1)
		tree.Append(k, "NØ", "", "0 0\n10 10", 2)

		pts := Discover(tree, k).OrderedPoints()
		assert.Equal(t, []Coordinate{{10, 10}, {0, 0}}, pts)
	})

	t.Run("second point left is kept", func(t *testing.T) {
		tree := newHeadTree("0 0", "1")
		k := tree.Append(tree.Root(), "KURVE", "1", "", 1)
		tree.Append(k, "NØ", "", "0 0\n10 -10", 2)

		pts := Discover(tree, k).OrderedPoints()
		assert.Equal(t, []Coordinate{{0, 0}, {10, -10}}, pts)
	})
}

func TestDiscoverFollowsReferences(t *testing.T) {
	tree := newHeadTree("0 0", "1")
	k1 := tree.Append(tree.Root(), "KURVE", "1", "", 1)
	tree.Append(k1, "NØ", "", "0 0\n0 10", 2)
	k2 := tree.Append(tree.Root(), "KURVE", "2", "", 1)
	tree.Append(k2, "NØ", "", "10 10\n0 10", 2)
	hole := tree.Append(tree.Root(), "KURVE", "3", "", 1)
	tree.Append(hole, "NØ", "", "2 2\n3 3\n2 3\n2 2", 2)

	area := tree.Append(tree.Root(), "FLATE", "4", "", 1)
	tree.Append(area, "OBJTYPE", "", "Innsjø", 2)
	tree.Append(area, "REF", "", ":1 :-2 (:3) :404", 2)
	tree.Append(area, "NØ", "", "5 5", 2)

	c := Discover(tree, area)
	require.Len(t, c.Parts(), 3)
	assert.True(t, c.Parts()[2].Subtractive)
	assert.Equal(t, 2, c.PartCount())
	assert.Equal(t, 4, c.PointCount())

	// :-2 is walked backwards; the hole and the representative point are left out.
	assert.Equal(t, []Coordinate{{0, 0}, {0, 10}, {0, 10}, {10, 10}}, c.Points())
	assert.Equal(t, Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, c.Bounds())
}

func TestDiscoverTerminatesOnCycles(t *testing.T) {
	tree := newHeadTree("", "")
	a := tree.Append(tree.Root(), "FLATE", "1", "", 1)
	tree.Append(a, "REF", "", ":2", 2)
	b := tree.Append(tree.Root(), "FLATE", "2", "", 1)
	tree.Append(b, "REF", "", ":1 :3", 2)
	k := tree.Append(tree.Root(), "KURVE", "3", "", 1)
	tree.Append(k, "NØ", "", "1 1\n2 2", 2)

	c := Discover(tree, a)
	assert.Equal(t, 2, c.PointCount())
}

func TestDiscoverEmpty(t *testing.T) {
	tree := NewTree()
	p := tree.Append(tree.Root(), "PUNKT", "1", "", 1)
	tree.Append(p, "OBJTYPE", "", "Bygning", 2)

	c := Discover(tree, p)
	assert.Equal(t, 0, c.PointCount())
	assert.True(t, c.Bounds().IsEmpty())
	assert.Empty(t, c.OrderedPoints())
}
