package sosi

import (
	"math"
	"strconv"
	"strings"
)

// Coordinate is one point in the document's native coordinate space.
type Coordinate struct {
	North float64
	East  float64
}

// RightOf reports whether c lies to the right of from when facing due north
// from from. The test is the sign of the cross product between the reference
// heading and the vector from→c in (east, north) space.
func (c Coordinate) RightOf(from Coordinate) bool {
	const headingEast, headingNorth = 0.0, 1.0
	dEast := c.East - from.East
	dNorth := c.North - from.North
	return headingEast*dNorth-headingNorth*dEast < 0
}

// Box is an axis-aligned bounding box with X = east and Y = north.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBox returns an inverted box that any point expands.
func EmptyBox() Box {
	return Box{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// IsEmpty reports whether the box encloses no points.
func (b Box) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// ExpandPoint grows the box to include c.
func (b *Box) ExpandPoint(c Coordinate) {
	b.MinX = math.Min(b.MinX, c.East)
	b.MinY = math.Min(b.MinY, c.North)
	b.MaxX = math.Max(b.MaxX, c.East)
	b.MaxY = math.Max(b.MaxY, c.North)
}

// ExpandBox grows the box to include o. Empty boxes are ignored.
func (b *Box) ExpandBox(o Box) {
	if o.IsEmpty() {
		return
	}
	b.MinX = math.Min(b.MinX, o.MinX)
	b.MinY = math.Min(b.MinY, o.MinY)
	b.MaxX = math.Max(b.MaxX, o.MaxX)
	b.MaxY = math.Max(b.MaxY, o.MaxY)
}

// Group is the list of coordinates parsed from one NØ or NØH payload,
// together with its bounding box. The box always matches the current
// coordinates: Shift and Scale update both.
type Group struct {
	Coordinates []Coordinate
	box         Box
}

// ParseGroup reads consecutive signed integers from data as north/east
// pairs. With stride 3 every third value (height) is skipped. Parsing stops at
// the first token that is not an integer and an incomplete tuple is dropped.
func ParseGroup(data string, stride int) *Group {
	if stride < 2 {
		stride = 2
	}
	g := &Group{box: EmptyBox()}
	fields := strings.Fields(data)
	values := make([]int64, 0, stride)
	for _, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			break
		}
		values = append(values, v)
		if len(values) == stride {
			c := Coordinate{North: float64(values[0]), East: float64(values[1])}
			g.Coordinates = append(g.Coordinates, c)
			g.box.ExpandPoint(c)
			values = values[:0]
		}
	}
	return g
}

// Bounds returns the group's bounding box.
func (g *Group) Bounds() Box {
	return g.box
}

// Len returns the number of coordinates.
func (g *Group) Len() int {
	return len(g.Coordinates)
}

// Shift adds the offset to every coordinate and to the bounding box.
// It must be applied exactly once per group.
func (g *Group) Shift(offsetNorth, offsetEast float64) {
	for i := range g.Coordinates {
		g.Coordinates[i].North += offsetNorth
		g.Coordinates[i].East += offsetEast
	}
	if g.box.IsEmpty() {
		return
	}
	g.box.MinX += offsetEast
	g.box.MaxX += offsetEast
	g.box.MinY += offsetNorth
	g.box.MaxY += offsetNorth
}

// Scale divides every coordinate and the bounding box by divisor.
// Zero and negative divisors are treated as 1.
func (g *Group) Scale(divisor float64) {
	if divisor <= 0 || divisor == 1 {
		return
	}
	for i := range g.Coordinates {
		g.Coordinates[i].North /= divisor
		g.Coordinates[i].East /= divisor
	}
	if g.box.IsEmpty() {
		return
	}
	g.box.MinX /= divisor
	g.box.MaxX /= divisor
	g.box.MinY /= divisor
	g.box.MaxY /= divisor
}

// Reverse flips the coordinate order. The bounding box is unaffected.
func (g *Group) Reverse() {
	for i, j := 0, len(g.Coordinates)-1; i < j; i, j = i+1, j-1 {
		g.Coordinates[i], g.Coordinates[j] = g.Coordinates[j], g.Coordinates[i]
	}
}
