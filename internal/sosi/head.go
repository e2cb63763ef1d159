package sosi

import (
	"strconv"
	"strings"
)

// Origin is the document-wide north/east offset declared by ..ORIGO-NØ.
type Origin struct {
	North int64
	East  int64
	// Declared is false when the document has no ORIGO-NØ and the zero default is in use.
	Declared bool
}

// Unit is the document-wide coordinate unit declared by ..ENHET.
// Divisor is 1/ENHET, so raw coordinates are divided by it.
type Unit struct {
	Divisor  float64
	Declared bool
}

// Origin returns the document origin, resolving it on first use. Missing or
// malformed declarations yield (0, 0).
func (t *Tree) Origin() Origin {
	t.heads.originOnce.Do(func() {
		t.heads.origin = Origin{}
		id, ok := t.LocateHeadMember(t.Root(), ElementTypeOrigin)
		if !ok {
			return
		}
		fields := strings.Fields(t.Element(id).Data)
		if len(fields) < 2 {
			return
		}
		n, errN := strconv.ParseInt(fields[0], 10, 64)
		e, errE := strconv.ParseInt(fields[1], 10, 64)
		if errN != nil || errE != nil {
			return
		}
		t.heads.origin = Origin{North: n, East: e, Declared: true}
	})
	return t.heads.origin
}

// Unit returns the document unit, resolving it on first use. A missing,
// malformed or non-positive ENHET yields a divisor of 1.
func (t *Tree) Unit() Unit {
	t.heads.unitOnce.Do(func() {
		t.heads.unit = Unit{Divisor: 1}
		id, ok := t.LocateHeadMember(t.Root(), ElementTypeUnit)
		if !ok {
			return
		}
		fields := strings.Fields(t.Element(id).Data)
		if len(fields) == 0 {
			return
		}
		d, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || d <= 0 {
			return
		}
		t.heads.unit = Unit{Divisor: 1 / d, Declared: true}
	})
	return t.heads.unit
}

// CoordinateGroup parses the coordinate payload of id and applies the head
// members: shift by Origin, then divide by Unit. It returns nil when id does
// not carry coordinates.
func (t *Tree) CoordinateGroup(id ElementID) *Group {
	p := t.Payload(id)
	if p.Kind != PayloadCoordinates {
		return nil
	}
	g := ParseGroup(p.Coordinates, p.Stride)
	o := t.Origin()
	g.Shift(float64(o.North), float64(o.East))
	g.Scale(t.Unit().Divisor)
	return g
}
