package sosi

// Part is one coordinate group discovered for a geometry, in discovery order.
type Part struct {
	Group *Group
	// Subtractive parts come from parenthesised references and describe
	// geometry cut out of the feature.
	Subtractive bool
	// Source is the element that carried the coordinates.
	Source ElementID
}

// Collection gathers every coordinate that belongs to one geometry element,
// including coordinates pulled in through REF elements. It is built per
// element per encode pass and not retained.
type Collection struct {
	parts []Part
	box   Box
}

// Discover walks id depth-first and collects its coordinates.
//
// Coordinate payloads (NØ, NØH) on the element or any descendant become parts
// after the head-member transform. REF payloads are resolved through the
// tree's reference index and the referenced elements are walked in turn; a
// negative serial reverses the referenced geometry and parenthesised
// references are marked subtractive. Dangling references are skipped.
//
// Each element is walked at most once per discovery, so reference cycles
// terminate.
func Discover(t *Tree, id ElementID) *Collection {
	c := &Collection{box: EmptyBox()}
	visited := make(map[ElementID]bool)
	c.discover(t, id, false, visited)
	for _, p := range c.parts {
		if !p.Subtractive {
			c.box.ExpandBox(p.Group.Bounds())
		}
	}
	return c
}

func (c *Collection) discover(t *Tree, id ElementID, subtractive bool, visited map[ElementID]bool) {
	if visited[id] {
		return
	}
	visited[id] = true

	e := t.Element(id)
	if e == nil {
		return
	}

	switch p := t.Payload(id); p.Kind {
	case PayloadCoordinates:
		if g := t.CoordinateGroup(id); g.Len() > 0 {
			c.parts = append(c.parts, Part{Group: g, Subtractive: subtractive, Source: id})
		}
	case PayloadReferences:
		for _, ref := range p.References {
			target, ok := t.Resolve(ref.Serial)
			if !ok {
				continue
			}
			sub := &Collection{}
			sub.discover(t, target, subtractive || ref.Subtractive, visited)
			if ref.Reversed {
				sub.reverse()
			}
			c.parts = append(c.parts, sub.parts...)
		}
	case PayloadText:
	}

	// An area that is bounded by references carries its representative
	// point as a direct NØ child; that point is not part of the outline.
	skipOwnPoint := e.Type == ElementTypeArea && t.hasChildOfType(id, ElementTypeRef)

	for _, child := range e.children {
		if skipOwnPoint && t.elements[child].Type.IsCoordinates() {
			continue
		}
		c.discover(t, child, subtractive, visited)
	}
}

func (t *Tree) hasChildOfType(id ElementID, typ ElementType) bool {
	_, ok := t.First(id, typ)
	return ok
}

// reverse flips the part order and the coordinates within each part.
func (c *Collection) reverse() {
	for i, j := 0, len(c.parts)-1; i < j; i, j = i+1, j-1 {
		c.parts[i], c.parts[j] = c.parts[j], c.parts[i]
	}
	for _, p := range c.parts {
		p.Group.Reverse()
	}
}

// Parts returns every discovered part, additive and subtractive.
func (c *Collection) Parts() []Part {
	return c.parts
}

// Points returns the additive coordinates in discovery order.
func (c *Collection) Points() []Coordinate {
	pts := make([]Coordinate, 0, c.PointCount())
	for _, p := range c.parts {
		if p.Subtractive {
			continue
		}
		pts = append(pts, p.Group.Coordinates...)
	}
	return pts
}

// OrderedPoints returns the additive coordinates with a deterministic
// orientation: when the second point lies to the right of the first, the
// whole sequence is reversed. Source data does not guarantee winding.
func (c *Collection) OrderedPoints() []Coordinate {
	pts := c.Points()
	if len(pts) > 1 && pts[1].RightOf(pts[0]) {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return pts
}

// Bounds returns the bounding box of the additive coordinates.
// The box is empty when no coordinates were discovered.
func (c *Collection) Bounds() Box {
	return c.box
}

// PointCount returns the number of additive coordinates.
func (c *Collection) PointCount() int {
	n := 0
	for _, p := range c.parts {
		if !p.Subtractive {
			n += p.Group.Len()
		}
	}
	return n
}

// PartCount returns the number of additive parts.
func (c *Collection) PartCount() int {
	n := 0
	for _, p := range c.parts {
		if !p.Subtractive {
			n++
		}
	}
	return n
}
