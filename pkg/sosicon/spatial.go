package sosicon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beetlebugorg/sosicon/internal/sosi"
)

// Bounds represents a rectangle in projected east/north coordinates.
type Bounds struct {
	MinEast  float64 `yaml:"min_east"`  // Western edge
	MinNorth float64 `yaml:"min_north"` // Southern edge
	MaxEast  float64 `yaml:"max_east"`  // Eastern edge
	MaxNorth float64 `yaml:"max_north"` // Northern edge
}

// Contains returns true if the point (east, north) is within the bounds.
func (b Bounds) Contains(east, north float64) bool {
	return east >= b.MinEast && east <= b.MaxEast &&
		north >= b.MinNorth && north <= b.MaxNorth
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxEast < b.MinEast ||
		other.MinEast > b.MaxEast ||
		other.MaxNorth < b.MinNorth ||
		other.MinNorth > b.MaxNorth)
}

// Expand returns a new Bounds grown by margin in all directions.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinEast:  b.MinEast - margin,
		MinNorth: b.MinNorth - margin,
		MaxEast:  b.MaxEast + margin,
		MaxNorth: b.MaxNorth + margin,
	}
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinEast:  min(b.MinEast, other.MinEast),
		MinNorth: min(b.MinNorth, other.MinNorth),
		MaxEast:  max(b.MaxEast, other.MaxEast),
		MaxNorth: max(b.MaxNorth, other.MaxNorth),
	}
}

// ParseBounds reads "minEast,minNorth,maxEast,maxNorth".
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, fmt.Errorf("bounds %q: want minEast,minNorth,maxEast,maxNorth", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("bounds %q: %w", s, err)
		}
		v[i] = f
	}
	b := Bounds{MinEast: v[0], MinNorth: v[1], MaxEast: v[2], MaxNorth: v[3]}
	if b.MinEast > b.MaxEast || b.MinNorth > b.MaxNorth {
		return Bounds{}, fmt.Errorf("bounds %q: minimum exceeds maximum", s)
	}
	return b, nil
}

// String formats b the way ParseBounds reads it.
func (b Bounds) String() string {
	parts := make([]string, 4)
	for i, v := range []float64{b.MinEast, b.MinNorth, b.MaxEast, b.MaxNorth} {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// boundsFromBox converts an element box (X = east, Y = north).
func boundsFromBox(box sosi.Box) Bounds {
	return Bounds{MinEast: box.MinX, MinNorth: box.MinY, MaxEast: box.MaxX, MaxNorth: box.MaxY}
}
