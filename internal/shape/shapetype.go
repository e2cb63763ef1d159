// Package shape encodes SOSI element trees as ESRI Shapefiles.
//
// A Shapefile is three files that must stay aligned record for record:
//   - .shp: a 100-byte header followed by variable-length geometry records
//   - .shx: the same header followed by one 8-byte offset/length entry per record
//   - .dbf: a dBase III table with one attribute row per record
//
// The .shp/.shx headers and record headers mix big- and little-endian fields;
// all coordinates are little-endian IEEE-754 doubles.
//
// Reference: ESRI Shapefile Technical Description (July 1998).
package shape

import (
	"github.com/beetlebugorg/sosicon/internal/sosi"
)

// ShapeType is the shape type code written into headers and records.
type ShapeType int32

const (
	ShapeTypeNull     ShapeType = 0
	ShapeTypePoint    ShapeType = 1
	ShapeTypePolyLine ShapeType = 3
	ShapeTypePolygon  ShapeType = 5
)

// String returns the shape type name used by the Shapefile documentation.
func (s ShapeType) String() string {
	switch s {
	case ShapeTypePoint:
		return "Point"
	case ShapeTypePolyLine:
		return "PolyLine"
	case ShapeTypePolygon:
		return "Polygon"
	default:
		return "Null"
	}
}

// ShapeEquivalent returns the shape type used to encode SOSI elements of
// type t. Types without a geometry of their own map to ShapeTypeNull.
func ShapeEquivalent(t sosi.ElementType) ShapeType {
	switch t {
	case sosi.ElementTypePoint, sosi.ElementTypeText:
		return ShapeTypePoint
	case sosi.ElementTypeCurve:
		return ShapeTypePolyLine
	case sosi.ElementTypeArea:
		return ShapeTypePolygon
	default:
		return ShapeTypeNull
	}
}
