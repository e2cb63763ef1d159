// Package psql turns SOSI point elements into a PostGIS SQL dump and can
// load that dump into a database.
package psql

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/beetlebugorg/sosicon/internal/sosi"
)

// CoordSys is a SOSI KOORDSYS code and its EPSG equivalent.
type CoordSys struct {
	Code int
	SRID int
	Name string
}

// DefaultCoordSys is used when a document declares no known KOORDSYS.
var DefaultCoordSys = CoordSys{Code: 23, SRID: 25833, Name: "EUREF89 / UTM zone 33N"}

var coordSystems = map[int]CoordSys{
	1:  {1, 27391, "NGO1948 Axis I"},
	2:  {2, 27392, "NGO1948 Axis II"},
	3:  {3, 27393, "NGO1948 Axis III"},
	4:  {4, 27394, "NGO1948 Axis IV"},
	5:  {5, 27395, "NGO1948 Axis V"},
	6:  {6, 27396, "NGO1948 Axis VI"},
	7:  {7, 27397, "NGO1948 Axis VII"},
	8:  {8, 27398, "NGO1948 Axis VIII"},
	21: {21, 25831, "EUREF89 / UTM zone 31N"},
	22: {22, 25832, "EUREF89 / UTM zone 32N"},
	23: DefaultCoordSys,
	24: {24, 25834, "EUREF89 / UTM zone 34N"},
	25: {25, 25835, "EUREF89 / UTM zone 35N"},
	26: {26, 25836, "EUREF89 / UTM zone 36N"},
	31: {31, 23031, "ED50 / UTM zone 31N"},
	32: {32, 23032, "ED50 / UTM zone 32N"},
	33: {33, 23033, "ED50 / UTM zone 33N"},
	34: {34, 23034, "ED50 / UTM zone 34N"},
	35: {35, 23035, "ED50 / UTM zone 35N"},
	36: {36, 23036, "ED50 / UTM zone 36N"},
	50: {50, 4230, "ED50 geographic"},
	84: {84, 4326, "WGS84 geographic"},
}

// LookupCoordSys returns the coordinate system for a KOORDSYS code.
func LookupCoordSys(code int) (CoordSys, bool) {
	cs, ok := coordSystems[code]
	return cs, ok
}

// SourceCoordSys reads ..KOORDSYS from the document head. A missing or
// unknown code falls back to DefaultCoordSys with a warning.
func SourceCoordSys(tree *sosi.Tree, log zerolog.Logger) CoordSys {
	id, ok := tree.LocateHeadMember(tree.Root(), sosi.ElementTypeCoordSys)
	if !ok {
		log.Warn().
			Int("srid", DefaultCoordSys.SRID).
			Msg("No KOORDSYS in document, using default")
		return DefaultCoordSys
	}

	fields := strings.Fields(tree.Element(id).Data)
	if len(fields) > 0 {
		if code, err := strconv.Atoi(fields[0]); err == nil {
			if cs, ok := LookupCoordSys(code); ok {
				return cs
			}
		}
	}
	log.Warn().
		Str("koordsys", tree.Element(id).Data).
		Int("srid", DefaultCoordSys.SRID).
		Msg("Unknown KOORDSYS, using default")
	return DefaultCoordSys
}
