package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/sosicon/pkg/sosicon"
)

func main() {
	doc, err := sosicon.Open("kommune.sos", sosicon.DefaultParseOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Area of interest in the document's projection (east, north)
	area := sosicon.Bounds{
		MinEast: 596000, MaxEast: 598000,
		MinNorth: 6642000, MaxNorth: 6644000,
	}

	// Query R-tree index for features inside the area (O(log n))
	features := doc.FeaturesInBounds(area)
	fmt.Printf("Features in area: %d\n", len(features))
	for _, f := range features {
		fmt.Printf("  %s %s: %s (%d points)\n", f.Name, f.Serial, f.ObjType, f.Points)
	}

	// Export only those features, roads and areas included
	opts := sosicon.DefaultShapefileOptions()
	opts.Types = []string{"KURVE", "FLATE"}
	opts.Bounds = &area

	shp, err := doc.Shapefile(opts)
	if err != nil {
		log.Fatal(err)
	}
	if err := sosicon.WriteShapefile(shp, "kommune_area"); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %s with fields %v\n", shp, shp.Fields())
}
