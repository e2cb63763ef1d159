package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/sosicon/pkg/sosicon"
)

func main() {
	// Parse SOSI file
	parser := sosicon.NewParser()
	doc, err := parser.Parse("kommune.sos")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Features: %d\n", doc.FeatureCount())

	bounds := doc.Bounds()
	fmt.Printf("Bounds: [%.2f,%.2f] to [%.2f,%.2f]\n",
		bounds.MinEast, bounds.MinNorth,
		bounds.MaxEast, bounds.MaxNorth)

	// Encode points and write kommune.shp, .shx, .dbf and .cpg
	shp, err := doc.Shapefile(sosicon.DefaultShapefileOptions())
	if err != nil {
		log.Fatal(err)
	}
	if err := sosicon.WriteShapefile(shp, "kommune"); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %s\n", shp)
}
