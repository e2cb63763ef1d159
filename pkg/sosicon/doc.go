// Package sosicon converts SOSI documents, the Norwegian geodata exchange
// format, into ESRI Shapefiles and PostGIS SQL dumps.
//
// # Basic Usage
//
//	doc, err := sosicon.Open("kommune.sos", sosicon.DefaultParseOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("%d features covering %+v\n", doc.FeatureCount(), doc.Bounds())
//
// # Shapefile Output
//
// A document is encoded into a Shapefile for one or more element types
// (PUNKT, KURVE, FLATE, TEKST). Every selected element yields one record in
// each of the .shp, .shx and .dbf files:
//
//	sf, err := doc.Shapefile(sosicon.ShapefileOptions{Types: []string{"PUNKT"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := sosicon.WriteShapefile(sf, "out/kommune"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Spatial Queries
//
// Geometry elements are indexed in an R-tree on load. Coordinates are in
// the document's projected system, east/north after ORIGO-NØ and ENHET have
// been applied:
//
//	area := sosicon.Bounds{MinEast: 250000, MinNorth: 6640000, MaxEast: 270000, MaxNorth: 6660000}
//	for _, f := range doc.FeaturesInBounds(area) {
//	    fmt.Println(f.Name, f.Serial)
//	}
//
// # Batch Conversion
//
// ConvertFiles converts many files concurrently, one Shapefile set per input:
//
//	results, errs := sosicon.ConvertFiles(ctx, paths, sosicon.DefaultConvertOptions())
package sosicon
