package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/sosicon/pkg/sosicon"
)

func safeOpen(path string) (*sosicon.Document, error) {
	doc, err := sosicon.Open(path, sosicon.DefaultParseOptions())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("SOSI file not found: %s", path)
		}

		var se *sosicon.StageError
		if errors.As(err, &se) {
			log.Printf("Failed to %s %s: %v", se.Stage, se.Path, se.Err)
		}
		return nil, err
	}

	// Problems in the data do not prevent conversion
	for _, problem := range doc.Validate() {
		log.Printf("Warning: %v", problem)
	}
	if doc.FeatureCount() == 0 {
		log.Printf("Warning: %s contains no features", path)
	}

	return doc, nil
}

func main() {
	doc, err := safeOpen("kommune.sos")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	fmt.Printf("Successfully loaded: %s\n", doc.Path())

	// Unknown element types are rejected before anything is encoded
	opts := sosicon.DefaultShapefileOptions()
	opts.Types = []string{"PUNKT", "SIRKEL"}
	if _, err := doc.Shapefile(opts); err != nil {
		var ut *sosicon.ErrUnknownType
		if errors.As(err, &ut) {
			log.Printf("Expected error: %v", err)
		}
	}

	_, err = safeOpen("finnes-ikke.sos")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
