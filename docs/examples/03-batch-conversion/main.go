package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/sosicon/pkg/sosicon"
)

func main() {
	outDir := flag.String("out", "shp", "Output directory")
	workers := flag.Int("workers", 4, "Files converted in parallel")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("Please provide one or more SOSI files")
	}

	opts := sosicon.DefaultConvertOptions()
	opts.Workers = *workers
	opts.OutputDir = *outDir
	opts.SplitTypes = true
	opts.Shapefile.Types = []string{"PUNKT", "KURVE", "FLATE"}
	opts.ErrorLog = os.Stderr
	opts.Progress = func(done, total int) {
		fmt.Printf("\r%d/%d files", done, total)
	}

	results, errs := sosicon.ConvertFiles(context.Background(), flag.Args(), opts)
	fmt.Println()

	fmt.Printf("=== Converted ===\n")
	for _, r := range results {
		fmt.Printf("%s: %d records\n", r.Path, r.Records)
		for _, out := range r.Outputs {
			fmt.Printf("  %s\n", out)
		}
	}
	if len(errs) > 0 {
		fmt.Printf("%d files failed\n", len(errs))
		os.Exit(1)
	}
}
