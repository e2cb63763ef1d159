package sosicon_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/beetlebugorg/sosicon/pkg/sosicon"
)

const example = `.HODE
..TRANSPAR
...ORIGO-NØ 6600000 200000
...ENHET 1
.PUNKT 1:
..OBJTYPE Bygning
..NØ
50000 25000
.KURVE 2:
..OBJTYPE Veg
..NØ
0 0
10000 0
.SLUTT
`

func ExampleDocument_Shapefile() {
	doc, err := sosicon.Parse(strings.NewReader(example), sosicon.DefaultParseOptions())
	if err != nil {
		log.Fatal(err)
	}

	for _, f := range doc.Features() {
		fmt.Printf("%s %s %s\n", f.Name, f.Serial, f.ObjType)
	}

	opts := sosicon.DefaultShapefileOptions()
	opts.Types = []string{"KURVE"}
	shp, err := doc.Shapefile(opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(shp)
	fmt.Println(shp.Bounds())
	// Output:
	// PUNKT 1 Bygning
	// KURVE 2 Veg
	// PolyLine, 1 records
	// 200000,6600000,200000,6610000
}

func ExampleParseBounds() {
	b, err := sosicon.ParseBounds("596000,6642000,598000,6644000")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(b.Contains(597000, 6643000))
	// Output: true
}
