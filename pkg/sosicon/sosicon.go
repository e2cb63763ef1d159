package sosicon

import (
	"io"

	"github.com/beetlebugorg/sosicon/internal/parser"
	"github.com/beetlebugorg/sosicon/internal/sosi"
)

// Parser parses SOSI files into documents.
//
// Create a parser with NewParser and use Parse or ParseWithOptions to read
// files.
type Parser interface {
	// Parse reads a SOSI file and returns the parsed document.
	Parse(filename string) (*Document, error)

	// ParseWithOptions parses a SOSI file with custom options.
	ParseWithOptions(filename string, opts ParseOptions) (*Document, error)
}

// NewParser creates a new SOSI parser with default settings.
//
// Example:
//
//	parser := sosicon.NewParser()
//	doc, err := parser.Parse("kommune.sos")
func NewParser() Parser {
	return &parserWrapper{
		internal: parser.NewParser(),
	}
}

// parserWrapper wraps the internal parser and converts types
type parserWrapper struct {
	internal parser.Parser
}

func (p *parserWrapper) Parse(filename string) (*Document, error) {
	return p.ParseWithOptions(filename, DefaultParseOptions())
}

func (p *parserWrapper) ParseWithOptions(filename string, opts ParseOptions) (*Document, error) {
	tree, err := p.internal.ParseWithOptions(filename, internalParseOptions(opts))
	if err != nil {
		return nil, &StageError{Stage: StageRead, Path: filename, Err: err}
	}
	return newDocument(filename, tree), nil
}

func internalParseOptions(opts ParseOptions) parser.ParseOptions {
	return parser.ParseOptions{
		Charset:       opts.Charset,
		MaxLineLength: opts.MaxLineLength,
	}
}

// Open parses the SOSI file at path.
func Open(path string, opts ParseOptions) (*Document, error) {
	return NewParser().ParseWithOptions(path, opts)
}

// Parse reads a SOSI document from r.
func Parse(r io.Reader, opts ParseOptions) (*Document, error) {
	tree, err := parser.NewParser().ParseReader(r, internalParseOptions(opts))
	if err != nil {
		return nil, &StageError{Stage: StageRead, Err: err}
	}
	return newDocument("", tree), nil
}

// Document is a parsed SOSI file.
//
// It holds the element tree and an index of its geometry elements (PUNKT,
// KURVE, FLATE, TEKST). Coordinates are reported after the document's
// ORIGO-NØ and ENHET have been applied.
type Document struct {
	path     string
	tree     *sosi.Tree
	features []Feature
	index    *spatialIndex
	bounds   Bounds
}

// Feature describes one top-level geometry element of a document.
type Feature struct {
	Name   string // PUNKT, KURVE, FLATE or TEKST
	Serial string
	// ObjType is the ..OBJTYPE value, if any.
	ObjType string
	// Points is the number of coordinates, including referenced ones.
	Points int
	Bounds Bounds

	id sosi.ElementID
}

func newDocument(path string, tree *sosi.Tree) *Document {
	d := &Document{path: path, tree: tree}

	box := sosi.EmptyBox()
	cur := tree.Children(tree.Root())
	for id, ok := cur.Next(); ok; id, ok = cur.Next() {
		e := tree.Element(id)
		if !e.Type.IsGeometry() {
			continue
		}
		c := sosi.Discover(tree, id)
		f := Feature{
			Name:   e.Name,
			Serial: e.Serial,
			Points: c.PointCount(),
			id:     id,
		}
		if ot, ok := tree.First(id, sosi.ElementTypeObjType); ok {
			f.ObjType = tree.Payload(ot).Text
		}
		if f.Points > 0 {
			f.Bounds = boundsFromBox(c.Bounds())
			box.ExpandBox(c.Bounds())
		}
		d.features = append(d.features, f)
	}
	if !box.IsEmpty() {
		d.bounds = boundsFromBox(box)
	}
	d.index = buildSpatialIndex(d.features)
	return d
}

// Path returns the file the document was read from, if any.
func (d *Document) Path() string {
	return d.path
}

// Features returns every geometry element in document order.
func (d *Document) Features() []Feature {
	return d.features
}

// FeatureCount returns the number of geometry elements.
func (d *Document) FeatureCount() int {
	return len(d.features)
}

// Bounds returns the extent of all feature coordinates. It is the zero
// Bounds when the document has no coordinates.
func (d *Document) Bounds() Bounds {
	return d.bounds
}

// FeaturesInBounds returns the features with coordinates that intersect
// bounds, in document order. A single-point feature must lie inside bounds.
func (d *Document) FeaturesInBounds(bounds Bounds) []Feature {
	hits := d.index.search(bounds)
	inside := make(map[int]bool, len(hits))
	for _, i := range hits {
		inside[i] = true
	}

	result := make([]Feature, 0, len(hits))
	for i, f := range d.features {
		if inside[i] && overlaps(bounds, f.Bounds) {
			result = append(result, f)
		}
	}
	return result
}

// overlaps refines an R-tree hit, whose point rectangles are padded.
func overlaps(b, f Bounds) bool {
	if f.MinEast == f.MaxEast && f.MinNorth == f.MaxNorth {
		return b.Contains(f.MinEast, f.MinNorth)
	}
	return b.Intersects(f)
}

// Validate reports dangling references and geometry elements without
// coordinates. Neither prevents conversion.
func (d *Document) Validate() []error {
	return parser.ValidateTree(d.tree)
}

// Dump writes an indented listing of the element tree to w.
func (d *Document) Dump(w io.Writer) error {
	return d.tree.Dump(w, d.tree.Root())
}

// Tree exposes the element tree to the converters in this module.
func (d *Document) Tree() *sosi.Tree {
	return d.tree
}
