package shape

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/beetlebugorg/sosicon/internal/sosi"
)

var (
	// ErrFinalized is returned by Build once the files have been laid out.
	ErrFinalized = errors.New("shape: shapefile already finalized")

	// ErrNotGeometry is returned when Build is asked to encode an element
	// type that has no shape equivalent.
	ErrNotGeometry = errors.New("shape: element type has no shape equivalent")
)

// Options configures a Shapefile encoder.
type Options struct {
	// MaxBufferSize caps the size of each generated file in bytes.
	// Zero means unlimited.
	MaxBufferSize int

	// Encoding converts attribute values before they are stored in the .dbf.
	// Nil selects ISO-8859-1, replacing characters it cannot represent.
	Encoding encoding.Encoding

	// Now supplies the .dbf last-update date. Nil uses time.Now.
	Now func() time.Time

	// Filter, when set, is consulted for every selected element; elements
	// for which it returns false are not encoded.
	Filter func(tree *sosi.Tree, id sosi.ElementID) bool

	// Logger receives per-record debug output. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultOptions returns the options used by the command line tool.
func DefaultOptions() Options {
	return Options{
		Encoding: charmap.ISO8859_1,
		Now:      time.Now,
	}
}

// Shapefile accumulates geometry records and attribute rows for one shape
// type and lays them out as .shp, .shx and .dbf files.
//
// Build may be called several times to append records; Finalize fixes the
// headers. The Write methods finalize on first use.
type Shapefile struct {
	opts    Options
	log     zerolog.Logger
	encoder *encoding.Encoder

	shp chunkBuffer // record area, header excluded
	shx chunkBuffer // entry area, header excluded

	shpHeader [headerSize]byte
	shxHeader [headerSize]byte
	dbf       []byte

	recordCount  int32
	shapeType    ShapeType
	box          sosi.Box
	fieldLengths map[string]int
	records      []dbfRecord

	finalized bool
}

// New creates an empty Shapefile.
func New(opts Options) *Shapefile {
	if opts.Encoding == nil {
		opts.Encoding = charmap.ISO8859_1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Shapefile{
		opts:         opts,
		log:          log,
		encoder:      encoding.ReplaceUnsupported(opts.Encoding.NewEncoder()),
		shp:          chunkBuffer{limit: recordLimit(opts.MaxBufferSize)},
		shx:          chunkBuffer{limit: recordLimit(opts.MaxBufferSize)},
		box:          sosi.EmptyBox(),
		fieldLengths: make(map[string]int),
	}
}

// recordLimit converts a whole-file limit into a limit for the record area.
func recordLimit(max int) int {
	if max <= 0 {
		return 0
	}
	if max <= headerSize {
		return 1
	}
	return max - headerSize
}

// Build encodes every direct child of the tree root whose type is selection.
// Each element yields exactly one record in each of the three files; an
// element without coordinates is written as a null shape.
func (s *Shapefile) Build(tree *sosi.Tree, selection sosi.ElementType) error {
	if s.finalized {
		return ErrFinalized
	}
	shapeType := ShapeEquivalent(selection)
	if shapeType == ShapeTypeNull {
		return fmt.Errorf("%w: %s", ErrNotGeometry, selection)
	}

	written := 0
	cur := tree.ChildrenOfType(tree.Root(), selection)
	for id, ok := cur.Next(); ok; id, ok = cur.Next() {
		if s.opts.Filter != nil && !s.opts.Filter(tree, id) {
			continue
		}
		if err := s.buildRecord(tree, id, shapeType); err != nil {
			return err
		}
		written++
	}

	s.shapeType = shapeType
	s.log.Debug().
		Str("type", selection.String()).
		Int("records", written).
		Msg("Encoded shape records")
	return nil
}

func (s *Shapefile) buildRecord(tree *sosi.Tree, id sosi.ElementID, shapeType ShapeType) error {
	c := sosi.Discover(tree, id)
	s.recordCount++

	offset := s.shp.Len()
	var err error
	switch {
	case c.PointCount() == 0:
		err = s.putNull()
	case shapeType == ShapeTypePoint:
		err = s.putPoint(c)
	default:
		err = s.putPoly(c, shapeType)
	}
	if err != nil {
		return err
	}

	contentWords := (s.shp.Len()-offset)/2 - 4
	if err := s.putIndex(offset, contentWords); err != nil {
		return err
	}
	s.insertDbfRecord(tree, id)

	if e := s.log.Trace(); e.Enabled() {
		e.Int32("record", s.recordCount).
			Str("serial", tree.Element(id).Serial).
			Int("points", c.PointCount()).
			Msg("Encoded element")
	}
	return nil
}

// putIndex appends the .shx entry for the record at offset bytes into the
// record area. Offsets are in 16-bit words from the start of the .shp file.
func (s *Shapefile) putIndex(offset, contentWords int) error {
	o, err := s.shx.expand(shxEntrySize)
	if err != nil {
		return err
	}
	b := s.shx.buf[o : o+shxEntrySize]
	binary.BigEndian.PutUint32(b[0:4], uint32(headerSize/2+offset/2))
	binary.BigEndian.PutUint32(b[4:8], uint32(contentWords))
	return nil
}

// putNull writes a record holding only the null shape type.
func (s *Shapefile) putNull() error {
	const size = 12
	o, err := s.shp.expand(size)
	if err != nil {
		return err
	}
	putRecordHeader(s.shp.buf[o:o+size], s.recordCount, 2, ShapeTypeNull)
	return nil
}

// putPoint writes the first coordinate of c as a Point record.
//
//	Byte 0   Record header (12 bytes incl. shape type)
//	Byte 12  X  little endian double
//	Byte 20  Y  little endian double
func (s *Shapefile) putPoint(c *sosi.Collection) error {
	const size = 28
	o, err := s.shp.expand(size)
	if err != nil {
		return err
	}
	b := s.shp.buf[o : o+size]
	putRecordHeader(b, s.recordCount, 10, ShapeTypePoint)

	p := c.Points()[0]
	putFloat64(b[12:20], p.East)
	putFloat64(b[20:28], p.North)
	s.box.ExpandPoint(p)
	return nil
}

// putPoly writes c as a single-part PolyLine or Polygon record. Polygon
// rings are closed when the first and last points differ.
//
//	Byte 0   Record header (12 bytes incl. shape type)
//	Byte 12  Box        4 little endian doubles
//	Byte 44  NumParts   little endian int32 (always 1)
//	Byte 48  NumPoints  little endian int32
//	Byte 52  Parts      little endian int32 (always 0)
//	Byte 56  Points     NumPoints pairs of little endian doubles
func (s *Shapefile) putPoly(c *sosi.Collection, shapeType ShapeType) error {
	pts := c.OrderedPoints()
	if shapeType == ShapeTypePolygon && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}

	size := 56 + 16*len(pts)
	o, err := s.shp.expand(size)
	if err != nil {
		return err
	}
	b := s.shp.buf[o : o+size]
	putRecordHeader(b, s.recordCount, size/2-4, shapeType)

	box := c.Bounds()
	putFloat64(b[12:20], box.MinX)
	putFloat64(b[20:28], box.MinY)
	putFloat64(b[28:36], box.MaxX)
	putFloat64(b[36:44], box.MaxY)
	binary.LittleEndian.PutUint32(b[44:48], 1)
	binary.LittleEndian.PutUint32(b[48:52], uint32(len(pts)))
	binary.LittleEndian.PutUint32(b[52:56], 0)

	p := b[56:]
	for i, pt := range pts {
		putFloat64(p[i*16:], pt.East)
		putFloat64(p[i*16+8:], pt.North)
	}
	s.box.ExpandBox(box)
	return nil
}

// Finalize writes the file headers and lays out the .dbf. It is a no-op
// after the first successful call.
func (s *Shapefile) Finalize() error {
	if s.finalized {
		return nil
	}
	if err := s.buildDbf(s.opts.Now()); err != nil {
		return err
	}

	shpWords := (headerSize + s.shp.Len()) / 2
	shxWords := (headerSize + s.shx.Len()) / 2
	buildMainHeader(&s.shpHeader, shpWords, s.shapeType, s.box)
	buildMainHeader(&s.shxHeader, shxWords, s.shapeType, s.box)

	s.finalized = true
	s.log.Debug().
		Int32("records", s.recordCount).
		Str("shape_type", s.shapeType.String()).
		Int("fields", len(s.fieldLengths)).
		Msg("Shapefile finalized")
	return nil
}

// WriteShp writes the .shp file to w.
func (s *Shapefile) WriteShp(w io.Writer) error {
	if err := s.Finalize(); err != nil {
		return err
	}
	return writeParts(w, s.shpHeader[:], s.shp.Bytes())
}

// WriteShx writes the .shx file to w.
func (s *Shapefile) WriteShx(w io.Writer) error {
	if err := s.Finalize(); err != nil {
		return err
	}
	return writeParts(w, s.shxHeader[:], s.shx.Bytes())
}

// WriteDbf writes the .dbf file to w.
func (s *Shapefile) WriteDbf(w io.Writer) error {
	if err := s.Finalize(); err != nil {
		return err
	}
	return writeParts(w, s.dbf)
}

// writeParts must only be handed buffers read after Finalize.
func writeParts(w io.Writer, parts ...[]byte) error {
	for _, p := range parts {
		if _, err := w.Write(p); err != nil {
			return err
		}
	}
	return nil
}

// RecordCount returns the number of records encoded so far.
func (s *Shapefile) RecordCount() int {
	return int(s.recordCount)
}

// Bounds returns the master bounding box of all records. The box is empty
// when no record carried coordinates.
func (s *Shapefile) Bounds() sosi.Box {
	return s.box
}

// ShapeType returns the shape type of the most recent Build pass.
func (s *Shapefile) ShapeType() ShapeType {
	return s.shapeType
}

// encodeString converts v to the attribute encoding. Values that fail to
// convert are stored unchanged.
func (s *Shapefile) encodeString(v string) string {
	out, err := s.encoder.String(v)
	if err != nil {
		return v
	}
	return out
}
