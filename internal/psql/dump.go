package psql

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/beetlebugorg/sosicon/internal/sosi"
)

// ErrInvalidIdentifier is returned for schema or table names that are not
// plain lowercase SQL identifiers.
var ErrInvalidIdentifier = errors.New("psql: invalid identifier")

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Options configures a Dump.
type Options struct {
	// SRID is the destination spatial reference. Default: 4326
	SRID int
	// Schema and Table name the target table. Defaults: sosicon, point
	Schema string
	Table  string
	// BatchSize is the number of rows per INSERT statement. Default: 250000
	BatchSize int
	// Encoding is used by WriteTo. Default: ISO-8859-1, announced with
	// SET NAMES 'LATIN1'.
	Encoding encoding.Encoding
	// Logger receives progress output. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultOptions returns the options used by the command line tool.
func DefaultOptions() Options {
	return Options{
		SRID:      4326,
		Schema:    "sosicon",
		Table:     "point",
		BatchSize: 250000,
		Encoding:  charmap.ISO8859_1,
	}
}

// Column is one VARCHAR column of the generated table.
type Column struct {
	Name  string
	Width int
}

// Dump collects point rows from one or more documents.
type Dump struct {
	opts   Options
	log    zerolog.Logger
	fields map[string]int
	rows   []map[string]string
}

// NewDump validates opts and returns an empty dump.
func NewDump(opts Options) (*Dump, error) {
	defaults := DefaultOptions()
	if opts.SRID == 0 {
		opts.SRID = defaults.SRID
	}
	if opts.Schema == "" {
		opts.Schema = defaults.Schema
	}
	if opts.Table == "" {
		opts.Table = defaults.Table
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaults.BatchSize
	}
	if opts.Encoding == nil {
		opts.Encoding = defaults.Encoding
	}
	for _, name := range []string{opts.Schema, opts.Table} {
		if !identifier.MatchString(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	d := &Dump{
		opts:   opts,
		log:    log,
		fields: make(map[string]int),
	}
	d.fields[d.geomField()] = 0
	return d, nil
}

func (d *Dump) geomField() string {
	return d.opts.Table + "_geom"
}

func (d *Dump) qualified() string {
	return d.opts.Schema + "." + d.opts.Table
}

// Add appends a row for every PUNKT in tree that has a NØ child and returns
// the number of rows added. Coordinates are transformed from the document's
// KOORDSYS to the destination SRID by PostGIS.
func (d *Dump) Add(tree *sosi.Tree) int {
	src := SourceCoordSys(tree, d.log)
	geom := d.geomField()

	added := 0
	cur := tree.ChildrenOfType(tree.Root(), sosi.ElementTypePoint)
	for id, ok := cur.Next(); ok; id, ok = cur.Next() {
		ne, ok := tree.First(id, sosi.ElementTypeNorthEast)
		if !ok {
			continue
		}
		g := tree.CoordinateGroup(ne)
		if g.Len() == 0 {
			continue
		}

		c := g.Coordinates[0]
		row := map[string]string{
			geom: fmt.Sprintf("ST_Transform(ST_GeomFromText('POINT(%.5f %.5f)',%d),%d)",
				c.East, c.North, src.SRID, d.opts.SRID),
		}
		d.widen(geom, len(row[geom]))
		d.extract(tree, id, row)
		d.rows = append(d.rows, row)
		added++
	}

	d.log.Debug().
		Int("rows", added).
		Int("source_srid", src.SRID).
		Msg("Collected points")
	return added
}

// extract copies the data of every descendant of id into row. Deeper
// elements are visited first, so a parent's own data wins on name clashes.
func (d *Dump) extract(tree *sosi.Tree, id sosi.ElementID, row map[string]string) {
	cur := tree.Children(id)
	for child, ok := cur.Next(); ok; child, ok = cur.Next() {
		e := tree.Element(child)
		if e.Type.IsCoordinates() || e.Type == sosi.ElementTypeRef {
			continue
		}
		d.extract(tree, child, row)

		data := strings.TrimSpace(e.Data)
		if data == "" {
			continue
		}
		field := FieldName(e.Name)
		d.widen(field, len(data))
		row[field] = data
	}
}

func (d *Dump) widen(field string, n int) {
	if w, ok := d.fields[field]; !ok || n > w {
		d.fields[field] = n
	}
}

// Rows returns the number of collected rows.
func (d *Dump) Rows() int {
	return len(d.rows)
}

// Columns returns the attribute columns sorted by name, geometry excluded.
func (d *Dump) Columns() []Column {
	geom := d.geomField()
	cols := make([]Column, 0, len(d.fields))
	for name, width := range d.fields {
		if name == geom {
			continue
		}
		cols = append(cols, Column{Name: name, Width: width})
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
	return cols
}

// Statements returns the SQL statements that create the schema, sequence
// and table and insert the rows, in execution order.
func (d *Dump) Statements() []string {
	stmts := []string{
		d.guarded("CREATE SCHEMA " + d.opts.Schema + ";"),
		d.guarded("CREATE SEQUENCE " + d.qualified() + "_serial;"),
		d.createTable(),
		fmt.Sprintf("SELECT AddGeometryColumn( '%s', '%s', '%s', %d, 'POINT', 2 );\n",
			d.opts.Schema, d.opts.Table, d.geomField(), d.opts.SRID),
	}
	return append(stmts, d.inserts()...)
}

// guarded wraps a DDL statement so an existing object is not an error.
func (d *Dump) guarded(stmt string) string {
	return "DO\n$$\nBEGIN\n" + stmt + "\nEXCEPTION WHEN duplicate_schema OR duplicate_table THEN\nEND\n$$ LANGUAGE plpgsql;\n"
}

func (d *Dump) createTable() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s(id_%s INT DEFAULT nextval('%s_serial')",
		d.qualified(), d.opts.Table, d.qualified())
	for _, c := range d.Columns() {
		fmt.Fprintf(&sb, ",%s VARCHAR(%d)", c.Name, c.Width)
	}
	sb.WriteString(");\n")
	return sb.String()
}

// inserts renders the rows as INSERT statements of at most BatchSize rows.
func (d *Dump) inserts() []string {
	if len(d.rows) == 0 {
		return nil
	}

	names := make([]string, 0, len(d.fields))
	for name := range d.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	head := "INSERT INTO " + d.qualified() + " (" + strings.Join(names, ",") + ") VALUES\n"
	geom := d.geomField()

	var stmts []string
	var sb strings.Builder
	for i, row := range d.rows {
		if i%d.opts.BatchSize == 0 {
			if sb.Len() > 0 {
				sb.WriteString(";\n")
				stmts = append(stmts, sb.String())
				sb.Reset()
			}
			sb.WriteString(head)
		} else {
			sb.WriteString(",\n")
		}

		sb.WriteByte('(')
		for j, name := range names {
			if j > 0 {
				sb.WriteByte(',')
			}
			if name == geom {
				sb.WriteString(row[name])
				continue
			}
			sb.WriteString(Quote(row[name]))
		}
		sb.WriteByte(')')

		if (i+1)%10000 == 0 {
			d.log.Debug().Int("rows", i+1).Int("total", len(d.rows)).Msg("Rendering inserts")
		}
	}
	sb.WriteString(";\n")
	return append(stmts, sb.String())
}

// WriteTo writes the complete dump, encoded with Options.Encoding.
func (d *Dump) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := transform.NewWriter(cw, encoding.ReplaceUnsupported(d.opts.Encoding.NewEncoder()))

	if _, err := io.WriteString(tw, "SET NAMES '"+clientEncoding(d.opts.Encoding)+"';\n"); err != nil {
		return cw.n, err
	}
	for _, stmt := range d.Statements() {
		if _, err := io.WriteString(tw, stmt); err != nil {
			return cw.n, err
		}
	}
	err := tw.Close()
	return cw.n, err
}

// clientEncoding names enc the way PostgreSQL's SET NAMES expects.
func clientEncoding(enc encoding.Encoding) string {
	switch enc {
	case charmap.ISO8859_1:
		return "LATIN1"
	case charmap.ISO8859_10:
		return "LATIN6"
	case charmap.Windows1252:
		return "WIN1252"
	default:
		return "UTF8"
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// FieldName turns a SOSI element name into a lowercase SQL identifier.
// Norwegian letters are transliterated and other characters become '_'.
func FieldName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		case r == 'æ':
			sb.WriteString("ae")
		case r == 'ø':
			sb.WriteString("oe")
		case r == 'å':
			sb.WriteString("aa")
		default:
			sb.WriteByte('_')
		}
	}
	s := sb.String()
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		s = "_" + s
	}
	return s
}

// Quote renders s as a single-quoted SQL string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
