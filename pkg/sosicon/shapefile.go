package sosicon

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beetlebugorg/sosicon/internal/parser"
	"github.com/beetlebugorg/sosicon/internal/shape"
	"github.com/beetlebugorg/sosicon/internal/sosi"
)

// Shapefile is an encoded .shp/.shx/.dbf set ready to be written.
type Shapefile struct {
	sf      *shape.Shapefile
	charset parser.Charset
}

// RecordCount returns the number of records in each of the three files.
func (s *Shapefile) RecordCount() int {
	return s.sf.RecordCount()
}

// Bounds returns the master bounding box, the zero Bounds when empty.
func (s *Shapefile) Bounds() Bounds {
	box := s.sf.Bounds()
	if box.IsEmpty() {
		return Bounds{}
	}
	return boundsFromBox(box)
}

// ShapeType returns the shape type name written into the headers.
func (s *Shapefile) ShapeType() string {
	return s.sf.ShapeType().String()
}

// Fields returns the .dbf column names in file order.
func (s *Shapefile) Fields() []string {
	fields := s.sf.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// WriteShp writes the .shp file to w.
func (s *Shapefile) WriteShp(w io.Writer) error { return s.sf.WriteShp(w) }

// WriteShx writes the .shx file to w.
func (s *Shapefile) WriteShx(w io.Writer) error { return s.sf.WriteShx(w) }

// WriteDbf writes the .dbf file to w.
func (s *Shapefile) WriteDbf(w io.Writer) error { return s.sf.WriteDbf(w) }

// elementType resolves a type name such as "PUNKT" to a geometry type.
func elementType(name string) (sosi.ElementType, error) {
	t, ok := sosi.TypeByName(strings.ToUpper(strings.TrimSpace(name)))
	if !ok || !t.IsGeometry() {
		return sosi.ElementTypeOther, &ErrUnknownType{Name: name}
	}
	return t, nil
}

// Shapefile encodes the document's elements of the requested types.
// Types are encoded in the given order into one record sequence.
func (d *Document) Shapefile(opts ShapefileOptions) (*Shapefile, error) {
	defaults := DefaultShapefileOptions()
	if len(opts.Types) == 0 {
		opts.Types = defaults.Types
	}
	if opts.Charset == "" {
		opts.Charset = defaults.Charset
	}

	cs, err := parser.LookupCharset(opts.Charset)
	if err != nil {
		return nil, &StageError{Stage: StageTransform, Path: d.path, Err: err}
	}
	types := make([]sosi.ElementType, 0, len(opts.Types))
	for _, name := range opts.Types {
		t, err := elementType(name)
		if err != nil {
			return nil, &StageError{Stage: StageTransform, Path: d.path, Err: err}
		}
		types = append(types, t)
	}

	sopts := shape.Options{
		MaxBufferSize: opts.MaxBufferSize,
		Encoding:      cs.Encoding,
		Now:           opts.Now,
		Logger:        opts.Logger,
	}
	if opts.Bounds != nil {
		keep := make(map[sosi.ElementID]bool)
		for _, f := range d.FeaturesInBounds(*opts.Bounds) {
			keep[f.id] = true
		}
		sopts.Filter = func(_ *sosi.Tree, id sosi.ElementID) bool {
			return keep[id]
		}
	}

	sf := shape.New(sopts)
	for _, t := range types {
		if err := sf.Build(d.tree, t); err != nil {
			return nil, &StageError{Stage: StageEncode, Path: d.path, Err: err}
		}
	}
	if err := sf.Finalize(); err != nil {
		return nil, &StageError{Stage: StageEncode, Path: d.path, Err: err}
	}
	return &Shapefile{sf: sf, charset: cs}, nil
}

// WriteShapefile writes basePath.shp, .shx, .dbf and .cpg.
//
// All four files are rendered in memory, written to temporary siblings and
// renamed into place, so a failure leaves no partial output behind.
func WriteShapefile(s *Shapefile, basePath string) error {
	basePath = strings.TrimSuffix(basePath, filepath.Ext(basePath))

	files := []struct {
		ext    string
		render func(io.Writer) error
	}{
		{".shp", s.WriteShp},
		{".shx", s.WriteShx},
		{".dbf", s.WriteDbf},
		{".cpg", func(w io.Writer) error {
			_, err := io.WriteString(w, s.charset.Label)
			return err
		}},
	}

	var temps []string
	cleanup := func() {
		for _, t := range temps {
			os.Remove(t)
		}
	}

	for _, f := range files {
		var buf bytes.Buffer
		if err := f.render(&buf); err != nil {
			cleanup()
			return &StageError{Stage: StageEncode, Path: basePath + f.ext, Err: err}
		}
		tmp, err := writeTemp(basePath+f.ext, buf.Bytes())
		if err != nil {
			cleanup()
			return &StageError{Stage: StageWrite, Path: basePath + f.ext, Err: err}
		}
		temps = append(temps, tmp)
	}

	// Files already in place are moved aside until every rename has
	// succeeded, then restored if a later one fails.
	type replaced struct{ path, backup string }
	var done []replaced
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			if done[i].backup != "" {
				os.Rename(done[i].backup, done[i].path)
			} else {
				os.Remove(done[i].path)
			}
		}
		cleanup()
	}

	for i, f := range files {
		dst := basePath + f.ext
		backup, err := moveAside(dst)
		if err != nil {
			rollback()
			return &StageError{Stage: StageWrite, Path: dst, Err: err}
		}
		if err := os.Rename(temps[i], dst); err != nil {
			if backup != "" {
				os.Rename(backup, dst)
			}
			rollback()
			return &StageError{Stage: StageWrite, Path: dst, Err: err}
		}
		done = append(done, replaced{path: dst, backup: backup})
	}

	for _, r := range done {
		if r.backup != "" {
			os.Remove(r.backup)
		}
	}
	return nil
}

// moveAside renames an existing path to a unique sibling and returns the new
// name. It returns "" when path does not exist.
func moveAside(path string) (string, error) {
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.bak")
	if err != nil {
		return "", err
	}
	f.Close()
	if err := os.Rename(path, f.Name()); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// writeTemp writes data to a temporary file next to path and returns its name.
func writeTemp(path string, data []byte) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// typeSuffix returns the file name suffix used when types are split.
func typeSuffix(name string) string {
	return "_" + strings.ToLower(strings.TrimSpace(name))
}

// fixedClock returns a Now function pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// String summarises the shapefile for log output.
func (s *Shapefile) String() string {
	return fmt.Sprintf("%s, %d records", s.ShapeType(), s.RecordCount())
}
