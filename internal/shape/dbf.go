package shape

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/beetlebugorg/sosicon/internal/sosi"
)

const (
	dbfHeaderSize     = 32
	dbfDescriptorSize = 32
	dbfNameSize       = 11 // 10 characters + NUL
	dbfMaxFieldWidth  = 254
	dbfTerminator     = 0x0d
	dbfEOF            = 0x1a
	dbfRecordActive   = 0x20
)

// ErrRecordTooLong is returned when the combined field widths do not fit the
// 16-bit record length of the dBase header.
var ErrRecordTooLong = errors.New("shape: dbf record length exceeds 65535 bytes")

// Field describes one character column of the attribute table.
type Field struct {
	Name  string
	Width int
}

// dbfRecord maps field names to encoded values for one row.
type dbfRecord map[string]string

// saveToDbf stores value under field when it is non-empty and shorter than
// 254 bytes, and widens the field to fit. Other values are dropped.
func (s *Shapefile) saveToDbf(rec dbfRecord, field, value string) {
	value = s.encodeString(value)
	n := len(value)
	if value == "" || n >= dbfMaxFieldWidth {
		return
	}
	if n > s.fieldLengths[field] {
		s.fieldLengths[field] = n
	}
	rec[field] = value
}

// extractDbfFields collects attribute values from every descendant of id.
// Coordinate and reference payloads belong to the geometry and are skipped.
func (s *Shapefile) extractDbfFields(tree *sosi.Tree, id sosi.ElementID, rec dbfRecord) {
	children := tree.Children(id)
	for child, ok := children.Next(); ok; child, ok = children.Next() {
		e := tree.Element(child)
		if e.Type.IsCoordinates() || e.Type == sosi.ElementTypeRef {
			continue
		}
		s.saveToDbf(rec, e.Name, strings.TrimSpace(e.Data))
		s.extractDbfFields(tree, child, rec)
	}
}

// insertDbfRecord appends the attribute row for a geometry element: the
// synthetic SOSI_ID and TYPE fields followed by its descendant fields.
func (s *Shapefile) insertDbfRecord(tree *sosi.Tree, id sosi.ElementID) {
	e := tree.Element(id)
	rec := make(dbfRecord)
	s.saveToDbf(rec, "SOSI_ID", e.Serial)
	s.saveToDbf(rec, "TYPE", e.Name)
	s.extractDbfFields(tree, id, rec)
	s.records = append(s.records, rec)
}

// Fields returns the attribute columns sorted by name, as they appear in
// the .dbf field descriptor array.
func (s *Shapefile) Fields() []Field {
	fields := make([]Field, 0, len(s.fieldLengths))
	for name, width := range s.fieldLengths {
		fields = append(fields, Field{Name: name, Width: width})
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name < fields[j].Name
	})
	return fields
}

// buildDbf lays out the complete .dbf file.
//
// dBase III layout:
//
//	Header (32 bytes): version 0x03, last update YY MM DD, record count
//	(uint32 LE), header length (uint16 LE), record length (uint16 LE)
//	Field descriptors (32 bytes each): name[11], type 'C', 4 reserved,
//	width, decimal count, 14 reserved
//	0x0D terminator
//	Records: 0x20 deleted flag + space-padded fixed-width values
//	0x1A end of file
func (s *Shapefile) buildDbf(now time.Time) error {
	fields := s.Fields()

	recordLength := 1
	for _, f := range fields {
		recordLength += f.Width
	}
	if recordLength > 0xffff {
		return fmt.Errorf("%w: %d", ErrRecordTooLong, recordLength)
	}
	headerLength := dbfHeaderSize + len(fields)*dbfDescriptorSize + 1

	size := headerLength + recordLength*len(s.records) + 1
	if s.opts.MaxBufferSize > 0 && size > s.opts.MaxBufferSize {
		return fmt.Errorf("%w: dbf needs %d bytes, limit %d", ErrBufferLimit, size, s.opts.MaxBufferSize)
	}
	buf := make([]byte, size)

	// Header
	buf[0] = 0x03
	buf[1] = byte(now.Year() - 1900)
	buf[2] = byte(now.Month())
	buf[3] = byte(now.Day())
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(s.records)))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(headerLength))
	binary.LittleEndian.PutUint16(buf[10:12], uint16(recordLength))

	// Field descriptors
	o := dbfHeaderSize
	for _, f := range fields {
		name := s.encodeString(f.Name)
		if len(name) > dbfNameSize-1 {
			name = name[:dbfNameSize-1]
		}
		copy(buf[o:o+dbfNameSize], name)
		buf[o+11] = 'C'
		buf[o+16] = byte(f.Width)
		o += dbfDescriptorSize
	}
	buf[o] = dbfTerminator
	o++

	// Records
	for _, rec := range s.records {
		buf[o] = dbfRecordActive
		o++
		for _, f := range fields {
			value := rec[f.Name]
			copy(buf[o:o+f.Width], value)
			for i := o + len(value); i < o+f.Width; i++ {
				buf[i] = ' '
			}
			o += f.Width
		}
	}
	buf[o] = dbfEOF

	s.dbf = buf
	return nil
}
