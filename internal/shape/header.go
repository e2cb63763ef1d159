package shape

import (
	"encoding/binary"
	"math"

	"github.com/beetlebugorg/sosicon/internal/sosi"
)

const (
	headerSize   = 100
	fileCode     = 9994
	fileVersion  = 1000
	shxEntrySize = 8
)

// putFloat64 writes v as a little-endian IEEE-754 double.
func putFloat64(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}

// buildMainHeader fills the 100-byte header shared by .shp and .shx.
//
// Header layout:
//
//	Byte 0    File code 9994        big endian
//	Byte 4-23 Unused                big endian
//	Byte 24   File length (words)   big endian
//	Byte 28   Version 1000          little endian
//	Byte 32   Shape type            little endian
//	Byte 36   Xmin Ymin Xmax Ymax   little endian doubles
//	Byte 68   Zmin Zmax Mmin Mmax   little endian doubles (unused, zero)
func buildMainHeader(h *[headerSize]byte, fileLengthWords int, shapeType ShapeType, box sosi.Box) {
	*h = [headerSize]byte{}

	binary.BigEndian.PutUint32(h[0:4], fileCode)
	binary.BigEndian.PutUint32(h[24:28], uint32(fileLengthWords))
	binary.LittleEndian.PutUint32(h[28:32], fileVersion)
	binary.LittleEndian.PutUint32(h[32:36], uint32(shapeType))

	if box.IsEmpty() {
		box = sosi.Box{}
	}
	putFloat64(h[36:44], box.MinX)
	putFloat64(h[44:52], box.MinY)
	putFloat64(h[52:60], box.MaxX)
	putFloat64(h[60:68], box.MaxY)
}

// putRecordHeader writes the record number and content length (both big
// endian) followed by the little-endian shape type.
func putRecordHeader(b []byte, recordNumber int32, contentLengthWords int, shapeType ShapeType) {
	binary.BigEndian.PutUint32(b[0:4], uint32(recordNumber))
	binary.BigEndian.PutUint32(b[4:8], uint32(contentLengthWords))
	binary.LittleEndian.PutUint32(b[8:12], uint32(shapeType))
}
