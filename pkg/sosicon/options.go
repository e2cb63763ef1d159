package sosicon

import (
	"time"

	"github.com/rs/zerolog"
)

// ParseOptions configures parsing behavior.
type ParseOptions struct {
	// Charset forces the input character set (ISO8859-1, ISO8859-10, ANSI,
	// DOSN8, ND7, UTF-8). Empty honours the document's ..TEGNSETT.
	Charset string

	// MaxLineLength is the longest accepted input line in bytes.
	MaxLineLength int
}

// DefaultParseOptions returns default options.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		MaxLineLength: 1 << 20,
	}
}

// ShapefileOptions configures Shapefile encoding.
type ShapefileOptions struct {
	// Types lists the element types to encode, in order. Each type is one
	// encode pass over the document.
	// Default: PUNKT
	Types []string

	// Bounds, when set, restricts output to features intersecting it.
	Bounds *Bounds

	// Charset is the .dbf attribute character set, also written to the
	// .cpg sidecar. Default: ISO8859-1
	Charset string

	// MaxBufferSize caps each generated file in bytes. Zero means unlimited.
	MaxBufferSize int

	// Now supplies the .dbf date. Nil uses time.Now.
	Now func() time.Time

	// Logger receives encoder debug output. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultShapefileOptions returns the options used when none are given.
func DefaultShapefileOptions() ShapefileOptions {
	return ShapefileOptions{
		Types:   []string{"PUNKT"},
		Charset: "ISO8859-1",
	}
}
