package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/beetlebugorg/sosicon/internal/sosi"
)

// Parser reads SOSI text files into element trees.
//
// SOSI is a line oriented format. A line starting with dots opens an element
// whose nesting level is the number of dots; other lines continue the data
// of the element opened last. A document typically looks like:
//
//	.HODE
//	..TEGNSETT ISO8859-1
//	..TRANSPAR
//	...KOORDSYS 23
//	...ORIGO-NØ 0 0
//	...ENHET 0.01
//	.PUNKT 12:
//	..OBJTYPE Bygning
//	..NØ
//	6600000 300000
//	.SLUTT
type Parser interface {
	// Parse reads a SOSI file and returns its element tree
	Parse(filename string) (*sosi.Tree, error)

	// ParseWithOptions parses with custom options
	ParseWithOptions(filename string, opts ParseOptions) (*sosi.Tree, error)

	// ParseReader parses SOSI text from r
	ParseReader(r io.Reader, opts ParseOptions) (*sosi.Tree, error)
}

// ParseOptions configures parsing behavior
type ParseOptions struct {
	// Charset forces the input character set, overriding ..TEGNSETT.
	// Empty means: honour ..TEGNSETT, and before it is seen read valid
	// UTF-8 lines as UTF-8 and anything else as ISO8859-1.
	Charset string

	// MaxLineLength is the longest accepted input line in bytes.
	// Default: 1 MiB
	MaxLineLength int
}

// DefaultParseOptions returns parse options with defaults
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		MaxLineLength: 1 << 20,
	}
}

type defaultParser struct{}

// NewParser creates a new SOSI parser
func NewParser() Parser {
	return &defaultParser{}
}

// Parse reads a SOSI file and returns its element tree
func (p *defaultParser) Parse(filename string) (*sosi.Tree, error) {
	return p.ParseWithOptions(filename, DefaultParseOptions())
}

// ParseWithOptions parses with custom options
func (p *defaultParser) ParseWithOptions(filename string, opts ParseOptions) (*sosi.Tree, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	tree, err := p.ParseReader(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return tree, nil
}

// ParseReader parses SOSI text from r
func (p *defaultParser) ParseReader(r io.Reader, opts ParseOptions) (*sosi.Tree, error) {
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = DefaultParseOptions().MaxLineLength
	}

	b := &builder{tree: sosi.NewTree()}
	b.current = b.tree.Root()
	if opts.Charset != "" {
		cs, err := LookupCharset(opts.Charset)
		if err != nil {
			return nil, err
		}
		b.charset = &cs
		b.forced = true
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, opts.MaxLineLength)), opts.MaxLineLength)

	n := 0
	for scanner.Scan() {
		n++
		if done := b.line(b.decode(scanner.Bytes())); done {
			return b.tree, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ErrParse{Line: n + 1, Err: err}
	}
	return b.tree, nil
}

// builder holds the state of one parse.
type builder struct {
	tree    *sosi.Tree
	stack   []sosi.ElementID // open elements, one per level
	current sosi.ElementID   // receives continuation lines
	charset *Charset
	forced  bool
}

func (b *builder) decode(raw []byte) string {
	if b.charset != nil {
		return b.charset.decode(raw)
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	return charsets["ISO8859-1"].decode(raw)
}

// line consumes one decoded line and reports whether .SLUTT was reached.
func (b *builder) line(s string) bool {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(stripComment(s))
	if s == "" {
		return false
	}

	if !strings.HasPrefix(s, ".") {
		b.tree.AppendData(b.current, continuation(s))
		return false
	}

	level := 0
	for level < len(s) && s[level] == '.' {
		level++
	}
	name, rest := cutSpace(s[level:])
	if name == "" {
		return false
	}

	elementType := sosi.Classify(name)
	if elementType == sosi.ElementTypeEnd && level == 1 {
		return true
	}
	// Node markers (...KP n) annotate the preceding coordinate.
	if name == "KP" {
		return false
	}

	serial, data := splitSerial(rest)
	if elementType.IsCoordinates() {
		data = continuation(data)
	} else {
		data = unquote(data)
	}
	id := b.tree.Append(b.parentFor(level), name, serial, data, level)
	b.stack = append(b.stack, id)
	b.current = id

	if elementType == sosi.ElementTypeCharset && !b.forced {
		if cs, err := LookupCharset(data); err == nil {
			b.charset = &cs
		}
	}
	return false
}

// parentFor pops closed elements and returns the parent for a new element
// at level.
func (b *builder) parentFor(level int) sosi.ElementID {
	for len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		if b.tree.Element(top).Level < level {
			return top
		}
		b.stack = b.stack[:len(b.stack)-1]
	}
	return b.tree.Root()
}

// splitSerial separates a leading "12:" serial from the element data.
func splitSerial(rest string) (serial, data string) {
	first, tail := cutSpace(rest)
	if len(first) < 2 || !strings.HasSuffix(first, ":") {
		return "", rest
	}
	digits := first[:len(first)-1]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", rest
		}
	}
	return digits, tail
}

// cutSpace splits s at the first blank into a token and the trimmed rest.
func cutSpace(s string) (token, rest string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

// continuation drops inline node markers from coordinate data.
func continuation(s string) string {
	if i := strings.Index(s, "..."); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// stripComment removes a trailing ! comment that is not inside quotes.
func stripComment(s string) string {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case '!':
			if !quoted {
				return s[:i]
			}
		}
	}
	return s
}

// unquote removes one pair of enclosing double quotes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
