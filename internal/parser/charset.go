package parser

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Charset is a character set a SOSI file may declare with ..TEGNSETT.
type Charset struct {
	// Name is the canonical TEGNSETT value.
	Name string
	// Label is the name written into .cpg sidecar files.
	Label string
	// Encoding converts between the charset and UTF-8.
	Encoding encoding.Encoding
}

// nd7 is the Norwegian 7-bit variant of ISO 646, where the bracket and
// brace positions hold the Norwegian letters.
var nd7 = strings.NewReplacer(
	"[", "Æ", `\`, "Ø", "]", "Å",
	"{", "æ", "|", "ø", "}", "å",
)

var charsets = map[string]Charset{
	"ISO8859-1":  {"ISO8859-1", "ISO-8859-1", charmap.ISO8859_1},
	"ISO8859-10": {"ISO8859-10", "ISO-8859-10", charmap.ISO8859_10},
	"ANSI":       {"ANSI", "windows-1252", charmap.Windows1252},
	"DOSN8":      {"DOSN8", "IBM865", charmap.CodePage865},
	"UTF-8":      {"UTF-8", "UTF-8", unicode.UTF8},
	"ND7":        {"ND7", "ASCII", encoding.Nop},
}

// LookupCharset returns the charset for a TEGNSETT value. Names are matched
// case-insensitively and "UTF8" is accepted for "UTF-8".
func LookupCharset(name string) (Charset, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "UTF8" {
		key = "UTF-8"
	}
	cs, ok := charsets[key]
	if !ok {
		return Charset{}, &ErrUnknownCharset{Name: name}
	}
	return cs, nil
}

// decode converts one raw line to UTF-8.
func (cs Charset) decode(line []byte) string {
	switch cs.Name {
	case "UTF-8":
		return string(line)
	case "ND7":
		return nd7.Replace(string(line))
	}
	out, err := cs.Encoding.NewDecoder().Bytes(line)
	if err != nil {
		return string(line)
	}
	return string(out)
}
