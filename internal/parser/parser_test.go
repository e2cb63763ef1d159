package parser

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/sosicon/internal/sosi"
)

const sample = `.HODE
..TEGNSETT UTF-8
..TRANSPAR
...KOORDSYS 23
...ORIGO-NØ 0 0
...ENHET 0.01
.PUNKT 12: ! a building
..OBJTYPE Bygning
..NAVN "Vik ! kirke"
..NØ
6600000 30000000
.KURVE 13:
..OBJTYPE Veg
..NØ
100 200 ...KP 1
300 400
...KP 2
500 600
.FLATE 14:
..REF :13 (:15)
..NØ 1 1
.SLUTT
.PUNKT 99:
`

func parseString(t *testing.T, s string, opts ParseOptions) *sosi.Tree {
	t.Helper()
	tree, err := NewParser().ParseReader(strings.NewReader(s), opts)
	require.NoError(t, err)
	return tree
}

func TestParseStructure(t *testing.T) {
	tree := parseString(t, sample, DefaultParseOptions())
	root := tree.Root()

	var names []string
	for id := range tree.Children(root).All() {
		names = append(names, tree.Element(id).Name)
	}
	assert.Equal(t, []string{"HODE", "PUNKT", "KURVE", "FLATE"}, names, "parsing stops at .SLUTT")

	head, ok := tree.First(root, sosi.ElementTypeHead)
	require.True(t, ok)
	tp, ok := tree.First(head, sosi.ElementTypeTransPar)
	require.True(t, ok)
	assert.Equal(t, 3, tree.Element(tp).ChildCount())

	unit, ok := tree.LocateHeadMember(root, sosi.ElementTypeUnit)
	require.True(t, ok)
	assert.Equal(t, "0.01", tree.Element(unit).Data)
	assert.Equal(t, 3, tree.Element(unit).Level)
}

func TestParseSerialsAndData(t *testing.T) {
	tree := parseString(t, sample, DefaultParseOptions())

	p, ok := tree.Resolve("12")
	require.True(t, ok)
	e := tree.Element(p)
	assert.Equal(t, "PUNKT", e.Name)
	assert.Equal(t, "", e.Data, "comment is stripped")

	var fields []string
	for id := range tree.Children(p).All() {
		fields = append(fields, tree.Element(id).Name+"="+tree.Element(id).Data)
	}
	assert.Equal(t, []string{"OBJTYPE=Bygning", "NAVN=Vik ! kirke", "NØ=6600000 30000000"}, fields)

	_, ok = tree.Resolve("99")
	assert.False(t, ok)
}

func TestParseContinuationAndNodeMarkers(t *testing.T) {
	tree := parseString(t, sample, DefaultParseOptions())

	k, ok := tree.Resolve("13")
	require.True(t, ok)
	ne, ok := tree.First(k, sosi.ElementTypeNorthEast)
	require.True(t, ok)
	assert.Equal(t, "100 200\n300 400\n500 600", tree.Element(ne).Data)

	g := tree.CoordinateGroup(ne)
	require.NotNil(t, g)
	assert.Equal(t, 3, g.Len())
	assert.InDelta(t, 1.0, g.Coordinates[0].North, 1e-9)
	assert.InDelta(t, 2.0, g.Coordinates[0].East, 1e-9)
}

func TestParseInlineCoordinatesAndReferences(t *testing.T) {
	tree := parseString(t, sample, DefaultParseOptions())

	f, ok := tree.Resolve("14")
	require.True(t, ok)
	ref, ok := tree.First(f, sosi.ElementTypeRef)
	require.True(t, ok)
	assert.Equal(t, []sosi.Reference{
		{Serial: "13"},
		{Serial: "15", Subtractive: true},
	}, tree.Payload(ref).References)

	ne, ok := tree.First(f, sosi.ElementTypeNorthEast)
	require.True(t, ok)
	assert.Equal(t, "1 1", tree.Element(ne).Data)
}

func TestParseCharsets(t *testing.T) {
	latin1 := []byte(".HODE\n..TEGNSETT ISO8859-1\n.PUNKT 1:\n..NAVN Bj\xf8rn\xf8ya\n")
	dosn8 := []byte(".HODE\n..TEGNSETT DOSN8\n.PUNKT 1:\n..NAVN \x9b\x86\n")
	nd7 := []byte(".HODE\n..TEGNSETT ND7\n.PUNKT 1:\n..NAVN Bj|rn|ya \\[]\n")
	undeclared := []byte(".PUNKT 1:\n..NAVN Bj\xf8rn\n")

	tests := []struct {
		name  string
		input []byte
		opts  ParseOptions
		want  string
	}{
		{"latin1", latin1, DefaultParseOptions(), "Bjørnøya"},
		{"dos n8", dosn8, DefaultParseOptions(), "øå"},
		{"nd7", nd7, DefaultParseOptions(), "Bjørnøya ØÆÅ"},
		{"undeclared falls back to latin1", undeclared, DefaultParseOptions(), "Bjørn"},
		{"forced overrides declaration", latin1, ParseOptions{Charset: "ANSI"}, "Bjørnøya"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := NewParser().ParseReader(bytes.NewReader(tt.input), tt.opts)
			require.NoError(t, err)
			p, ok := tree.Resolve("1")
			require.True(t, ok)
			navn, ok := tree.First(p, sosi.ElementTypeOther)
			require.True(t, ok)
			assert.Equal(t, tt.want, tree.Element(navn).Data)
		})
	}
}

func TestParseUnknownForcedCharset(t *testing.T) {
	_, err := NewParser().ParseReader(strings.NewReader(".HODE\n"), ParseOptions{Charset: "EBCDIC"})
	var unknown *ErrUnknownCharset
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "EBCDIC", unknown.Name)
}

func TestParseLineTooLong(t *testing.T) {
	input := ".PUNKT 1:\n..NAVN " + strings.Repeat("x", 200) + "\n"
	_, err := NewParser().ParseReader(strings.NewReader(input), ParseOptions{MaxLineLength: 64})

	var perr *ErrParse
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.True(t, errors.Is(err, bufio.ErrTooLong))
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.sos")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	tree, err := NewParser().Parse(path)
	require.NoError(t, err)
	_, ok := tree.Resolve("14")
	assert.True(t, ok)

	_, err = NewParser().Parse(filepath.Join(t.TempDir(), "missing.sos"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitSerial(t *testing.T) {
	tests := []struct {
		in, serial, data string
	}{
		{"12:", "12", ""},
		{"12: rest", "12", "rest"},
		{":12", "", ":12"},
		{"abc:", "", "abc:"},
		{"6600000 300000", "", "6600000 300000"},
		{"", "", ""},
	}
	for _, tt := range tests {
		serial, data := splitSerial(tt.in)
		assert.Equal(t, tt.serial, serial, tt.in)
		assert.Equal(t, tt.data, data, tt.in)
	}
}

func TestValidateTree(t *testing.T) {
	tree := parseString(t, sample, DefaultParseOptions())
	problems := ValidateTree(tree)
	require.Len(t, problems, 1)

	var dangling *ErrDanglingReference
	require.ErrorAs(t, problems[0], &dangling)
	assert.Equal(t, "14", dangling.Serial)
	assert.Equal(t, "15", dangling.Reference)

	empty := parseString(t, ".PUNKT 1:\n..OBJTYPE Bygning\n", DefaultParseOptions())
	problems = ValidateTree(empty)
	require.Len(t, problems, 1)
	var eg *ErrEmptyGeometry
	require.ErrorAs(t, problems[0], &eg)
	assert.Equal(t, "PUNKT 1 has no coordinates", eg.Error())
}
