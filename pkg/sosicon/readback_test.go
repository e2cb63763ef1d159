package sosicon

import (
	"path/filepath"
	"strings"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShapefileReadBack opens the written files with an independent
// Shapefile reader.
func TestShapefileReadBack(t *testing.T) {
	doc := parseTest(t)
	sf, err := doc.Shapefile(ShapefileOptions{Types: []string{"PUNKT", "KURVE"}, Now: testNow})
	require.NoError(t, err)

	base := filepath.Join(t.TempDir(), "kart")
	require.NoError(t, WriteShapefile(sf, base))

	r, err := shp.Open(base + ".shp")
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, shp.POLYLINE, r.GeometryType)
	assert.Equal(t, 3, r.AttributeCount())

	var names []string
	for _, f := range r.Fields() {
		names = append(names, strings.TrimRight(string(f.Name[:]), "\x00"))
	}
	assert.Equal(t, []string{"OBJTYPE", "SOSI_ID", "TYPE"}, names)

	var shapes []shp.Shape
	for r.Next() {
		n, s := r.Shape()
		shapes = append(shapes, s)
		assert.Equal(t, strings.TrimSpace(r.ReadAttribute(n, 1)), []string{"1", "2", "3"}[n])
	}
	require.Len(t, shapes, 3)

	p, ok := shapes[0].(*shp.Point)
	require.True(t, ok)
	assert.Equal(t, 200500.0, p.X)
	assert.Equal(t, 6600500.0, p.Y)

	line, ok := shapes[2].(*shp.PolyLine)
	require.True(t, ok)
	assert.Equal(t, int32(2), line.NumPoints)
	assert.Equal(t, "Veg", strings.TrimSpace(r.ReadAttribute(2, 0)))
}
