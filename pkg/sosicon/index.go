package sosicon

import (
	"github.com/dhconnelly/rtreego"
)

// spatialIndex provides O(log n) bounding box queries over features.
type spatialIndex struct {
	rtree *rtreego.Rtree
}

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	index  int // position in Document.features
	bounds Bounds
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return toRect(f.bounds)
}

// toRect converts bounds to an R-tree rectangle. Point features have zero
// extent, which the R-tree rejects, so each side is at least epsilon long.
func toRect(b Bounds) rtreego.Rect {
	const epsilon = 0.001 // one millimetre in metric projections

	point := rtreego.Point{b.MinEast, b.MinNorth}
	lengths := []float64{
		max(b.MaxEast-b.MinEast, epsilon),
		max(b.MaxNorth-b.MinNorth, epsilon),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// buildSpatialIndex indexes every feature that has coordinates.
func buildSpatialIndex(features []Feature) *spatialIndex {
	// 2D, min=25 children, max=50 children
	rtree := rtreego.NewTree(2, 25, 50)
	for i, f := range features {
		if f.Points == 0 {
			continue
		}
		rtree.Insert(&indexedFeature{index: i, bounds: f.Bounds})
	}
	return &spatialIndex{rtree: rtree}
}

// search returns the positions of features whose bounds intersect b.
func (idx *spatialIndex) search(b Bounds) []int {
	spatials := idx.rtree.SearchIntersect(toRect(b))
	result := make([]int, 0, len(spatials))
	for _, s := range spatials {
		result = append(result, s.(*indexedFeature).index)
	}
	return result
}
