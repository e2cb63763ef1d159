package sosicon

import (
	"sort"

	"github.com/beetlebugorg/sosicon/internal/sosi"
)

// Summary is an overview of a document for reporting.
type Summary struct {
	Path     string         `yaml:"path,omitempty"`
	Elements int            `yaml:"elements"`
	Features map[string]int `yaml:"features"`
	ObjTypes map[string]int `yaml:"objtypes,omitempty"`
	Head     HeadSummary    `yaml:"head"`
	Bounds   *Bounds        `yaml:"bounds,omitempty"`
	Problems []string       `yaml:"problems,omitempty"`
}

// HeadSummary lists the document head members that affect coordinates.
type HeadSummary struct {
	Charset  string   `yaml:"charset,omitempty"`
	CoordSys string   `yaml:"koordsys,omitempty"`
	Origin   [2]int64 `yaml:"origin"`
	Unit     float64  `yaml:"unit"`
}

// Summarize counts the document's features by type and OBJTYPE and reads
// the head members.
func (d *Document) Summarize() Summary {
	s := Summary{
		Path:     d.path,
		Elements: d.tree.Len() - 1,
		Features: make(map[string]int),
		ObjTypes: make(map[string]int),
	}
	for _, f := range d.features {
		s.Features[f.Name]++
		if f.ObjType != "" {
			s.ObjTypes[f.ObjType]++
		}
	}
	if len(s.ObjTypes) == 0 {
		s.ObjTypes = nil
	}

	root := d.tree.Root()
	if id, ok := d.tree.LocateHeadMember(root, sosi.ElementTypeCoordSys); ok {
		s.Head.CoordSys = d.tree.Payload(id).Text
	}
	head, ok := d.tree.First(root, sosi.ElementTypeHead)
	if ok {
		if id, ok := d.tree.First(head, sosi.ElementTypeCharset); ok {
			s.Head.Charset = d.tree.Payload(id).Text
		}
	}
	o := d.tree.Origin()
	s.Head.Origin = [2]int64{o.North, o.East}
	s.Head.Unit = 1 / d.tree.Unit().Divisor

	for _, f := range d.features {
		if f.Points > 0 {
			b := d.bounds
			s.Bounds = &b
			break
		}
	}

	for _, err := range d.Validate() {
		s.Problems = append(s.Problems, err.Error())
	}
	sort.Strings(s.Problems)
	return s
}
