package parser

import (
	"github.com/beetlebugorg/sosicon/internal/sosi"
)

// ValidateTree reports structural problems that the converters tolerate but
// a user may want to know about: geometry elements without coordinates and
// references to serials that no element carries.
//
// A nil result means the tree is clean. Problems never stop a conversion.
func ValidateTree(tree *sosi.Tree) []error {
	var problems []error

	cur := tree.Children(tree.Root())
	for id, ok := cur.Next(); ok; id, ok = cur.Next() {
		e := tree.Element(id)
		if !e.Type.IsGeometry() {
			continue
		}
		problems = append(problems, validateReferences(tree, id, e.Serial)...)
		if sosi.Discover(tree, id).PointCount() == 0 {
			problems = append(problems, &ErrEmptyGeometry{Serial: e.Serial, Name: e.Name})
		}
	}
	return problems
}

// validateReferences checks every REF below id, at any depth.
func validateReferences(tree *sosi.Tree, id sosi.ElementID, serial string) []error {
	var problems []error
	cur := tree.Children(id)
	for child, ok := cur.Next(); ok; child, ok = cur.Next() {
		p := tree.Payload(child)
		if p.Kind == sosi.PayloadReferences {
			for _, ref := range p.References {
				if _, found := tree.Resolve(ref.Serial); !found {
					problems = append(problems, &ErrDanglingReference{Serial: serial, Reference: ref.Serial})
				}
			}
		}
		problems = append(problems, validateReferences(tree, child, serial)...)
	}
	return problems
}
