package sosi

import (
	"strings"
)

// PayloadKind tags the variant held by a Payload.
type PayloadKind int

const (
	PayloadText PayloadKind = iota
	PayloadCoordinates
	PayloadReferences
)

// Payload is the typed view of an element's raw data.
type Payload struct {
	Kind PayloadKind
	// Text is set for PayloadText.
	Text string
	// Coordinates is set for PayloadCoordinates. The stride is 2 for NØ and 3 for NØH.
	Coordinates string
	Stride      int
	// References is set for PayloadReferences.
	References []Reference
}

// Reference is one serial referenced from a REF element.
type Reference struct {
	Serial string
	// Reversed is set for ":-12": the referenced geometry is walked backwards.
	Reversed bool
	// Subtractive is set for references inside parentheses, which describe
	// geometry to be cut out of the referencing element (islands, holes).
	Subtractive bool
}

// Payload returns the typed payload of id.
func (t *Tree) Payload(id ElementID) Payload {
	e := t.Element(id)
	if e == nil {
		return Payload{Kind: PayloadText}
	}
	switch e.Type {
	case ElementTypeNorthEast:
		return Payload{Kind: PayloadCoordinates, Coordinates: e.Data, Stride: 2}
	case ElementTypeNorthEastHeight:
		return Payload{Kind: PayloadCoordinates, Coordinates: e.Data, Stride: 3}
	case ElementTypeRef:
		return Payload{Kind: PayloadReferences, References: ParseReferences(e.Data)}
	default:
		return Payload{Kind: PayloadText, Text: strings.TrimSpace(e.Data)}
	}
}

// ParseReferences reads a REF payload such as ":1 :-2 (:3 :4)".
//
// Each reference is a colon followed by an optionally signed serial. A minus
// sign reverses the referenced geometry; references between parentheses are
// subtractive. Tokens that are not references are ignored.
func ParseReferences(data string) []Reference {
	var refs []Reference
	depth := 0
	i := 0
	for i < len(data) {
		switch c := data[i]; {
		case c == '(':
			depth++
			i++
		case c == ')':
			if depth > 0 {
				depth--
			}
			i++
		case c == ':':
			i++
			reversed := false
			if i < len(data) && data[i] == '-' {
				reversed = true
				i++
			}
			start := i
			for i < len(data) && data[i] >= '0' && data[i] <= '9' {
				i++
			}
			if i > start {
				refs = append(refs, Reference{
					Serial:      data[start:i],
					Reversed:    reversed,
					Subtractive: depth > 0,
				})
			}
		default:
			i++
		}
	}
	return refs
}
