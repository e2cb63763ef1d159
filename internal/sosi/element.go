package sosi

// ElementType classifies a SOSI element by its tag name.
//
// The set is closed: every tag that is not in the classification table maps
// to ElementTypeOther. The type of an element is a pure function of its name.
type ElementType int

const (
	ElementTypeOther ElementType = iota
	ElementTypeRoot
	ElementTypeHead            // HODE - file header
	ElementTypeTransPar        // TRANSPAR - transformation parameters
	ElementTypeCoordSys        // KOORDSYS - coordinate system code
	ElementTypeOrigin          // ORIGO-NØ - origin north/east offset
	ElementTypeUnit            // ENHET - coordinate unit (e.g. 0.01)
	ElementTypeCharset         // TEGNSETT - character set
	ElementTypePoint           // PUNKT
	ElementTypeCurve           // KURVE
	ElementTypeArea            // FLATE
	ElementTypeText            // TEKST
	ElementTypeNorthEast       // NØ - coordinate pairs
	ElementTypeNorthEastHeight // NØH - coordinate triples
	ElementTypeRef             // REF - references to other elements by serial
	ElementTypeObjType         // OBJTYPE
	ElementTypeUpdateDate      // OPPDATERINGSDATO
	ElementTypeEnd             // SLUTT - end of document
)

// typeNames maps the fixed SOSI vocabulary to element types. Keys are exact,
// uppercase source tokens; both the native and the transliterated spelling of
// Ø are accepted since producers emit either.
var typeNames = map[string]ElementType{
	"HODE":             ElementTypeHead,
	"TRANSPAR":         ElementTypeTransPar,
	"KOORDSYS":         ElementTypeCoordSys,
	"ORIGO-NØ":         ElementTypeOrigin,
	"ORIGO-NOE":        ElementTypeOrigin,
	"ENHET":            ElementTypeUnit,
	"TEGNSETT":         ElementTypeCharset,
	"PUNKT":            ElementTypePoint,
	"KURVE":            ElementTypeCurve,
	"FLATE":            ElementTypeArea,
	"TEKST":            ElementTypeText,
	"NØ":               ElementTypeNorthEast,
	"NOE":              ElementTypeNorthEast,
	"NØH":              ElementTypeNorthEastHeight,
	"NOEH":             ElementTypeNorthEastHeight,
	"REF":              ElementTypeRef,
	"OBJTYPE":          ElementTypeObjType,
	"OPPDATERINGSDATO": ElementTypeUpdateDate,
	"SLUTT":            ElementTypeEnd,
}

// Classify returns the element type for a SOSI tag name.
// Unrecognized names return ElementTypeOther.
func Classify(name string) ElementType {
	if t, ok := typeNames[name]; ok {
		return t
	}
	return ElementTypeOther
}

// TypeByName is the inverse of Classify for the canonical spelling of each
// tag. It is used to turn user selections like "PUNKT" into element types.
func TypeByName(name string) (ElementType, bool) {
	t, ok := typeNames[name]
	return t, ok
}

// String returns the canonical SOSI tag for the type.
func (t ElementType) String() string {
	switch t {
	case ElementTypeRoot:
		return "ROOT"
	case ElementTypeHead:
		return "HODE"
	case ElementTypeTransPar:
		return "TRANSPAR"
	case ElementTypeCoordSys:
		return "KOORDSYS"
	case ElementTypeOrigin:
		return "ORIGO-NØ"
	case ElementTypeUnit:
		return "ENHET"
	case ElementTypeCharset:
		return "TEGNSETT"
	case ElementTypePoint:
		return "PUNKT"
	case ElementTypeCurve:
		return "KURVE"
	case ElementTypeArea:
		return "FLATE"
	case ElementTypeText:
		return "TEKST"
	case ElementTypeNorthEast:
		return "NØ"
	case ElementTypeNorthEastHeight:
		return "NØH"
	case ElementTypeRef:
		return "REF"
	case ElementTypeObjType:
		return "OBJTYPE"
	case ElementTypeUpdateDate:
		return "OPPDATERINGSDATO"
	case ElementTypeEnd:
		return "SLUTT"
	default:
		return "OTHER"
	}
}

// IsGeometry reports whether elements of this type carry a geometry of their own.
func (t ElementType) IsGeometry() bool {
	switch t {
	case ElementTypePoint, ElementTypeCurve, ElementTypeArea, ElementTypeText:
		return true
	default:
		return false
	}
}

// IsCoordinates reports whether the element payload is a coordinate list.
func (t ElementType) IsCoordinates() bool {
	return t == ElementTypeNorthEast || t == ElementTypeNorthEastHeight
}

// ElementID addresses an element inside its Tree. IDs are stable for the
// lifetime of the tree.
type ElementID int32

// NoElement is returned by lookups that found nothing.
const NoElement ElementID = -1

// Element is one node of a parsed SOSI document.
type Element struct {
	// Name is the source tag, e.g. "PUNKT" or "OBJTYPE".
	Name string
	// Serial is the document-unique identifier ("12" for ".PUNKT 12:").
	// Empty for elements that cannot be referenced.
	Serial string
	// Type is derived from Name.
	Type ElementType
	// Data is the raw textual payload, trimmed of the tag and serial.
	Data string
	// Level is the nesting depth taken from the number of leading dots.
	Level int

	parent   ElementID
	children []ElementID
}

// Parent returns the owning element, or NoElement for the root.
func (e *Element) Parent() ElementID {
	return e.parent
}

// ChildCount returns the number of owned children.
func (e *Element) ChildCount() int {
	return len(e.children)
}
