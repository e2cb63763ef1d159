package sosi

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"
)

// Tree is the in-memory representation of one parsed SOSI document.
//
// Elements live in an arena and are addressed by ElementID. A parent owns its
// children by ID; the arena is released as a whole when the tree is dropped.
// The reference index maps serials to elements and is a lookup table only: it
// is never used to manage lifetime, and references may form cycles.
type Tree struct {
	elements []Element
	index    map[string]ElementID

	heads headCache
}

// headCache holds the lazily resolved document-wide head members.
type headCache struct {
	originOnce sync.Once
	origin     Origin
	unitOnce   sync.Once
	unit       Unit
}

// NewTree creates an empty tree with a single root element.
func NewTree() *Tree {
	t := &Tree{
		elements: make([]Element, 0, 64),
		index:    make(map[string]ElementID),
	}
	t.elements = append(t.elements, Element{
		Name:   "",
		Type:   ElementTypeRoot,
		Level:  0,
		parent: NoElement,
	})
	return t
}

// Root returns the ID of the root element.
func (t *Tree) Root() ElementID {
	return 0
}

// Len returns the number of elements including the root.
func (t *Tree) Len() int {
	return len(t.elements)
}

// Element returns the element for id, or nil if id is out of range.
// The returned pointer is valid until the next Append.
func (t *Tree) Element(id ElementID) *Element {
	if id < 0 || int(id) >= len(t.elements) {
		return nil
	}
	return &t.elements[id]
}

// Append adds a new child under parent and registers its serial in the
// reference index. A later element with the same serial replaces the earlier
// index entry.
func (t *Tree) Append(parent ElementID, name, serial, data string, level int) ElementID {
	if t.Element(parent) == nil {
		parent = t.Root()
	}
	id := ElementID(len(t.elements))
	t.elements = append(t.elements, Element{
		Name:   name,
		Serial: serial,
		Type:   Classify(name),
		Data:   data,
		Level:  level,
		parent: parent,
	})
	p := &t.elements[parent]
	p.children = append(p.children, id)
	if serial != "" {
		t.index[serial] = id
	}
	return id
}

// AppendData appends a continuation line to the element's payload.
func (t *Tree) AppendData(id ElementID, data string) {
	e := t.Element(id)
	if e == nil || data == "" {
		return
	}
	if e.Data == "" {
		e.Data = data
		return
	}
	e.Data += "\n" + data
}

// Resolve looks up an element by serial. Dangling references are not an
// error; the second return value reports whether the serial was found.
func (t *Tree) Resolve(serial string) (ElementID, bool) {
	id, ok := t.index[serial]
	if !ok {
		return NoElement, false
	}
	return id, true
}

// Parent returns the parent of id, or NoElement for the root and invalid IDs.
func (t *Tree) Parent(id ElementID) ElementID {
	e := t.Element(id)
	if e == nil {
		return NoElement
	}
	return e.parent
}

// Cursor iterates the children of one element. Its position lives in the
// caller, so several cursors may walk the same element independently.
type Cursor struct {
	tree     *Tree
	parent   ElementID
	pos      int
	filter   ElementType
	filtered bool
}

// Children returns a cursor over the children of id in insertion order.
func (t *Tree) Children(id ElementID) *Cursor {
	return &Cursor{tree: t, parent: id}
}

// ChildrenOfType returns a cursor over the children of id with the given type.
func (t *Tree) ChildrenOfType(id ElementID, typ ElementType) *Cursor {
	return &Cursor{tree: t, parent: id, filter: typ, filtered: true}
}

// Next advances the cursor. It returns false once the children are exhausted.
func (c *Cursor) Next() (ElementID, bool) {
	p := c.tree.Element(c.parent)
	if p == nil {
		return NoElement, false
	}
	for c.pos < len(p.children) {
		id := p.children[c.pos]
		c.pos++
		if !c.filtered || c.tree.elements[id].Type == c.filter {
			return id, true
		}
	}
	return NoElement, false
}

// Reset rewinds the cursor to the first child.
func (c *Cursor) Reset() {
	c.pos = 0
}

// All returns the remaining children as an iterator.
func (c *Cursor) All() iter.Seq[ElementID] {
	return func(yield func(ElementID) bool) {
		for {
			id, ok := c.Next()
			if !ok || !yield(id) {
				return
			}
		}
	}
}

// First returns the first child of id with the given type.
func (t *Tree) First(id ElementID, typ ElementType) (ElementID, bool) {
	return t.ChildrenOfType(id, typ).Next()
}

// LocateHeadMember finds a document-wide head member from any element: it
// walks up to the root and then descends HODE → TRANSPAR → typ, taking the
// first match at each level.
func (t *Tree) LocateHeadMember(from ElementID, typ ElementType) (ElementID, bool) {
	root := from
	for {
		p := t.Parent(root)
		if p == NoElement {
			break
		}
		root = p
	}
	if t.Element(root) == nil {
		return NoElement, false
	}

	head, ok := t.First(root, ElementTypeHead)
	if !ok {
		return NoElement, false
	}
	transpar, ok := t.First(head, ElementTypeTransPar)
	if !ok {
		return NoElement, false
	}
	return t.First(transpar, typ)
}

// Dump writes an indented listing of the subtree rooted at id.
func (t *Tree) Dump(w io.Writer, id ElementID) error {
	return t.dump(w, id, 0)
}

func (t *Tree) dump(w io.Writer, id ElementID, indent int) error {
	e := t.Element(id)
	if e == nil {
		return nil
	}
	space := strings.Repeat(" ", indent)
	if e.Type != ElementTypeRoot {
		if _, err := fmt.Fprintf(w, "%s%s[ %s ]\n", space, e.Name, e.Serial); err != nil {
			return err
		}
		if e.Data != "" {
			data := strings.ReplaceAll(e.Data, "\n", " ")
			if _, err := fmt.Fprintf(w, "%s    -> %s\n", space, data); err != nil {
				return err
			}
		}
		indent += 2
	}
	for _, child := range e.children {
		if err := t.dump(w, child, indent); err != nil {
			return err
		}
	}
	return nil
}
