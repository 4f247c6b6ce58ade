package svg

import (
	"slices"
	"strconv"
	"strings"
)

// Namespace URIs that affect how elements are classified.
const (
	NamespaceSVG      = "http://www.w3.org/2000/svg"
	NamespaceInkscape = "http://www.inkscape.org/namespaces/inkscape"
	NamespaceSodipodi = "http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd"
)

// Kind classifies a node of the document tree.
type Kind int

// Node kinds. Everything from KindComment on is not an element and is skipped
// by [FindRecursive].
const (
	KindOther Kind = iota // element outside the kinds below, or outside the SVG namespace
	KindSVG
	KindGroup
	KindPath
	KindText
	KindTSpan
	KindFlowRoot
	KindFlowPara
	KindFlowSpan
	KindComment
	KindProcInst
	KindDirective
)

var kindNames = map[string]Kind{
	"svg":      KindSVG,
	"g":        KindGroup,
	"path":     KindPath,
	"text":     KindText,
	"tspan":    KindTSpan,
	"flowRoot": KindFlowRoot,
	"flowPara": KindFlowPara,
	"flowSpan": KindFlowSpan,
}

// String returns the tag name the kind stands for.
func (k Kind) String() string {
	switch k {
	case KindSVG:
		return "svg"
	case KindGroup:
		return "g"
	case KindPath:
		return "path"
	case KindText:
		return "text"
	case KindTSpan:
		return "tspan"
	case KindFlowRoot:
		return "flowRoot"
	case KindFlowPara:
		return "flowPara"
	case KindFlowSpan:
		return "flowSpan"
	case KindComment:
		return "#comment"
	case KindProcInst:
		return "#procinst"
	case KindDirective:
		return "#directive"
	default:
		return "other"
	}
}

// IsText reports whether k is one of the text-bearing kinds.
func (k Kind) IsText() bool {
	switch k {
	case KindText, KindTSpan, KindFlowRoot, KindFlowPara, KindFlowSpan:
		return true
	}
	return false
}

// Attr is one attribute. Name is the qualified name as written in the source,
// e.g. "inkscape:label".
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the document tree.
//
// Character data is not a node of its own: Text holds the data between the
// start tag and the first child, Tail the data between this node's end and the
// next sibling. Comments and processing instructions are kept in Children so
// that they survive a round trip, with their content in Text.
type Element struct {
	Kind     Kind
	Name     string // qualified tag as written, e.g. "path" or "svg:path"
	Space    string // resolved namespace URI
	Attrs    []Attr
	Children []*Element
	Text     string
	Tail     string

	parent *Element
}

// NewElement returns an element in the SVG namespace with the given local
// name.
func NewElement(name string) *Element {
	return &Element{Kind: kindOf(NamespaceSVG, name), Name: name, Space: NamespaceSVG}
}

func kindOf(space, local string) Kind {
	if space != NamespaceSVG && space != "" {
		return KindOther
	}
	if k, ok := kindNames[local]; ok {
		return k
	}
	return KindOther
}

// IsElement reports whether e is an element rather than a comment or
// processing instruction.
func (e *Element) IsElement() bool {
	return e.Kind < KindComment
}

// Local returns the tag name without its prefix.
func (e *Element) Local() string {
	if i := strings.IndexByte(e.Name, ':'); i >= 0 {
		return e.Name[i+1:]
	}
	return e.Name
}

// Parent returns the enclosing element, or nil for the root.
func (e *Element) Parent() *Element { return e.parent }

// Get returns the value of the named attribute.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attr returns the value of the named attribute, or "" if absent.
func (e *Element) Attr(name string) string {
	v, _ := e.Get(name)
	return v
}

// Has reports whether the named attribute is present.
func (e *Element) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Set sets an attribute, keeping its position if it already exists.
func (e *Element) Set(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Remove deletes an attribute and reports whether it was present.
func (e *Element) Remove(name string) bool {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// ID returns the id attribute.
func (e *Element) ID() string { return e.Attr("id") }

// Label returns the Inkscape layer or object label, if any.
func (e *Element) Label() string { return e.Attr("inkscape:label") }

// Style parses the style attribute. A missing attribute yields an empty style.
func (e *Element) Style() *Style {
	return ParseStyle(e.Attr("style"))
}

// SetStyle writes s back to the style attribute.
func (e *Element) SetStyle(s *Style) {
	e.Set("style", s.String())
}

// AppendChild adds c as the last child of e.
func (e *Element) AppendChild(c *Element) {
	c.parent = e
	e.Children = append(e.Children, c)
}

// Path returns a location for e that is stable across parses of the same
// document, such as "svg/g[1]/path[0]". Indexes count element siblings with
// the same tag.
func (e *Element) Path() string {
	var parts []string
	for cur := e; cur != nil; cur = cur.parent {
		part := cur.Local()
		if p := cur.parent; p != nil {
			n := 0
			for _, sib := range p.Children {
				if sib == cur {
					break
				}
				if sib.IsElement() && sib.Name == cur.Name {
					n++
				}
			}
			part += "[" + strconv.Itoa(n) + "]"
		}
		parts = append(parts, part)
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

// Ref returns the id of e, or its [Element.Path] when it has none.
func (e *Element) Ref() string {
	if id := e.ID(); id != "" {
		return id
	}
	return e.Path()
}
