package svg

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"

	"github.com/matzehuels/xkcdify/pkg/errors"
)

// Document is a parsed SVG file.
//
// The tree keeps everything needed to write the file back out close to how it
// came in: attribute order, namespace prefixes, comments, processing
// instructions and whitespace.
type Document struct {
	Root *Element

	// Prolog holds the comments, processing instructions and directives
	// before the root element, Epilog those after it.
	Prolog []*Element
	Epilog []*Element
}

// Parse reads an SVG document. The root element must be <svg>.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{}

	var stack []*Element
	scopes := []map[string]string{{"xml": "http://www.w3.org/XML/1998/namespace"}}

	// prev is the node whose Tail receives character data at the top level.
	var prev *Element

	addMisc := func(n *Element) {
		if len(stack) > 0 {
			stack[len(stack)-1].AppendChild(n)
			return
		}
		if doc.Root == nil {
			doc.Prolog = append(doc.Prolog, n)
		} else {
			doc.Epilog = append(doc.Epilog, n)
		}
		prev = n
	}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode token")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && doc.Root != nil {
				return nil, errors.New(errors.ErrCodeInvalidDocument, "multiple root elements")
			}
			scope := pushScope(scopes[len(scopes)-1], t.Attr)
			scopes = append(scopes, scope)

			el := &Element{
				Name:  qualified(t.Name),
				Space: scope[t.Name.Space],
				Attrs: make([]Attr, len(t.Attr)),
			}
			el.Kind = kindOf(el.Space, t.Name.Local)
			for i, a := range t.Attr {
				el.Attrs[i] = Attr{Name: qualified(a.Name), Value: a.Value}
			}

			if len(stack) == 0 {
				doc.Root = el
				prev = el
			} else {
				stack[len(stack)-1].AppendChild(el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidDocument, "unexpected end tag </%s>", qualified(t.Name))
			}
			top := stack[len(stack)-1]
			if top.Name != qualified(t.Name) {
				return nil, errors.New(errors.ErrCodeInvalidDocument,
					"end tag </%s> does not match <%s>", qualified(t.Name), top.Name)
			}
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]

		case xml.CharData:
			text := string(t)
			switch {
			case len(stack) > 0:
				top := stack[len(stack)-1]
				if n := len(top.Children); n > 0 {
					top.Children[n-1].Tail += text
				} else {
					top.Text += text
				}
			case prev != nil:
				prev.Tail += text
			}

		case xml.Comment:
			addMisc(&Element{Kind: KindComment, Text: string(t)})

		case xml.ProcInst:
			addMisc(&Element{Kind: KindProcInst, Name: t.Target, Text: string(t.Inst)})

		case xml.Directive:
			addMisc(&Element{Kind: KindDirective, Text: string(t)})
		}
	}

	if len(stack) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "unclosed element <%s>", stack[len(stack)-1].Name)
	}
	if doc.Root == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "no root element")
	}
	if doc.Root.Local() != "svg" {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "root element is <%s>, not <svg>", doc.Root.Name)
	}
	return doc, nil
}

// ParseString is Parse on a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// pushScope returns the prefix bindings in effect inside an element with the
// given attributes. The empty prefix maps to the default namespace.
func pushScope(parent map[string]string, attrs []xml.Attr) map[string]string {
	var scope map[string]string
	for _, a := range attrs {
		var prefix string
		switch {
		case a.Name.Space == "xmlns":
			prefix = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			prefix = ""
		default:
			continue
		}
		if scope == nil {
			scope = make(map[string]string, len(parent)+1)
			for k, v := range parent {
				scope[k] = v
			}
		}
		scope[prefix] = a.Value
	}
	if scope == nil {
		return parent
	}
	return scope
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;",
	)
)

// Encode writes the document as XML.
func (d *Document) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, n := range d.Prolog {
		writeNode(bw, n)
	}
	writeNode(bw, d.Root)
	for _, n := range d.Epilog {
		writeNode(bw, n)
	}
	return bw.Flush()
}

// String returns the encoded document.
func (d *Document) String() string {
	var b strings.Builder
	_ = d.Encode(&b)
	return b.String()
}

// bufio.Writer keeps the first write error and reports it from Flush, so the
// individual writes below are unchecked.
func writeNode(w *bufio.Writer, e *Element) {
	switch e.Kind {
	case KindComment:
		w.WriteString("<!--")
		w.WriteString(e.Text)
		w.WriteString("-->")
	case KindProcInst:
		w.WriteString("<?")
		w.WriteString(e.Name)
		if e.Text != "" {
			w.WriteByte(' ')
			w.WriteString(e.Text)
		}
		w.WriteString("?>")
	case KindDirective:
		w.WriteString("<!")
		w.WriteString(e.Text)
		w.WriteByte('>')
	default:
		w.WriteByte('<')
		w.WriteString(e.Name)
		for _, a := range e.Attrs {
			w.WriteByte(' ')
			w.WriteString(a.Name)
			w.WriteString(`="`)
			attrEscaper.WriteString(w, a.Value)
			w.WriteByte('"')
		}
		if len(e.Children) == 0 && e.Text == "" {
			w.WriteString("/>")
			break
		}
		w.WriteByte('>')
		textEscaper.WriteString(w, e.Text)
		for _, c := range e.Children {
			writeNode(w, c)
		}
		w.WriteString("</")
		w.WriteString(e.Name)
		w.WriteByte('>')
	}
	textEscaper.WriteString(w, e.Tail)
}
