// Package xml reads a small subset of XML: elements, attributes, text
// and self-closing tags.  Comments and the `<?xml ... ?>` declaration
// are skipped.  There's no support for DTDs, CDATA or namespaces.
package xml

import (
	"strings"

	"github.com/pkg/errors"

	c "github.com/clarete/combinator"
)

// Attr is a name/value pair within an opening tag
type Attr struct {
	Name  string
	Value string
}

// Element is a tag with its attributes and content.  Children are
// either strings or *Element.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []any
}

// Attr returns the value of the attribute `name`
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text concatenates all the text found within the element
func (e *Element) Text() string {
	var s strings.Builder
	for _, child := range e.Children {
		switch ch := child.(type) {
		case string:
			s.WriteString(ch)
		case *Element:
			s.WriteString(ch.Text())
		}
	}
	return s.String()
}

var document = Grammar()

// Parse reads a document with a single root element
func Parse(data []byte) (*Element, error) {
	r := document.Parse(c.NewBuffer(data))
	if !r.Ok() {
		return nil, errors.Wrap(r.Error(), "xml")
	}
	return r.Value().(*Element), nil
}

var entities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// tagHead is what an opening tag produces before its content is known
type tagHead struct {
	name  string
	attrs []Attr
}

// closeTag is the name within `</name>`
type closeTag string

func isNameStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' || b == ':'
}

func isNameChar(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9') || b == '-' || b == '.'
}

// Grammar returns the parser of a whole document, producing the root
// *Element
func Grammar() *c.Parser {
	ws := c.Whitespace(true).Ignore()
	name := c.Satisfy("name", isNameStart).Chain(c.Satisfy("name", isNameChar).Many()).Capture()

	quoted := func(q byte) *c.Parser {
		return c.Satisfy("attribute value", func(b byte) bool { return b != q && b != '<' }).
			Many().Capture().Between(c.One(q), c.One(q))
	}
	attr := c.Seq(c.Whitespace(true).Must(func(r c.Result) bool { return r.Length > 0 }).Ignore(),
		name, c.One('=').Trim(true).Ignore(), quoted('"').Or(quoted('\''))).
		Map(func(v []any) any {
			return Attr{Name: v[0].(string), Value: entities.Replace(v[1].(string))}
		})
	head := c.Seq(c.One('<').Ignore(), name, attr.Many(), ws).Map(func(v []any) any {
		h := tagHead{name: v[0].(string)}
		for _, a := range v[1:] {
			h.attrs = append(h.attrs, a.(Attr))
		}
		return h
	})

	skipUntil := func(open, close string) *c.Parser {
		return c.Seq(c.Str(open), c.Seq(c.Not(c.Str(close)), c.AnyByte()).Many(), c.Str(close)).Ignore()
	}
	comment := skipUntil("<!--", "-->")
	declaration := skipUntil("<?", "?>")

	selfClosing := head.Chain(c.Str("/>").Ignore()).Map(func(v []any) any {
		h := v[0].(tagHead)
		return &Element{Name: h.name, Attrs: h.attrs}
	})

	closing := c.Seq(c.Str("</").Ignore(), name, ws, c.One('>').Ignore()).Map(func(v []any) any {
		return closeTag(v[0].(string))
	})

	text := c.Satisfy("text", func(b byte) bool { return b != '<' }).Some().Capture().Map(func(v []any) any {
		s := v[0].(string)
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return entities.Replace(s)
	})

	var element *c.Parser
	ref := c.Lazy(func() *c.Parser { return element })
	content := c.Choice(comment, ref, text)

	full := c.Seq(head.Chain(c.One('>').Ignore()), content.Many(), closing).
		Must(func(r c.Result) bool {
			h := r.Values[0].(tagHead)
			return string(r.Values[len(r.Values)-1].(closeTag)) == h.name
		}).
		Map(func(v []any) any {
			h := v[0].(tagHead)
			el := &Element{Name: h.name, Attrs: h.attrs}
			for _, child := range v[1 : len(v)-1] {
				if child != nil {
					el.Children = append(el.Children, child)
				}
			}
			return el
		})
	element = selfClosing.Or(full).Named("element")

	misc := comment.Or(declaration).Or(c.Whitespace(true).Must(func(r c.Result) bool { return r.Length > 0 }).Ignore())
	return c.Seq(misc.Many(), element, misc.Many(), c.EOF()).Named("document")
}
