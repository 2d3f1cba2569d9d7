// Package json is a JSON reader built on top of the combinator
// library.  Objects keep their members in the order they appear in
// the input.
package json

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pkg/errors"

	c "github.com/clarete/combinator"
)

// Member is a key/value pair within an object
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object with its members in input order
type Object []Member

// Get returns the value of the first member named `key`
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns the member names in order
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

var document = Grammar().Trim(true).Chain(c.EOF())

// Parse decodes a single JSON document.  Values are returned as
// Object, []any, string, float64, bool or nil.
func Parse(data []byte) (any, error) {
	r := document.Parse(c.NewBuffer(data))
	if !r.Ok() {
		return nil, errors.Wrap(r.Error(), "json")
	}
	return r.Value(), nil
}

// Grammar returns the parser of a single JSON value, without any
// surrounding whitespace
func Grammar() *c.Parser {
	var value *c.Parser
	ref := c.Lazy(func() *c.Parser { return value })

	null := c.Str("null").Map(func([]any) any { return nil })
	boolean := c.Str("true").Or(c.Str("false")).Map(func(v []any) any {
		return v[0].(string) == "true"
	})

	members := c.Seq(stringLiteral(), symbol(':'), ref).
		Map(func(v []any) any { return Member{Key: v[0].(string), Value: v[1]} }).
		SepBy(symbol(','))
	object := c.Seq(symbol('{'), members.Optional(), symbol('}')).Map(func(v []any) any {
		obj := make(Object, 0, len(v))
		for _, m := range v {
			obj = append(obj, m.(Member))
		}
		return obj
	}).Named("object")

	elements := ref.SepBy(symbol(','))
	array := c.Seq(symbol('['), elements.Optional(), symbol(']')).Map(func(v []any) any {
		return append([]any{}, v...)
	}).Named("array")

	value = c.Choice(object, array, stringLiteral(), number(), boolean, null).Named("value")
	return value
}

// symbol matches a punctuation character and the whitespace around it
func symbol(ch byte) *c.Parser {
	return c.One(ch).Trim(true).Ignore()
}

func number() *c.Parser {
	digits := c.Span('0', '9').Some()
	integer := c.One('0').Or(c.Span('1', '9').Chain(c.Span('0', '9').Many()))
	fraction := c.One('.').Chain(digits)
	exponent := c.Seq(c.Satisfy("exponent", func(b byte) bool { return b == 'e' || b == 'E' }),
		c.Satisfy("sign", func(b byte) bool { return b == '+' || b == '-' }).Optional(),
		digits)
	return c.Seq(c.One('-').Optional(), integer, fraction.Optional(), exponent.Optional()).
		Capture().
		Must(func(r c.Result) bool {
			_, err := strconv.ParseFloat(r.Value().(string), 64)
			return err == nil
		}).
		Map(func(v []any) any {
			f, _ := strconv.ParseFloat(v[0].(string), 64)
			return f
		}).Named("number")
}

var escapes = map[byte]rune{
	'"':  '"',
	'\\': '\\',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func stringLiteral() *c.Parser {
	simple := c.Satisfy("escape", func(b byte) bool { _, ok := escapes[b]; return ok }).
		Map(func(v []any) any { return escapes[v[0].(byte)] })
	unicode := c.One('u').Ignore().Chain(c.Satisfy("hex digit", isHex).Repeat(4).Capture()).
		Map(func(v []any) any {
			n, _ := strconv.ParseUint(v[0].(string), 16, 32)
			return rune(n)
		})
	escape := c.One('\\').Ignore().Chain(simple.Or(unicode))
	char := c.RuneWhere("string character", func(r rune) bool {
		return r != '"' && r != '\\' && r >= 0x20
	})
	quote := c.One('"').Ignore()
	return c.Seq(quote, escape.Or(char).Many(), quote).Map(func(v []any) any {
		var s strings.Builder
		for i := 0; i < len(v); i++ {
			r := v[i].(rune)
			if utf16.IsSurrogate(r) && i+1 < len(v) {
				if d := utf16.DecodeRune(r, v[i+1].(rune)); d != utf8.RuneError {
					s.WriteRune(d)
					i++
					continue
				}
			}
			s.WriteRune(r)
		}
		return s.String()
	}).Named("string")
}
