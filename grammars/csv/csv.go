// Package csv reads comma separated values as described by RFC 4180
package csv

import (
	"github.com/pkg/errors"

	c "github.com/clarete/combinator"
)

var defaultGrammar = Grammar(',')

// Parse reads all the records within `data` using commas as
// separators
func Parse(data []byte) ([][]string, error) {
	return parse(defaultGrammar, data)
}

// ParseWith reads all the records within `data` split by `comma`
func ParseWith(data []byte, comma byte) ([][]string, error) {
	return parse(Grammar(comma), data)
}

func parse(p *c.Parser, data []byte) ([][]string, error) {
	r := p.Parse(c.NewBuffer(data))
	if !r.Ok() {
		return nil, errors.Wrap(r.Error(), "csv")
	}
	records := make([][]string, 0, len(r.Values))
	for _, v := range r.Values {
		records = append(records, v.([]string))
	}
	return records, nil
}

// Grammar returns the parser of a whole file.  Each record is
// produced as a []string value.
func Grammar(comma byte) *c.Parser {
	quote := c.One('"').Ignore()
	escapedQuote := c.Str(`""`).Map(func([]any) any { return byte('"') })
	quoted := c.Seq(quote, escapedQuote.Or(c.Satisfy("quoted", func(b byte) bool { return b != '"' })).Many(), quote).
		Map(func(v []any) any {
			out := make([]byte, len(v))
			for i, b := range v {
				out[i] = b.(byte)
			}
			return string(out)
		})
	bare := c.Satisfy("field", func(b byte) bool {
		return b != comma && b != '"' && b != '\r' && b != '\n'
	}).Many().Capture()
	field := quoted.Or(bare)

	record := c.Not(c.EOF()).Chain(field.SepBy(c.One(comma))).Map(func(v []any) any {
		fields := make([]string, len(v))
		for i, f := range v {
			fields[i] = f.(string)
		}
		return fields
	}).Named("record")

	newline := c.Str("\r\n").Or(c.One('\n')).Ignore()
	return c.Seq(record.SepByOptional(newline), newline.Optional(), c.EOF()).Named("csv")
}
