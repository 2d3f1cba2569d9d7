package combinator

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Empty always succeeds without consuming anything
func Empty() *Parser {
	return New("ε", func(b *Buffer) Result { return Success(nil, 0) })
}

// EOF succeeds only when there's nothing left in the view
func EOF() *Parser {
	return New("EOF", func(b *Buffer) Result {
		if b.Remaining() == 0 {
			return Success(nil, 0)
		}
		return Fail(b.Position(), "expected end of input")
	})
}

// Satisfy matches a single byte for which `pred` holds.  The value
// produced is the byte itself.
func Satisfy(label string, pred func(c byte) bool) *Parser {
	return New(label, func(b *Buffer) Result {
		c, ok := b.Head()
		if !ok {
			return Fail(b.Position(), "expected %s but got EOF", label)
		}
		if !pred(c) {
			return Fail(b.Position(), "expected %s but got %s", label, strconv.QuoteRune(rune(c)))
		}
		b.Forward(1)
		return Success([]any{c}, 1)
	})
}

// One matches the byte `c`
func One(c byte) *Parser {
	return Satisfy(strconv.QuoteRune(rune(c)), func(x byte) bool { return x == c })
}

// Span matches a single byte between `from` and `to` inclusive
func Span(from, to byte) *Parser {
	return Satisfy(fmt.Sprintf("[%c-%c]", from, to), func(c byte) bool { return c >= from && c <= to })
}

// AnyByte matches any single byte
func AnyByte() *Parser {
	return Satisfy("any byte", func(byte) bool { return true })
}

// Str matches the literal `s`.  The value produced is `s`.
func Str(s string) *Parser {
	lit := []byte(s)
	label := strconv.Quote(s)
	return New(label, func(b *Buffer) Result {
		pos := b.Position()
		if !bytes.HasPrefix(b.Slice(pos, pos+b.Remaining()), lit) {
			return Fail(pos, "missing %s", label)
		}
		b.Forward(len(lit))
		return Success([]any{s}, len(lit))
	})
}

// RuneWhere decodes a single UTF-8 code point and matches it if
// `pred` holds.  The value produced is the rune.  Invalid encodings
// are offered to `pred` as utf8.RuneError spanning one byte.
func RuneWhere(label string, pred func(r rune) bool) *Parser {
	return New(label, func(b *Buffer) Result {
		r, size := b.HeadRune()
		if size == 0 {
			return Fail(b.Position(), "expected %s but got EOF", label)
		}
		if !pred(r) {
			return Fail(b.Position(), "expected %s but got %s", label, strconv.QuoteRune(r))
		}
		b.Forward(size)
		return Success([]any{r}, size)
	})
}

// AnyRune matches any single code point, valid or not
func AnyRune() *Parser {
	return RuneWhere("any rune", func(rune) bool { return true })
}

// ValidRune matches any single code point as long as it's valid UTF-8
func ValidRune() *Parser {
	return RuneWhere("valid rune", func(r rune) bool { return r != utf8.RuneError })
}

// Whitespace matches zero or more blank characters.  Without
// `includeNewline` only spaces and tabs are matched.
func Whitespace(includeNewline bool) *Parser {
	label := "blank"
	if includeNewline {
		label = "whitespace"
	}
	return Satisfy(label, func(c byte) bool {
		switch c {
		case ' ', '\t':
			return true
		case '\n', '\r', '\f', '\v':
			return includeNewline
		}
		return false
	}).Many().Named(label)
}
