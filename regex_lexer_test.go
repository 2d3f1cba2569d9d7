package combinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	kinds := func(tokens []token) []tokenKind {
		out := make([]tokenKind, len(tokens))
		for i, tok := range tokens {
			out[i] = tok.kind
		}
		return out
	}

	t.Run("every kind of token", func(t *testing.T) {
		tokens, err := tokenize(`^a.[bc](d)\1*$`)
		require.NoError(t, err)
		assert.Equal(t, []tokenKind{
			tokenAnchorStart,
			tokenLiteral,
			tokenDot,
			tokenClass,
			tokenGroupOpen,
			tokenLiteral,
			tokenGroupClose,
			tokenBackref,
			tokenQuantifier,
			tokenAnchorEnd,
		}, kinds(tokens))
		assert.Equal(t, "class([bc]) @ 3", tokens[3].String())
		assert.Equal(t, 1, tokens[7].ref)
	})

	t.Run("quantifier bounds", func(t *testing.T) {
		for _, test := range []struct {
			pattern  string
			min, max int
		}{
			{"a*", 0, unbounded},
			{"a+", 1, unbounded},
			{"a?", 0, 1},
			{"a{3}", 3, 3},
			{"a{2,5}", 2, 5},
			{"a{2,}", 2, unbounded},
			{"a{0,1}", 0, 1},
		} {
			tokens, err := tokenize(test.pattern)
			require.NoError(t, err, test.pattern)
			require.Len(t, tokens, 2, test.pattern)
			assert.Equal(t, test.min, tokens[1].min, test.pattern)
			assert.Equal(t, test.max, tokens[1].max, test.pattern)
		}
	})

	t.Run("escapes", func(t *testing.T) {
		tokens, err := tokenize(`\n\t\r\.\(\)\[\]\{\}\\\+\*\?\^\$\|\-\/`)
		require.NoError(t, err)
		var lits []rune
		for _, tok := range tokens {
			require.Equal(t, tokenLiteral, tok.kind)
			lits = append(lits, tok.lit)
		}
		assert.Equal(t, "\n\t\r.()[]{}\\+*?^$|-/", string(lits))
	})

	t.Run("multi byte literals", func(t *testing.T) {
		tokens, err := tokenize("ñé")
		require.NoError(t, err)
		require.Len(t, tokens, 2)
		assert.Equal(t, 'ñ', tokens[0].lit)
		assert.Equal(t, 2, tokens[1].pos)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, err := tokenize("a\xff")
		require.Error(t, err)
		assert.Equal(t, "invalid regex `a\xff`: invalid UTF-8 @ 1", err.Error())
	})

	t.Run("missing closing brace", func(t *testing.T) {
		_, err := tokenize("a{2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing `}`")

		_, err = tokenize("a{2,x}")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected a number after `,`")
	})
}

func TestCharClass(t *testing.T) {
	class := func(t *testing.T, pattern string) *charClass {
		tokens, err := tokenize(pattern)
		require.NoError(t, err)
		require.Len(t, tokens, 1)
		require.Equal(t, tokenClass, tokens[0].kind)
		return tokens[0].class
	}

	t.Run("ranges and single members", func(t *testing.T) {
		cc := class(t, "[a-cx]")
		for _, r := range "abcx" {
			assert.True(t, cc.has(r), string(r))
		}
		for _, r := range "dwy-" {
			assert.False(t, cc.has(r), string(r))
		}
	})

	t.Run("negated", func(t *testing.T) {
		cc := class(t, "[^0-9]")
		assert.False(t, cc.has('5'))
		assert.True(t, cc.has('a'))
		assert.True(t, cc.has('ç'))
	})

	t.Run("dash at the edges is a literal", func(t *testing.T) {
		cc := class(t, "[a-]")
		assert.True(t, cc.has('a'))
		assert.True(t, cc.has('-'))
		assert.False(t, cc.has('b'))
	})

	t.Run("escapes within brackets", func(t *testing.T) {
		cc := class(t, `[\d\]\n]`)
		assert.True(t, cc.has('7'))
		assert.True(t, cc.has(']'))
		assert.True(t, cc.has('\n'))
		assert.False(t, cc.has('n'))

		cc = class(t, `[\W_]`)
		assert.True(t, cc.has('_'))
		assert.True(t, cc.has('!'))
		assert.False(t, cc.has('a'))
	})

	t.Run("shorthands", func(t *testing.T) {
		assert.True(t, class(t, `\d`).has('0'))
		assert.False(t, class(t, `\D`).has('0'))
		assert.True(t, class(t, `\w`).has('_'))
		assert.True(t, class(t, `\W`).has(' '))
		assert.True(t, class(t, `\s`).has('\t'))
		assert.False(t, class(t, `\S`).has('\t'))
	})

	t.Run("code points beyond latin1", func(t *testing.T) {
		cc := class(t, "[α-ω]")
		assert.True(t, cc.has('λ'))
		assert.False(t, cc.has('a'))
		assert.False(t, cc.has('😀'))
	})

	t.Run("empty class", func(t *testing.T) {
		_, err := tokenize("[]")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty character class")
	})
}

func TestCharset(t *testing.T) {
	t.Run("grows with the highest code point", func(t *testing.T) {
		cs := newCharset()
		assert.Len(t, cs.bits, int(charsetSize_ASCII))
		cs.add('é')
		assert.Len(t, cs.bits, int(charsetSize_Latin1))
		cs.add('λ')
		assert.Len(t, cs.bits, int(charsetSize_BMP))
		cs.add('😀')
		assert.Len(t, cs.bits, int(charsetSize_Unicode))
		assert.True(t, cs.has('é'))
		assert.True(t, cs.has('😀'))
		assert.False(t, cs.has('e'))
		assert.False(t, cs.has(-1))
	})

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "[0-9]", digitCharset.String())
		assert.Equal(t, "[0-9A-Z_a-z]", wordCharset.String())
		assert.Equal(t, "[ab]", newCharsetFromString("ba").String())
		assert.Equal(t, "^[0-9]", (&charClass{items: []classItem{{set: digitCharset}}, negate: true}).String())
	})

	t.Run("invalid input panics", func(t *testing.T) {
		assert.Panics(t, func() { newCharset().add(0x110000) })
		assert.Panics(t, func() { newCharset().addRange('z', 'a') })
	})
}
