package combinator

import (
	"fmt"
	"strings"
)

// A charset is a bitmap that uses one bit per code point within a
// given range.  Its size grows with the highest code point it has to
// hold.
//
// Name        | Range         | bits      | bytes
// ------------+---------------+-----------+-------
// ASCII       | U+0000–007F   |       128 | 16
// Latin1      | U+0000–00FF   |       256 | 32
// BMP         | U+0000–FFFF   |    65_536 | 8192b (8k)
// Unicode     | U+0000–10FFFF | 1_114_112 | 139264 (136 Kb)
type charsetSize int

const (
	charsetSize_ASCII   charsetSize = 16
	charsetSize_Latin1  charsetSize = 32
	charsetSize_BMP     charsetSize = 8_192
	charsetSize_Unicode charsetSize = 139_264
)

type charset struct {
	bits []byte
}

func newCharset() *charset {
	return &charset{bits: make([]byte, charsetSize_ASCII)}
}

func newCharsetForRange(a, b rune) *charset {
	cs := newCharset()
	cs.addRange(a, b)
	return cs
}

func newCharsetFromString(s string) *charset {
	cs := newCharset()
	for _, r := range s {
		cs.add(r)
	}
	return cs
}

func charsetSizeForRune(r rune) charsetSize {
	rpos := int(r) >> 3
	switch {
	case rpos < int(charsetSize_ASCII):
		return charsetSize_ASCII
	case rpos < int(charsetSize_Latin1):
		return charsetSize_Latin1
	case rpos < int(charsetSize_BMP):
		return charsetSize_BMP
	default:
		return charsetSize_Unicode
	}
}

// grow makes room for `r` within the bitmap
func (cs *charset) grow(r rune) {
	size := int(charsetSizeForRune(r))
	if size <= len(cs.bits) {
		return
	}
	bits := make([]byte, size)
	copy(bits, cs.bits)
	cs.bits = bits
}

func (cs *charset) add(r rune) {
	if r < 0 || r > 0x10FFFF {
		panic(fmt.Sprintf("code point `U+%X` is out of bounds", r))
	}
	cs.grow(r)
	i := int(r)
	cs.bits[i>>3] |= 1 << (i & 7)
}

func (cs *charset) addRange(start, end rune) {
	if start > end {
		panic(fmt.Sprintf("invalid range `%c-%c`", start, end))
	}
	cs.grow(end)
	for r := start; r <= end; r++ {
		cs.add(r)
	}
}

func (cs *charset) has(r rune) bool {
	if r < 0 {
		return false
	}
	// writing `i/8` as `i>>3` and and `i%8` as `i&7` because
	// division is usually slower than bit shifting operators.
	i := int(r)
	x := i >> 3
	if x >= len(cs.bits) {
		return false
	}
	return cs.bits[x]&(1<<(i&7)) != 0
}

func (cs *charset) String() string {
	var (
		s  strings.Builder
		rg bool
		st rune
		pr rune = -2
	)
	s.WriteString("[")
	end := rune(len(cs.bits) << 3)
	for r := rune(0); r < end; r++ {
		if cs.has(r) {
			if !rg {
				rg = true
				st = r
			}
			pr = r
		} else if rg {
			rg = false
			writeRange(&s, st, pr)
		}
	}
	if rg {
		writeRange(&s, st, pr)
	}
	s.WriteString("]")
	return s.String()
}

func writeRange(s *strings.Builder, start, end rune) {
	switch {
	case start == end:
		s.WriteRune(start)
	case end == start+1:
		s.WriteRune(start)
		s.WriteRune(end)
	default:
		s.WriteRune(start)
		s.WriteRune('-')
		s.WriteRune(end)
	}
}

var (
	digitCharset = newCharsetForRange('0', '9')
	spaceCharset = newCharsetFromString(" \t\n\r\f\v")
	wordCharset  = func() *charset {
		cs := newCharsetForRange('a', 'z')
		cs.addRange('A', 'Z')
		cs.addRange('0', '9')
		cs.add('_')
		return cs
	}()
)

// classItem is one member of a character class, possibly negated
// like `\D` within `[\D_]`
type classItem struct {
	set    *charset
	negate bool
}

func (ci classItem) has(r rune) bool { return ci.set.has(r) != ci.negate }

// charClass matches a code point if any of its items matches it, or
// if none does when the class itself is negated.
type charClass struct {
	items  []classItem
	negate bool
}

func (cc *charClass) has(r rune) bool {
	for _, item := range cc.items {
		if item.has(r) {
			return !cc.negate
		}
	}
	return cc.negate
}

func (cc *charClass) String() string {
	var s strings.Builder
	if cc.negate {
		s.WriteString("^")
	}
	for _, item := range cc.items {
		if item.negate {
			s.WriteString("^")
		}
		s.WriteString(item.set.String())
	}
	return s.String()
}
