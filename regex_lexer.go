package combinator

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenDot
	tokenClass
	tokenGroupOpen
	tokenGroupClose
	tokenBackref
	tokenQuantifier
	tokenAnchorStart
	tokenAnchorEnd
)

func (k tokenKind) String() string {
	return map[tokenKind]string{
		tokenLiteral:     "literal",
		tokenDot:         "dot",
		tokenClass:       "class",
		tokenGroupOpen:   "open",
		tokenGroupClose:  "close",
		tokenBackref:     "backref",
		tokenQuantifier:  "quantifier",
		tokenAnchorStart: "start",
		tokenAnchorEnd:   "end",
	}[k]
}

// unbounded is the upper bound of `*`, `+` and `{m,}`
const unbounded = -1

type token struct {
	kind tokenKind
	pos  int
	text string

	lit   rune       // tokenLiteral
	class *charClass // tokenClass
	ref   int        // tokenBackref
	min   int        // tokenQuantifier
	max   int        // tokenQuantifier, may be `unbounded`
}

func (t token) String() string {
	return fmt.Sprintf("%s(%s) @ %d", t.kind, t.text, t.pos)
}

// escapedLiterals are the characters that lose their meaning when
// preceded by a backslash
const escapedLiterals = `.()[]{}\+*?^$|-/`

type lexer struct {
	pattern string
	pos     int
	tokens  []token
}

func tokenize(pattern string) ([]token, error) {
	l := &lexer{pattern: pattern}
	for l.pos < len(l.pattern) {
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return &PatternError{Pattern: l.pattern, Position: pos, Message: fmt.Sprintf(format, args...)}
}

func (l *lexer) peek() (rune, int) {
	if l.pos >= len(l.pattern) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.pattern[l.pos:])
}

func (l *lexer) emit(t token, start int) {
	t.pos = start
	t.text = l.pattern[start:l.pos]
	l.tokens = append(l.tokens, t)
}

func (l *lexer) next() error {
	start := l.pos
	r, size := l.peek()
	l.pos += size

	switch r {
	case '\\':
		return l.escape(start)
	case '.':
		l.emit(token{kind: tokenDot}, start)
	case '[':
		class, err := l.class(start)
		if err != nil {
			return err
		}
		l.emit(token{kind: tokenClass, class: class}, start)
	case '(':
		if n, _ := l.peek(); n == '?' {
			return l.errorf(start, "group modifiers are not supported")
		}
		l.emit(token{kind: tokenGroupOpen}, start)
	case ')':
		l.emit(token{kind: tokenGroupClose}, start)
	case '*':
		l.emit(token{kind: tokenQuantifier, min: 0, max: unbounded}, start)
	case '+':
		l.emit(token{kind: tokenQuantifier, min: 1, max: unbounded}, start)
	case '?':
		l.emit(token{kind: tokenQuantifier, min: 0, max: 1}, start)
	case '{':
		return l.bounds(start)
	case '^':
		if start != 0 {
			return l.errorf(start, "`^` is only allowed at the start of the pattern")
		}
		l.emit(token{kind: tokenAnchorStart}, start)
	case '$':
		if l.pos != len(l.pattern) {
			return l.errorf(start, "`$` is only allowed at the end of the pattern")
		}
		l.emit(token{kind: tokenAnchorEnd}, start)
	case '|':
		return l.errorf(start, "alternation is not supported")
	default:
		if r == utf8.RuneError && size == 1 {
			return l.errorf(start, "invalid UTF-8")
		}
		l.emit(token{kind: tokenLiteral, lit: r}, start)
	}
	return nil
}

func (l *lexer) escape(start int) error {
	r, size := l.peek()
	if size == 0 {
		return l.errorf(start, "trailing backslash")
	}
	l.pos += size

	if item, ok := escapeClass(r); ok {
		l.emit(token{kind: tokenClass, class: &charClass{items: []classItem{item}}}, start)
		return nil
	}
	if r >= '1' && r <= '9' {
		l.emit(token{kind: tokenBackref, ref: int(r - '0')}, start)
		return nil
	}
	lit, ok := escapeLiteral(r)
	if !ok {
		return l.errorf(start, "unknown escape sequence `\\%c`", r)
	}
	l.emit(token{kind: tokenLiteral, lit: lit}, start)
	return nil
}

// escapeClass maps `\d`, `\w`, `\s` and their negated upper case
// versions to class items
func escapeClass(r rune) (classItem, bool) {
	switch r {
	case 'd':
		return classItem{set: digitCharset}, true
	case 'D':
		return classItem{set: digitCharset, negate: true}, true
	case 'w':
		return classItem{set: wordCharset}, true
	case 'W':
		return classItem{set: wordCharset, negate: true}, true
	case 's':
		return classItem{set: spaceCharset}, true
	case 'S':
		return classItem{set: spaceCharset, negate: true}, true
	}
	return classItem{}, false
}

func escapeLiteral(r rune) (rune, bool) {
	switch r {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	}
	for _, c := range escapedLiterals {
		if c == r {
			return r, true
		}
	}
	return 0, false
}

// bounds reads `{n}`, `{m,n}` or `{m,}`; the opening brace was
// already consumed
func (l *lexer) bounds(start int) error {
	lo, ok := l.number()
	if !ok {
		return l.errorf(start, "expected a number after `{`")
	}
	hi := lo
	if r, _ := l.peek(); r == ',' {
		l.pos++
		if r, _ := l.peek(); r == '}' {
			hi = unbounded
		} else if hi, ok = l.number(); !ok {
			return l.errorf(start, "expected a number after `,`")
		}
	}
	if r, _ := l.peek(); r != '}' {
		return l.errorf(start, "missing `}`")
	}
	l.pos++
	if hi != unbounded && hi < lo {
		return l.errorf(start, "invalid repetition range {%d,%d}", lo, hi)
	}
	l.emit(token{kind: tokenQuantifier, min: lo, max: hi}, start)
	return nil
}

func (l *lexer) number() (int, bool) {
	start := l.pos
	for l.pos < len(l.pattern) && l.pattern[l.pos] >= '0' && l.pattern[l.pos] <= '9' {
		l.pos++
	}
	if start == l.pos {
		return 0, false
	}
	n, err := strconv.Atoi(l.pattern[start:l.pos])
	if err != nil {
		return 0, false
	}
	return n, true
}

// class reads a bracket expression; the opening bracket was already
// consumed
func (l *lexer) class(start int) (*charClass, error) {
	cc := &charClass{}
	if r, _ := l.peek(); r == '^' {
		l.pos++
		cc.negate = true
	}
	for {
		r, size := l.peek()
		if size == 0 {
			return nil, l.errorf(start, "missing `]`")
		}
		if r == ']' {
			l.pos++
			break
		}
		if r == '\\' {
			if item, ok := l.classEscape(); ok {
				cc.items = append(cc.items, item)
				continue
			}
		}
		lo, err := l.classRune()
		if err != nil {
			return nil, err
		}
		hi := lo
		if r, _ := l.peek(); r == '-' && l.pos+1 < len(l.pattern) && l.pattern[l.pos+1] != ']' {
			l.pos++
			if hi, err = l.classRune(); err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, l.errorf(start, "invalid range `%c-%c`", lo, hi)
			}
		}
		cc.items = append(cc.items, classItem{set: newCharsetForRange(lo, hi)})
	}
	if len(cc.items) == 0 {
		return nil, l.errorf(start, "empty character class")
	}
	return cc, nil
}

// classEscape consumes `\d` and friends within a bracket expression
func (l *lexer) classEscape() (classItem, bool) {
	if l.pos+1 >= len(l.pattern) {
		return classItem{}, false
	}
	item, ok := escapeClass(rune(l.pattern[l.pos+1]))
	if ok {
		l.pos += 2
	}
	return item, ok
}

// classRune reads a single, possibly escaped, member of a bracket
// expression
func (l *lexer) classRune() (rune, error) {
	start := l.pos
	r, size := l.peek()
	if r == utf8.RuneError && size == 1 {
		return 0, l.errorf(start, "invalid UTF-8")
	}
	l.pos += size
	if r != '\\' {
		return r, nil
	}
	e, size := l.peek()
	if size == 0 {
		return 0, l.errorf(start, "trailing backslash")
	}
	l.pos += size
	lit, ok := escapeLiteral(e)
	if !ok {
		return 0, l.errorf(start, "unknown escape sequence `\\%c`", e)
	}
	return lit, nil
}
