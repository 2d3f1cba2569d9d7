package combinator

import (
	"fmt"
	"strings"
)

// ParseFunc is the signature of the function behind every Parser.  A
// ParseFunc that fails must leave the buffer exactly where it found
// it, that's what allows Or and the repetition combinators to try
// again without rewinding anything themselves.
type ParseFunc func(b *Buffer) Result

// Generator defers the construction of a Parser until it's invoked.
// That's how recursive grammars are expressed without building an
// infinite graph upfront.
type Generator func() *Parser

type variant int

const (
	variantPlain variant = iota
	variantBacktrace
	variantHook
)

func (v variant) String() string {
	switch v {
	case variantPlain:
		return "plain"
	case variantBacktrace:
		return "backtrace"
	case variantHook:
		return "hook"
	default:
		panic(fmt.Sprintf("unknown parser variant: %d", int(v)))
	}
}

// lineageDepth is how many ancestor labels a parser remembers
const lineageDepth = 8

// Parser is an immutable description of how to attempt a parse.  All
// the combinator methods return new parsers, so the same Parser can
// be reused against any number of buffers, concurrently even, as long
// as each invocation gets its own Buffer.
type Parser struct {
	label   string
	lineage []string
	ignore  bool
	variant variant
	fn      ParseFunc
}

// New creates a parser named `label` that runs `fn`
func New(label string, fn ParseFunc) *Parser {
	return &Parser{label: label, fn: fn}
}

// Parse runs the parser against `b`.  Parsers marked with Ignore
// still consume input but their values are dropped from the result.
func (p *Parser) Parse(b *Buffer) Result {
	r := p.fn(b)
	if r.Err == nil && p.ignore {
		r.Values = nil
	}
	return r
}

// ParseString is a shortcut for running the parser against a fresh
// buffer created from `s`
func (p *Parser) ParseString(s string) Result {
	return p.Parse(NewBufferString(s))
}

// Label returns the human readable name of the parser
func (p *Parser) Label() string { return p.label }

// Lineage returns the labels of the parsers this one was derived
// from, oldest first.  It's only meant for diagnostics.
func (p *Parser) Lineage() []string { return p.lineage }

// Ignored tells if the values produced by the parser are dropped
func (p *Parser) Ignored() bool { return p.ignore }

func (p *Parser) String() string {
	if len(p.lineage) == 0 {
		return p.label
	}
	return fmt.Sprintf("%s < %s", p.label, strings.Join(p.lineage, " < "))
}

// Named returns a copy of the parser with a new label
func (p *Parser) Named(label string) *Parser {
	c := *p
	c.label = label
	c.lineage = pushLineage(p.lineage, p.label)
	return &c
}

// Ignore returns a copy of the parser that contributes no values to
// the output.  The consumed length is still accounted for.
func (p *Parser) Ignore() *Parser {
	c := *p
	c.ignore = true
	return &c
}

func (p *Parser) derive(label string, fn ParseFunc) *Parser {
	return &Parser{label: label, lineage: pushLineage(p.lineage, p.label), fn: fn}
}

func pushLineage(lineage []string, label string) []string {
	out := make([]string, 0, lineageDepth)
	if n := len(lineage) - lineageDepth + 1; n > 0 {
		lineage = lineage[n:]
	}
	out = append(out, lineage...)
	return append(out, label)
}

// Lazy creates a parser that calls `gen` every time it runs and
// delegates to the parser it returns.
func Lazy(gen Generator) *Parser {
	return New("lazy", func(b *Buffer) Result { return gen().Parse(b) })
}

// Chain runs `p` and then `q`.  If `q` fails, the input consumed by
// `p` is given back, so the sequence either fully succeeds or leaves
// the buffer untouched.
func (p *Parser) Chain(q *Parser) *Parser {
	return p.chain(q.label, func() *Parser { return q })
}

// ChainLazy is like Chain but the parser that runs after `p` is only
// built when `p` succeeds.
func (p *Parser) ChainLazy(gen Generator) *Parser {
	return p.chain("lazy", gen)
}

func (p *Parser) chain(next string, gen Generator) *Parser {
	return p.derive(clip(p.label+" "+next), func(b *Buffer) Result {
		left := p.Parse(b)
		if !left.Ok() {
			return left
		}
		right := gen().Parse(b)
		if !right.Ok() {
			b.Backward(left.Length)
			return right
		}
		return merge(left, right)
	})
}

// Seq chains all the parsers in order
func Seq(parsers ...*Parser) *Parser {
	if len(parsers) == 0 {
		return Empty()
	}
	out := parsers[0]
	for _, p := range parsers[1:] {
		out = out.Chain(p)
	}
	return out
}

// Or returns the result of `p` if it succeeds, or the result of `q`
// tried from the same position otherwise.
func (p *Parser) Or(q *Parser) *Parser {
	return p.derive(clip(p.label+" / "+q.label), func(b *Buffer) Result {
		left := p.Parse(b)
		if left.Ok() {
			return left
		}
		right := q.Parse(b)
		if right.Ok() {
			return right
		}
		return Fail(b.Position(), "no alternative matched: %s, %s", left.Err.Message, right.Err.Message)
	})
}

// Choice walks through `parsers` and returns the first one to
// succeed.
func Choice(parsers ...*Parser) *Parser {
	if len(parsers) == 0 {
		return New("choice", func(b *Buffer) Result {
			return Fail(b.Position(), "no alternative matched")
		})
	}
	out := parsers[0]
	for _, p := range parsers[1:] {
		out = out.Or(p)
	}
	return out
}

// Many runs `p` until it fails, collecting all the values produced
// along the way.  It always succeeds.  A repetition that succeeds
// without consuming input ends the loop as it would never stop
// otherwise.
func (p *Parser) Many() *Parser {
	return p.derive(p.label+"*", func(b *Buffer) Result {
		return p.upTo(b, -1)
	})
}

// Some is like Many but `p` must succeed at least once
func (p *Parser) Some() *Parser {
	return p.derive(p.label+"+", func(b *Buffer) Result {
		first := p.Parse(b)
		if !first.Ok() {
			return first
		}
		return merge(first, p.upTo(b, -1))
	})
}

// Repeat runs `p` exactly `n` times.  If any of the repetitions
// fails, everything consumed so far is given back and the failure is
// returned.
func (p *Parser) Repeat(n int) *Parser {
	if n < 0 {
		panic(fmt.Sprintf("repeat: negative count %d", n))
	}
	return p.derive(fmt.Sprintf("%s{%d}", p.label, n), func(b *Buffer) Result {
		acc := Success(nil, 0)
		for i := 0; i < n; i++ {
			r := p.Parse(b)
			if !r.Ok() {
				b.Backward(acc.Length)
				return r
			}
			acc = merge(acc, r)
		}
		return acc
	})
}

// Attempt runs `p` up to `n` times and succeeds with whatever was
// collected once a repetition fails.
func (p *Parser) Attempt(n int) *Parser {
	if n < 0 {
		panic(fmt.Sprintf("attempt: negative count %d", n))
	}
	return p.derive(fmt.Sprintf("%s{0,%d}", p.label, n), func(b *Buffer) Result {
		return p.upTo(b, n)
	})
}

// Range runs `p` at least `from` and at most `to` times
func (p *Parser) Range(from, to int) *Parser {
	if to < from {
		panic(fmt.Sprintf("range: upper bound %d is lower than %d", to, from))
	}
	return p.Repeat(from).Chain(p.Attempt(to - from)).Named(fmt.Sprintf("%s{%d,%d}", p.label, from, to))
}

// Optional runs `p` zero or one time
func (p *Parser) Optional() *Parser {
	return p.Attempt(1).Named(p.label + "?")
}

// upTo collects up to `limit` repetitions of `p`, with a negative
// limit meaning no limit at all.
func (p *Parser) upTo(b *Buffer, limit int) Result {
	acc := Success(nil, 0)
	for i := 0; limit < 0 || i < limit; i++ {
		r := p.Parse(b)
		if !r.Ok() {
			break
		}
		acc = merge(acc, r)
		if r.Length == 0 && limit < 0 {
			break
		}
	}
	return acc
}

// Map replaces the values of a successful result with the single
// value returned by `fn`.  Failures pass through untouched.
func (p *Parser) Map(fn func(values []any) any) *Parser {
	return p.derive(p.label, func(b *Buffer) Result {
		r := p.Parse(b)
		if !r.Ok() {
			return r
		}
		return Success([]any{fn(r.Values)}, r.Length)
	})
}

// Must runs `p` and then checks its result with `pred`.  When the
// predicate doesn't hold, the input consumed by `p` is given back.
func (p *Parser) Must(pred func(Result) bool) *Parser {
	return p.derive(p.label+"!", func(b *Buffer) Result {
		start := b.Position()
		r := p.Parse(b)
		if !r.Ok() {
			return r
		}
		if !pred(r) {
			b.Backward(r.Length)
			return Fail(start, "assertion failed on %s", p.label)
		}
		return r
	})
}

// SepBy parses `p (sep p)*` dropping the values of the separator
func (p *Parser) SepBy(sep *Parser) *Parser {
	return p.Chain(sep.Ignore().Chain(p).Many()).Named(fmt.Sprintf("%s sep-by %s", p.label, sep.label))
}

// SepByOptional is like SepBy but also matches nothing at all
func (p *Parser) SepByOptional(sep *Parser) *Parser {
	return p.SepBy(sep).Optional()
}

// Between parses `open p close` keeping only the values of `p`
func (p *Parser) Between(open, close *Parser) *Parser {
	return Seq(open.Ignore(), p, close.Ignore()).Named(p.label)
}

// Trim skips whitespace around `p`.  Only spaces and tabs are skipped
// unless `includeNewline` is set.
func (p *Parser) Trim(includeNewline bool) *Parser {
	ws := Whitespace(includeNewline).Ignore()
	return Seq(ws, p, ws).Named(p.label)
}

// Scan tries `p` at the current position and, while it fails, uses
// `stripper` to move past the input under the cursor and tries again.
// It fails once the input is exhausted.  The per-invocation State, if
// any, is reset before each attempt.  The values of the stripper are
// discarded.
func (p *Parser) Scan(stripper *Parser) *Parser {
	return p.derive("scan("+p.label+")", func(b *Buffer) Result {
		start := b.Position()
		for {
			if st := b.State(); st != nil {
				st.Reset()
			}
			r := p.Parse(b)
			if r.Ok() {
				return Success(r.Values, b.Position()-start)
			}
			if b.Remaining() == 0 {
				break
			}
			s := stripper.Parse(b)
			if !s.Ok() || s.Length == 0 {
				break
			}
		}
		b.Backward(b.Position() - start)
		return Fail(start, "reached end of input scanning for %s", p.label)
	})
}

// Not succeeds without consuming anything if `p` fails
func Not(p *Parser) *Parser {
	return p.derive("!"+p.label, func(b *Buffer) Result {
		r := p.Parse(b)
		if r.Ok() {
			b.Backward(r.Length)
			return Fail(b.Position(), "unexpected %s", p.label)
		}
		return Success(nil, 0)
	})
}

// Peek succeeds without consuming anything if `p` succeeds
func Peek(p *Parser) *Parser {
	return p.derive("&"+p.label, func(b *Buffer) Result {
		r := p.Parse(b)
		if !r.Ok() {
			return r
		}
		b.Backward(r.Length)
		return Success(nil, 0)
	})
}

// Capture replaces the values of `p` with the substring it consumed
func (p *Parser) Capture() *Parser {
	return p.derive(p.label, func(b *Buffer) Result {
		start := b.Position()
		r := p.Parse(b)
		if !r.Ok() {
			return r
		}
		return Success([]any{string(b.Slice(start, b.Position()))}, r.Length)
	})
}

// Hook intercepts the invocation of a parser.  `next` runs the
// wrapped parser.
type Hook func(b *Buffer, next ParseFunc) Result

// Around wraps `p` with `hook`
func (p *Parser) Around(hook Hook) *Parser {
	w := p.derive(p.label, func(b *Buffer) Result {
		return hook(b, p.Parse)
	})
	w.variant = variantHook
	return w
}

func clip(s string) string {
	const width = 64
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
