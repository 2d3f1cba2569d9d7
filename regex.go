package combinator

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// Regex is a compiled pattern.  It holds no state of its own across
// calls: every Match or Search gets a fresh group table, so a Regex
// is safe for concurrent use.
type Regex struct {
	pattern       string
	parser        *Parser
	groups        int
	anchoredStart bool
	anchoredEnd   bool
}

// Compile parses `pattern` with the default configuration
func Compile(pattern string) (*Regex, error) {
	return NewCompiler(NewConfig(), logr.Discard()).Compile(pattern)
}

// MustCompile is like Compile but panics if the pattern is invalid
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// String returns the source pattern
func (re *Regex) String() string { return re.pattern }

// NumGroups returns how many capturing groups the pattern declares.
// Groups are numbered when the pattern is compiled, from 1, in the
// order their `(` appears, so in `((a)b)` the outer group is 1 and the
// inner one is 2 whatever the input.
func (re *Regex) NumGroups() int { return re.groups }

// Match returns the leftmost match within `input`, or false if there
// is none.  Patterns starting with `^` only match at the start of the
// input.
func (re *Regex) Match(input string) (string, bool) {
	return re.MatchBytes([]byte(input))
}

// MatchBytes is like Match but takes bytes as input
func (re *Regex) MatchBytes(input []byte) (string, bool) {
	_, r := re.run(input)
	if !r.Ok() {
		return "", false
	}
	return r.Value().(string), true
}

// Search returns the leftmost match followed by the text captured by
// each group, numbered as described in NumGroups.  Groups that didn't
// take part in the match are empty.  The output is nil if there's no
// match.
//
// Among the ways of splitting the input between the units of the
// pattern, the longest overall match wins and ties go to the split
// that gives the least to the first unit.  `(a*)(a*)` against "aaa"
// returns ["aaa", "", "aaa"].
func (re *Regex) Search(input string) []string {
	ms, r := re.run([]byte(input))
	if !r.Ok() {
		return nil
	}
	groups := ms.groups
	if ms.best != nil {
		groups = ms.best
	}
	out := make([]string, re.groups+1)
	out[0] = r.Value().(string)
	for i := 1; i <= re.groups; i++ {
		out[i] = groups[i].text
	}
	return out
}

func (re *Regex) run(input []byte) (*matchState, Result) {
	ms := newMatchState(re.groups)
	return ms, re.parser.Parse(NewBufferWithState(input, ms))
}

// Compiler turns patterns into regexes according to a Config
type Compiler struct {
	cfg *Config
	log logr.Logger
}

// NewCompiler creates a compiler.  Pass logr.Discard() to silence
// diagnostics.
func NewCompiler(cfg *Config, logger logr.Logger) *Compiler {
	return &Compiler{cfg: cfg, log: logger.WithName("regex")}
}

// Compile parses `pattern` into a Regex.  Malformed patterns return a
// *PatternError.
func (c *Compiler) Compile(pattern string) (*Regex, error) {
	tokens, err := tokenize(pattern)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	comp := &compilation{
		pattern:   pattern,
		greedy:    c.cfg.GetBool("regex.greedy"),
		dotCtrl:   c.cfg.GetBool("regex.dot_control"),
		maxGroups: c.cfg.GetInt("regex.max_groups"),
		closed:    map[int]bool{},
	}
	re := &Regex{pattern: pattern}
	if len(tokens) > 0 && tokens[0].kind == tokenAnchorStart {
		re.anchoredStart = true
		tokens = tokens[1:]
	}
	if n := len(tokens); n > 0 && tokens[n-1].kind == tokenAnchorEnd {
		re.anchoredEnd = true
		tokens = tokens[:n-1]
	}
	comp.tokens = tokens

	units, err := comp.sequence(0)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if comp.pos < len(comp.tokens) {
		return nil, errors.WithStack(comp.errorf(comp.tokens[comp.pos].pos, "unbalanced `)`"))
	}
	re.groups = comp.groups

	improved := c.log.V(2)
	body := comp.join(units, func(b *Buffer, r Result) {
		ms := matchStateOf(b)
		if ms == nil {
			return
		}
		ms.best = slices.Clone(ms.groups)
		improved.Info("improved match", "pattern", pattern, "position", b.Position(), "length", r.Length)
	})
	whole := comp.capture(0, body).Capture()
	if re.anchoredEnd {
		whole = whole.Chain(EOF())
	}
	if !re.anchoredStart {
		stripper := AnyByte()
		if c.cfg.GetBool("regex.scan_runes") {
			stripper = AnyRune()
		}
		whole = whole.Scan(stripper.Ignore())
	}
	if c.cfg.GetBool("debug.trace") {
		whole = whole.Trace(c.log)
	}
	re.parser = whole.Named(pattern)

	c.log.V(1).Info("compiled pattern",
		"pattern", pattern,
		"units", len(units),
		"groups", re.groups,
		"anchoredStart", re.anchoredStart,
		"anchoredEnd", re.anchoredEnd)
	return re, nil
}

type unitKind int

const (
	unitPlain unitKind = iota
	unitGroup
	unitBackref
)

// unit is an intermediate compiled piece of a pattern.  `literal` is
// set for plain literal characters that weren't quantified, so runs
// of them can be merged into a single string match.
type unit struct {
	kind       unitKind
	parser     *Parser
	id         int
	literal    string
	quantified bool
}

type compilation struct {
	pattern   string
	tokens    []token
	pos       int
	greedy    bool
	dotCtrl   bool
	maxGroups int

	// group ids are handed out left to right as `(` is found
	groups int
	closed map[int]bool
}

func (c *compilation) errorf(pos int, format string, args ...any) error {
	return &PatternError{Pattern: c.pattern, Position: pos, Message: fmt.Sprintf(format, args...)}
}

// sequence compiles tokens until the end of the input or a `)`
// closing the current group, which is left for the caller to consume
func (c *compilation) sequence(depth int) ([]*unit, error) {
	var units []*unit
	for c.pos < len(c.tokens) {
		t := c.tokens[c.pos]
		switch t.kind {
		case tokenGroupClose:
			if depth == 0 {
				return nil, c.errorf(t.pos, "unbalanced `)`")
			}
			return units, nil

		case tokenGroupOpen:
			c.pos++
			c.groups++
			id := c.groups
			if c.maxGroups > 0 && id > c.maxGroups {
				return nil, c.errorf(t.pos, "too many groups, at most %d are allowed", c.maxGroups)
			}
			body, err := c.sequence(depth + 1)
			if err != nil {
				return nil, err
			}
			if c.pos >= len(c.tokens) {
				return nil, c.errorf(t.pos, "missing `)`")
			}
			c.pos++
			c.closed[id] = true
			units = append(units, &unit{kind: unitGroup, id: id, parser: c.capture(id, c.join(body, nil))})

		case tokenQuantifier:
			if len(units) == 0 {
				return nil, c.errorf(t.pos, "nothing to repeat")
			}
			last := units[len(units)-1]
			if last.quantified {
				return nil, c.errorf(t.pos, "multiple repetition operators")
			}
			last.parser = quantify(last.parser, t)
			last.literal = ""
			last.quantified = true
			c.pos++

		case tokenBackref:
			if !c.closed[t.ref] {
				return nil, c.errorf(t.pos, "backreference to undefined group %d", t.ref)
			}
			units = append(units, &unit{kind: unitBackref, id: t.ref, parser: c.backref(t)})
			c.pos++

		case tokenLiteral:
			lit := string(t.lit)
			units = append(units, &unit{literal: lit, parser: Str(lit).Ignore()})
			c.pos++

		case tokenDot:
			units = append(units, &unit{parser: c.dot()})
			c.pos++

		case tokenClass:
			units = append(units, &unit{parser: RuneWhere(t.text, t.class.has).Ignore()})
			c.pos++

		case tokenAnchorStart, tokenAnchorEnd:
			// the lexer only lets anchors through at the edges of
			// the pattern and Compile strips them from there
			return nil, c.errorf(t.pos, "unexpected anchor")
		}
	}
	return units, nil
}

// join sequences the units of a group, or of the whole pattern,
// backtracking between them.  Only the outermost call passes
// `onImprove`.
func (c *compilation) join(units []*unit, onImprove Improvement) *Parser {
	units = mergeLiterals(units)
	switch len(units) {
	case 0:
		return Empty()
	case 1:
		return units[0].parser
	}
	gens := make([]Generator, len(units))
	for i, u := range units {
		gens[i] = Fixed(u.parser)
	}
	return Backtrace(c.greedy, onImprove, gens...)
}

// mergeLiterals collapses runs of unquantified literals into a single
// string match, so there are fewer split points to explore
func mergeLiterals(units []*unit) []*unit {
	var out []*unit
	for _, u := range units {
		if n := len(out); n > 0 && u.literal != "" && out[n-1].literal != "" {
			lit := out[n-1].literal + u.literal
			out[n-1] = &unit{literal: lit, parser: Str(lit).Ignore()}
			continue
		}
		out = append(out, u)
	}
	return out
}

func quantify(p *Parser, t token) *Parser {
	switch {
	case t.min == 0 && t.max == unbounded:
		return p.Many()
	case t.min == 1 && t.max == unbounded:
		return p.Some()
	case t.min == 0 && t.max == 1:
		return p.Optional()
	case t.max == unbounded:
		return p.Repeat(t.min).Chain(p.Many())
	case t.min == t.max:
		return p.Repeat(t.min)
	default:
		return p.Range(t.min, t.max)
	}
}

func (c *compilation) dot() *Parser {
	if c.dotCtrl {
		return AnyRune().Named(".").Ignore()
	}
	return RuneWhere(".", func(r rune) bool { return !unicode.IsControl(r) }).Ignore()
}

// capture records the text matched by `body` as group `id` within the
// match state of the buffer.  When `body` fails, whatever the groups
// nested within it captured is undone.
func (c *compilation) capture(id int, body *Parser) *Parser {
	return body.Around(func(b *Buffer, next ParseFunc) Result {
		ms := matchStateOf(b)
		if ms == nil {
			return next(b)
		}
		start := b.Position()
		saved := ms.Snapshot()
		r := next(b)
		if !r.Ok() {
			ms.Restore(saved)
			return r
		}
		ms.set(id, string(b.Slice(start, b.Position())))
		return r
	}).Named(fmt.Sprintf("group %d", id))
}

// backref matches, at match time, whatever group `t.ref` captured
// last.  A group that hasn't captured anything can't be referenced.
func (c *compilation) backref(t token) *Parser {
	pattern := c.pattern
	return New(t.text, func(b *Buffer) Result {
		ms := matchStateOf(b)
		if ms == nil || !ms.groups[t.ref].set {
			panic(&PatternError{
				Pattern:  pattern,
				Position: t.pos,
				Message:  fmt.Sprintf("group %d referenced before capturing anything", t.ref),
			})
		}
		return Str(ms.groups[t.ref].text).Ignore().Parse(b)
	})
}

type capture struct {
	text string
	set  bool
}

// matchState is the group table of a single Match or Search call.
// `best` is the table as it was when the outermost split last
// improved.
type matchState struct {
	groups []capture
	best   []capture
}

func newMatchState(groups int) *matchState {
	return &matchState{groups: make([]capture, groups+1)}
}

func matchStateOf(b *Buffer) *matchState {
	ms, _ := b.State().(*matchState)
	return ms
}

func (ms *matchState) set(id int, text string) {
	ms.groups[id] = capture{text: text, set: true}
}

func (ms *matchState) Reset() {
	clear(ms.groups)
	ms.best = nil
}

func (ms *matchState) Snapshot() any {
	return slices.Clone(ms.groups)
}

func (ms *matchState) Restore(snapshot any) {
	copy(ms.groups, snapshot.([]capture))
}

func (ms *matchState) String() string {
	var s strings.Builder
	for i, g := range ms.groups {
		if i > 0 {
			s.WriteString(" ")
		}
		if g.set {
			fmt.Fprintf(&s, "%d=%q", i, g.text)
		} else {
			fmt.Fprintf(&s, "%d=∅", i)
		}
	}
	return s.String()
}
