package combinator

import "fmt"

// Improvement is called by a backtracking parser every time the best
// candidate for its outermost split changes.  `b` is the buffer the
// backtracking parser was invoked with and `r` the candidate.
type Improvement func(b *Buffer, r Result)

// Fixed returns a generator that always yields `p`
func Fixed(p *Parser) Generator {
	return func() *Parser { return p }
}

type backtracker struct {
	greedy    bool
	gens      []Generator
	onImprove Improvement
}

// Backtrace sequences the parsers yielded by `gens` when the boundary
// between them can't be found by running them one after the other.
// A greedy repetition followed by something it would also match
// (`a*` then `a`) is the classic example.
//
// For each split point of the remaining input, from the shortest to
// the longest, the first parser must consume exactly the left side
// and the remaining parsers, recursively backtracked, must succeed on
// the right side.  Without `greedy` the first split that works wins.
// With `greedy`, all the splits are tried and the one that consumes
// the most input wins, ties going to the earliest split.
//
// If the buffer carries a State, it's restored to what it was right
// after the winning candidate ran, so captures always describe the
// returned split.  Candidates that fail, and the whole parser when no
// split works, leave the State as they found it.  `onImprove` may be
// nil.
//
// The search is exponential on the number of parsers in the worst
// case.
func Backtrace(greedy bool, onImprove Improvement, gens ...Generator) *Parser {
	if len(gens) == 0 {
		return Empty()
	}
	bt := &backtracker{greedy: greedy, gens: gens, onImprove: onImprove}
	mode := "lazy"
	if greedy {
		mode = "greedy"
	}
	p := New(fmt.Sprintf("backtrace<%s, %d>", mode, len(gens)), func(b *Buffer) Result {
		return bt.run(0, b)
	})
	p.variant = variantBacktrace
	return p
}

func (bt *backtracker) run(k int, b *Buffer) Result {
	if k == len(bt.gens)-1 {
		return bt.gens[k]().Parse(b)
	}

	var (
		best     Result
		found    bool
		snapshot any
		initial  any
		st       = b.State()
	)
	if st != nil {
		initial = st.Snapshot()
	}
	// a candidate that fails leaves no trace in the state
	discard := func() {
		if st != nil {
			st.Restore(initial)
		}
	}
	for i := 0; i <= b.Remaining(); i++ {
		left, right := b.SplitAt(i)
		lr := parseExactly(bt.gens[k](), left)
		if !lr.Ok() {
			discard()
			continue
		}
		rr := bt.run(k+1, right)
		if !rr.Ok() {
			discard()
			continue
		}
		candidate := merge(lr, rr)

		if !bt.greedy {
			b.Forward(candidate.Length)
			bt.improved(k, b, candidate)
			return candidate
		}
		if !found || candidate.Length > best.Length {
			best, found = candidate, true
			if st != nil {
				snapshot = st.Snapshot()
			}
			bt.improved(k, b, candidate)
		}
		discard()
	}

	if !found {
		return Fail(b.Position(), "no split of the input satisfies all %d parsers", len(bt.gens)-k)
	}
	if st != nil {
		st.Restore(snapshot)
	}
	b.Forward(best.Length)
	return best
}

func (bt *backtracker) improved(k int, b *Buffer, r Result) {
	if k == 0 && bt.onImprove != nil {
		bt.onImprove(b, r)
	}
}

// parseExactly runs `p` and fails unless it consumes the entire view
func parseExactly(p *Parser, view *Buffer) Result {
	r := p.Parse(view)
	if !r.Ok() {
		return r
	}
	if view.Remaining() != 0 {
		view.Backward(r.Length)
		return Fail(view.Position(), "expected end of input")
	}
	return r
}
