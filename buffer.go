package combinator

import (
	"fmt"
	"unicode/utf8"
)

// State is per-invocation mutable data shared by a buffer and every
// view split from it.  Parsers that need bookkeeping across a parse
// (capture groups, for example) reach it through Buffer.State instead
// of holding it themselves, which keeps the Parser graph immutable.
type State interface {
	// Reset clears the state before a new top-level attempt
	Reset()

	// Snapshot returns an opaque copy of the current state
	Snapshot() any

	// Restore brings the state back to a value returned by Snapshot
	Restore(snapshot any)
}

// Buffer is a read cursor over an immutable byte sequence.  Views
// created with SplitAt share the same backing bytes and State but
// have their own bounds and cursor.
//
// Invariant: start <= pos <= end <= len(data)
type Buffer struct {
	data  []byte
	start int
	end   int
	pos   int
	state State
}

// NewBuffer creates a buffer spanning all of `data`.  The bytes are
// not copied and must not be modified while the buffer is in use.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data, end: len(data)}
}

// NewBufferString is a shortcut for NewBuffer([]byte(s))
func NewBufferString(s string) *Buffer {
	return NewBuffer([]byte(s))
}

// NewBufferWithState creates a buffer whose views all share `state`
func NewBufferWithState(data []byte, state State) *Buffer {
	b := NewBuffer(data)
	b.state = state
	return b
}

// State returns the per-invocation state attached to the buffer, or
// nil if there is none.
func (b *Buffer) State() State { return b.state }

// Position returns the absolute index of the cursor within the
// backing byte sequence.
func (b *Buffer) Position() int { return b.pos }

// Remaining returns how many bytes are left within the view
func (b *Buffer) Remaining() int { return b.end - b.pos }

// Head returns the byte under the cursor.  The second value is false
// if the view is exhausted.
func (b *Buffer) Head() (byte, bool) {
	if b.pos >= b.end {
		return 0, false
	}
	return b.data[b.pos], true
}

// HeadN returns a copy of up to `n` bytes starting at the cursor.
// It returns fewer bytes if the view doesn't have enough of them.
func (b *Buffer) HeadN(n int) []byte {
	if n < 0 {
		n = 0
	}
	n = min(n, b.Remaining())
	out := make([]byte, n)
	copy(out, b.data[b.pos:b.pos+n])
	return out
}

// HeadRune decodes the UTF-8 code point under the cursor without
// moving it.  Invalid encodings decode as utf8.RuneError with size 1,
// so callers always make progress.  Size is zero at the end of the
// view.
func (b *Buffer) HeadRune() (rune, int) {
	if b.pos >= b.end {
		return utf8.RuneError, 0
	}
	if c := b.data[b.pos]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRune(b.data[b.pos:b.end])
}

// Forward moves the cursor `n` bytes ahead.  Moving past the end of
// the view is a bug in the caller and panics.
func (b *Buffer) Forward(n int) {
	if n < 0 || n > b.Remaining() {
		panic(fmt.Sprintf("buffer: can't move forward %d bytes with %d remaining", n, b.Remaining()))
	}
	b.pos += n
}

// Backward moves the cursor `n` bytes back.  Moving before the start
// of the view is a bug in the caller and panics.
func (b *Buffer) Backward(n int) {
	if n < 0 || b.pos-n < b.start {
		panic(fmt.Sprintf("buffer: can't move backward %d bytes from offset %d (view starts at %d)", n, b.pos, b.start))
	}
	b.pos -= n
}

// SplitAt returns two sibling views: `[pos, pos+n)` and `[pos+n,
// end)`.  Neither view copies the underlying bytes and the cursor of
// `b` is not moved.
func (b *Buffer) SplitAt(n int) (*Buffer, *Buffer) {
	if n < 0 || n > b.Remaining() {
		panic(fmt.Sprintf("buffer: can't split at %d with %d remaining", n, b.Remaining()))
	}
	mid := b.pos + n
	left := &Buffer{data: b.data, start: b.pos, end: mid, pos: b.pos, state: b.state}
	right := &Buffer{data: b.data, start: mid, end: b.end, pos: mid, state: b.state}
	return left, right
}

// RemainContent returns a copy of all the bytes left in the view
func (b *Buffer) RemainContent() []byte {
	return b.HeadN(b.Remaining())
}

// Slice returns the bytes between the absolute offsets `from` and
// `to` without copying them.  Both offsets must be within the view.
func (b *Buffer) Slice(from, to int) []byte {
	if from < b.start || to > b.end || from > to {
		panic(fmt.Sprintf("buffer: slice %d..%d is outside of view %d..%d", from, to, b.start, b.end))
	}
	return b.data[from:to:to]
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer(%d..%d @ %d)", b.start, b.end, b.pos)
}
