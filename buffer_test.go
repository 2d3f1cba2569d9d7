package combinator

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	t.Run("head on empty input", func(t *testing.T) {
		b := NewBufferString("")
		_, ok := b.Head()
		assert.False(t, ok)
		assert.Equal(t, 0, b.Remaining())
	})

	t.Run("head does not move the cursor", func(t *testing.T) {
		b := NewBufferString("abc")
		c, ok := b.Head()
		require.True(t, ok)
		assert.Equal(t, byte('a'), c)
		assert.Equal(t, 0, b.Position())
		assert.Equal(t, 3, b.Remaining())
	})

	t.Run("headN returns fewer bytes when there are not enough", func(t *testing.T) {
		b := NewBufferString("abc")
		assert.Equal(t, []byte("ab"), b.HeadN(2))
		assert.Equal(t, []byte("abc"), b.HeadN(10))
		assert.Equal(t, []byte{}, b.HeadN(-1))

		b.Forward(3)
		assert.Equal(t, []byte{}, b.HeadN(1))
	})

	t.Run("headN copies the bytes", func(t *testing.T) {
		data := []byte("abc")
		b := NewBuffer(data)
		head := b.HeadN(3)
		head[0] = 'x'
		assert.Equal(t, []byte("abc"), data)
	})

	t.Run("forward and backward", func(t *testing.T) {
		b := NewBufferString("abcdef")
		b.Forward(4)
		assert.Equal(t, 4, b.Position())
		assert.Equal(t, 2, b.Remaining())
		b.Backward(3)
		assert.Equal(t, 1, b.Position())
		c, _ := b.Head()
		assert.Equal(t, byte('b'), c)
	})

	t.Run("moving outside of the view panics", func(t *testing.T) {
		b := NewBufferString("abc")
		assert.Panics(t, func() { b.Backward(1) })
		assert.Panics(t, func() { b.Forward(4) })
		assert.Panics(t, func() { b.Forward(-1) })
	})

	t.Run("split at creates independent views", func(t *testing.T) {
		b := NewBufferString("hello world")
		b.Forward(1)

		left, right := b.SplitAt(4)
		assert.Equal(t, 1, b.Position(), "splitting doesn't move the original cursor")
		assert.Equal(t, []byte("ello"), left.RemainContent())
		assert.Equal(t, []byte(" world"), right.RemainContent())

		left.Forward(4)
		assert.Equal(t, 0, left.Remaining())
		assert.Equal(t, 6, right.Remaining())
		assert.Equal(t, 5, right.Position())

		assert.Panics(t, func() { right.Backward(1) }, "a view can't go before its start")
		assert.Panics(t, func() { left.Forward(1) }, "a view can't go after its end")
	})

	t.Run("split at the edges", func(t *testing.T) {
		b := NewBufferString("abc")

		left, right := b.SplitAt(0)
		assert.Equal(t, 0, left.Remaining())
		assert.Equal(t, 3, right.Remaining())

		left, right = b.SplitAt(3)
		assert.Equal(t, 3, left.Remaining())
		assert.Equal(t, 0, right.Remaining())

		assert.Panics(t, func() { b.SplitAt(4) })
		assert.Panics(t, func() { b.SplitAt(-1) })
	})

	t.Run("views share state", func(t *testing.T) {
		st := newMatchState(1)
		b := NewBufferWithState([]byte("ab"), st)
		left, right := b.SplitAt(1)
		assert.Same(t, st, left.State())
		assert.Same(t, st, right.State())
		assert.Nil(t, NewBufferString("ab").State())
	})

	t.Run("slice returns consumed bytes", func(t *testing.T) {
		b := NewBufferString("abcdef")
		b.Forward(2)
		_, right := b.SplitAt(2)
		assert.Equal(t, []byte("ef"), right.Slice(4, 6))
		assert.Panics(t, func() { right.Slice(3, 5) })
		assert.Panics(t, func() { right.Slice(5, 4) })
	})

	t.Run("head rune decodes utf-8", func(t *testing.T) {
		b := NewBufferString("ção")
		r, size := b.HeadRune()
		assert.Equal(t, 'ç', r)
		assert.Equal(t, 2, size)

		b = NewBuffer([]byte{0xff, 'a'})
		r, size = b.HeadRune()
		assert.Equal(t, utf8.RuneError, r)
		assert.Equal(t, 1, size)

		b = NewBufferString("")
		_, size = b.HeadRune()
		assert.Equal(t, 0, size)
	})
}
