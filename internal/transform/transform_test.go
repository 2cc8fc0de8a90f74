package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Examples(t *testing.T) {
	assert.Equal(t, "A B  ", string(Apply(Leader, []byte("a1b2"))))
	assert.Equal(t, "a*b**", string(Apply(Follower, []byte("a1b2"))))
}

func TestApply_ZeroDigitShrinks(t *testing.T) {
	out := Apply(Follower, []byte("x0y"))
	assert.Equal(t, "xy", string(out))

	assert.Empty(t, Apply(Leader, []byte("000")))
}

func TestRule_Map(t *testing.T) {
	tests := []struct {
		in       byte
		leader   byte
		follower byte
	}{
		{'a', 'A', 'a'},
		{'z', 'Z', 'z'},
		{'Q', 'Q', 'Q'},
		{'-', '-', '-'},
		{'\n', '\n', '\n'},
		{0xe9, 0xe9, 0xe9}, // non-ASCII bytes pass through
	}
	for _, tt := range tests {
		assert.Equal(t, tt.leader, Leader.Map(tt.in), "leader %q", tt.in)
		assert.Equal(t, tt.follower, Follower.Map(tt.in), "follower %q", tt.in)
	}
}

func TestWidth(t *testing.T) {
	for d := byte('0'); d <= '9'; d++ {
		assert.Equal(t, int(d-'0'), Width(d))
	}
	assert.Equal(t, 1, Width('a'))
	assert.Equal(t, 1, Width(' '))
	assert.Equal(t, 4+1, Measure([]byte("a1b2")))
}

func TestEncode_WindowClipping(t *testing.T) {
	src := []byte("ab3c")
	full := Apply(Leader, src) // "AB   C"
	require.Equal(t, "AB   C", string(full))

	// Every split point of the output must reassemble the full stream.
	for mid := 0; mid <= len(full); mid++ {
		dst := make([]byte, len(full))
		next, w1 := Encode(Leader, src, dst, 0, Window{Lo: 0, Hi: mid})
		assert.Equal(t, len(full), next)
		next, w2 := Encode(Leader, src, dst, 0, Window{Lo: mid, Hi: len(full)})
		assert.Equal(t, len(full), next)
		assert.Equal(t, len(full), w1+w2, "mid=%d", mid)
		assert.Equal(t, full, dst, "mid=%d", mid)
	}
}

func TestEncode_CursorOffset(t *testing.T) {
	dst := make([]byte, 6)
	next, written := Encode(Follower, []byte("2x"), dst, 3, Window{Lo: 0, Hi: 6})
	assert.Equal(t, 6, next)
	assert.Equal(t, 3, written)
	assert.Equal(t, []byte{0, 0, 0, '*', '*', 'x'}, dst)
}

func TestEncode_EmptyWindowLeavesDst(t *testing.T) {
	dst := []byte("......")
	next, written := Encode(Leader, []byte("a9"), dst, 0, Window{Lo: 4, Hi: 4})
	assert.Equal(t, 10, next)
	assert.Zero(t, written)
	assert.Equal(t, "......", string(dst))
}

func TestWindow_Intersect(t *testing.T) {
	w := Window{Lo: 2, Hi: 8}
	assert.Equal(t, Window{Lo: 4, Hi: 8}, w.Intersect(Window{Lo: 4, Hi: 10}))
	assert.True(t, w.Intersect(Window{Lo: 9, Hi: 12}).Empty())
	assert.Equal(t, 6, w.Len())
}

func TestRule_String(t *testing.T) {
	assert.Equal(t, "leader", Leader.String())
	assert.Equal(t, "follower", Follower.String())
	assert.Equal(t, "rule(7)", Rule(7).String())
}
