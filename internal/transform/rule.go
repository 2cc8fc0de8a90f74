package transform

import "fmt"

// Rule selects one of the two transformation rules.
type Rule uint8

const (
	// Leader fills digit runs with spaces and upper-cases ASCII letters.
	Leader Rule = iota
	// Follower fills digit runs with '*' and copies other bytes unchanged.
	Follower
)

const (
	leaderFill   = ' '
	followerFill = '*'
)

// String implements fmt.Stringer.
func (r Rule) String() string {
	switch r {
	case Leader:
		return "leader"
	case Follower:
		return "follower"
	default:
		return fmt.Sprintf("rule(%d)", uint8(r))
	}
}

// Fill returns the byte used to expand digit runs.
func (r Rule) Fill() byte {
	if r == Leader {
		return leaderFill
	}
	return followerFill
}

// Map returns the output byte for a non-digit input byte.
func (r Rule) Map(b byte) byte {
	if r == Leader && b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// IsDigit reports whether b is an ASCII decimal digit.
func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Width returns the number of output bytes produced for input byte b.
// It is identical for both rules.
func Width(b byte) int {
	if IsDigit(b) {
		return int(b - '0')
	}
	return 1
}

// Measure returns the total output length for src.
func Measure(src []byte) int {
	n := 0
	for _, b := range src {
		n += Width(b)
	}
	return n
}

// Apply transforms src with the rule into a freshly allocated buffer.
func Apply(r Rule, src []byte) []byte {
	dst := make([]byte, Measure(src))
	Encode(r, src, dst, 0, Window{Lo: 0, Hi: len(dst)})
	return dst
}
