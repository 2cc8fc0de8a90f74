package transform

// Window is a half-open range [Lo, Hi) of output positions a role may write.
type Window struct {
	Lo int
	Hi int
}

// Len returns the number of positions in the window.
func (w Window) Len() int {
	if w.Hi <= w.Lo {
		return 0
	}
	return w.Hi - w.Lo
}

// Empty reports whether the window contains no position.
func (w Window) Empty() bool { return w.Len() == 0 }

// Intersect returns the overlap of w and o.
func (w Window) Intersect(o Window) Window {
	lo, hi := max(w.Lo, o.Lo), min(w.Hi, o.Hi)
	if hi < lo {
		hi = lo
	}
	return Window{Lo: lo, Hi: hi}
}

// Encode applies the rule to src in increasing index order, emitting the
// output for src[0] at dst[cursor]. Only positions inside win are written;
// the cursor always advances by the full rule width. Encode returns the
// cursor after the last input byte and the number of bytes written.
//
// The caller guarantees win lies within dst.
func Encode(r Rule, src, dst []byte, cursor int, win Window) (next, written int) {
	if win.Empty() {
		return cursor + Measure(src), 0
	}
	fill := r.Fill()
	for i, b := range src {
		if cursor >= win.Hi {
			// Past the window: only the cursor matters from here on.
			return cursor + Measure(src[i:]), written
		}
		if !IsDigit(b) {
			if cursor >= win.Lo {
				dst[cursor] = r.Map(b)
				written++
			}
			cursor++
			continue
		}
		end := cursor + int(b-'0')
		lo, hi := max(cursor, win.Lo), min(end, win.Hi)
		for j := lo; j < hi; j++ {
			dst[j] = fill
		}
		if hi > lo {
			written += hi - lo
		}
		cursor = end
	}
	return cursor, written
}
