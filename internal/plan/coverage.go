package plan

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

var (
	// ErrOverlap is returned when two steps own the same output position.
	ErrOverlap = errors.New("plan: overlapping ownership")
	// ErrGap is returned when an output position has no owner.
	ErrGap = errors.New("plan: uncovered output")
	// ErrOutOfRange is returned when a step owns a position past the output end.
	ErrOutOfRange = errors.New("plan: ownership past output end")
)

// Coverage returns the output positions written by each step, in step order.
func (p Plan) Coverage() []*roaring64.Bitmap {
	steps := p.Steps()
	out := make([]*roaring64.Bitmap, len(steps))
	for i, s := range steps {
		bm := roaring64.New()
		if !s.Window.Empty() {
			bm.AddRange(uint64(s.Window.Lo), uint64(s.Window.Hi))
		}
		out[i] = bm
	}
	return out
}

// Verify checks that the writing steps partition [0, OutputSize): no
// position is written twice and none is left unwritten.
func (p Plan) Verify() error {
	steps := p.Steps()
	cover := p.Coverage()

	union := roaring64.New()
	for i, bm := range cover {
		if union.Intersects(bm) {
			overlap := roaring64.And(union, bm)
			return fmt.Errorf("%w: %s at offset %d", ErrOverlap, steps[i].Phase, overlap.Minimum())
		}
		union.Or(bm)
	}

	if !union.IsEmpty() && union.Maximum() >= uint64(p.OutputSize) {
		return fmt.Errorf("%w: offset %d, output holds %d bytes", ErrOutOfRange, union.Maximum(), p.OutputSize)
	}
	if got := union.GetCardinality(); got != uint64(p.OutputSize) {
		return fmt.Errorf("%w: %d of %d positions owned", ErrGap, got, p.OutputSize)
	}
	return nil
}
