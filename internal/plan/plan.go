// Package plan computes the output size and the per-phase write ownership.
//
// The Leader owns output positions [0, OutputMid) and the Follower owns
// [OutputMid, OutputSize). Both roles scan the first input half in their
// first phase and the second input half in their second phase, so a writing
// phase covers exactly the positions of its role's half that the scanned
// input range produces.
package plan

import (
	"fmt"

	"github.com/hupe1980/twincoder/internal/handoff"
	"github.com/hupe1980/twincoder/internal/transform"
)

// Plan is the output layout derived from one input buffer.
type Plan struct {
	InputSize  int
	OutputSize int
	// InputMid splits the input into [0, InputMid) and [InputMid, InputSize).
	InputMid int
	// Split is the output offset produced by the first input half.
	Split int
	// OutputMid splits the output between the Leader and the Follower.
	OutputMid int
}

// Estimate scans input once and returns its plan.
func Estimate(input []byte) Plan {
	mid := len(input) / 2
	split := transform.Measure(input[:mid])
	size := split + transform.Measure(input[mid:])
	return Plan{
		InputSize:  len(input),
		OutputSize: size,
		InputMid:   mid,
		Split:      split,
		OutputMid:  size / 2,
	}
}

// Growth returns OutputSize - InputSize, i.e. the sum of (v - 1) over all
// digits v of the input.
func (p Plan) Growth() int {
	return p.OutputSize - p.InputSize
}

// Half returns the output half owned by role.
func (p Plan) Half(role handoff.Role) transform.Window {
	if role == handoff.Leader {
		return transform.Window{Lo: 0, Hi: p.OutputMid}
	}
	return transform.Window{Lo: p.OutputMid, Hi: p.OutputSize}
}

// Step describes the work of one writing phase.
type Step struct {
	Phase handoff.Phase
	Role  handoff.Role
	Rule  transform.Rule
	// InLo and InHi bound the scanned input range.
	InLo, InHi int
	// Cursor is the output offset of the first scanned input byte.
	Cursor int
	// Window is the set of output positions this step writes.
	Window transform.Window
}

// Step returns the work for phase. It fails for phases that do not write.
func (p Plan) Step(phase handoff.Phase) (Step, error) {
	if !phase.Writes() {
		return Step{}, fmt.Errorf("plan: phase %s does not write", phase)
	}
	role, _ := phase.Owner()

	s := Step{Phase: phase, Role: role, Rule: RuleFor(role)}
	span := transform.Window{Lo: 0, Hi: p.Split}
	s.InLo, s.InHi = 0, p.InputMid
	if phase.SecondHalf() {
		span = transform.Window{Lo: p.Split, Hi: p.OutputSize}
		s.InLo, s.InHi = p.InputMid, p.InputSize
	}
	s.Cursor = span.Lo
	s.Window = span.Intersect(p.Half(role))
	return s, nil
}

// Steps returns the four writing steps in protocol order.
func (p Plan) Steps() []Step {
	phases := handoff.WritePhases()
	steps := make([]Step, 0, len(phases))
	for _, phase := range phases {
		s, _ := p.Step(phase)
		steps = append(steps, s)
	}
	return steps
}

// RuleFor returns the transformation rule applied by role.
func RuleFor(role handoff.Role) transform.Rule {
	if role == handoff.Leader {
		return transform.Leader
	}
	return transform.Follower
}

// Execute runs step s from input into output and returns the number of bytes
// written. output must be OutputSize bytes long.
func (p Plan) Execute(s Step, input, output []byte) (int, error) {
	if len(input) != p.InputSize {
		return 0, fmt.Errorf("plan: input is %d bytes, plan expects %d", len(input), p.InputSize)
	}
	if len(output) != p.OutputSize {
		return 0, fmt.Errorf("plan: output is %d bytes, plan expects %d", len(output), p.OutputSize)
	}
	next, written := transform.Encode(s.Rule, input[s.InLo:s.InHi], output, s.Cursor, s.Window)

	end := p.Split
	if s.Phase.SecondHalf() {
		end = p.OutputSize
	}
	if next != end {
		return written, fmt.Errorf("plan: %s ended at offset %d, expected %d", s.Phase, next, end)
	}
	if written != s.Window.Len() {
		return written, fmt.Errorf("plan: %s wrote %d bytes, window holds %d", s.Phase, written, s.Window.Len())
	}
	return written, nil
}
