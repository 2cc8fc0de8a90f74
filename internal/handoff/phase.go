package handoff

import "fmt"

// Role identifies one of the two cooperating parties.
type Role uint8

const (
	// Leader is the spawning party.
	Leader Role = iota
	// Follower is the spawned party.
	Follower
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case Leader:
		return "leader"
	case Follower:
		return "follower"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Peer returns the opposite role.
func (r Role) Peer() Role {
	if r == Leader {
		return Follower
	}
	return Leader
}

// Phase is a step of the handoff state machine.
type Phase uint8

const (
	PhaseInit Phase = iota
	PhaseLeaderFirstHalf
	PhaseFollowerFirstHalf
	PhaseLeaderSecondHalf
	PhaseFollowerSecondHalf
	PhaseDone
)

var phaseNames = [...]string{
	PhaseInit:               "init",
	PhaseLeaderFirstHalf:    "leader-first-half",
	PhaseFollowerFirstHalf:  "follower-first-half",
	PhaseLeaderSecondHalf:   "leader-second-half",
	PhaseFollowerSecondHalf: "follower-second-half",
	PhaseDone:               "done",
}

// String implements fmt.Stringer.
func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Owner returns the role allowed to act in phase p. Done has no owner and
// reports false.
func (p Phase) Owner() (Role, bool) {
	switch p {
	case PhaseInit, PhaseFollowerFirstHalf, PhaseFollowerSecondHalf:
		return Follower, true
	case PhaseLeaderFirstHalf, PhaseLeaderSecondHalf:
		return Leader, true
	default:
		return 0, false
	}
}

// Writes reports whether phase p writes output.
func (p Phase) Writes() bool {
	return p >= PhaseLeaderFirstHalf && p <= PhaseFollowerSecondHalf
}

// SecondHalf reports whether phase p works on the second input half.
func (p Phase) SecondHalf() bool {
	return p == PhaseLeaderSecondHalf || p == PhaseFollowerSecondHalf
}

// Next returns the phase following p. Done is terminal.
func (p Phase) Next() Phase {
	if p >= PhaseDone {
		return PhaseDone
	}
	return p + 1
}

// Sequence returns the phases in protocol order, excluding Done.
func Sequence() []Phase {
	return []Phase{
		PhaseInit,
		PhaseLeaderFirstHalf,
		PhaseFollowerFirstHalf,
		PhaseLeaderSecondHalf,
		PhaseFollowerSecondHalf,
	}
}

// WritePhases returns the four writing phases in protocol order.
func WritePhases() []Phase {
	return []Phase{
		PhaseLeaderFirstHalf,
		PhaseFollowerFirstHalf,
		PhaseLeaderSecondHalf,
		PhaseFollowerSecondHalf,
	}
}
