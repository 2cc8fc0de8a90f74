package handoff

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Work performs the output writes of one phase owned by the running role.
type Work func(ctx context.Context, phase Phase) error

// Pacer delays the start of an owned phase. resource.Controller implements it.
type Pacer interface {
	Pace(ctx context.Context) error
}

// EventKind classifies protocol events.
type EventKind uint8

const (
	// EventWorked is emitted after the role finished the work of a phase.
	EventWorked EventKind = iota
	// EventWoke is emitted after the role woke its peer.
	EventWoke
	// EventAwaited is emitted after the peer's wake for a phase arrived.
	EventAwaited
)

// Event describes one protocol step, for logging and metrics.
type Event struct {
	Kind     EventKind
	Role     Role
	Phase    Phase
	Duration time.Duration
}

// Error reports a protocol step that failed.
type Error struct {
	Role  Role
	Phase Phase
	Op    string // "run", "work", "wake" or "await"
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("handoff %s %s in %s: %v", e.Role, e.Op, e.Phase, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config configures a Protocol.
type Config struct {
	Role Role
	Peer Peer

	// Pacer is consulted before every owned writing phase. Optional.
	Pacer Pacer

	// AwaitTimeout bounds every Await. Zero blocks until ctx is done.
	AwaitTimeout time.Duration

	// Observer receives protocol events. Optional; called synchronously.
	Observer func(Event)
}

// Protocol drives one role through the phase sequence.
type Protocol struct {
	cfg   Config
	phase atomic.Uint32
}

// New creates a protocol runner for cfg.Role.
func New(cfg Config) *Protocol {
	return &Protocol{cfg: cfg}
}

// Role returns the role this runner plays.
func (p *Protocol) Role() Role { return p.cfg.Role }

// Phase returns the phase the runner is currently in.
func (p *Protocol) Phase() Phase {
	return Phase(p.phase.Load())
}

// Run executes the whole phase sequence. work is called once for each
// writing phase owned by the role, never concurrently with the peer's work.
// Run returns after the last phase, leaving the runner in PhaseDone.
func (p *Protocol) Run(ctx context.Context, work Work) error {
	for _, phase := range Sequence() {
		p.phase.Store(uint32(phase))
		if err := ctx.Err(); err != nil {
			return &Error{Role: p.cfg.Role, Phase: phase, Op: "run", Err: err}
		}

		owner, _ := phase.Owner()
		if owner != p.cfg.Role {
			if err := p.await(ctx, phase); err != nil {
				return err
			}
			continue
		}

		if phase.Writes() {
			if err := p.work(ctx, phase, work); err != nil {
				return err
			}
		}
		if err := p.cfg.Peer.Wake(); err != nil {
			return &Error{Role: p.cfg.Role, Phase: phase, Op: "wake", Err: err}
		}
		p.emit(Event{Kind: EventWoke, Role: p.cfg.Role, Phase: phase})
	}
	p.phase.Store(uint32(PhaseDone))
	return nil
}

func (p *Protocol) work(ctx context.Context, phase Phase, work Work) error {
	if p.cfg.Pacer != nil {
		if err := p.cfg.Pacer.Pace(ctx); err != nil {
			return &Error{Role: p.cfg.Role, Phase: phase, Op: "work", Err: err}
		}
	}
	start := time.Now()
	if err := work(ctx, phase); err != nil {
		return &Error{Role: p.cfg.Role, Phase: phase, Op: "work", Err: err}
	}
	p.emit(Event{Kind: EventWorked, Role: p.cfg.Role, Phase: phase, Duration: time.Since(start)})
	return nil
}

func (p *Protocol) await(ctx context.Context, phase Phase) error {
	if p.cfg.AwaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.AwaitTimeout)
		defer cancel()
	}
	start := time.Now()
	if err := p.cfg.Peer.Await(ctx); err != nil {
		return &Error{Role: p.cfg.Role, Phase: phase, Op: "await", Err: err}
	}
	p.emit(Event{Kind: EventAwaited, Role: p.cfg.Role, Phase: phase, Duration: time.Since(start)})
	return nil
}

func (p *Protocol) emit(ev Event) {
	if p.cfg.Observer != nil {
		p.cfg.Observer(ev)
	}
}
