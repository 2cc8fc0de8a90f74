//go:build unix

package handoff

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// WakeSignal is the signal carrying wakes between the two processes.
// Any sender counts; a stray SIGUSR1 from a third process is taken as a wake.
const WakeSignal = unix.SIGUSR1

// SignalPeer exchanges wakes with another process through WakeSignal.
type SignalPeer struct {
	ch     chan os.Signal
	pid    atomic.Int64
	exit   *Exit
	closed atomic.Bool
}

// Listen installs the wake handler for the current process. It must be
// called before the peer can send the first wake; signals that arrive before
// Listen terminate the process.
func Listen() *SignalPeer {
	p := &SignalPeer{ch: make(chan os.Signal, 1)}
	signal.Notify(p.ch, WakeSignal)
	return p
}

// Attach sets the process that receives this peer's wakes.
func (p *SignalPeer) Attach(pid int) {
	p.pid.Store(int64(pid))
}

// Watch makes Await fail fast when the peer process exits with an error
// before sending the awaited wake.
func (p *SignalPeer) Watch(exit *Exit) {
	p.exit = exit
}

// PID returns the attached peer process, or 0.
func (p *SignalPeer) PID() int {
	return int(p.pid.Load())
}

// Wake implements Peer.
func (p *SignalPeer) Wake() error {
	if p.closed.Load() {
		return ErrClosed
	}
	pid := p.PID()
	if pid <= 0 {
		return fmt.Errorf("handoff: no peer process attached")
	}
	if err := unix.Kill(pid, WakeSignal); err != nil {
		return fmt.Errorf("handoff: signal pid %d: %w", pid, err)
	}
	return nil
}

// Await implements Peer.
//
// A peer that exits cleanly has already sent every wake it owes, so a clean
// exit keeps waiting for the wake still in flight. A failed exit aborts.
func (p *SignalPeer) Await(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	var exited <-chan struct{}
	if p.exit != nil {
		exited = p.exit.Done()
	}
	for {
		select {
		case <-p.ch:
			return nil
		case <-exited:
			if err := p.exit.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrPeerExited, err)
			}
			exited = nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close removes the wake handler. Once no handler is left, WakeSignal gets
// its default disposition again, so Close only after the last wake.
func (p *SignalPeer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	signal.Stop(p.ch)
	return nil
}
