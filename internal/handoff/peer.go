package handoff

import (
	"context"
	"errors"
)

var (
	// ErrPeerExited is returned by Await when the peer process terminated
	// with a failure before delivering the awaited wake.
	ErrPeerExited = errors.New("handoff: peer exited")
	// ErrClosed is returned when a closed peer is used.
	ErrClosed = errors.New("handoff: peer closed")
)

// Peer delivers wakes to the other role and waits for the other role's wakes.
type Peer interface {
	// Wake notifies the other role that the current phase is complete.
	Wake() error
	// Await blocks until the other role's wake arrives or ctx is done.
	Await(ctx context.Context) error
}

// ChanPeer is one end of an in-process wake pipe.
type ChanPeer struct {
	in  <-chan struct{}
	out chan<- struct{}
}

// NewPipe returns two connected peers, one per role.
func NewPipe() (leader, follower *ChanPeer) {
	toLeader := make(chan struct{}, 1)
	toFollower := make(chan struct{}, 1)
	leader = &ChanPeer{in: toLeader, out: toFollower}
	follower = &ChanPeer{in: toFollower, out: toLeader}
	return leader, follower
}

// Wake implements Peer. A wake that is still pending is not duplicated.
func (p *ChanPeer) Wake() error {
	select {
	case p.out <- struct{}{}:
	default:
	}
	return nil
}

// Await implements Peer.
func (p *ChanPeer) Await(ctx context.Context) error {
	select {
	case <-p.in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
