// Package handoff implements the four-phase alternating protocol between the
// Leader and the Follower.
//
// # Phases
//
//	Init → LeaderFirstHalf → FollowerFirstHalf → LeaderSecondHalf → FollowerSecondHalf → Done
//
// Every phase has exactly one owner. For each phase in order, the owner does
// its work and then wakes the peer, while the other role blocks in Await until
// that wake arrives. Init is owned by the Follower and carries no work: its
// wake is the readiness handshake telling the Leader that the Follower is
// listening. The Follower's wake after FollowerSecondHalf is the completion
// notice the Leader waits for before joining the Follower.
//
// # Peers
//
// A Peer delivers wakes to the other role and blocks until the other role's
// wake arrives:
//
//   - [SignalPeer] uses SIGUSR1 between two processes. The handler is a
//     buffered channel registered with os/signal, so waiting never spins.
//   - [ChanPeer] connects two goroutines of the same process.
//
// Wakes are sticky: a wake that arrives before Await is called is kept until
// Await consumes it. Two wakes in the same direction without an Await in
// between coalesce, which the protocol never requires.
//
// # Blocking
//
// Await blocks until the wake arrives or ctx is done. No timeout is applied
// unless the caller configures one on the Protocol. A lost wake therefore
// blocks forever, matching the tightly coupled process pair this serves.
package handoff
