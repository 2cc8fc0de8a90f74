// Package resource implements the Controller that paces and guards the
// writing phases.
//
// The Controller provides three facilities:
//
//   - Pacing: a minimum interval between the starts of owned phases
//   - Writer slot: a single-slot guard asserting that no two phases write at once
//   - IO: rate limiting for the archive copy of the output
//
// # Architecture
//
//	┌───────────────────────────────────────────────────────────┐
//	│                        Controller                         │
//	├──────────────────┬──────────────────┬─────────────────────┤
//	│  Phase pacer     │  Writer slot     │  IO rate limiter    │
//	│  (token bucket)  │  (sem, weight 1) │  (token bucket)     │
//	├──────────────────┼──────────────────┼─────────────────────┤
//	│  Pace            │  AcquireWriter   │  AcquireIO          │
//	│                  │  ReleaseWriter   │  RateLimitedWriter  │
//	└──────────────────┴──────────────────┴─────────────────────┘
//
// # Pacing
//
// With a pace interval the phase starts are spread out, which makes the
// alternation observable when following the logs:
//
//	rc := resource.NewController(resource.Config{PaceInterval: time.Second})
//	if err := rc.Pace(ctx); err != nil {
//	    return err
//	}
//
// # Writer Slot
//
// The writer slot never blocks. When both roles share one Controller (thread
// mode), a second writer finding the slot taken means the handoff protocol
// was violated; AcquireWriter reports ErrConcurrentWriter instead of waiting.
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
package resource
