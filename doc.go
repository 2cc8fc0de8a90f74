// Package twincoder encodes a text file with two cooperating workers that
// take turns writing one shared, memory-mapped output file.
//
// # Quick Start
//
//	func main() {
//	    if twincoder.IsFollower() {
//	        os.Exit(twincoder.ExitCode(twincoder.RunFollower(context.Background())))
//	    }
//	    res, err := twincoder.Encode(context.Background(), "in.txt", "out.txt")
//	    ...
//	}
//
// # Roles and Phases
//
// The Leader opens the input, computes the output size, creates the output
// with that size and maps both files. It then starts the Follower, by
// default a copy of the running binary that inherits both files as
// descriptors 3 and 4. The two roles alternate through four writing phases:
//
//	init                  Follower signals readiness
//	leader-first-half     Leader scans the first input half
//	follower-first-half   Follower scans the first input half
//	leader-second-half    Leader scans the second input half
//	follower-second-half  Follower scans the second input half
//
// Exactly one role is active at any time. The active role writes, then wakes
// the other one and goes back to waiting. In process mode the wake is
// SIGUSR1; in thread mode both roles are goroutines and the wake is a
// channel send.
//
// # Encoding
//
// A digit v expands to v bytes, any other byte to one byte. The Leader
// writes digits as spaces and upper-cases ASCII letters; the Follower writes
// digits as '*' and copies everything else. The Leader owns the first half
// of the output and the Follower the second, so "a1b2" encodes to "A b**".
//
// # Errors
//
// Every failure is one of the typed errors of this package; Classify maps
// it to a Code and ExitCode to a process exit status.
package twincoder
