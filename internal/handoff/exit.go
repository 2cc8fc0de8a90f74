package handoff

// Exit reports the termination of a peer process.
type Exit struct {
	done chan struct{}
	err  error
}

// WatchExit runs wait in a new goroutine and records its result.
// wait is typically (*exec.Cmd).Wait.
func WatchExit(wait func() error) *Exit {
	e := &Exit{done: make(chan struct{})}
	go func() {
		e.err = wait()
		close(e.done)
	}()
	return e
}

// Done is closed once the peer has terminated.
func (e *Exit) Done() <-chan struct{} {
	return e.done
}

// Err returns the result of the wait. It is only meaningful after Done is
// closed.
func (e *Exit) Err() error {
	select {
	case <-e.done:
		return e.err
	default:
		return nil
	}
}

// Exited reports whether the peer has terminated.
func (e *Exit) Exited() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}
