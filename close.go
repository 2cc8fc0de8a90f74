package twincoder

// Close flushes the output mapping, unmaps both buffers and closes both
// files. It is idempotent; the first error wins.
func (p *Pair) Close() error {
	if p == nil || p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	if err := p.Flush(); err != nil {
		firstErr = err
	}
	if p.out != nil {
		if err := p.out.Close(); err != nil && firstErr == nil {
			firstErr = &ErrMap{Buffer: "output", Op: "unmap", cause: err}
		}
	}
	if p.in != nil {
		if err := p.in.Close(); err != nil && firstErr == nil {
			firstErr = &ErrMap{Buffer: "input", Op: "unmap", cause: err}
		}
	}
	if p.output != nil {
		if err := p.output.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.input != nil {
		if err := p.input.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
