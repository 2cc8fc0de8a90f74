package mmap

import "os"

// Region represents a subsection of a memory mapping, such as the output
// half owned by one role. It does not own the memory; the parent Mapping does.
type Region struct {
	parent *Mapping
	offset int
	size   int
}

// Region creates a new view into the mapping.
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset+size > m.size {
		return nil, ErrOutOfBounds
	}
	return &Region{
		parent: m,
		offset: offset,
		size:   size,
	}, nil
}

// Offset returns the position of the region inside its mapping.
func (r *Region) Offset() int { return r.offset }

// Len returns the size of the region in bytes.
func (r *Region) Len() int { return r.size }

// Bytes returns the byte slice for this region.
// Warning: The slice is valid only until the parent Mapping is closed.
func (r *Region) Bytes() []byte {
	if r.parent.closed.Load() {
		return nil
	}
	return r.parent.data[r.offset : r.offset+r.size]
}

// Advise provides hints to the kernel about how this region will be accessed.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	if r.size == 0 {
		return nil
	}
	return osAdvise(r.parent.data[r.offset:r.offset+r.size], pattern)
}

// Flush writes the modified pages of this region back to the file.
// msync needs a page-aligned start, so the flushed range begins at the page
// containing the region's first byte.
func (r *Region) Flush() error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	if r.parent.mode != ReadWrite {
		return ErrReadOnly
	}
	if r.size == 0 {
		return nil
	}
	start := r.offset &^ (os.Getpagesize() - 1)
	return osSync(r.parent.data[start : r.offset+r.size])
}
