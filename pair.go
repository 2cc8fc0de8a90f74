package twincoder

import (
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/twincoder/internal/fs"
	"github.com/hupe1980/twincoder/internal/handoff"
	"github.com/hupe1980/twincoder/internal/mmap"
	"github.com/hupe1980/twincoder/internal/plan"
)

// outputPerm is the mode of a newly created output file.
const outputPerm os.FileMode = 0o600

// Pair is the mapped input and output of one encoding run.
//
// The input is mapped read-only, the output read-write and shared, so the
// bytes one process writes are visible to the other process mapping the
// same file.
type Pair struct {
	Plan plan.Plan

	input  fs.File
	output fs.File
	in     *mmap.Mapping
	out    *mmap.Mapping
	closed bool
}

// OpenPair opens inPath, plans the output, creates outPath with the planned
// size and maps both files. On failure nothing stays open or mapped.
func OpenPair(fsys fs.FileSystem, inPath, outPath string) (*Pair, error) {
	if fsys == nil {
		fsys = fs.Default
	}

	input, err := fsys.OpenFile(inPath, os.O_RDONLY, 0)
	if err != nil {
		return nil, &ErrInputOpen{Path: inPath, cause: err}
	}

	p := &Pair{input: input}
	if err := p.mapInput(); err != nil {
		_ = p.Close()
		return nil, err
	}
	p.Plan = plan.Estimate(p.in.Bytes())

	output, err := fsys.OpenFile(outPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, outputPerm)
	if err != nil {
		_ = p.Close()
		return nil, &ErrOutputOpen{Path: outPath, cause: err}
	}
	p.output = output

	// The mapping must not extend past the end of the file.
	if err := output.Truncate(int64(p.Plan.OutputSize)); err != nil {
		_ = p.Close()
		return nil, &ErrMap{Buffer: "output", Op: "resize", cause: err}
	}
	if err := p.mapOutput(); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// AttachPair maps files opened by another process, typically descriptors
// inherited by the Follower. The plan is recomputed from the input and the
// output must already have the planned size.
func AttachPair(input, output fs.File) (*Pair, error) {
	p := &Pair{input: input, output: output}
	if err := p.mapInput(); err != nil {
		_ = p.Close()
		return nil, err
	}
	p.Plan = plan.Estimate(p.in.Bytes())

	fi, err := output.Stat()
	if err != nil {
		_ = p.Close()
		return nil, &ErrMap{Buffer: "output", Op: "map", cause: err}
	}
	if fi.Size() != int64(p.Plan.OutputSize) {
		_ = p.Close()
		return nil, &ErrMap{Buffer: "output", Op: "map",
			cause: fmt.Errorf("%w: file has %d bytes, plan needs %d", ErrSizeMismatch, fi.Size(), p.Plan.OutputSize)}
	}
	if err := p.mapOutput(); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Pair) mapInput() error {
	fi, err := p.input.Stat()
	if err != nil {
		return &ErrMap{Buffer: "input", Op: "map", cause: err}
	}
	size := fi.Size()
	if size == 0 {
		return &ErrMap{Buffer: "input", Op: "map", cause: ErrEmptyInput}
	}
	if int64(int(size)) != size {
		return &ErrMap{Buffer: "input", Op: "map", cause: mmap.ErrInvalidSize}
	}

	m, err := mmap.Map(p.input, int(size), mmap.ReadOnly)
	if err != nil {
		return &ErrMap{Buffer: "input", Op: "map", cause: err}
	}
	p.in = m
	_ = m.Advise(mmap.AccessSequential)
	return nil
}

func (p *Pair) mapOutput() error {
	m, err := mmap.Map(p.output, p.Plan.OutputSize, mmap.ReadWrite)
	if err != nil {
		return &ErrMap{Buffer: "output", Op: "map", cause: err}
	}
	p.out = m
	return nil
}

// Input returns the mapped input bytes.
func (p *Pair) Input() []byte { return p.in.Bytes() }

// Output returns the mapped output bytes. It is empty when the plan has no
// output.
func (p *Pair) Output() []byte { return p.out.Bytes() }

// InputPath returns the name the input file was opened with.
func (p *Pair) InputPath() string { return p.input.Name() }

// OutputPath returns the name the output file was opened with.
func (p *Pair) OutputPath() string { return p.output.Name() }

// Half returns the output region owned by role.
func (p *Pair) Half(role handoff.Role) (*mmap.Region, error) {
	w := p.Plan.Half(role)
	return p.out.Region(w.Lo, w.Len())
}

// Write performs the writing phase of the plan, returning the number of
// output bytes written.
func (p *Pair) Write(phase handoff.Phase) (int, error) {
	s, err := p.Plan.Step(phase)
	if err != nil {
		return 0, err
	}
	return p.Plan.Execute(s, p.Input(), p.Output())
}

// Flush writes the output mapping back to the file and syncs the file.
func (p *Pair) Flush() error {
	if p.out == nil {
		return nil
	}
	if err := p.out.Flush(); err != nil && !errors.Is(err, mmap.ErrClosed) {
		return &ErrMap{Buffer: "output", Op: "flush", cause: err}
	}
	if err := p.output.Sync(); err != nil {
		return &ErrMap{Buffer: "output", Op: "flush", cause: err}
	}
	return nil
}
