package twincoder

import (
	"errors"
	"fmt"

	"github.com/hupe1980/twincoder/internal/handoff"
	"github.com/hupe1980/twincoder/internal/resource"
)

var (
	// ErrEmptyInput is returned when the input file has no content.
	ErrEmptyInput = errors.New("input file is empty")
	// ErrSizeMismatch is returned when the output file does not have the
	// planned size when the Follower attaches to it.
	ErrSizeMismatch = errors.New("output size does not match plan")
	// ErrNotFollower is returned by RunFollower when the process was not
	// started as a Follower.
	ErrNotFollower = errors.New("process was not started as a follower")
	// ErrConcurrentWriter is returned when two phases write at the same time.
	ErrConcurrentWriter = resource.ErrConcurrentWriter
)

// ErrUsage indicates invalid command-line usage.
type ErrUsage struct {
	Reason string
}

func (e *ErrUsage) Error() string {
	return fmt.Sprintf("usage: %s", e.Reason)
}

// ErrInputOpen indicates that the input file could not be opened.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrInputOpen struct {
	Path  string
	cause error
}

func (e *ErrInputOpen) Error() string {
	return fmt.Sprintf("open input %s: %v", e.Path, e.cause)
}

func (e *ErrInputOpen) Unwrap() error { return e.cause }

// ErrOutputOpen indicates that the output file could not be created.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrOutputOpen struct {
	Path  string
	cause error
}

func (e *ErrOutputOpen) Error() string {
	return fmt.Sprintf("open output %s: %v", e.Path, e.cause)
}

func (e *ErrOutputOpen) Unwrap() error { return e.cause }

// ErrMap indicates a failure to establish, resize or flush a mapping.
//
// Buffer is "input" or "output"; Op is "map", "resize" or "flush".
type ErrMap struct {
	Buffer string
	Op     string
	cause  error
}

func (e *ErrMap) Error() string {
	return fmt.Sprintf("%s %s buffer: %v", e.Op, e.Buffer, e.cause)
}

func (e *ErrMap) Unwrap() error { return e.cause }

// ErrFork indicates that the Follower could not be started.
type ErrFork struct {
	cause error
}

func (e *ErrFork) Error() string {
	return fmt.Sprintf("start follower: %v", e.cause)
}

func (e *ErrFork) Unwrap() error { return e.cause }

// ErrWait indicates that the Follower did not terminate as expected.
type ErrWait struct {
	PID   int
	cause error
}

func (e *ErrWait) Error() string {
	return fmt.Sprintf("wait for follower %d: %v", e.PID, e.cause)
}

func (e *ErrWait) Unwrap() error { return e.cause }

// ErrHandoff indicates that a step of the phase protocol failed.
type ErrHandoff struct {
	Role  handoff.Role
	Phase handoff.Phase
	Op    string
	cause error
}

func (e *ErrHandoff) Error() string {
	return fmt.Sprintf("%s %s in phase %s: %v", e.Role, e.Op, e.Phase, e.cause)
}

func (e *ErrHandoff) Unwrap() error { return e.cause }

// ErrArchive indicates that the compressed sidecar could not be written.
// The output file itself is complete when this error is returned.
type ErrArchive struct {
	Path  string
	cause error
}

func (e *ErrArchive) Error() string {
	return fmt.Sprintf("archive %s: %v", e.Path, e.cause)
}

func (e *ErrArchive) Unwrap() error { return e.cause }

// Code is a coarse error class used for exit codes and logs.
type Code string

const (
	CodeUnknown Code = "unknown"
	CodeUsage   Code = "usage"
	CodeInput   Code = "input"
	CodeOutput  Code = "output"
	CodeMap     Code = "map"
	CodeFork    Code = "fork"
	CodeWait    Code = "wait"
	CodeHandoff Code = "handoff"
	CodeArchive Code = "archive"
)

// Classify returns the class of err.
func Classify(err error) Code {
	var (
		usage   *ErrUsage
		input   *ErrInputOpen
		output  *ErrOutputOpen
		mapErr  *ErrMap
		fork    *ErrFork
		wait    *ErrWait
		hand    *ErrHandoff
		archive *ErrArchive
	)
	switch {
	case err == nil:
		return CodeUnknown
	case errors.As(err, &usage):
		return CodeUsage
	case errors.As(err, &input):
		return CodeInput
	case errors.As(err, &output):
		return CodeOutput
	case errors.As(err, &mapErr):
		return CodeMap
	case errors.As(err, &fork):
		return CodeFork
	case errors.As(err, &wait):
		return CodeWait
	case errors.As(err, &hand):
		return CodeHandoff
	case errors.As(err, &archive):
		return CodeArchive
	default:
		return CodeUnknown
	}
}

// ExitCode maps err to a process exit status: 0 for nil, 2 for usage
// errors and 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case Classify(err) == CodeUsage:
		return 2
	default:
		return 1
	}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var herr *handoff.Error
	if errors.As(err, &herr) {
		return &ErrHandoff{Role: herr.Role, Phase: herr.Phase, Op: herr.Op, cause: herr.Err}
	}
	return err
}
