package twincoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/hupe1980/twincoder/internal/config"
	"github.com/hupe1980/twincoder/internal/fs"
	"github.com/hupe1980/twincoder/internal/handoff"
	"github.com/hupe1980/twincoder/internal/resource"
)

// Environment of a Follower process.
const (
	// EnvRole is set to "follower" in the Follower's environment.
	EnvRole = "TWINCODER_ROLE"
	// EnvConfig holds the YAML configuration of the run.
	EnvConfig = "TWINCODER_CONFIG"
	// EnvLeaderPID holds the process id that receives the Follower's wakes.
	EnvLeaderPID = "TWINCODER_LEADER_PID"
)

// Descriptors the Follower inherits.
const (
	inputFD  = 3
	outputFD = 4
)

// IsFollower reports whether the running process was started as a Follower.
// Programs that encode in process mode must check it first thing in main
// and call RunFollower instead of their normal flow.
func IsFollower() bool {
	return os.Getenv(EnvRole) == handoff.Follower.String()
}

// RunFollower plays the Follower role on the descriptors and configuration
// inherited from the Leader. It returns once the Follower's last phase is
// done and its view of the output is flushed.
func RunFollower(ctx context.Context, optFns ...Option) error {
	if !IsFollower() {
		return ErrNotFollower
	}

	cfg, err := config.Parse([]byte(os.Getenv(EnvConfig)))
	if err != nil {
		return &ErrUsage{Reason: err.Error()}
	}
	logger := NewLoggerFor(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	opts := applyOptions(append([]Option{WithConfig(cfg), WithLogger(logger)}, optFns...))
	logger = opts.logger.WithRole(handoff.Follower)

	leader := os.Getppid()
	if v := os.Getenv(EnvLeaderPID); v != "" {
		pid, err := strconv.Atoi(v)
		if err != nil || pid <= 0 {
			return &ErrUsage{Reason: fmt.Sprintf("%s=%q is not a process id", EnvLeaderPID, v)}
		}
		leader = pid
	}

	input := os.NewFile(inputFD, "input")
	output := os.NewFile(outputFD, "output")
	if input == nil || output == nil {
		return &ErrMap{Buffer: "input", Op: "map", cause: errors.New("descriptors 3 and 4 were not inherited")}
	}

	// Listen before the readiness wake: the Leader answers it immediately.
	peer := handoff.Listen()
	defer peer.Close()
	peer.Attach(leader)

	pair, err := AttachPair(input, output)
	if err != nil {
		return err
	}
	logger.LogPlan(ctx, pair.Plan)

	w := &phaseWorker{
		pair:    pair,
		guard:   resource.NewController(resource.Config{}),
		role:    handoff.Follower,
		flush:   true,
		logger:  logger,
		metrics: opts.metricsCollector,
	}
	e := &Encoder{opts: opts}
	if err := e.protocol(handoff.Follower, peer, w).Run(ctx, w.work); err != nil {
		_ = pair.Close()
		return translateError(err)
	}
	return pair.Close()
}

// spawn starts the Follower process with the pair's descriptors.
func (e *Encoder) spawn(pair *Pair) (*exec.Cmd, error) {
	input, ok := fs.OSFile(pair.input)
	if !ok {
		return nil, &ErrFork{cause: errors.New("input is not an os file")}
	}
	output, ok := fs.OSFile(pair.output)
	if !ok {
		return nil, &ErrFork{cause: errors.New("output is not an os file")}
	}

	argv := e.opts.followerCommand
	if len(argv) == 0 {
		self, err := os.Executable()
		if err != nil {
			return nil, &ErrFork{cause: err}
		}
		argv = []string{self}
	}

	doc, err := config.Marshal(e.opts.config())
	if err != nil {
		return nil, &ErrFork{cause: err}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(),
		EnvRole+"="+handoff.Follower.String(),
		EnvConfig+"="+string(doc),
		EnvLeaderPID+"="+strconv.Itoa(os.Getpid()),
	)
	cmd.ExtraFiles = []*os.File{input, output} // fds 3 and 4
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, &ErrFork{cause: err}
	}
	return cmd, nil
}
