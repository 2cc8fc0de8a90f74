package twincoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/twincoder/internal/archive"
	"github.com/hupe1980/twincoder/internal/config"
	"github.com/hupe1980/twincoder/internal/handoff"
	"github.com/hupe1980/twincoder/internal/mmap"
	"github.com/hupe1980/twincoder/internal/plan"
	"github.com/hupe1980/twincoder/internal/resource"
)

// Result describes a completed encoding run.
type Result struct {
	Plan plan.Plan
	// Mode is config.ModeProcess or config.ModeThread.
	Mode string
	// Input and Output are the paths of the two files.
	Input  string
	Output string
	// Duration is the wall time of the whole run.
	Duration time.Duration
	// ArchivePath is the compressed sidecar, empty if none was written.
	ArchivePath string
}

// Encoder runs the Leader side of an encoding.
type Encoder struct {
	opts options
}

// New creates an Encoder.
func New(optFns ...Option) *Encoder {
	return &Encoder{opts: applyOptions(optFns)}
}

// Encode transforms inPath into outPath.
//
// The Leader opens and plans both files, starts the Follower and alternates
// the four writing phases with it. The output is complete and flushed when
// Encode returns nil. After a failure the output may hold a partial result.
func (e *Encoder) Encode(ctx context.Context, inPath, outPath string) (res *Result, err error) {
	start := time.Now()
	logger := e.opts.logger.WithRole(handoff.Leader).WithPath(inPath, outPath)
	defer func() {
		d := time.Since(start)
		if res != nil {
			res.Duration = d
		}
		e.opts.metricsCollector.RecordEncode(d, err)
		logger.LogEncode(ctx, res, err)
	}()

	switch e.opts.mode {
	case config.ModeProcess, config.ModeThread:
	default:
		return nil, &ErrUsage{Reason: fmt.Sprintf("unknown mode %q", e.opts.mode)}
	}

	pair, err := OpenPair(e.opts.fs, inPath, outPath)
	if err != nil {
		return nil, err
	}
	logger.LogPlan(ctx, pair.Plan)

	if err := pair.Plan.Verify(); err != nil {
		_ = pair.Close()
		return nil, fmt.Errorf("twincoder: %w", err)
	}

	if e.opts.mode == config.ModeThread {
		err = e.runThread(ctx, pair, logger)
	} else {
		err = e.runProcess(ctx, pair, logger)
	}
	if err != nil {
		_ = pair.Close()
		return nil, translateError(err)
	}
	if err := pair.Close(); err != nil {
		return nil, err
	}

	res = &Result{
		Plan:   pair.Plan,
		Mode:   e.opts.mode,
		Input:  inPath,
		Output: outPath,
	}
	if e.opts.archive != "" && e.opts.archive != archive.None {
		path, err := e.writeArchive(ctx, outPath)
		if err != nil {
			return nil, err
		}
		res.ArchivePath = path
	}
	return res, nil
}

// Encode transforms inPath into outPath with a new Encoder.
func Encode(ctx context.Context, inPath, outPath string, optFns ...Option) (*Result, error) {
	return New(optFns...).Encode(ctx, inPath, outPath)
}

// runThread plays both roles in this process.
func (e *Encoder) runThread(ctx context.Context, pair *Pair, logger *Logger) error {
	// One writer slot for both roles; pacing stays per role.
	guard := resource.NewController(resource.Config{})
	leaderPeer, followerPeer := handoff.NewPipe()
	logger.DebugContext(ctx, "running both roles in process")

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range []struct {
		role handoff.Role
		peer handoff.Peer
	}{
		{handoff.Leader, leaderPeer},
		{handoff.Follower, followerPeer},
	} {
		w := &phaseWorker{
			pair:    pair,
			guard:   guard,
			role:    r.role,
			logger:  e.opts.logger.WithRole(r.role),
			metrics: e.opts.metricsCollector,
		}
		proto := e.protocol(r.role, r.peer, w)
		g.Go(func() error {
			return proto.Run(gctx, w.work)
		})
	}
	return g.Wait()
}

// runProcess starts the Follower process and plays the Leader.
func (e *Encoder) runProcess(ctx context.Context, pair *Pair, logger *Logger) error {
	// Listen before the Follower exists: its first wake may come at once.
	peer := handoff.Listen()
	defer peer.Close()

	cmd, err := e.spawn(pair)
	if err != nil {
		return err
	}
	pid := cmd.Process.Pid
	exit := handoff.WatchExit(cmd.Wait)
	peer.Attach(pid)
	peer.Watch(exit)
	logger.DebugContext(ctx, "follower started", "follower_pid", pid)

	w := &phaseWorker{
		pair:    pair,
		guard:   resource.NewController(resource.Config{}),
		role:    handoff.Leader,
		flush:   true,
		logger:  logger,
		metrics: e.opts.metricsCollector,
	}
	runErr := e.protocol(handoff.Leader, peer, w).Run(ctx, w.work)
	if runErr != nil {
		if !exit.Exited() {
			_ = cmd.Process.Kill()
		}
		<-exit.Done()
		if errors.Is(runErr, handoff.ErrPeerExited) {
			return &ErrWait{PID: pid, cause: exit.Err()}
		}
		return runErr
	}

	select {
	case <-exit.Done():
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-exit.Done()
		return &ErrWait{PID: pid, cause: ctx.Err()}
	}
	if err := exit.Err(); err != nil {
		return &ErrWait{PID: pid, cause: err}
	}
	logger.DebugContext(ctx, "follower joined", "follower_pid", pid)
	return nil
}

func (e *Encoder) protocol(role handoff.Role, peer handoff.Peer, w *phaseWorker) *handoff.Protocol {
	return handoff.New(handoff.Config{
		Role:         role,
		Peer:         peer,
		Pacer:        resource.NewController(resource.Config{PaceInterval: e.opts.pace}),
		AwaitTimeout: e.opts.phaseTimeout,
		Observer:     w.observe,
	})
}

// phaseWorker performs the writing phases of one role.
type phaseWorker struct {
	pair    *Pair
	guard   *resource.Controller
	role    handoff.Role
	flush   bool // msync the written window before waking the peer
	logger  *Logger
	metrics MetricsCollector
}

func (w *phaseWorker) work(ctx context.Context, phase handoff.Phase) error {
	if err := w.guard.AcquireWriter(); err != nil {
		return err
	}
	defer w.guard.ReleaseWriter()

	start := time.Now()
	s, err := w.pair.Plan.Step(phase)
	if err != nil {
		return err
	}

	region, err := w.pair.out.Region(s.Window.Lo, s.Window.Len())
	if err != nil {
		return &ErrMap{Buffer: "output", Op: "map", cause: err}
	}
	_ = region.Advise(mmap.AccessWillNeed)

	n, err := w.pair.Plan.Execute(s, w.pair.Input(), w.pair.Output())
	w.logger.LogPhase(ctx, s, n, err)
	if err != nil {
		return err
	}
	if w.flush {
		if err := region.Flush(); err != nil {
			return &ErrMap{Buffer: "output", Op: "flush", cause: err}
		}
	}
	w.metrics.RecordPhase(w.role, phase, n, time.Since(start))
	return nil
}

func (w *phaseWorker) observe(ev handoff.Event) {
	w.logger.LogEvent(context.Background(), ev)
	if ev.Kind == handoff.EventAwaited {
		w.metrics.RecordWait(ev.Role, ev.Phase, ev.Duration)
	}
}

// writeArchive compresses the finished output into its sidecar.
func (e *Encoder) writeArchive(ctx context.Context, outPath string) (string, error) {
	path := e.opts.archive.Path(outPath)

	src, err := mmap.Open(outPath)
	if err != nil {
		return "", &ErrArchive{Path: path, cause: err}
	}
	defer src.Close()
	_ = src.Advise(mmap.AccessSequential)

	dst, err := e.opts.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, outputPerm)
	if err != nil {
		return "", &ErrArchive{Path: path, cause: err}
	}

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: e.opts.archiveRate})
	n, err := archive.Copy(resource.NewRateLimitedWriter(ctx, dst, rc),
		io.NewSectionReader(src, 0, int64(src.Size())), e.opts.archive)
	if err != nil {
		_ = dst.Close()
		return "", &ErrArchive{Path: path, cause: err}
	}
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		return "", &ErrArchive{Path: path, cause: err}
	}
	if err := dst.Close(); err != nil {
		return "", &ErrArchive{Path: path, cause: err}
	}
	e.opts.logger.DebugContext(ctx, "archive written", "path", path, "format", string(e.opts.archive), "bytes", n)
	return path, nil
}
