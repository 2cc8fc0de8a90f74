package resource

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrConcurrentWriter is returned when a phase starts writing while another
// phase still holds the writer slot.
var ErrConcurrentWriter = errors.New("resource: concurrent writer")

// Config holds pacing and IO limits.
type Config struct {
	// PaceInterval is the minimum delay between the starts of two paced phases.
	// If 0, phases are not paced.
	PaceInterval time.Duration

	// IOLimitBytesPerSec is the maximum archive write throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller paces phases, guards the writer slot and limits IO.
type Controller struct {
	cfg Config

	pacer     *rate.Limiter // nil if unpaced
	writer    *semaphore.Weighted
	ioLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new controller.
func NewController(cfg Config) *Controller {
	c := &Controller{
		cfg:    cfg,
		writer: semaphore.NewWeighted(1),
	}

	if cfg.PaceInterval > 0 {
		c.pacer = rate.NewLimiter(rate.Every(cfg.PaceInterval), 1)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the configuration the controller was created with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// Pace blocks until the next phase may start or ctx is canceled.
// It implements handoff.Pacer.
func (c *Controller) Pace(ctx context.Context) error {
	if c == nil || c.pacer == nil {
		return nil
	}
	return c.pacer.Wait(ctx)
}

// AcquireWriter takes the writer slot without blocking.
func (c *Controller) AcquireWriter() error {
	if c == nil {
		return nil
	}
	if !c.writer.TryAcquire(1) {
		return ErrConcurrentWriter
	}
	return nil
}

// ReleaseWriter returns the writer slot.
func (c *Controller) ReleaseWriter() {
	if c == nil {
		return
	}
	c.writer.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	// WaitN rejects requests above the burst; split them.
	burst := c.ioLimiter.Burst()
	for bytes > burst {
		if err := c.ioLimiter.WaitN(ctx, burst); err != nil {
			return err
		}
		bytes -= burst
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}

// TryAcquireIO attempts to acquire IO tokens without blocking.
// Returns true if tokens were acquired, false otherwise.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}
