package twincoder

import (
	"log/slog"
	"time"

	"github.com/hupe1980/twincoder/internal/archive"
	"github.com/hupe1980/twincoder/internal/config"
	"github.com/hupe1980/twincoder/internal/fs"
)

type options struct {
	mode             string
	pace             time.Duration
	phaseTimeout     time.Duration
	archive          archive.Format
	archiveRate      int64
	metricsCollector MetricsCollector
	logger           *Logger
	fs               fs.FileSystem
	followerCommand  []string
	followerLog      config.LogConfig
}

// Option configures an Encoder.
type Option func(*options)

// WithConfig applies every setting of a loaded configuration. The log
// settings only reach the Follower process; the caller sets up its own
// logging with WithLogger.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.followerLog = cfg.Log
		o.mode = cfg.Mode
		o.pace = time.Duration(cfg.Pace)
		o.phaseTimeout = time.Duration(cfg.PhaseTimeout)
		o.archive = archive.Format(cfg.Archive.Format)
		o.archiveRate = cfg.Archive.Rate
	}
}

// WithMode selects config.ModeProcess (default) or config.ModeThread.
func WithMode(mode string) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithPace sets the minimum delay between the starts of two phases of the
// same role. Zero disables pacing.
func WithPace(d time.Duration) Option {
	return func(o *options) {
		o.pace = d
	}
}

// WithPhaseTimeout bounds the wait for the other role in every phase.
// Zero waits until the context is done.
func WithPhaseTimeout(d time.Duration) Option {
	return func(o *options) {
		o.phaseTimeout = d
	}
}

// WithArchive writes a compressed copy of the output next to it.
func WithArchive(f archive.Format) Option {
	return func(o *options) {
		o.archive = f
	}
}

// WithArchiveRate limits the archive write throughput in bytes per second.
func WithArchiveRate(bytesPerSec int64) Option {
	return func(o *options) {
		o.archiveRate = bytesPerSec
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &twincoder.BasicMetricsCollector{}
//	enc := twincoder.New(twincoder.WithMetricsCollector(metrics))
//	_, _ = enc.Encode(ctx, "in.txt", "out.txt")
//	stats := metrics.GetStats()
//	fmt.Printf("Phases: %d, Bytes: %d\n", stats.PhaseCount, stats.BytesWritten)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := twincoder.NewJSONLogger(slog.LevelInfo)
//	enc := twincoder.New(twincoder.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithFileSystem replaces the file system used to open the input and create
// the output and the archive.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}

// WithFollowerCommand sets the program and arguments started as the
// Follower in process mode. The default re-executes the running binary.
// The program must call RunFollower when IsFollower reports true.
func WithFollowerCommand(name string, args ...string) Option {
	return func(o *options) {
		o.followerCommand = append([]string{name}, args...)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		mode:             config.ModeProcess,
		archive:          archive.None,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		fs:               fs.Default,
		followerLog:      config.LogConfig{Level: "error", Format: "text"},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// config rebuilds the document handed to the Follower.
func (o options) config() config.Config {
	cfg := config.Default()
	cfg.Mode = o.mode
	cfg.Log = o.followerLog
	cfg.Pace = config.Duration(o.pace)
	cfg.PhaseTimeout = config.Duration(o.phaseTimeout)
	cfg.Archive.Format = string(o.archive)
	cfg.Archive.Rate = o.archiveRate
	return cfg
}
