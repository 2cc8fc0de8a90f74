package twincoder

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/twincoder/internal/handoff"
	"github.com/hupe1980/twincoder/internal/plan"
)

// Logger wraps slog.Logger with twincoder-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return newLogger(os.Stderr, "json", level)
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return newLogger(os.Stderr, "text", level)
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// NewLoggerFor builds a Logger from configuration strings as found in the
// YAML config. Unknown values fall back to text at info level.
func NewLoggerFor(w io.Writer, format, level string) *Logger {
	return newLogger(w, format, ParseLevel(level))
}

func newLogger(w io.Writer, format string, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRole adds the role and process id to the logger.
func (l *Logger) WithRole(role handoff.Role) *Logger {
	return &Logger{
		Logger: l.Logger.With("role", role.String(), "pid", os.Getpid()),
	}
}

// WithPath adds input and output paths to the logger.
func (l *Logger) WithPath(input, output string) *Logger {
	return &Logger{
		Logger: l.Logger.With("input", input, "output", output),
	}
}

// LogPlan logs the computed output layout.
func (l *Logger) LogPlan(ctx context.Context, p plan.Plan) {
	l.DebugContext(ctx, "output planned",
		"input_size", p.InputSize,
		"output_size", p.OutputSize,
		"input_mid", p.InputMid,
		"split", p.Split,
		"output_mid", p.OutputMid,
	)
}

// LogEvent logs a protocol event.
func (l *Logger) LogEvent(ctx context.Context, ev handoff.Event) {
	switch ev.Kind {
	case handoff.EventWorked:
		l.InfoContext(ctx, "phase processed",
			"phase", ev.Phase.String(),
			"duration", ev.Duration,
		)
	case handoff.EventWoke:
		l.DebugContext(ctx, "peer woken",
			"phase", ev.Phase.String(),
		)
	case handoff.EventAwaited:
		l.DebugContext(ctx, "wake received",
			"phase", ev.Phase.String(),
			"waited", ev.Duration,
		)
	}
}

// LogPhase logs the outcome of the work of one phase.
func (l *Logger) LogPhase(ctx context.Context, s plan.Step, written int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "phase failed",
			"phase", s.Phase.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "phase written",
			"phase", s.Phase.String(),
			"rule", s.Rule.String(),
			"input_lo", s.InLo,
			"input_hi", s.InHi,
			"window_lo", s.Window.Lo,
			"window_hi", s.Window.Hi,
			"written", written,
		)
	}
}

// LogEncode logs the outcome of a whole run.
func (l *Logger) LogEncode(ctx context.Context, res *Result, err error) {
	if err != nil {
		l.ErrorContext(ctx, "encode failed",
			"code", string(Classify(err)),
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "encode completed",
			"input_size", res.Plan.InputSize,
			"output_size", res.Plan.OutputSize,
			"mode", res.Mode,
			"duration", res.Duration,
		)
	}
}
