// Command twincoder encodes a text file with two cooperating processes.
//
//	twincoder [flags] <input_path> <output_path>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/twincoder"
	"github.com/hupe1980/twincoder/internal/config"
)

func main() {
	// A Follower is this binary re-executed by a running Leader.
	if twincoder.IsFollower() {
		os.Exit(twincoder.ExitCode(twincoder.RunFollower(context.Background())))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("twincoder", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() {
		fmt.Fprintf(stderr, "Usage: twincoder [flags] <input_path> <output_path>\n\nFlags:\n")
		fset.PrintDefaults()
	}

	var (
		configPath   = fset.String("config", "", "YAML configuration file")
		mode         = fset.String("mode", "", "execution mode: process or thread")
		logLevel     = fset.String("log-level", "", "log level: debug, info, warn or error")
		logFormat    = fset.String("log-format", "", "log format: text or json")
		pace         = fset.Duration("pace", 0, "minimum delay between the phases of one role")
		phaseTimeout = fset.Duration("phase-timeout", 0, "maximum wait for the other role, 0 waits forever")
		archiveFmt   = fset.String("archive", "", "compressed copy of the output: none, zstd or lz4")
		archiveRate  = fset.Int64("archive-rate", 0, "archive write limit in bytes per second, 0 is unlimited")
		printConfig  = fset.Bool("print-config", false, "print the default configuration and exit")
	)

	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return twincoder.ExitCode(&twincoder.ErrUsage{Reason: err.Error()})
	}

	if *printConfig {
		fmt.Fprint(stdout, config.DefaultYAML())
		return 0
	}

	if fset.NArg() != 2 {
		fmt.Fprintf(stderr, "twincoder: expected <input_path> <output_path>, got %d arguments\n", fset.NArg())
		fset.Usage()
		return twincoder.ExitCode(&twincoder.ErrUsage{Reason: "wrong number of arguments"})
	}
	inPath, outPath := fset.Arg(0), fset.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "twincoder: %v\n", err)
		return twincoder.ExitCode(&twincoder.ErrUsage{Reason: err.Error()})
	}

	// Flags override the file.
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *mode
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		case "pace":
			cfg.Pace = config.Duration(*pace)
		case "phase-timeout":
			cfg.PhaseTimeout = config.Duration(*phaseTimeout)
		case "archive":
			cfg.Archive.Format = *archiveFmt
		case "archive-rate":
			cfg.Archive.Rate = *archiveRate
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "twincoder: %v\n", err)
		fset.Usage()
		return twincoder.ExitCode(&twincoder.ErrUsage{Reason: err.Error()})
	}

	logger := twincoder.NewLoggerFor(stderr, cfg.Log.Format, cfg.Log.Level)
	res, err := twincoder.Encode(ctx, inPath, outPath,
		twincoder.WithConfig(cfg),
		twincoder.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(stderr, "twincoder: %v\n", err)
		return twincoder.ExitCode(err)
	}

	fmt.Fprintf(stdout, "success: %s written (%d bytes)\n", res.Output, res.Plan.OutputSize)
	if res.ArchivePath != "" {
		fmt.Fprintf(stdout, "archive: %s\n", res.ArchivePath)
	}
	return 0
}
