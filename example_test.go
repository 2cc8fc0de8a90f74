package twincoder_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/twincoder"
	"github.com/hupe1980/twincoder/internal/config"
)

// Example_encode demonstrates a thread-mode run on a small input.
func Example_encode() {
	dir, err := os.MkdirTemp("", "twincoder-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(in, []byte("a1b2"), 0o644); err != nil {
		log.Fatal(err)
	}

	res, err := twincoder.Encode(context.Background(), in, out, twincoder.WithMode(config.ModeThread))
	if err != nil {
		log.Fatal(err)
	}

	data, _ := os.ReadFile(out)
	fmt.Printf("%d bytes: %q\n", res.Plan.OutputSize, data)
	// Output: 5 bytes: "A b**"
}

// Example_metrics demonstrates collecting per-phase metrics.
func Example_metrics() {
	dir, err := os.MkdirTemp("", "twincoder-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(in, []byte("hello 3 worlds"), 0o644); err != nil {
		log.Fatal(err)
	}

	metrics := &twincoder.BasicMetricsCollector{}
	enc := twincoder.New(
		twincoder.WithMode(config.ModeThread),
		twincoder.WithMetricsCollector(metrics),
	)
	if _, err := enc.Encode(context.Background(), in, filepath.Join(dir, "out.txt")); err != nil {
		log.Fatal(err)
	}

	stats := metrics.GetStats()
	fmt.Printf("phases: %d, bytes: %d\n", stats.PhaseCount, stats.BytesWritten)
	// Output: phases: 4, bytes: 16
}

// Example_classify demonstrates mapping errors to exit codes.
func Example_classify() {
	_, err := twincoder.Encode(context.Background(), "/does/not/exist", os.DevNull)
	fmt.Println(twincoder.Classify(err), twincoder.ExitCode(err))
	// Output: input 1
}
