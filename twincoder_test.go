package twincoder_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/twincoder"
	"github.com/hupe1980/twincoder/internal/archive"
	"github.com/hupe1980/twincoder/internal/config"
	"github.com/hupe1980/twincoder/internal/transform"
)

var modes = []string{config.ModeProcess, config.ModeThread}

func writeInput(t *testing.T, content string) (in, out string) {
	t.Helper()
	dir := t.TempDir()
	in = filepath.Join(dir, "in.txt")
	out = filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte(content), 0o644))
	return in, out
}

// expected splices the two rule streams at the output midpoint.
func expected(input string) []byte {
	leader := transform.Apply(transform.Leader, []byte(input))
	follower := transform.Apply(transform.Follower, []byte(input))
	mid := len(leader) / 2
	return append(leader[:mid:mid], follower[mid:]...)
}

func TestEncode_Example(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode, func(t *testing.T) {
			in, out := writeInput(t, "a1b2")

			res, err := twincoder.Encode(context.Background(), in, out, twincoder.WithMode(mode))
			require.NoError(t, err)
			assert.Equal(t, 5, res.Plan.OutputSize)
			assert.Equal(t, 2, res.Plan.OutputMid)
			assert.Equal(t, mode, res.Mode)
			assert.Empty(t, res.ArchivePath)

			got, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, "A b**", string(got))
		})
	}
}

func TestEncode_Cases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"letters only", "abcd", "ABcd"},
		{"digit nine", "9", "    *****"},
		{"zero digits vanish", "a0b", "Ab"},
		{"punctuation", "x-y.", "X-y."},
		{"multi line", "ab\n3cd\n", "AB\n **cd\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(expected(tt.input)))

			for _, mode := range modes {
				in, out := writeInput(t, tt.input)
				_, err := twincoder.Encode(context.Background(), in, out, twincoder.WithMode(mode))
				require.NoError(t, err, mode)

				got, err := os.ReadFile(out)
				require.NoError(t, err)
				assert.Equal(t, tt.want, string(got), mode)
			}
		})
	}
}

func TestEncode_ModesAgree(t *testing.T) {
	var b bytes.Buffer
	for i := 0; i < 4096; i++ {
		b.WriteString("the 3 quick foxes jumped 7 times over 12 lazy dogs.\n")
	}
	input := b.String()

	outputs := make(map[string][]byte)
	for _, mode := range modes {
		in, out := writeInput(t, input)
		res, err := twincoder.Encode(context.Background(), in, out, twincoder.WithMode(mode))
		require.NoError(t, err)

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		require.Len(t, got, res.Plan.OutputSize)
		outputs[mode] = got
	}

	assert.Equal(t, expected(input), outputs[config.ModeProcess])
	assert.Equal(t, outputs[config.ModeProcess], outputs[config.ModeThread])
}

func TestEncode_Idempotent(t *testing.T) {
	in, out := writeInput(t, "r2d2 c3po")

	_, err := twincoder.Encode(context.Background(), in, out)
	require.NoError(t, err)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	_, err = twincoder.Encode(context.Background(), in, out)
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEncode_OverwritesLongerOutput(t *testing.T) {
	in, out := writeInput(t, "ab")
	require.NoError(t, os.WriteFile(out, bytes.Repeat([]byte("x"), 100), 0o600))

	_, err := twincoder.Encode(context.Background(), in, out, twincoder.WithMode(config.ModeThread))
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Ab", string(got))
}

func TestEncode_OutputPermissions(t *testing.T) {
	in, out := writeInput(t, "a1")

	_, err := twincoder.Encode(context.Background(), in, out, twincoder.WithMode(config.ModeThread))
	require.NoError(t, err)

	fi, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestEncode_EmptyOutput(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode, func(t *testing.T) {
			in, out := writeInput(t, "000")

			res, err := twincoder.Encode(context.Background(), in, out, twincoder.WithMode(mode))
			require.NoError(t, err)
			assert.Equal(t, 0, res.Plan.OutputSize)

			fi, err := os.Stat(out)
			require.NoError(t, err)
			assert.Zero(t, fi.Size())
		})
	}
}

func TestEncode_EmptyInput(t *testing.T) {
	in, out := writeInput(t, "")

	_, err := twincoder.Encode(context.Background(), in, out)
	require.Error(t, err)

	var mapErr *twincoder.ErrMap
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "input", mapErr.Buffer)
	assert.ErrorIs(t, err, twincoder.ErrEmptyInput)
	assert.Equal(t, twincoder.CodeMap, twincoder.Classify(err))
	assert.Equal(t, 1, twincoder.ExitCode(err))

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "output must not be created")
}

func TestEncode_MissingInput(t *testing.T) {
	dir := t.TempDir()

	_, err := twincoder.Encode(context.Background(), filepath.Join(dir, "missing"), filepath.Join(dir, "out"))
	require.Error(t, err)

	var openErr *twincoder.ErrInputOpen
	require.ErrorAs(t, err, &openErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, twincoder.CodeInput, twincoder.Classify(err))
}

func TestEncode_OutputDirectoryMissing(t *testing.T) {
	in, _ := writeInput(t, "abc")
	out := filepath.Join(t.TempDir(), "no", "such", "dir", "out")

	_, err := twincoder.Encode(context.Background(), in, out)
	require.Error(t, err)

	var openErr *twincoder.ErrOutputOpen
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, out, openErr.Path)
	assert.Equal(t, twincoder.CodeOutput, twincoder.Classify(err))
}

func TestEncode_UnknownMode(t *testing.T) {
	in, out := writeInput(t, "abc")

	_, err := twincoder.Encode(context.Background(), in, out, twincoder.WithMode("fibers"))
	require.Error(t, err)
	assert.Equal(t, twincoder.CodeUsage, twincoder.Classify(err))
	assert.Equal(t, 2, twincoder.ExitCode(err))
}

func TestEncode_ForkFailure(t *testing.T) {
	in, out := writeInput(t, "abc")

	_, err := twincoder.Encode(context.Background(), in, out,
		twincoder.WithFollowerCommand(filepath.Join(t.TempDir(), "does-not-exist")))
	require.Error(t, err)

	var forkErr *twincoder.ErrFork
	require.ErrorAs(t, err, &forkErr)
	assert.Equal(t, twincoder.CodeFork, twincoder.Classify(err))
}

func TestEncode_FollowerExitsWithError(t *testing.T) {
	in, out := writeInput(t, "abc")

	_, err := twincoder.Encode(context.Background(), in, out,
		twincoder.WithFollowerCommand("/bin/sh", "-c", "exit 3"))
	require.Error(t, err)

	var waitErr *twincoder.ErrWait
	require.ErrorAs(t, err, &waitErr)
	assert.Positive(t, waitErr.PID)
	assert.Equal(t, twincoder.CodeWait, twincoder.Classify(err))
}

func TestEncode_PhaseTimeout(t *testing.T) {
	in, out := writeInput(t, "abc")

	start := time.Now()
	_, err := twincoder.Encode(context.Background(), in, out,
		twincoder.WithFollowerCommand("/bin/sh", "-c", "sleep 5"),
		twincoder.WithPhaseTimeout(100*time.Millisecond))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)

	var handErr *twincoder.ErrHandoff
	require.ErrorAs(t, err, &handErr)
	assert.Equal(t, "await", handErr.Op)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, twincoder.CodeHandoff, twincoder.Classify(err))
}

func TestEncode_ContextCanceled(t *testing.T) {
	in, out := writeInput(t, "abc")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := twincoder.Encode(ctx, in, out, twincoder.WithMode(config.ModeThread))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncode_Archive(t *testing.T) {
	for _, format := range []archive.Format{archive.Zstd, archive.LZ4} {
		t.Run(string(format), func(t *testing.T) {
			in, out := writeInput(t, "h3llo w0rld 42\n")

			res, err := twincoder.Encode(context.Background(), in, out,
				twincoder.WithMode(config.ModeThread),
				twincoder.WithArchive(format),
				twincoder.WithArchiveRate(1<<20))
			require.NoError(t, err)
			assert.Equal(t, out+format.Ext(), res.ArchivePath)

			want, err := os.ReadFile(out)
			require.NoError(t, err)

			f, err := os.Open(res.ArchivePath)
			require.NoError(t, err)
			defer f.Close()

			r, err := archive.NewReader(f, format)
			require.NoError(t, err)
			defer r.Close()

			var got bytes.Buffer
			_, err = got.ReadFrom(r)
			require.NoError(t, err)
			assert.Equal(t, want, got.Bytes())
		})
	}
}

func TestEncode_WithConfig(t *testing.T) {
	cfg, err := config.Parse([]byte("mode: thread\npace: 1ms\nphase_timeout: 5s\n"))
	require.NoError(t, err)

	in, out := writeInput(t, "a1b2")
	res, err := twincoder.Encode(context.Background(), in, out, twincoder.WithConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, config.ModeThread, res.Mode)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "A b**", string(got))
}

func TestEncode_Metrics(t *testing.T) {
	t.Run("thread", func(t *testing.T) {
		in, out := writeInput(t, "a1b2c3")
		metrics := &twincoder.BasicMetricsCollector{}

		res, err := twincoder.Encode(context.Background(), in, out,
			twincoder.WithMode(config.ModeThread),
			twincoder.WithMetricsCollector(metrics))
		require.NoError(t, err)

		stats := metrics.GetStats()
		assert.Equal(t, int64(4), stats.PhaseCount)
		assert.Equal(t, int64(res.Plan.OutputSize), stats.BytesWritten)
		// Leader awaits init and both follower phases, Follower both leader phases.
		assert.Equal(t, int64(5), stats.WaitCount)
		assert.Equal(t, int64(1), stats.EncodeCount)
		assert.Zero(t, stats.EncodeErrors)
	})

	t.Run("process", func(t *testing.T) {
		in, out := writeInput(t, "a1b2c3")
		metrics := &twincoder.BasicMetricsCollector{}

		res, err := twincoder.Encode(context.Background(), in, out,
			twincoder.WithMetricsCollector(metrics))
		require.NoError(t, err)

		stats := metrics.GetStats()
		assert.Equal(t, int64(2), stats.PhaseCount)
		assert.Equal(t, int64(res.Plan.OutputMid), stats.BytesWritten)
		assert.Equal(t, int64(3), stats.WaitCount)
	})

	t.Run("failure", func(t *testing.T) {
		metrics := &twincoder.BasicMetricsCollector{}
		_, err := twincoder.Encode(context.Background(), "/does/not/exist", filepath.Join(t.TempDir(), "out"),
			twincoder.WithMetricsCollector(metrics))
		require.Error(t, err)
		assert.Equal(t, int64(1), metrics.GetStats().EncodeErrors)
	})
}

func TestRunFollower_NotFollower(t *testing.T) {
	require.False(t, twincoder.IsFollower())
	err := twincoder.RunFollower(context.Background())
	assert.ErrorIs(t, err, twincoder.ErrNotFollower)
}
