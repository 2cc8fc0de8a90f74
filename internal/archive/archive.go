// Package archive writes a compressed copy of the encoded output.
//
// The copy is a sidecar next to the output file, named after the format
// (".zst" or ".lz4"). Both formats are streaming frame formats, so the
// sidecar can be decompressed with the standard zstd and lz4 tools.
package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format selects the compression of the sidecar.
type Format string

const (
	// None disables the sidecar.
	None Format = "none"
	// Zstd writes a zstd frame (better ratio).
	Zstd Format = "zstd"
	// LZ4 writes an lz4 frame (faster).
	LZ4 Format = "lz4"
)

// ParseFormat parses a format name. The empty string means None.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", None:
		return None, nil
	case Zstd:
		return Zstd, nil
	case LZ4:
		return LZ4, nil
	default:
		return "", fmt.Errorf("archive: unknown format %q", s)
	}
}

// Ext returns the sidecar file extension, including the dot.
func (f Format) Ext() string {
	switch f {
	case Zstd:
		return ".zst"
	case LZ4:
		return ".lz4"
	default:
		return ""
	}
}

// Path returns the sidecar path for output.
func (f Format) Path(output string) string {
	return output + f.Ext()
}

// NewWriter returns a compressing writer on top of w. Close flushes the
// final frame; it does not close w.
func NewWriter(w io.Writer, f Format) (io.WriteCloser, error) {
	switch f {
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("archive: zstd encoder: %w", err)
		}
		return enc, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("archive: format %q has no writer", f)
	}
}

// NewReader returns a decompressing reader on top of r.
func NewReader(r io.Reader, f Format) (io.ReadCloser, error) {
	switch f {
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("archive: zstd decoder: %w", err)
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("archive: format %q has no reader", f)
	}
}

// Copy compresses everything from src into dst and returns the number of
// uncompressed bytes consumed.
func Copy(dst io.Writer, src io.Reader, f Format) (int64, error) {
	zw, err := NewWriter(dst, f)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(zw, src)
	if err != nil {
		zw.Close()
		return n, fmt.Errorf("archive: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return n, fmt.Errorf("archive: finish frame: %w", err)
	}
	return n, nil
}
