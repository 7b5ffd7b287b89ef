// Package source reads records from external data files.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// Source reads the items to import.
type Source[T any] interface {
	Read(ctx context.Context) ([]T, error)
}

// Format names a record encoding.
type Format string

const (
	FormatJSONLines Format = "jsonl"
	FormatCSV       Format = "csv"
)

// UnsupportedFormatError is returned for encodings or file names that cannot be read.
type UnsupportedFormatError struct {
	Path   string
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("cannot infer record format of %s", e.Path)
	}
	return fmt.Sprintf("unsupported record format %q for %s", e.Format, e.Path)
}

// Slice is an in-memory source.
type Slice[T any] []T

// Read returns a copy of the slice.
func (s Slice[T]) Read(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]T, len(s))
	copy(out, s)
	return out, nil
}

// File reads records from a file on disk. The file is opened on every Read.
type File struct {
	Path   string
	Format Format
}

// Open returns a source for path. An empty format is inferred from the file
// extension, ignoring a trailing .gz or .zst.
func Open(path string, format Format) (*File, error) {
	if format == "" {
		format = InferFormat(path)
		if format == "" {
			return nil, &UnsupportedFormatError{Path: path}
		}
	}
	switch format {
	case FormatJSONLines, FormatCSV:
	default:
		return nil, &UnsupportedFormatError{Path: path, Format: format}
	}
	return &File{Path: path, Format: format}, nil
}

// InferFormat returns the record format implied by the file name, or "".
func InferFormat(path string) Format {
	name := strings.ToLower(path)
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".zst")
	switch filepath.Ext(name) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONLines
	case ".csv":
		return FormatCSV
	default:
		return ""
	}
}

// Read implements Source.
func (f *File) Read(ctx context.Context) ([]core.Record, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", f.Path, err)
	}
	defer file.Close()

	r, closeFn, err := Decompress(file, f.Path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var records []core.Record
	switch f.Format {
	case FormatJSONLines:
		records, err = NewJSONLines(r).Read(ctx)
	case FormatCSV:
		records, err = NewCSV(r).Read(ctx)
	default:
		err = &UnsupportedFormatError{Path: f.Path, Format: f.Format}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return records, nil
}

// Decompress wraps r in a gzip or zstd reader when name ends in .gz or .zst.
// The returned function releases the decompressor.
func Decompress(r io.Reader, name string) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open gzip stream %s: %w", name, err)
		}
		return zr, func() { _ = zr.Close() }, nil
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open zstd stream %s: %w", name, err)
		}
		return dec, dec.Close, nil
	default:
		return r, func() {}, nil
	}
}
