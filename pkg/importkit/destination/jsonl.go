package destination

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// JSONLines writes one JSON object per line with keys in sorted order.
type JSONLines struct {
	mu      sync.Mutex
	w       *bufio.Writer
	closers []io.Closer
	arena   fastjson.Arena
	buf     []byte
	closed  bool
}

// NewJSONLines writes to w. Closing the destination flushes but does not close w.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{w: bufio.NewWriter(w)}
}

// Create creates the file at path and writes JSON lines to it, compressed with
// gzip or zstd when the name ends in .gz or .zst.
func Create(path string) (*JSONLines, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination %s: %w", path, err)
	}

	var w io.Writer = f
	closers := []io.Closer{f}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zw := gzip.NewWriter(f)
		w = zw
		closers = append([]io.Closer{zw}, closers...)
	case ".zst":
		enc, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		w = enc
		closers = append([]io.Closer{enc}, closers...)
	}

	j := NewJSONLines(w)
	j.closers = closers
	return j, nil
}

// Write implements Destination.
func (j *JSONLines) Write(ctx context.Context, rec core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}

	j.arena.Reset()
	v, err := j.object(rec)
	if err != nil {
		return err
	}
	j.buf = v.MarshalTo(j.buf[:0])
	j.buf = append(j.buf, '\n')
	_, err = j.w.Write(j.buf)
	return err
}

// Close flushes buffered output and closes any file or compressor opened by Create.
func (j *JSONLines) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true

	err := j.w.Flush()
	for _, c := range j.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (j *JSONLines) object(fields map[string]any) (*fastjson.Value, error) {
	obj := j.arena.NewObject()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := j.value(k, fields[k])
		if err != nil {
			return nil, err
		}
		obj.Set(k, v)
	}
	return obj, nil
}

func (j *JSONLines) value(field string, v any) (*fastjson.Value, error) {
	a := &j.arena
	switch val := v.(type) {
	case nil:
		return a.NewNull(), nil
	case string:
		return a.NewString(val), nil
	case bool:
		if val {
			return a.NewTrue(), nil
		}
		return a.NewFalse(), nil
	case int:
		return a.NewNumberInt(val), nil
	case int32:
		return a.NewNumberString(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return a.NewNumberString(strconv.FormatInt(val, 10)), nil
	case uint:
		return a.NewNumberString(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return a.NewNumberString(strconv.FormatUint(val, 10)), nil
	case float64:
		s, ok := formatFloat(val)
		if !ok {
			return nil, &UnsupportedValueError{Field: field, Value: v}
		}
		return a.NewNumberString(s), nil
	case core.Record:
		return j.object(val)
	case map[string]any:
		return j.object(val)
	case []any:
		arr := a.NewArray()
		for i, item := range val {
			iv, err := j.value(field, item)
			if err != nil {
				return nil, err
			}
			arr.SetArrayItem(i, iv)
		}
		return arr, nil
	case []string:
		arr := a.NewArray()
		for i, item := range val {
			arr.SetArrayItem(i, a.NewString(item))
		}
		return arr, nil
	case fmt.Stringer:
		return a.NewString(val.String()), nil
	default:
		return nil, &UnsupportedValueError{Field: field, Value: v}
	}
}

// formatFloat writes f without an exponent unless it is very large or very
// small. NaN and infinities have no JSON form.
func formatFloat(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
