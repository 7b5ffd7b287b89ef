package source

import (
	"context"
	"fmt"
	"io"

	"github.com/valyala/fastjson"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// JSONLines reads a stream of JSON objects, usually one per line.
type JSONLines struct {
	r io.Reader
}

// NewJSONLines creates a JSON lines source over r.
func NewJSONLines(r io.Reader) *JSONLines {
	return &JSONLines{r: r}
}

// Read implements Source. Every top-level value must be an object.
func (j *JSONLines) Read(ctx context.Context) ([]core.Record, error) {
	data, err := io.ReadAll(j.r)
	if err != nil {
		return nil, err
	}

	var sc fastjson.Scanner
	sc.InitBytes(data)

	var records []core.Record
	for n := 1; sc.Next(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := sc.Value()
		if v.Type() != fastjson.TypeObject {
			return nil, fmt.Errorf("value %d: expected object, got %s", n, v.Type())
		}
		records = append(records, toRecord(v))
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return records, nil
}

func toRecord(v *fastjson.Value) core.Record {
	obj, _ := v.Object()
	rec := make(core.Record, obj.Len())
	obj.Visit(func(key []byte, val *fastjson.Value) {
		rec[string(key)] = toValue(val)
	})
	return rec
}

func toValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		return map[string]any(toRecord(v))
	case fastjson.TypeArray:
		items, _ := v.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toValue(item)
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return number(v)
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}

// number keeps integers exact. Integral values are returned as int64, or uint64
// past the int64 range, and everything else as float64.
func number(v *fastjson.Value) any {
	if i, err := v.Int64(); err == nil {
		return i
	}
	if u, err := v.Uint64(); err == nil {
		return u
	}
	return v.GetFloat64()
}
