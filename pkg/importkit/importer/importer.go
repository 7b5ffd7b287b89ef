// Package importer maps source records onto destination records.
package importer

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
	"github.com/arthur-debert/importkit/pkg/importkit/destination"
)

// MissingFieldError is returned for records that lack a required field.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required fields %v", e.Fields)
}

// Summary combines the results of importing a collection.
type Summary struct {
	Imported int
	Failed   int
	Errors   []error
}

// RecordImporter renames fields, checks required fields and writes the result to
// a destination.
type RecordImporter struct {
	dest     destination.Destination
	mapping  map[string]string
	required []string
	dryRun   bool
}

var (
	_ core.Importer[core.Record, core.Record]       = (*RecordImporter)(nil)
	_ core.CollectionImporter[core.Record, Summary] = (*RecordImporter)(nil)
)

// Option configures a RecordImporter.
type Option func(*RecordImporter)

// WithMapping renames source fields to destination fields. When a mapping is
// set, fields that are not mapped are dropped.
func WithMapping(mapping map[string]string) Option {
	return func(ri *RecordImporter) {
		ri.mapping = make(map[string]string, len(mapping))
		for k, v := range mapping {
			ri.mapping[k] = v
		}
	}
}

// WithRequired lists destination fields every record must have.
func WithRequired(fields ...string) Option {
	return func(ri *RecordImporter) {
		ri.required = append(ri.required, fields...)
	}
}

// WithDryRun maps and validates records without writing them.
func WithDryRun() Option {
	return func(ri *RecordImporter) { ri.dryRun = true }
}

// New creates an importer writing to dest.
func New(dest destination.Destination, opts ...Option) *RecordImporter {
	ri := &RecordImporter{dest: dest}
	for _, opt := range opts {
		opt(ri)
	}
	return ri
}

// Map applies the field mapping to rec. When several source fields map to the
// same destination field, the first present source field in sorted order wins.
func (ri *RecordImporter) Map(rec core.Record) core.Record {
	if len(ri.mapping) == 0 {
		return rec.Clone()
	}
	from := make([]string, 0, len(ri.mapping))
	for k := range ri.mapping {
		from = append(from, k)
	}
	sort.Strings(from)

	out := make(core.Record, len(ri.mapping))
	for _, f := range from {
		v, ok := rec[f]
		if !ok {
			continue
		}
		to := ri.mapping[f]
		if _, taken := out[to]; !taken {
			out[to] = v
		}
	}
	return out
}

// ImportSingle maps rec, checks required fields and writes it. It returns the
// record as written.
func (ri *RecordImporter) ImportSingle(ctx context.Context, rec core.Record) (core.Record, error) {
	out := ri.Map(rec)

	var missing []string
	for _, field := range ri.required {
		if v, ok := out[field]; !ok || v == nil || v == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingFieldError{Fields: missing}
	}

	if ri.dryRun {
		return out, nil
	}
	if err := ri.dest.Write(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportCollection imports every item. Item failures are collected in the
// summary; an error is returned only when ctx is done.
func (ri *RecordImporter) ImportCollection(ctx context.Context, items iter.Seq[core.Record]) (Summary, error) {
	var summary Summary
	for rec := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if _, err := ri.ImportSingle(ctx, rec); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, err)
			continue
		}
		summary.Imported++
	}
	return summary, nil
}
