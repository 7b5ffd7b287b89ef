// Package destination writes imported records to a destination dataset.
package destination

import (
	"context"
	"sync"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// Destination receives imported records.
type Destination interface {
	Write(ctx context.Context, rec core.Record) error
	Close() error
}

// Memory keeps written records in memory.
type Memory struct {
	mu      sync.Mutex
	records []core.Record
	closed  bool
}

// NewMemory creates an empty in-memory destination.
func NewMemory() *Memory {
	return &Memory{}
}

// Write implements Destination.
func (m *Memory) Write(ctx context.Context, rec core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.records = append(m.records, rec.Clone())
	return nil
}

// Close implements Destination.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Records returns the records written so far.
func (m *Memory) Records() []core.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Record, len(m.records))
	copy(out, m.records)
	return out
}
