package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// CSV reads comma separated records. The first row names the fields and every
// value is a string.
type CSV struct {
	r     io.Reader
	Comma rune
}

// NewCSV creates a CSV source over r.
func NewCSV(r io.Reader) *CSV {
	return &CSV{r: r, Comma: ','}
}

// Read implements Source.
func (c *CSV) Read(ctx context.Context) ([]core.Record, error) {
	cr := csv.NewReader(c.r)
	cr.Comma = c.Comma

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q in header", name)
		}
		seen[name] = true
	}

	var records []core.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := make(core.Record, len(header))
		for i, name := range header {
			rec[name] = row[i]
		}
		records = append(records, rec)
	}
	return records, nil
}
