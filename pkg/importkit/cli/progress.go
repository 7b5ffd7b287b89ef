package cli

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

type bar struct {
	pb *progressbar.ProgressBar
}

func newBar(w io.Writer, label string, total int, interval time.Duration) *bar {
	pb := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionThrottle(interval),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
	)
	return &bar{pb: pb}
}

func (b *bar) Tick(increment int, message string) {
	if message != "" {
		b.pb.Describe(message)
	}
	_ = b.pb.Add(increment)
}

func (b *bar) Finish() {
	_ = b.pb.Finish()
}

// noopBar is used when output is not a terminal.
type noopBar struct{}

func (noopBar) Tick(int, string) {}
func (noopBar) Finish()          {}
