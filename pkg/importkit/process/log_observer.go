package process

import (
	"fmt"
	"time"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// LogObserver logs the start and end of every observed process.
type LogObserver struct {
	logger core.LeveledLogger
}

var _ core.ProcessObserver = (*LogObserver)(nil)

// NewLogObserver creates an observer writing to logger.
func NewLogObserver(logger core.LeveledLogger) *LogObserver {
	return &LogObserver{logger: logger}
}

// BeforeImportStart implements core.ProcessObserver.
func (o *LogObserver) BeforeImportStart(p core.ImportProcess) {
	if d, ok := p.(Describer); ok {
		o.logger.Info(fmt.Sprintf("Starting import: %s", d.Label()), core.Context{"process": d.ID()})
		return
	}
	o.logger.Info("Starting import", nil)
}

// AfterImportFinish implements core.ProcessObserver.
func (o *LogObserver) AfterImportFinish(p core.ImportProcess) {
	r, ok := p.(Reporter)
	if !ok {
		o.logger.Info("Finished import", nil)
		return
	}
	res := r.Result()
	msg := fmt.Sprintf("Finished import: %s (%d imported, %d failed of %d in %s)",
		r.Label(), res.Imported, res.Failed, res.Total, res.Duration.Round(time.Millisecond))
	ctx := core.Context{
		"process":  r.ID(),
		"run_id":   res.RunID,
		"imported": res.Imported,
		"failed":   res.Failed,
		"total":    res.Total,
	}
	if res.Failed > 0 {
		o.logger.Warning(msg, ctx)
		return
	}
	o.logger.Notice(msg, ctx)
}
