// Package process runs imports: a Process drives an importer over the items of
// a source, and a Pipeline runs several processes in dependency order.
package process

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
	"github.com/arthur-debert/importkit/pkg/importkit/logging"
	"github.com/arthur-debert/importkit/pkg/importkit/source"
)

// ProgressTracker manages named progress indicators. logging.Console implements it.
type ProgressTracker interface {
	MakeProgressBar(id logging.ProgressID, label string, total int, interval time.Duration) *logging.Progress
	TickProgressBar(id logging.ProgressID, increment int, message string)
	FinishProgressBar(id logging.ProgressID)
}

// Describer identifies a process to observers.
type Describer interface {
	ID() string
	Label() string
}

// Reporter is a process that exposes the result of its last run.
type Reporter interface {
	Describer
	Result() Result
}

// Result describes one run of a process.
type Result struct {
	RunID    string
	Total    int
	Imported int
	Failed   int
	Errors   []error
	Started  time.Time
	Duration time.Duration
}

type options struct {
	logger           core.LeveledLogger
	progress         ProgressTracker
	progressInterval time.Duration
	observers        []core.ProcessObserver
	limiter          *rate.Limiter
	maxFailures      int
}

// Option configures a Process.
type Option func(*options)

// WithLogger sets the logger used for item failures.
func WithLogger(logger core.LeveledLogger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProgress reports progress on a bar keyed by the process id.
func WithProgress(tracker ProgressTracker, interval time.Duration) Option {
	return func(o *options) {
		o.progress = tracker
		o.progressInterval = interval
	}
}

// WithProcessObserver registers a process observer.
func WithProcessObserver(observer core.ProcessObserver) Option {
	return func(o *options) { o.observers = append(o.observers, observer) }
}

// WithRateLimit limits imports to perSecond items per second. A non-positive
// rate means no limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		if perSecond <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMaxFailures stops the process once more than n items failed. Zero means
// item failures never stop the process.
func WithMaxFailures(n int) Option {
	return func(o *options) { o.maxFailures = n }
}

// Process imports every item of a source with an importer.
type Process[In, Out any] struct {
	id       string
	label    string
	source   source.Source[In]
	importer core.Importer[In, Out]

	opts      options
	observers *ObserverSet[In, Out]

	mu     sync.Mutex
	result Result
}

var _ core.ImportProcess = (*Process[int, int])(nil)

// New creates a process. Importer observers are registered through Observers.
func New[In, Out any](id, label string, src source.Source[In], imp core.Importer[In, Out], opts ...Option) *Process[In, Out] {
	o := options{logger: core.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if label == "" {
		label = id
	}

	p := &Process[In, Out]{
		id:        id,
		label:     label,
		source:    src,
		importer:  imp,
		opts:      o,
		observers: NewObserverSet[In, Out](o.logger),
	}
	for _, observer := range o.observers {
		p.observers.SubscribeProcess(observer)
	}
	return p
}

// ID returns the process id.
func (p *Process[In, Out]) ID() string { return p.id }

// Label returns the human readable name of the process.
func (p *Process[In, Out]) Label() string { return p.label }

// Observers returns the process's observer set.
func (p *Process[In, Out]) Observers() *ObserverSet[In, Out] { return p.observers }

// Result returns the result of the current or last run.
func (p *Process[In, Out]) Result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.result
	r.Errors = append([]error(nil), p.result.Errors...)
	return r
}

// Import runs the process. Item failures are logged at warning level and counted;
// they only fail the process once the failure budget is exceeded. Process
// observers are notified before the source is read and after the run, whether it
// failed or not.
func (p *Process[In, Out]) Import(ctx context.Context) error {
	started := time.Now()
	runID := uuid.NewString()
	p.mu.Lock()
	p.result = Result{RunID: runID, Started: started}
	p.mu.Unlock()

	logCtx := core.Context{"process": p.id, "run_id": runID}

	p.observers.BeforeImportStart(p)
	defer func() {
		p.mu.Lock()
		p.result.Duration = time.Since(started)
		p.mu.Unlock()
		p.observers.AfterImportFinish(p)
	}()

	items, err := p.source.Read(ctx)
	if err != nil {
		return fmt.Errorf("process %s: failed to read source: %w", p.id, err)
	}
	p.mu.Lock()
	p.result.Total = len(items)
	p.mu.Unlock()

	barID := logging.ProgressID(p.id)
	if p.opts.progress != nil {
		p.opts.progress.MakeProgressBar(barID, p.label, len(items), p.opts.progressInterval)
		defer p.opts.progress.FinishProgressBar(barID)
	}

	for i, item := range items {
		if err := p.wait(ctx); err != nil {
			return fmt.Errorf("process %s: %w", p.id, err)
		}

		if _, err := p.importer.ImportSingle(ctx, item); err != nil {
			failed := p.fail(err)
			p.opts.logger.Warning(fmt.Sprintf("%s: item %d failed: %v", p.label, i+1, err), logCtx)
			if p.opts.maxFailures > 0 && failed > p.opts.maxFailures {
				return &TooManyFailuresError{ProcessID: p.id, Failed: failed, Max: p.opts.maxFailures, LastErr: err}
			}
		} else {
			p.mu.Lock()
			p.result.Imported++
			p.mu.Unlock()
			p.observers.AfterModelImported(p.importer)
		}

		if p.opts.progress != nil {
			p.opts.progress.TickProgressBar(barID, 1, "")
		}
	}
	return nil
}

func (p *Process[In, Out]) wait(ctx context.Context) error {
	if p.opts.limiter != nil {
		return p.opts.limiter.Wait(ctx)
	}
	return ctx.Err()
}

func (p *Process[In, Out]) fail(err error) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.result.Failed++
	p.result.Errors = append(p.result.Errors, err)
	return p.result.Failed
}
