package process

import (
	"context"
	"fmt"

	"github.com/gammazero/toposort"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// Stage is a process that may depend on other stages of the same pipeline.
type Stage struct {
	ID        string
	DependsOn []string
	Process   core.ImportProcess
}

// Pipeline runs stages in dependency order.
type Pipeline struct {
	stages   []Stage
	idIndex  map[string]int
	resolved bool
	logger   core.LeveledLogger
}

// NewPipeline creates an empty pipeline.
func NewPipeline(logger core.LeveledLogger) *Pipeline {
	if logger == nil {
		logger = core.Nop()
	}
	return &Pipeline{
		idIndex: make(map[string]int),
		logger:  logger,
	}
}

// Add appends stages. Stage ids must be unique and every stage needs a process.
func (p *Pipeline) Add(stages ...Stage) error {
	for _, s := range stages {
		if s.ID == "" {
			return fmt.Errorf("cannot add a stage without an ID to the pipeline")
		}
		if s.Process == nil {
			return fmt.Errorf("stage %s has no process", s.ID)
		}
		if _, exists := p.idIndex[s.ID]; exists {
			return fmt.Errorf("stage with ID '%s' already exists in the pipeline", s.ID)
		}
		p.idIndex[s.ID] = len(p.stages)
		p.stages = append(p.stages, s)
		p.resolved = false
	}
	return nil
}

// Stages returns the stages, in run order once Resolve has been called.
func (p *Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// Resolve orders the stages so every stage runs after its dependencies.
// Stages that are not part of any dependency keep their insertion order and
// run after the ordered ones.
func (p *Pipeline) Resolve() error {
	if len(p.stages) == 0 {
		p.resolved = true
		return nil
	}

	for _, s := range p.stages {
		for _, dep := range s.DependsOn {
			if _, exists := p.idIndex[dep]; !exists {
				return &DependencyError{StageID: s.ID, Dependencies: s.DependsOn, Missing: []string{dep}}
			}
		}
	}

	// Edge is [2]interface{}; element 0 must come before element 1
	edges := make([]toposort.Edge, 0)
	for _, s := range p.stages {
		for _, dep := range s.DependsOn {
			edges = append(edges, toposort.Edge{dep, s.ID})
		}
	}

	sortedIDs, err := toposort.Toposort(edges)
	if err != nil {
		return fmt.Errorf("circular dependency detected: %w", err)
	}

	resolved := make([]Stage, 0, len(p.stages))
	index := make(map[string]int, len(p.stages))
	for _, idInterface := range sortedIDs {
		id, ok := idInterface.(string)
		if !ok {
			return fmt.Errorf("unexpected type in topological sort result: %T", idInterface)
		}
		if old, exists := p.idIndex[id]; exists {
			index[id] = len(resolved)
			resolved = append(resolved, p.stages[old])
		}
	}
	for _, s := range p.stages {
		if _, added := index[s.ID]; !added {
			index[s.ID] = len(resolved)
			resolved = append(resolved, s)
		}
	}

	p.stages = resolved
	p.idIndex = index
	p.resolved = true
	return nil
}

// Run resolves the pipeline if needed and runs every stage in order. The first
// failing stage stops the pipeline.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.resolved {
		if err := p.Resolve(); err != nil {
			return err
		}
	}

	for i, s := range p.stages {
		p.logger.Debug(fmt.Sprintf("running stage %d/%d: %s", i+1, len(p.stages), s.ID), core.Context{"stage": s.ID})
		if err := s.Process.Import(ctx); err != nil {
			return &StageError{StageID: s.ID, Cause: err}
		}
	}
	return nil
}
