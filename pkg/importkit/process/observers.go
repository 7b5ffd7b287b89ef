package process

import (
	"fmt"
	"sync"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
)

// SubscriptionID identifies a registered observer.
type SubscriptionID string

type processSub struct {
	id       SubscriptionID
	observer core.ProcessObserver
}

type importerSub[In, Out any] struct {
	id       SubscriptionID
	observer core.ImporterObserver[In, Out]
}

// ObserverSet holds the observers of one process. Observers are notified
// synchronously in subscription order. A panicking observer is logged and does
// not prevent the remaining observers from being notified.
type ObserverSet[In, Out any] struct {
	mu        sync.RWMutex
	processes []processSub
	importers []importerSub[In, Out]
	nextID    int
	logger    core.LeveledLogger
}

// NewObserverSet creates an empty set. Observer failures are logged to logger.
func NewObserverSet[In, Out any](logger core.LeveledLogger) *ObserverSet[In, Out] {
	if logger == nil {
		logger = core.Nop()
	}
	return &ObserverSet[In, Out]{nextID: 1, logger: logger}
}

func (s *ObserverSet[In, Out]) newID() SubscriptionID {
	id := SubscriptionID(fmt.Sprintf("sub_%d", s.nextID))
	s.nextID++
	return id
}

// SubscribeProcess registers a process observer.
func (s *ObserverSet[In, Out]) SubscribeProcess(o core.ProcessObserver) SubscriptionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.processes = append(s.processes, processSub{id: id, observer: o})
	return id
}

// SubscribeImporter registers an importer observer.
func (s *ObserverSet[In, Out]) SubscribeImporter(o core.ImporterObserver[In, Out]) SubscriptionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.importers = append(s.importers, importerSub[In, Out]{id: id, observer: o})
	return id
}

// Unsubscribe removes an observer. Unknown ids are ignored.
func (s *ObserverSet[In, Out]) Unsubscribe(id SubscriptionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.processes {
		if sub.id == id {
			s.processes = append(s.processes[:i], s.processes[i+1:]...)
			return
		}
	}
	for i, sub := range s.importers {
		if sub.id == id {
			s.importers = append(s.importers[:i], s.importers[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered observers.
func (s *ObserverSet[In, Out]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.processes) + len(s.importers)
}

// BeforeImportStart notifies process observers.
func (s *ObserverSet[In, Out]) BeforeImportStart(p core.ImportProcess) {
	for _, sub := range s.processSubs() {
		s.call(sub.id, "before_import_start", func() { sub.observer.BeforeImportStart(p) })
	}
}

// AfterImportFinish notifies process observers.
func (s *ObserverSet[In, Out]) AfterImportFinish(p core.ImportProcess) {
	for _, sub := range s.processSubs() {
		s.call(sub.id, "after_import_finish", func() { sub.observer.AfterImportFinish(p) })
	}
}

// AfterModelImported notifies importer observers.
func (s *ObserverSet[In, Out]) AfterModelImported(imp core.Importer[In, Out]) {
	s.mu.RLock()
	subs := append([]importerSub[In, Out]{}, s.importers...)
	s.mu.RUnlock()

	for _, sub := range subs {
		s.call(sub.id, "after_model_imported", func() { sub.observer.AfterModelImported(imp) })
	}
}

func (s *ObserverSet[In, Out]) processSubs() []processSub {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]processSub{}, s.processes...)
}

func (s *ObserverSet[In, Out]) call(id SubscriptionID, event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warning(fmt.Sprintf("observer %s failed on %s: %v", id, event, r), core.Context{
				"subscription_id": string(id),
				"event":           event,
			})
		}
	}()
	fn()
}
