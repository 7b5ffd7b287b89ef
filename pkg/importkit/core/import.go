package core

import (
	"context"
	"iter"
)

// Importer imports a single model, object or item of data into a destination dataset.
// A failed import is reported through the returned error.
type Importer[In, Out any] interface {
	ImportSingle(ctx context.Context, item In) (Out, error)
}

// CollectionImporter imports a collection of items and combines the results.
// How results are aggregated is left to the implementation.
type CollectionImporter[In, R any] interface {
	ImportCollection(ctx context.Context, items iter.Seq[In]) (R, error)
}

// ImportProcess runs a process that imports data from an external source, such as
// an API, a database or a CSV file, into a destination. It usually drives one or
// more Importers.
type ImportProcess interface {
	Import(ctx context.Context) error
}

// ProcessObserver is notified around an import process.
type ProcessObserver interface {
	BeforeImportStart(process ImportProcess)
	AfterImportFinish(process ImportProcess)
}

// ImporterObserver is notified after an importer imported a model.
type ImporterObserver[In, Out any] interface {
	AfterModelImported(importer Importer[In, Out])
}
