package sdk

import (
	"context"

	"github.com/celerix-dev/mediaid/pkg/schema"
)

// --- Functional Interfaces (Interface Segregation) ---

// RecordWriter appends records. Create assigns the ID and timestamp.
type RecordWriter interface {
	Create(ctx context.Context, r schema.Record) (int64, error)
}

// RecordLister returns every stored record in creation order.
type RecordLister interface {
	List(ctx context.Context) ([]schema.Record, error)
}

// Asker relays chat text to an agent. It always returns displayable text.
type Asker interface {
	Ask(ctx context.Context, text string) string
}

// --- Composite Interfaces ---

// RecordStore is the full store contract. Records are never updated or deleted.
type RecordStore interface {
	RecordWriter
	RecordLister
	Close() error
}
