package dataset

import "context"

// Store persists normalized corpus records.
type Store interface {
	// SaveRecords writes records to the named split (e.g. "train", "test").
	SaveRecords(ctx context.Context, split string, records []Record) error
	// Close releases the underlying connection.
	Close() error
}
