// Package store holds the raw text of indexed documents. Stores are
// append-only: a document's id is its position in insertion order, starting
// at 0, and stored text is never modified or removed.
package store

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("store closed")

// Document is a stored text and its sequential id.
type Document struct {
	ID   int
	Text string
}

// Store is the contract the engine uses for raw document text.
type Store interface {
	// Append stores text and returns its id, which equals the number of
	// documents stored before the call. A failed Append stores nothing.
	Append(ctx context.Context, text string) (int, error)
	// Get returns the text of document id.
	Get(ctx context.Context, id int) (string, error)
	// All returns every document in insertion order.
	All(ctx context.Context) ([]Document, error)
	Len() int
	Ping(ctx context.Context) error
	Close() error
}
