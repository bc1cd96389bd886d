// Package ledger owns the append-only, per-product ordered history of
// location/sensor readings.
package ledger

import (
	"context"
	"fmt"

	"github.com/chainaware/trace-engine/internal/errs"
	"github.com/chainaware/trace-engine/internal/model"
)

// Store is the persistence contract for reading history. Implementations:
// MemoryStore (default) and storage.ReadingStore (Postgres).
type Store interface {
	// Append adds a reading to the end of the product's sequence.
	Append(ctx context.Context, productID string, r model.Reading) error
	// Latest returns the most recently appended reading, or false if none.
	Latest(ctx context.Context, productID string) (model.Reading, bool, error)
	// History returns the full ordered sequence.
	History(ctx context.Context, productID string) ([]model.Reading, error)
	// Count returns the number of retained readings.
	Count(ctx context.Context, productID string) (int, error)
}

// ProductLookup is the slice of the registry the ledger needs.
type ProductLookup interface {
	Has(id string) bool
}

// Ledger validates and appends readings for known products.
type Ledger struct {
	store    Store
	products ProductLookup
}

// New creates a Ledger over the given store.
func New(store Store, products ProductLookup) *Ledger {
	return &Ledger{store: store, products: products}
}

// Append records a reading for the product. Unknown products fail with
// ErrNotFound. Timestamps must be non-decreasing within a product's
// history; an out-of-order reading fails validation.
func (l *Ledger) Append(ctx context.Context, productID string, r model.Reading) error {
	if !l.products.Has(productID) {
		return fmt.Errorf("product %s: %w", productID, errs.ErrNotFound)
	}
	if r.Timestamp.IsZero() {
		return errs.Validation([]string{"reading timestamp is required"})
	}

	last, ok, err := l.store.Latest(ctx, productID)
	if err != nil {
		return fmt.Errorf("read latest for %s: %w", productID, err)
	}
	if ok && r.Timestamp.Before(last.Timestamp) {
		return errs.Validation([]string{fmt.Sprintf(
			"reading timestamp %s precedes latest recorded %s",
			r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			last.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		)})
	}

	if err := l.store.Append(ctx, productID, r); err != nil {
		return fmt.Errorf("append reading for %s: %w", productID, err)
	}
	return nil
}

// Latest returns the most recent reading, or false if the history is empty.
func (l *Ledger) Latest(ctx context.Context, productID string) (model.Reading, bool, error) {
	if !l.products.Has(productID) {
		return model.Reading{}, false, fmt.Errorf("product %s: %w", productID, errs.ErrNotFound)
	}
	return l.store.Latest(ctx, productID)
}

// History returns the ordered reading sequence for the product.
func (l *Ledger) History(ctx context.Context, productID string) ([]model.Reading, error) {
	if !l.products.Has(productID) {
		return nil, fmt.Errorf("product %s: %w", productID, errs.ErrNotFound)
	}
	return l.store.History(ctx, productID)
}

// Count returns the number of retained readings for the product.
func (l *Ledger) Count(ctx context.Context, productID string) (int, error) {
	if !l.products.Has(productID) {
		return 0, fmt.Errorf("product %s: %w", productID, errs.ErrNotFound)
	}
	return l.store.Count(ctx, productID)
}
