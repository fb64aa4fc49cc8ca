// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/abgdnv/catalog/internal/schema"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, DynamoDB).
type ProductStore interface {
	// FetchByID retrieves a single product by its identifier.
	// Returns nil and no error if no product exists with the given ID.
	FetchByID(ctx context.Context, id string) (*schema.Product, error)

	// ScanAll returns every product in the table, following page cursors until exhausted.
	// Returns an empty slice if no products exist.
	ScanAll(ctx context.Context) ([]schema.Product, error)

	// ScanPage returns at most limit products starting after cursor.
	// An empty next cursor means there are no more pages.
	ScanPage(ctx context.Context, cursor string, limit int32) ([]schema.Product, string, error)

	// Insert writes the product, replacing any item with the same ID.
	Insert(ctx context.Context, product schema.Product) (*schema.Product, error)

	// MergeUpdate sets only the fields present in patch and returns the full updated record.
	// Returns ErrProductNotFound if the item does not exist at write time.
	MergeUpdate(ctx context.Context, id string, patch schema.ProductPatch) (*schema.Product, error)

	// Remove deletes the product. Deleting a missing product is not an error.
	Remove(ctx context.Context, id string) error

	// Ping checks that the backing table is reachable.
	Ping(ctx context.Context) error
}
