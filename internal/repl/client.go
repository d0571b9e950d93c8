package repl

import (
	"context"

	"MegaStore/internal/catalog"
)

// Client is what the menu needs from a catalog, local or remote. Validation
// failures wrap catalog.ErrValidation; a missing code is ok == false.
type Client interface {
	Count(ctx context.Context) (int, error)
	LookupByCode(ctx context.Context, code string) (catalog.Product, bool, error)
	SearchByPrefix(ctx context.Context, term string) ([]catalog.Product, error)
	ListByName(ctx context.Context) ([]catalog.Product, error)
	ListByCode(ctx context.Context) ([]catalog.Product, error)
	FilterByInitial(ctx context.Context, letter string) ([]catalog.Product, error)
}
