package repl

import (
	"context"

	"MegaStore/internal/catalog"
)

// DirectClient queries an in-process holder.
type DirectClient struct {
	holder *catalog.Holder
}

var _ Client = (*DirectClient)(nil)

func NewDirectClient(h *catalog.Holder) *DirectClient {
	return &DirectClient{holder: h}
}

func (c *DirectClient) Count(ctx context.Context) (int, error) {
	idx, err := c.holder.Index()
	if err != nil {
		return 0, err
	}
	return idx.Len(), nil
}

func (c *DirectClient) LookupByCode(ctx context.Context, code string) (catalog.Product, bool, error) {
	idx, err := c.holder.Index()
	if err != nil {
		return catalog.Product{}, false, err
	}
	p, ok := idx.LookupByCode(code)
	return p, ok, nil
}

func (c *DirectClient) SearchByPrefix(ctx context.Context, term string) ([]catalog.Product, error) {
	idx, err := c.holder.Index()
	if err != nil {
		return nil, err
	}
	return idx.SearchByPrefix(term)
}

func (c *DirectClient) ListByName(ctx context.Context) ([]catalog.Product, error) {
	idx, err := c.holder.Index()
	if err != nil {
		return nil, err
	}
	return idx.ListByName(), nil
}

func (c *DirectClient) ListByCode(ctx context.Context) ([]catalog.Product, error) {
	idx, err := c.holder.Index()
	if err != nil {
		return nil, err
	}
	return idx.ListByCode(), nil
}

func (c *DirectClient) FilterByInitial(ctx context.Context, letter string) ([]catalog.Product, error) {
	idx, err := c.holder.Index()
	if err != nil {
		return nil, err
	}
	return idx.FilterByInitial(letter)
}
