package catalog

import (
	"context"
	"slices"

	"go.uber.org/zap"
)

// Source supplies the ordered product list an index is built from.
type Source interface {
	Name() string
	Ping(ctx context.Context) error
	Load(ctx context.Context) ([]Product, error)
}

type FileSource struct {
	Path string
	Log  *zap.Logger
}

func NewFileSource(path string, log *zap.Logger) *FileSource {
	return &FileSource{Path: path, Log: log}
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Ping(ctx context.Context) error { return ctx.Err() }

func (s *FileSource) Load(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := LoadFile(s.Path)
	if err != nil {
		return nil, err
	}
	if res.Skipped > 0 && s.Log != nil {
		s.Log.Warn("skipped malformed product lines",
			zap.String("path", s.Path),
			zap.Int("skipped", res.Skipped),
		)
	}
	return res.Products, nil
}

// StaticSource serves a fixed product list.
type StaticSource struct {
	products []Product
}

func NewStaticSource(products []Product) *StaticSource {
	return &StaticSource{products: slices.Clone(products)}
}

// NewDemoSource is the small catalog used when no source is configured.
func NewDemoSource() *StaticSource {
	return NewStaticSource([]Product{
		{Code: "0001", Name: "Keyboard"},
		{Code: "0002", Name: "Mouse"},
		{Code: "0003", Name: "Monitor"},
		{Code: "0004", Name: "USB cable"},
	})
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Ping(ctx context.Context) error { return nil }

func (s *StaticSource) Load(ctx context.Context) ([]Product, error) {
	return slices.Clone(s.products), nil
}
