package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Source answers product lookups, normally backed by Postgres.
type Source interface {
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	GetByBarcode(ctx context.Context, barcode string) (Product, error)
	Search(ctx context.Context, q string, limit, offset int) ([]Product, int, error)
}

// ServiceConfig wires the catalog service dependencies.
type ServiceConfig struct {
	Store        Source
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

// Service answers product lookups with a Redis read-through cache in front of
// Postgres.
type Service struct {
	store        Source
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// NewService validates and constructs a catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}, nil
}

// ByBarcode resolves a scanned barcode to a product.
func (s *Service) ByBarcode(ctx context.Context, barcode string) (Product, error) {
	key := "catalog:barcode:" + barcode
	var cached Product
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	p, err := s.store.GetByBarcode(ctx, barcode)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.SetJSON(ctx, key, p)
	return p, nil
}

// ByID loads a product by identifier.
func (s *Service) ByID(ctx context.Context, id uuid.UUID) (Product, error) {
	key := "catalog:product:" + id.String()
	var cached Product
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.SetJSON(ctx, key, p)
	return p, nil
}

// SearchResult bundles a product page with its total match count.
type SearchResult struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// Search finds products by code, barcode or name. Search results are cached
// per query page because the register UI re-issues debounced lookups.
func (s *Service) Search(ctx context.Context, q string, page, limit int) (SearchResult, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	key := fmt.Sprintf("catalog:search:%s:%d:%d", q, page, limit)
	var cached SearchResult
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	products, total, err := s.store.Search(ctx, q, limit, (page-1)*limit)
	if err != nil {
		return SearchResult{}, err
	}
	result := SearchResult{Products: products, Total: total}
	_ = s.cache.SetJSON(ctx, key, result)
	return result, nil
}
