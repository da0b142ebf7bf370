package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inventory/internal/core"
	"inventory/internal/ports"
)

// ErrInvalidProduct wraps every validation failure of Create.
var ErrInvalidProduct = errors.New("invalid product")

type ProductService struct {
	store ports.ProductStore
	newID func() string
}

func NewProductService(store ports.ProductStore) *ProductService {
	return &ProductService{store: store, newID: uuid.NewString}
}

func (s *ProductService) List(ctx context.Context, search string) ([]core.Product, error) {
	products, err := s.store.ListProducts(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []core.Product{}
	}
	return products, nil
}

// Create validates p and stores it. An empty ProductID is replaced by a new
// UUID.
func (s *ProductService) Create(ctx context.Context, p core.Product) (core.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return core.Product{}, fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}
	if strings.TrimSpace(p.ProductID) == "" {
		p.ProductID = s.newID()
	}
	created, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return core.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}
