package services

import (
	"context"
	"errors"
	"testing"

	"inventory/internal/core"
)

func TestProductServiceList(t *testing.T) {
	var gotSearch string
	store := &fakeProductStore{listFn: func(_ context.Context, search string) ([]core.Product, error) {
		gotSearch = search
		return nil, nil
	}}

	products, err := NewProductService(store).List(context.Background(), "  lamp ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSearch != "lamp" {
		t.Errorf("search not trimmed: %q", gotSearch)
	}
	if products == nil {
		t.Errorf("expected empty non-nil slice")
	}
}

func TestProductServiceCreate(t *testing.T) {
	rating := 6.0
	storeErr := errors.New("disk full")

	tests := []struct {
		name     string
		in       core.Product
		storeErr error
		wantErr  error
		wantID   string
	}{
		{name: "generated id", in: core.Product{Name: " Lamp ", Price: 3}, wantID: "generated"},
		{name: "explicit id", in: core.Product{ProductID: "p-1", Name: "Lamp"}, wantID: "p-1"},
		{name: "empty name", in: core.Product{Name: "  "}, wantErr: core.ErrEmptyName},
		{name: "negative price", in: core.Product{Name: "Lamp", Price: -1}, wantErr: core.ErrInvalidPrice},
		{name: "rating out of range", in: core.Product{Name: "Lamp", Rating: &rating}, wantErr: core.ErrInvalidRating},
		{name: "store failure", in: core.Product{Name: "Lamp"}, storeErr: storeErr, wantErr: storeErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored core.Product
			store := &fakeProductStore{createFn: func(_ context.Context, p core.Product) (core.Product, error) {
				stored = p
				return p, tt.storeErr
			}}
			svc := NewProductService(store)
			svc.newID = func() string { return "generated" }

			got, err := svc.Create(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if tt.storeErr == nil && !errors.Is(err, ErrInvalidProduct) {
					t.Fatalf("validation errors must wrap ErrInvalidProduct, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ProductID != tt.wantID || stored.ProductID != tt.wantID {
				t.Errorf("unexpected id %q", got.ProductID)
			}
			if got.Name != "Lamp" {
				t.Errorf("name not trimmed: %q", got.Name)
			}
		})
	}
}
