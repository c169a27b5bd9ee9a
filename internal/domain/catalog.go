package domain

import (
	"context"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
)

// ProductRepository is the product catalog collaborator. The core makes no
// assumptions about ranking or personalization internals, only about the
// request/response shape.
type ProductRepository interface {
	// GetByID fetches one product. Returns a not-found domain error when
	// the id does not exist.
	GetByID(ctx context.Context, id string) (*entity.Product, error)

	// List pages through the catalog, optionally filtered by category.
	List(ctx context.Context, category string, limit, offset int) (*entity.SearchResult, error)

	// Search runs the default semantic multi-field search.
	Search(ctx context.Context, query string, limit int) (*entity.SearchResult, error)

	// SearchLexical runs a pure keyword (BM25) title search.
	SearchLexical(ctx context.Context, query string, limit int) (*entity.SearchResult, error)

	// SearchHybrid runs the combined semantic+lexical search.
	SearchHybrid(ctx context.Context, query string, limit int) (*entity.SearchResult, error)
}

// ProductUsecase exposes catalog reads to the handler layer.
type ProductUsecase interface {
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	ListProducts(ctx context.Context, category string, limit, offset int) (*entity.SearchResult, error)
	SearchProducts(ctx context.Context, query string, limit int) (*entity.SearchResult, error)
	SearchLexical(ctx context.Context, query string, limit int) (*entity.SearchResult, error)
	SearchHybrid(ctx context.Context, query string, limit int) (*entity.SearchResult, error)
}

// CartUsecase owns per-user carts and their loyalty-aware pricing.
type CartUsecase interface {
	AddItem(ctx context.Context, userID string, item entity.CartItem) error
	RemoveItem(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error

	// GetCart prices the cart through product lookups; lines whose product
	// can no longer be resolved are skipped.
	GetCart(ctx context.Context, userID, loyaltyTier string) (*entity.Cart, error)
}
