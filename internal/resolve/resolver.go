// Package resolve turns extracted product references into full catalog
// records through a product-lookup collaborator.
package resolve

import (
	"context"
	"log/slog"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
)

// ProductLookup is the single-product collaborator the resolver needs. Both
// the server-side catalog repository and the CLI's API client satisfy it.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// Resolver resolves product ids fail-soft, one lookup at a time.
type Resolver struct {
	lookup ProductLookup
	logger *slog.Logger
}

// New creates a Resolver.
func New(lookup ProductLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{lookup: lookup, logger: logger}
}

// Resolve fetches each id in order. Lookups are deliberately sequential:
// fan-out stays bounded and the result order matches the extraction order.
// A failed lookup is logged and skipped; it never aborts the rest.
func (r *Resolver) Resolve(ctx context.Context, ids []string) []entity.Product {
	products := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		product, err := r.lookup.GetByID(ctx, id)
		if err != nil {
			r.logger.Warn("product resolution failed, skipping",
				"product_id", id,
				"error", err,
			)
			continue
		}
		if product == nil {
			continue
		}
		products = append(products, *product)
	}
	return products
}
