package usecase

import (
	"context"
	"log/slog"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

type productUsecase struct {
	repo   domain.ProductRepository
	logger *slog.Logger
}

// NewProductUsecase creates the catalog usecase.
func NewProductUsecase(repo domain.ProductRepository, logger *slog.Logger) domain.ProductUsecase {
	return &productUsecase{repo: repo, logger: logger}
}

func (u *productUsecase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	if id == "" {
		return nil, domain.NewInvalidInputError("product id is required")
	}
	return u.repo.GetByID(ctx, id)
}

func (u *productUsecase) ListProducts(ctx context.Context, category string, limit, offset int) (*entity.SearchResult, error) {
	if offset < 0 {
		offset = 0
	}
	return u.repo.List(ctx, category, clampLimit(limit), offset)
}

func (u *productUsecase) SearchProducts(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	if query == "" {
		return nil, domain.NewInvalidInputError("search query is required")
	}
	return u.repo.Search(ctx, query, clampLimit(limit))
}

func (u *productUsecase) SearchLexical(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	if query == "" {
		return nil, domain.NewInvalidInputError("search query is required")
	}
	return u.repo.SearchLexical(ctx, query, clampLimit(limit))
}

func (u *productUsecase) SearchHybrid(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	if query == "" {
		return nil, domain.NewInvalidInputError("search query is required")
	}
	return u.repo.SearchHybrid(ctx, query, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}
