package handler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
)

// ProductHandler serves catalog browsing and the three search variants.
type ProductHandler struct {
	usecase domain.ProductUsecase
	logger  *slog.Logger
}

// NewProductHandler creates the product handler.
func NewProductHandler(usecase domain.ProductUsecase, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// List pages through the catalog, optionally filtered by category.
func (h *ProductHandler) List(ctx context.Context, c *app.RequestContext) {
	result, err := h.usecase.ListProducts(ctx,
		c.Query("category"),
		queryInt(c, "limit", 20),
		queryInt(c, "offset", 0))
	if err != nil {
		h.logger.Error("product list failed", "error", err)
		ErrorResponse(c, err)
		return
	}
	c.JSON(consts.StatusOK, result)
}

// Search runs the default semantic search.
func (h *ProductHandler) Search(ctx context.Context, c *app.RequestContext) {
	h.search(ctx, c, h.usecase.SearchProducts)
}

// SearchLexical runs the pure keyword search.
func (h *ProductHandler) SearchLexical(ctx context.Context, c *app.RequestContext) {
	h.search(ctx, c, h.usecase.SearchLexical)
}

// SearchHybrid runs the combined semantic+lexical search.
func (h *ProductHandler) SearchHybrid(ctx context.Context, c *app.RequestContext) {
	h.search(ctx, c, h.usecase.SearchHybrid)
}

// Get returns a single product by id.
func (h *ProductHandler) Get(ctx context.Context, c *app.RequestContext) {
	product, err := h.usecase.GetProduct(ctx, c.Param("id"))
	if err != nil {
		if !domain.IsNotFound(err) {
			h.logger.Error("product fetch failed", "id", c.Param("id"), "error", err)
		}
		ErrorResponse(c, err)
		return
	}
	c.JSON(consts.StatusOK, product)
}

type searchFunc func(ctx context.Context, query string, limit int) (*entity.SearchResult, error)

func (h *ProductHandler) search(ctx context.Context, c *app.RequestContext, fn searchFunc) {
	query := c.Query("q")
	if query == "" {
		ErrorResponse(c, domain.NewInvalidInputError("q query parameter is required"))
		return
	}

	result, err := fn(ctx, query, queryInt(c, "limit", 20))
	if err != nil {
		h.logger.Error("product search failed", "query", query, "error", err)
		ErrorResponse(c, err)
		return
	}
	c.JSON(consts.StatusOK, result)
}

func queryInt(c *app.RequestContext, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
