package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/handler/dto"
)

// CartHandler serves the per-user demo cart.
type CartHandler struct {
	usecase domain.CartUsecase
	logger  *slog.Logger
}

// NewCartHandler creates the cart handler.
func NewCartHandler(usecase domain.CartUsecase, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Add puts an item in the user's cart, merging quantities for repeats.
func (h *CartHandler) Add(ctx context.Context, c *app.RequestContext) {
	var req dto.AddCartItemRequest
	if err := c.BindJSON(&req); err != nil {
		ErrorResponse(c, domain.NewInvalidInputError("invalid request body"))
		return
	}

	err := h.usecase.AddItem(ctx, c.Query("user_id"), entity.CartItem{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	c.JSON(consts.StatusOK, dto.MessageResponse{Message: "Item added to cart"})
}

// Get returns the priced cart, applying the loyalty tier when given.
func (h *CartHandler) Get(ctx context.Context, c *app.RequestContext) {
	cart, err := h.usecase.GetCart(ctx, c.Query("user_id"), c.Query("loyalty_tier"))
	if err != nil {
		h.logger.Error("cart pricing failed", "error", err)
		ErrorResponse(c, err)
		return
	}
	c.JSON(consts.StatusOK, cart)
}

// Remove drops one product from the cart.
func (h *CartHandler) Remove(ctx context.Context, c *app.RequestContext) {
	err := h.usecase.RemoveItem(ctx, c.Query("user_id"), c.Param("product_id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	c.JSON(consts.StatusOK, dto.MessageResponse{Message: "Item removed from cart"})
}

// Clear empties the user's cart.
func (h *CartHandler) Clear(ctx context.Context, c *app.RequestContext) {
	if err := h.usecase.Clear(ctx, c.Query("user_id")); err != nil {
		ErrorResponse(c, err)
		return
	}
	c.JSON(consts.StatusOK, dto.MessageResponse{Message: "Cart cleared"})
}
