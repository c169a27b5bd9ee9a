package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
)

// Loyalty tiers recognized by cart pricing.
const (
	TierPlatinum = "platinum"
	TierBusiness = "business"
)

// cartUsecase keeps carts in memory, keyed by user. Carts are demo state;
// they do not survive a restart.
type cartUsecase struct {
	mu     sync.RWMutex
	carts  map[string][]entity.CartItem
	repo   domain.ProductRepository
	logger *slog.Logger
}

// NewCartUsecase creates the in-memory cart usecase.
func NewCartUsecase(repo domain.ProductRepository, logger *slog.Logger) domain.CartUsecase {
	return &cartUsecase{
		carts:  make(map[string][]entity.CartItem),
		repo:   repo,
		logger: logger,
	}
}

func (u *cartUsecase) AddItem(ctx context.Context, userID string, item entity.CartItem) error {
	if userID == "" {
		return domain.NewInvalidInputError("user id is required")
	}
	if item.ProductID == "" {
		return domain.NewInvalidInputError("product id is required")
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	for i, existing := range u.carts[userID] {
		if existing.ProductID == item.ProductID {
			u.carts[userID][i].Quantity += item.Quantity
			return nil
		}
	}
	u.carts[userID] = append(u.carts[userID], item)
	return nil
}

func (u *cartUsecase) RemoveItem(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return domain.NewInvalidInputError("user id is required")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	items := u.carts[userID]
	for i, item := range items {
		if item.ProductID == productID {
			u.carts[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("cart item", productID)
}

func (u *cartUsecase) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.NewInvalidInputError("user id is required")
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.carts, userID)
	return nil
}

// GetCart prices the cart through catalog lookups. Lines whose product no
// longer resolves are skipped rather than failing the whole cart.
func (u *cartUsecase) GetCart(ctx context.Context, userID, loyaltyTier string) (*entity.Cart, error) {
	if userID == "" {
		return nil, domain.NewInvalidInputError("user id is required")
	}

	u.mu.RLock()
	items := make([]entity.CartItem, len(u.carts[userID]))
	copy(items, u.carts[userID])
	u.mu.RUnlock()

	cart := &entity.Cart{
		Items:        []entity.CartLine{},
		LoyaltyPerks: []string{},
	}
	if len(items) == 0 {
		return cart, nil
	}

	for _, item := range items {
		product, err := u.repo.GetByID(ctx, item.ProductID)
		if err != nil {
			u.logger.Warn("skipping unresolvable cart line",
				"product_id", item.ProductID, "error", err)
			continue
		}
		lineTotal := product.Price * float64(item.Quantity)
		cart.Items = append(cart.Items, entity.CartLine{
			ProductID: item.ProductID,
			Title:     product.Title,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Subtotal:  lineTotal,
			ImageURL:  product.ImageURL,
		})
		cart.Subtotal += lineTotal
	}

	switch loyaltyTier {
	case TierPlatinum:
		cart.Discount = cart.Subtotal * 0.10
		cart.LoyaltyPerks = append(cart.LoyaltyPerks, "Free overnight shipping")
	case TierBusiness:
		cart.Discount = cart.Subtotal * 0.15
		cart.LoyaltyPerks = append(cart.LoyaltyPerks, "Net-30 payment terms")
	}
	cart.Total = cart.Subtotal - cart.Discount

	return cart, nil
}
