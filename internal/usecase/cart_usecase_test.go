package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
)

type fakeCatalog struct {
	products map[string]entity.Product
}

func (f *fakeCatalog) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if p, ok := f.products[id]; ok {
		return &p, nil
	}
	return nil, domain.NewNotFoundError("product", id)
}

func (f *fakeCatalog) List(ctx context.Context, category string, limit, offset int) (*entity.SearchResult, error) {
	return &entity.SearchResult{}, nil
}

func (f *fakeCatalog) Search(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	return &entity.SearchResult{}, nil
}

func (f *fakeCatalog) SearchLexical(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	return &entity.SearchResult{}, nil
}

func (f *fakeCatalog) SearchHybrid(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	return &entity.SearchResult{}, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]entity.Product{
		"SKU-TENT":  {ID: "SKU-TENT", Title: "Alpine Tent", Price: 300},
		"SKU-STOVE": {ID: "SKU-STOVE", Title: "Camp Stove", Price: 50},
	}}
}

func TestCartAddAndPrice(t *testing.T) {
	u := NewCartUsecase(testCatalog(), quietLogger())
	ctx := context.Background()

	require.NoError(t, u.AddItem(ctx, "user_new", entity.CartItem{ProductID: "SKU-TENT", Quantity: 1}))
	require.NoError(t, u.AddItem(ctx, "user_new", entity.CartItem{ProductID: "SKU-STOVE", Quantity: 2}))

	cart, err := u.GetCart(ctx, "user_new", "")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 400.0, cart.Subtotal)
	assert.Equal(t, 0.0, cart.Discount)
	assert.Equal(t, 400.0, cart.Total)
	assert.Empty(t, cart.LoyaltyPerks)
}

func TestCartAddMergesQuantities(t *testing.T) {
	u := NewCartUsecase(testCatalog(), quietLogger())
	ctx := context.Background()

	require.NoError(t, u.AddItem(ctx, "user_new", entity.CartItem{ProductID: "SKU-TENT", Quantity: 1}))
	require.NoError(t, u.AddItem(ctx, "user_new", entity.CartItem{ProductID: "SKU-TENT", Quantity: 2}))

	cart, err := u.GetCart(ctx, "user_new", "")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 900.0, cart.Subtotal)
}

func TestCartLoyaltyPricing(t *testing.T) {
	cases := []struct {
		tier     string
		discount float64
		perk     string
	}{
		{TierPlatinum, 30.0, "Free overnight shipping"},
		{TierBusiness, 45.0, "Net-30 payment terms"},
	}
	for _, tc := range cases {
		t.Run(tc.tier, func(t *testing.T) {
			u := NewCartUsecase(testCatalog(), quietLogger())
			ctx := context.Background()
			require.NoError(t, u.AddItem(ctx, "u1", entity.CartItem{ProductID: "SKU-TENT", Quantity: 1}))

			cart, err := u.GetCart(ctx, "u1", tc.tier)
			require.NoError(t, err)
			assert.Equal(t, tc.discount, cart.Discount)
			assert.Equal(t, 300.0-tc.discount, cart.Total)
			assert.Equal(t, []string{tc.perk}, cart.LoyaltyPerks)
		})
	}
}

func TestCartSkipsUnresolvableLines(t *testing.T) {
	u := NewCartUsecase(testCatalog(), quietLogger())
	ctx := context.Background()

	require.NoError(t, u.AddItem(ctx, "u1", entity.CartItem{ProductID: "SKU-TENT", Quantity: 1}))
	require.NoError(t, u.AddItem(ctx, "u1", entity.CartItem{ProductID: "SKU-GONE", Quantity: 1}))

	cart, err := u.GetCart(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "SKU-TENT", cart.Items[0].ProductID)
}

func TestCartRemoveAndClear(t *testing.T) {
	u := NewCartUsecase(testCatalog(), quietLogger())
	ctx := context.Background()

	require.NoError(t, u.AddItem(ctx, "u1", entity.CartItem{ProductID: "SKU-TENT", Quantity: 1}))
	require.NoError(t, u.AddItem(ctx, "u1", entity.CartItem{ProductID: "SKU-STOVE", Quantity: 1}))

	require.NoError(t, u.RemoveItem(ctx, "u1", "SKU-TENT"))
	assert.True(t, domain.IsNotFound(u.RemoveItem(ctx, "u1", "SKU-TENT")))

	require.NoError(t, u.Clear(ctx, "u1"))
	cart, err := u.GetCart(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartEmptyForUnknownUser(t *testing.T) {
	u := NewCartUsecase(testCatalog(), quietLogger())

	cart, err := u.GetCart(context.Background(), "nobody", TierPlatinum)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)
	assert.Empty(t, cart.LoyaltyPerks)
}
