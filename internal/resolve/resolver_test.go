package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
)

type fakeLookup struct {
	products map[string]*entity.Product
	failing  map[string]error
	calls    []string
}

func (f *fakeLookup) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	f.calls = append(f.calls, id)
	if err, ok := f.failing[id]; ok {
		return nil, err
	}
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, domain.NewNotFoundError("Product", id)
}

func TestResolvePreservesOrder(t *testing.T) {
	lookup := &fakeLookup{products: map[string]*entity.Product{
		"P1": {ID: "P1", Title: "Alpine Tent"},
		"P2": {ID: "P2", Title: "Down Sleeping Bag"},
	}}

	products := New(lookup, nil).Resolve(context.Background(), []string{"P1", "P2"})

	require.Len(t, products, 2)
	assert.Equal(t, "Alpine Tent", products[0].Title)
	assert.Equal(t, "Down Sleeping Bag", products[1].Title)
	assert.Equal(t, []string{"P1", "P2"}, lookup.calls)
}

func TestResolveFailSoftPerID(t *testing.T) {
	lookup := &fakeLookup{
		products: map[string]*entity.Product{
			"P1": {ID: "P1", Title: "Alpine Tent"},
			"P3": {ID: "P3", Title: "Trekking Poles"},
		},
		failing: map[string]error{"P2": errors.New("connection refused")},
	}

	products := New(lookup, nil).Resolve(context.Background(), []string{"P1", "P2", "P3"})

	// The failed id is omitted; the rest proceed.
	require.Len(t, products, 2)
	assert.Equal(t, "P1", products[0].ID)
	assert.Equal(t, "P3", products[1].ID)
	assert.Equal(t, []string{"P1", "P2", "P3"}, lookup.calls)
}

func TestResolveNotFoundOmitted(t *testing.T) {
	lookup := &fakeLookup{products: map[string]*entity.Product{}}
	products := New(lookup, nil).Resolve(context.Background(), []string{"ghost"})
	assert.Empty(t, products)
}

func TestResolveEmptyInput(t *testing.T) {
	lookup := &fakeLookup{}
	products := New(lookup, nil).Resolve(context.Background(), nil)
	assert.Empty(t, products)
	assert.Empty(t, lookup.calls)
}
