package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/storefront/internal/model"
)

func TestProductUpdateKeepsConcurrentStockChange(t *testing.T) {
	db := openTestDB(t)
	products, orders := NewProductRepository(db), NewOrderRepository(db)
	ctx := context.Background()
	p := &model.Product{Name: "Oud", Price: 80, Stock: 10, SellerID: "s1"}
	require.NoError(t, products.Create(ctx, p))

	read, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, &model.Order{
		BuyerID: "b1", SellerID: "s1",
		Items: []model.OrderItem{{ProductID: p.ID, Quantity: 3, Price: 80}},
	}))

	read.Name = "Oud Royale"
	require.NoError(t, products.Update(ctx, read, read.Stock, "name"))

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oud Royale", got.Name)
	assert.Equal(t, 7, got.Stock)
}

func TestProductUpdateStaleStock(t *testing.T) {
	db := openTestDB(t)
	products, orders := NewProductRepository(db), NewOrderRepository(db)
	ctx := context.Background()
	p := &model.Product{Name: "Vetiver", Price: 40, Stock: 10, SellerID: "s1"}
	require.NoError(t, products.Create(ctx, p))

	read, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, &model.Order{
		BuyerID: "b1", SellerID: "s1",
		Items: []model.OrderItem{{ProductID: p.ID, Quantity: 2, Price: 40}},
	}))

	expected := read.Stock
	read.Stock = 20
	err = products.Update(ctx, read, expected, "stock")
	assert.ErrorIs(t, err, ErrStaleStock)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock)

	got.Stock = 20
	require.NoError(t, products.Update(ctx, got, 8, "stock"))
	got, err = products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Stock)
}

func TestProductUpdateNoFields(t *testing.T) {
	db := openTestDB(t)
	products := NewProductRepository(db)
	ctx := context.Background()
	p := &model.Product{Name: "Rose", Price: 40, Stock: 3, SellerID: "s1"}
	require.NoError(t, products.Create(ctx, p))

	p.Name = "ignored"
	require.NoError(t, products.Update(ctx, p, p.Stock))
	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rose", got.Name)
}
