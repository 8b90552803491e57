package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestDetectChanges(t *testing.T) {
	cases := []struct {
		name       string
		before     model.Product
		after      model.Product
		wantTitles []string
	}{
		{"back in stock", model.Product{Stock: 0, Price: 10}, model.Product{Stock: 3, Price: 10}, []string{"Back in Stock"}},
		{"low stock", model.Product{Stock: 8, Price: 10}, model.Product{Stock: 4, Price: 10}, []string{"Low Stock Alert"}},
		{"already low", model.Product{Stock: 4, Price: 10}, model.Product{Stock: 2, Price: 10}, nil},
		{"to threshold", model.Product{Stock: 6, Price: 10}, model.Product{Stock: 5, Price: 10}, []string{"Low Stock Alert"}},
		{"sold out", model.Product{Stock: 8, Price: 10}, model.Product{Stock: 0, Price: 10}, nil},
		{"price drop", model.Product{Stock: 9, Price: 10}, model.Product{Stock: 9, Price: 7.5}, []string{"Price Drop Alert!"}},
		{"price rise", model.Product{Stock: 9, Price: 10}, model.Product{Stock: 9, Price: 12}, nil},
		{"drop and restock", model.Product{Stock: 0, Price: 10}, model.Product{Stock: 20, Price: 9}, []string{"Price Drop Alert!", "Back in Stock"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.before.Name, c.after.Name = "Cedar", "Cedar"
			var titles []string
			for _, d := range DetectChanges(&c.before, &c.after) {
				titles = append(titles, d.Title)
			}
			assert.Equal(t, c.wantTitles, titles)
		})
	}
}

func TestDetectChangesMessages(t *testing.T) {
	drafts := DetectChanges(
		&model.Product{ID: "p1", Name: "Cedar", Price: 20, Stock: 8},
		&model.Product{ID: "p1", Name: "Cedar", Price: 15.5, Stock: 4},
	)
	require.Len(t, drafts, 2)
	assert.Equal(t, model.TypePriceDrop, drafts[0].Type)
	assert.Equal(t, "The price of Cedar has dropped from $20 to $15.5", drafts[0].Message)
	assert.Equal(t, model.PricePayload{ProductID: "p1", OldPrice: 20, NewPrice: 15.5}, drafts[0].Payload)
	assert.Equal(t, model.TypeStockUpdate, drafts[1].Type)
	assert.Equal(t, "Only 4 units left of Cedar! Get it before it's gone.", drafts[1].Message)
	assert.Equal(t, model.StockPayload{ProductID: "p1", NewStock: 4}, drafts[1].Payload)
}

func TestProductCreateNotifiesShoppers(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "fan", model.RoleUser, prefs(true, true, true))
	env.user(t, "quiet", model.RoleUser, prefs(true, false, true))
	env.user(t, "other-seller", model.RoleSeller, prefs(true, true, true))
	svc := NewProductService(env.products, env.users, env.notifier, nil)

	p, err := svc.Create(context.Background(), CreateProductInput{SellerID: "s1", Name: "Vetiver", Price: 30, Stock: 2})
	require.NoError(t, err)

	fan := env.inbox(t, "fan")
	require.Len(t, fan, 1)
	assert.Equal(t, model.TypeNewProduct, fan[0].Type)
	assert.Equal(t, "Check out our new product: Vetiver", fan[0].Message)
	payload, err := fan[0].Payload()
	require.NoError(t, err)
	assert.Equal(t, model.ProductPayload{ProductID: p.ID}, payload)
	assert.Empty(t, env.inbox(t, "quiet"))
	assert.Empty(t, env.inbox(t, "other-seller"))

	_, err = svc.Create(context.Background(), CreateProductInput{SellerID: "s1", Name: "Draft", Status: model.ProductStatusDraft})
	require.NoError(t, err)
	assert.Len(t, env.inbox(t, "fan"), 1)
}

func TestProductUpdateStockEvents(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "u1", model.RoleUser, nil)
	svc := NewProductService(env.products, env.users, env.notifier, nil)
	ctx := context.Background()
	p := env.product(t, "s1", 10, 0)

	_, err := svc.Update(ctx, "s1", p.ID, UpdateProductInput{Stock: intPtr(3)})
	require.NoError(t, err)
	require.Len(t, env.inbox(t, "u1"), 1)
	assert.Equal(t, "Back in Stock", env.inbox(t, "u1")[0].Title)

	_, err = svc.Update(ctx, "s1", p.ID, UpdateProductInput{Stock: intPtr(8)})
	require.NoError(t, err)
	_, err = svc.Update(ctx, "s1", p.ID, UpdateProductInput{Stock: intPtr(4)})
	require.NoError(t, err)
	_, err = svc.Update(ctx, "s1", p.ID, UpdateProductInput{Stock: intPtr(2)})
	require.NoError(t, err)

	items := env.inbox(t, "u1")
	require.Len(t, items, 2)
	assert.Equal(t, "Low Stock Alert", items[0].Title)
	assert.Len(t, env.notifier.ByType(model.TypeStockUpdate), 2)
}

func TestProductUpdatePriceDropRespectsPreference(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alerts", model.RoleUser, prefs(false, false, true))
	env.user(t, "muted", model.RoleUser, prefs(true, true, false))
	svc := NewProductService(env.products, env.users, env.notifier, nil)
	p := env.product(t, "s1", 50, 10)

	got, err := svc.Update(context.Background(), "s1", p.ID, UpdateProductInput{Price: floatPtr(35)})
	require.NoError(t, err)
	assert.InDelta(t, 35, got.Price, 0.001)

	require.Len(t, env.inbox(t, "alerts"), 1)
	assert.Equal(t, model.TypePriceDrop, env.inbox(t, "alerts")[0].Type)
	assert.Empty(t, env.inbox(t, "muted"))
}

func TestProductUpdateRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.products, env.users, env.notifier, nil)
	p := env.product(t, "s1", 50, 10)

	_, err := svc.Update(context.Background(), "s2", p.ID, UpdateProductInput{Price: floatPtr(1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, env.notifier.Drafts())
}

// racingProducts 在读取与写入之间插入一次并发改动
type racingProducts struct {
	repository.ProductRepository
	beforeUpdate func()
}

func (r *racingProducts) Update(ctx context.Context, p *model.Product, expectedStock int, fields ...string) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
		r.beforeUpdate = nil
	}
	return r.ProductRepository.Update(ctx, p, expectedStock, fields...)
}

func TestProductUpdateNameKeepsOrderDecrement(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "u1", model.RoleUser, prefs(true, true, true))
	p := env.product(t, "s1", 20, 10)
	orders := NewOrderService(env.orders, env.products, env.users, env.notifier, nil)
	racing := &racingProducts{ProductRepository: env.products, beforeUpdate: func() {
		_, err := orders.PlaceOrder(context.Background(), PlaceOrderInput{
			BuyerID: "u1",
			Items:   []OrderItemInput{{ProductID: p.ID, Quantity: 3}},
		})
		require.NoError(t, err)
	}}
	svc := NewProductService(racing, env.users, env.notifier, nil)

	name := "Amber Noir"
	got, err := svc.Update(context.Background(), "s1", p.ID, UpdateProductInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Amber Noir", got.Name)
	assert.Equal(t, 7, got.Stock)

	stored, err := env.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.Stock)
	assert.Empty(t, env.notifier.ByType(model.TypeStockUpdate))
}

func TestProductUpdateStockConflictsWithOrder(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "u1", model.RoleUser, prefs(true, true, true))
	p := env.product(t, "s1", 20, 10)
	orders := NewOrderService(env.orders, env.products, env.users, env.notifier, nil)
	racing := &racingProducts{ProductRepository: env.products, beforeUpdate: func() {
		_, err := orders.PlaceOrder(context.Background(), PlaceOrderInput{
			BuyerID: "u1",
			Items:   []OrderItemInput{{ProductID: p.ID, Quantity: 4}},
		})
		require.NoError(t, err)
	}}
	svc := NewProductService(racing, env.users, env.notifier, nil)

	_, err := svc.Update(context.Background(), "s1", p.ID, UpdateProductInput{Stock: intPtr(3)})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	stored, err := env.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Stock)
	assert.Empty(t, env.notifier.ByType(model.TypeStockUpdate))
}
