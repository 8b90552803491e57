package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/notify"
	"github.com/d60-Lab/storefront/internal/repository"
)

// CreateProductInput 新建商品
type CreateProductInput struct {
	SellerID string              `json:"-"`
	Name     string              `json:"name" binding:"required,max=255"`
	Price    float64             `json:"price" binding:"gte=0"`
	Stock    int                 `json:"stock" binding:"gte=0"`
	Status   model.ProductStatus `json:"status" binding:"omitempty,oneof=draft published"`
}

// UpdateProductInput 局部更新，nil 表示不修改
type UpdateProductInput struct {
	Name   *string              `json:"name" binding:"omitempty,max=255"`
	Price  *float64             `json:"price" binding:"omitempty,gte=0"`
	Stock  *int                 `json:"stock" binding:"omitempty,gte=0"`
	Status *model.ProductStatus `json:"status" binding:"omitempty,oneof=draft published"`
}

// ProductService 商品服务，更新时检测价格与库存变化
type ProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*model.Product, error)
	Update(ctx context.Context, sellerID, productID string, in UpdateProductInput) (*model.Product, error)
}

type productService struct {
	products repository.ProductRepository
	users    repository.UserRepository
	notifier Notifier
	log      *zap.Logger
}

func NewProductService(products repository.ProductRepository, users repository.UserRepository, notifier Notifier, log *zap.Logger) ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &productService{products: products, users: users, notifier: notifier, log: log}
}

func (s *productService) Create(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	if in.Name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	p := &model.Product{
		Name:     in.Name,
		Price:    in.Price,
		Stock:    in.Stock,
		SellerID: in.SellerID,
		Status:   in.Status,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	if p.Status == model.ProductStatusPublished {
		s.broadcast(ctx, p.SellerID, notify.Draft{
			Type:    model.TypeNewProduct,
			Title:   "New Product Available!",
			Message: fmt.Sprintf("Check out our new product: %s", p.Name),
			Payload: model.ProductPayload{ProductID: p.ID},
		})
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, sellerID, productID string, in UpdateProductInput) (*model.Product, error) {
	current, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if current.SellerID != sellerID {
		return nil, apperr.NotFound("product", productID)
	}
	before := *current
	var fields []string
	if in.Name != nil {
		current.Name = *in.Name
		fields = append(fields, "name")
	}
	if in.Price != nil {
		current.Price = *in.Price
		fields = append(fields, "price")
	}
	if in.Stock != nil {
		current.Stock = *in.Stock
		fields = append(fields, "stock")
	}
	if in.Status != nil {
		current.Status = *in.Status
		fields = append(fields, "status")
	}
	if len(fields) == 0 {
		return current, nil
	}
	if err := s.products.Update(ctx, current, before.Stock, fields...); err != nil {
		if errors.Is(err, repository.ErrStaleStock) {
			return nil, apperr.Conflict("stock of product %s changed concurrently, reload and retry", productID)
		}
		return nil, err
	}
	if current.Status == model.ProductStatusPublished {
		for _, d := range DetectChanges(&before, current) {
			s.broadcast(ctx, sellerID, d)
		}
	}
	if in.Stock == nil {
		if fresh, err := s.products.GetByID(ctx, productID); err == nil {
			return fresh, nil
		}
	}
	return current, nil
}

// DetectChanges 边沿触发：严格降价、售罄后补货、库存首次跌入紧张区间
func DetectChanges(before, after *model.Product) []notify.Draft {
	var out []notify.Draft
	if after.Price < before.Price {
		out = append(out, notify.Draft{
			Type:    model.TypePriceDrop,
			Title:   "Price Drop Alert!",
			Message: fmt.Sprintf("The price of %s has dropped from %s to %s", after.Name, formatPrice(before.Price), formatPrice(after.Price)),
			Payload: model.PricePayload{ProductID: after.ID, OldPrice: before.Price, NewPrice: after.Price},
		})
	}
	switch {
	case before.Stock == 0 && after.Stock > 0:
		out = append(out, notify.Draft{
			Type:    model.TypeStockUpdate,
			Title:   "Back in Stock",
			Message: fmt.Sprintf("%s is back in stock with %d units available!", after.Name, after.Stock),
			Payload: model.StockPayload{ProductID: after.ID, NewStock: after.Stock},
		})
	case before.Stock > model.LowStockThreshold && after.Stock > 0 && after.Stock <= model.LowStockThreshold:
		out = append(out, notify.Draft{
			Type:    model.TypeStockUpdate,
			Title:   "Low Stock Alert",
			Message: fmt.Sprintf("Only %d units left of %s! Get it before it's gone.", after.Stock, after.Name),
			Payload: model.StockPayload{ProductID: after.ID, NewStock: after.Stock},
		})
	}
	return out
}

// broadcast 收件人为全部 user 角色账户
func (s *productService) broadcast(ctx context.Context, sellerID string, d notify.Draft) {
	if s.notifier == nil {
		return
	}
	ids, err := s.users.ListIDsByRole(ctx, model.RoleUser)
	if err != nil {
		s.log.Error("list product audience failed", zap.String("type", string(d.Type)), zap.Error(err))
		return
	}
	d.RecipientIDs = ids
	d.SenderID = sellerID
	if _, err := s.notifier.Fanout(ctx, d); err != nil {
		s.log.Error("product notification failed", zap.String("type", string(d.Type)), zap.Error(err))
	}
}

func formatPrice(p float64) string {
	return "$" + strconv.FormatFloat(p, 'f', -1, 64)
}
