package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
)

// ErrStaleStock 库存已被并发修改（下单扣减或取消回补）
var ErrStaleStock = errors.New("product stock changed concurrently")

// ProductRepository 商品仓储
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Product, error)
	// Update 仅写入 fields 列；包含 stock 时要求库存仍为 expectedStock，否则返回 ErrStaleStock
	Update(ctx context.Context, p *model.Product, expectedStock int, fields ...string) error
}

type productRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepository{db: db} }

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = model.ProductStatusPublished
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Product, error) {
	var res []*model.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *productRepository) Update(ctx context.Context, p *model.Product, expectedStock int, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	q := r.db.WithContext(ctx).Model(p)
	guarded := false
	for _, f := range fields {
		if f == "stock" {
			guarded = true
			q = q.Where("stock = ?", expectedStock)
			break
		}
	}
	res := q.Select(append(fields, "updated_at")).Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if guarded && res.RowsAffected == 0 {
		return ErrStaleStock
	}
	return nil
}
