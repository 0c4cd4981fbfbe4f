package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 削除済み(soft delete)の商品はどのメソッドからも見えない
type ProductRepository interface {
	ListPublic(ctx context.Context, page int, limit int) ([]model.Product, int64, error)
	ListBySellerID(ctx context.Context, sellerID int64) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
