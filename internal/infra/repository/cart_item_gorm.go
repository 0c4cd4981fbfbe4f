package repository

import (
	"context"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, mapError(err)
	}
	return items, nil
}

func (r *CartItemGormRepository) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	var item model.CartItem
	if err := r.db.WithContext(ctx).Where("id = ?", cartItemID).First(&item).Error; err != nil {
		return model.CartItem{}, mapError(err)
	}
	return item, nil
}

func (r *CartItemGormRepository) FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return model.CartItem{}, mapError(err)
	}
	return item, nil
}

func (r *CartItemGormRepository) Create(ctx context.Context, item *model.CartItem) error {
	return mapError(r.db.WithContext(ctx).Create(item).Error)
}

// 数量と小計は必ず一緒に更新する
func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64, subtotal decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Updates(map[string]any{"quantity": qty, "subtotal": subtotal})

	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// quantityとsubtotalを1つのUPDATEで加算する。SET内の列参照は更新前の値。
func (r *CartItemGormRepository) IncrementQuantity(ctx context.Context, cartItemID int64, addQty int64, unitPrice decimal.Decimal) (model.CartItem, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Updates(map[string]any{
			"quantity": gorm.Expr("quantity + ?", addQty),
			"subtotal": gorm.Expr("(quantity + ?) * CAST(? AS NUMERIC)", addQty, unitPrice),
		})

	if res.Error != nil {
		return model.CartItem{}, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.CartItem{}, repo.ErrNotFound
	}
	return r.FindByID(ctx, cartItemID)
}

func (r *CartItemGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID)

	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
