package repository

import (
	"context"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where("id = ?", cartID).First(&cart).Error; err != nil {
		return model.Cart{}, mapError(err)
	}
	return cart, nil
}

func (r *CartGormRepository) FindByCustomerID(ctx context.Context, customerID int64) (model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&cart).Error; err != nil {
		return model.Cart{}, mapError(err)
	}
	return cart, nil
}

func (r *CartGormRepository) LockByCustomerID(ctx context.Context, customerID int64) (model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ?", customerID).
		First(&cart).Error
	if err != nil {
		return model.Cart{}, mapError(err)
	}
	return cart, nil
}

// 無ければ作成。同時に作られた場合は既存を返す。
func (r *CartGormRepository) GetOrCreateByCustomerID(ctx context.Context, customerID int64) (model.Cart, error) {
	cart := model.Cart{CustomerID: customerID}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "customer_id"}}, DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		return model.Cart{}, mapError(err)
	}
	if cart.ID != 0 {
		return cart, nil
	}
	return r.FindByCustomerID(ctx, customerID)
}

// 明細→カートの順で削除
func (r *CartGormRepository) Delete(ctx context.Context, cartID int64) error {
	return mapError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Cart{}, cartID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	}))
}
