package repository

import (
	"context"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type ProfileGormRepository struct {
	db *gorm.DB
}

func NewProfileGormRepository(db *gorm.DB) *ProfileGormRepository {
	return &ProfileGormRepository{db: db}
}

func (r *ProfileGormRepository) FindCustomerByUserID(ctx context.Context, userID int64) (*model.CustomerProfile, error) {
	var p model.CustomerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *ProfileGormRepository) FindSellerByUserID(ctx context.Context, userID int64) (*model.SellerProfile, error) {
	var p model.SellerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

// 1ユーザー1プロフィール。既にあればErrDuplicate。
func (r *ProfileGormRepository) CreateCustomer(ctx context.Context, p *model.CustomerProfile) error {
	return mapError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProfileGormRepository) CreateSeller(ctx context.Context, p *model.SellerProfile) error {
	return mapError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProfileGormRepository) UpdateCustomer(ctx context.Context, p *model.CustomerProfile) error {
	res := r.db.WithContext(ctx).
		Model(&model.CustomerProfile{}).
		Where("user_id = ?", p.UserID).
		Updates(map[string]any{
			"first_name":       p.FirstName,
			"last_name":        p.LastName,
			"shipping_address": p.ShippingAddress,
			"billing_address":  p.BillingAddress,
		})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProfileGormRepository) UpdateSeller(ctx context.Context, p *model.SellerProfile) error {
	res := r.db.WithContext(ctx).
		Model(&model.SellerProfile{}).
		Where("user_id = ?", p.UserID).
		Updates(map[string]any{
			"store_name":        p.StoreName,
			"store_description": p.StoreDescription,
			"business_license":  p.BusinessLicense,
		})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
