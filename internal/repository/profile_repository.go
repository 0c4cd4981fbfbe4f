package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 見つからなければErrNotFound
type ProfileRepository interface {
	FindCustomerByUserID(ctx context.Context, userID int64) (*model.CustomerProfile, error)
	FindSellerByUserID(ctx context.Context, userID int64) (*model.SellerProfile, error)
	CreateCustomer(ctx context.Context, p *model.CustomerProfile) error
	CreateSeller(ctx context.Context, p *model.SellerProfile) error
	UpdateCustomer(ctx context.Context, p *model.CustomerProfile) error
	UpdateSeller(ctx context.Context, p *model.SellerProfile) error
}
