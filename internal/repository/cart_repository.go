package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type CartRepository interface {
	FindByID(ctx context.Context, cartID int64) (model.Cart, error)
	FindByCustomerID(ctx context.Context, customerID int64) (model.Cart, error)
	// チェックアウト用。同じ購入者のチェックアウトを直列にする。
	LockByCustomerID(ctx context.Context, customerID int64) (model.Cart, error)
	GetOrCreateByCustomerID(ctx context.Context, customerID int64) (model.Cart, error)

	// 明細ごとカートを消す
	Delete(ctx context.Context, cartID int64) error
}
