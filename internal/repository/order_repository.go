package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// SELECT ... FOR UPDATE。トランザクション内で使う。
	LockByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByIdempotencyKey(ctx context.Context, customerID int64, key string) (model.Order, bool, error)

	// 新しい順
	ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error)
	// 出品者の明細を1つ以上含む注文。新しい順。
	ListBySellerID(ctx context.Context, sellerID int64, page int, limit int) ([]model.Order, int64, error)

	// statusがfromのときだけ更新する。他で変わっていればErrConflict。
	UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus, billing model.BillingStatus) error
}
