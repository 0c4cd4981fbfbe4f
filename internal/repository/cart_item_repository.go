package repository

import (
	"context"

	"marketplace/internal/domain/model"

	"github.com/shopspring/decimal"
)

type CartItemRepository interface {
	// id昇順(追加順)
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)

	// 同じ(cart, product)が既にあればErrDuplicate
	Create(ctx context.Context, item *model.CartItem) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64, subtotal decimal.Decimal) error
	// 現在の数量にaddQtyを足し、subtotalをunitPriceで再計算した行を返す
	IncrementQuantity(ctx context.Context, cartItemID int64, addQty int64, unitPrice decimal.Decimal) (model.CartItem, error)
	DeleteByID(ctx context.Context, cartItemID int64) error
}
