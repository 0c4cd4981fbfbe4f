package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type InventoryRepository interface {
	// id昇順で行ロックを取る。見つからない商品は結果に含まれない。
	LockForUpdate(ctx context.Context, productIDs []int64) ([]model.Product, error)

	// stock >= qtyのときだけ減らす。足りなければErrConflict。
	DecreaseStock(ctx context.Context, productID int64, qty int64) error

	// キャンセル時の在庫戻し
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	SetStock(ctx context.Context, productID int64, newStock int64) error
	CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error
}
