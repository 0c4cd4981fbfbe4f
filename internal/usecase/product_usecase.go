package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	products repo.ProductRepository
	tx       repo.TransactionManager
	log      *slog.Logger
}

// DI
func NewProductUsecase(products repo.ProductRepository, tx repo.TransactionManager, log *slog.Logger) *ProductUsecase {
	return &ProductUsecase{products: products, tx: tx, log: log}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page  int
	Limit int
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, errInvalidInput("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, errInvalidInput("invalid limit")
	}

	items, total, err := u.products.ListPublic(ctx, in.Page, in.Limit)
	if err != nil {
		return ProductListOutput{}, failWith(ctx, u.log, "list products", "", err)
	}
	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, errInvalidInput("invalid product id")
	}
	p, err := u.products.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, failWith(ctx, u.log, "get product", "product not found", err)
	}
	return p, nil
}

// 出品者用。更新時Stockは使わない（UpdateStock経由）。
type ProductInput struct {
	Name        string
	Description string
	Category    string
	ImageURL    string
	Price       decimal.Decimal
	Stock       int64
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errInvalidInput("name required")
	}
	if in.Price.IsNegative() {
		return errInvalidInput("price must be >= 0")
	}
	if in.Price.Exponent() < -2 {
		return errInvalidInput("price must have at most 2 decimal places")
	}
	if in.Stock < 0 {
		return errInvalidInput("stock must be >= 0")
	}
	return nil
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, actor ActingCustomer, in ProductInput) (model.Product, error) {
	if err := actor.requireSeller(); err != nil {
		return model.Product{}, err
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		SellerID:    actor.SellerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Price:       in.Price,
		Stock:       in.Stock,
	}
	if err := u.products.Create(ctx, &p); err != nil {
		return model.Product{}, failWith(ctx, u.log, "create product", "", err)
	}
	return p, nil
}

// 自分の商品でなければForbidden
func (u *ProductUsecase) findOwned(ctx context.Context, actor ActingCustomer, productID int64) (model.Product, error) {
	if err := actor.requireSeller(); err != nil {
		return model.Product{}, err
	}
	if productID <= 0 {
		return model.Product{}, errInvalidInput("invalid product id")
	}
	p, err := u.products.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, failWith(ctx, u.log, "find product", "product not found", err)
	}
	if p.SellerID != actor.SellerID {
		return model.Product{}, errForbidden("not your product")
	}
	return p, nil
}

func (u *ProductUsecase) UpdateProduct(ctx context.Context, actor ActingCustomer, productID int64, in ProductInput) (model.Product, error) {
	in.Stock = 0
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}
	p, err := u.findOwned(ctx, actor, productID)
	if err != nil {
		return model.Product{}, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Category = strings.TrimSpace(in.Category)
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	p.Price = in.Price
	if err := u.products.Update(ctx, &p); err != nil {
		return model.Product{}, failWith(ctx, u.log, "update product", "product not found", err)
	}
	return p, nil
}

// 論理削除。既存の注文明細はスナップショットなので影響しない。
func (u *ProductUsecase) DeleteProduct(ctx context.Context, actor ActingCustomer, productID int64) error {
	if _, err := u.findOwned(ctx, actor, productID); err != nil {
		return err
	}
	if err := u.products.SoftDelete(ctx, productID); err != nil {
		return failWith(ctx, u.log, "delete product", "product not found", err)
	}
	return nil
}

func (u *ProductUsecase) ListMyProducts(ctx context.Context, actor ActingCustomer) ([]model.Product, error) {
	if err := actor.requireSeller(); err != nil {
		return nil, err
	}
	items, err := u.products.ListBySellerID(ctx, actor.SellerID)
	if err != nil {
		return nil, failWith(ctx, u.log, "list seller products", "", err)
	}
	return items, nil
}

// 在庫を上書きし、調整履歴と監査ログを同じトランザクションで残す
func (u *ProductUsecase) UpdateStock(ctx context.Context, actor ActingCustomer, productID int64, newStock int64, reason string) (model.Product, error) {
	if err := actor.requireSeller(); err != nil {
		return model.Product{}, err
	}
	if productID <= 0 {
		return model.Product{}, errInvalidInput("invalid product id")
	}
	if newStock < 0 {
		return model.Product{}, errInvalidInput("stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.Product{}, errInvalidInput("reason required")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		locked, err := r.Inventory().LockForUpdate(ctx, []int64{productID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return errNotFound("product not found")
		}
		p := locked[0]
		if p.SellerID != actor.SellerID {
			return errForbidden("not your product")
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			return err
		}
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			ActorUserID: actor.UserID,
			Delta:       newStock - p.Stock,
			Reason:      reason,
		}); err != nil {
			return err
		}

		//「誰が」「何を」「どの対象に」「どう変えたか」を残す
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, p.Stock),
			AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
			CreatedAt:    nowUTC(),
		}); err != nil {
			return err
		}

		p.Stock = newStock
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, failWith(ctx, u.log, "update stock", "product not found", err)
	}
	return out, nil
}
