package usecase

import (
	"context"
	"errors"
	"log/slog"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

// カート操作。ここでの在庫チェックは目安で、確定はチェックアウト時に行う。
type CartUsecase struct {
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	products  repo.ProductRepository
	log       *slog.Logger
}

// DI
func NewCartUsecase(carts repo.CartRepository, cartItems repo.CartItemRepository, products repo.ProductRepository, log *slog.Logger) *CartUsecase {
	return &CartUsecase{carts: carts, cartItems: cartItems, products: products, log: log}
}

type ProductSummary struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Stock       int64           `json:"stock"`
}

type CartItemOutput struct {
	CartItemID int64           `json:"cart_item_id"`
	Product    ProductSummary  `json:"product"`
	Quantity   int64           `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type CartOutput struct {
	Items []CartItemOutput `json:"items"`
	// 現在価格での合計。チェックアウトで申告する値の目安。
	Total decimal.Decimal `json:"total"`
}

type AddCartItemInput struct {
	ProductID int64
	Quantity  int64
}

func summarize(p model.Product) ProductSummary {
	return ProductSummary{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
	}
}

func toCartItemOutput(it model.CartItem, p model.Product) CartItemOutput {
	return CartItemOutput{
		CartItemID: it.ID,
		Product:    summarize(p),
		Quantity:   it.Quantity,
		Subtotal:   it.Subtotal,
	}
}

func (u *CartUsecase) AddItem(ctx context.Context, actor ActingCustomer, in AddCartItemInput) (CartItemOutput, error) {
	if err := actor.requireCustomer(); err != nil {
		return CartItemOutput{}, err
	}
	if in.Quantity <= 0 {
		return CartItemOutput{}, errInvalidInput("quantity must be greater than 0")
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return CartItemOutput{}, failWith(ctx, u.log, "find product", "product not found", err)
	}

	//自分の商品は買えない
	if actor.IsSeller() && p.SellerID == actor.SellerID {
		return CartItemOutput{}, errForbidden("cannot purchase your own product")
	}

	//既にカートにある数量
	var existing *model.CartItem
	cart, err := u.carts.FindByCustomerID(ctx, actor.CustomerID)
	switch {
	case err == nil:
		it, findErr := u.cartItems.FindByCartAndProduct(ctx, cart.ID, p.ID)
		if findErr == nil {
			existing = &it
		} else if !errors.Is(findErr, repo.ErrNotFound) {
			return CartItemOutput{}, failWith(ctx, u.log, "find cart item", "", findErr)
		}
	case !errors.Is(err, repo.ErrNotFound):
		return CartItemOutput{}, failWith(ctx, u.log, "find cart", "", err)
	}

	var inCart int64
	if existing != nil {
		inCart = existing.Quantity
	}
	if p.Stock < inCart+in.Quantity {
		return CartItemOutput{}, errInsufficientStock(map[string]any{
			"product_id": p.ID,
			"available":  p.Stock,
			"in_cart":    inCart,
		})
	}

	if existing != nil {
		return u.increment(ctx, *existing, p, in.Quantity)
	}

	//カートは最初の追加時に作る
	cart, err = u.carts.GetOrCreateByCustomerID(ctx, actor.CustomerID)
	if err != nil {
		return CartItemOutput{}, failWith(ctx, u.log, "create cart", "", err)
	}
	item := model.CartItem{
		CartID:    cart.ID,
		ProductID: p.ID,
		Quantity:  in.Quantity,
		Subtotal:  LineSubtotal(p.Price, in.Quantity),
	}
	err = u.cartItems.Create(ctx, &item)
	if errors.Is(err, repo.ErrDuplicate) {
		//同じ商品の追加が並行して先に入った。その行に足す。
		it, findErr := u.cartItems.FindByCartAndProduct(ctx, cart.ID, p.ID)
		if findErr != nil {
			return CartItemOutput{}, failWith(ctx, u.log, "find cart item", "", findErr)
		}
		if p.Stock < it.Quantity+in.Quantity {
			return CartItemOutput{}, errInsufficientStock(map[string]any{
				"product_id": p.ID,
				"available":  p.Stock,
				"in_cart":    it.Quantity,
			})
		}
		return u.increment(ctx, it, p, in.Quantity)
	}
	if err != nil {
		return CartItemOutput{}, failWith(ctx, u.log, "create cart item", "", err)
	}
	return toCartItemOutput(item, p), nil
}

// 数量の加算はDB側で行い、読んでから書くまでの間の更新を落とさない
func (u *CartUsecase) increment(ctx context.Context, it model.CartItem, p model.Product, add int64) (CartItemOutput, error) {
	updated, err := u.cartItems.IncrementQuantity(ctx, it.ID, add, p.Price)
	if err != nil {
		return CartItemOutput{}, failWith(ctx, u.log, "update cart item", "cart item not found", err)
	}
	return toCartItemOutput(updated, p), nil
}

// カートが無ければ空。削除済み商品の明細はそのまま返さない。
func (u *CartUsecase) GetItems(ctx context.Context, actor ActingCustomer) (CartOutput, error) {
	if err := actor.requireCustomer(); err != nil {
		return CartOutput{}, err
	}
	empty := CartOutput{Items: []CartItemOutput{}, Total: decimal.Zero}

	cart, err := u.carts.FindByCustomerID(ctx, actor.CustomerID)
	if errors.Is(err, repo.ErrNotFound) {
		return empty, nil
	}
	if err != nil {
		return CartOutput{}, failWith(ctx, u.log, "find cart", "", err)
	}

	items, err := u.cartItems.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, failWith(ctx, u.log, "list cart items", "", err)
	}
	if len(items) == 0 {
		return empty, nil
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return CartOutput{}, failWith(ctx, u.log, "find products", "", err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := CartOutput{Items: make([]CartItemOutput, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		out.Items = append(out.Items, toCartItemOutput(it, p))
		out.Total = out.Total.Add(LineSubtotal(p.Price, it.Quantity))
	}
	return out, nil
}

// 明細が他人のカートのものならForbidden
func (u *CartUsecase) findOwnedItem(ctx context.Context, actor ActingCustomer, cartItemID int64) (model.CartItem, error) {
	if err := actor.requireCustomer(); err != nil {
		return model.CartItem{}, err
	}
	if cartItemID <= 0 {
		return model.CartItem{}, errInvalidInput("invalid cart item id")
	}

	item, err := u.cartItems.FindByID(ctx, cartItemID)
	if err != nil {
		return model.CartItem{}, failWith(ctx, u.log, "find cart item", "cart item not found", err)
	}
	cart, err := u.carts.FindByID(ctx, item.CartID)
	if err != nil {
		return model.CartItem{}, failWith(ctx, u.log, "find cart", "cart item not found", err)
	}
	if cart.CustomerID != actor.CustomerID {
		return model.CartItem{}, errForbidden("cart item belongs to another customer")
	}
	return item, nil
}

func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, actor ActingCustomer, cartItemID int64, quantity int64) (CartItemOutput, error) {
	if quantity <= 0 {
		return CartItemOutput{}, errInvalidInput("quantity must be greater than 0")
	}
	item, err := u.findOwnedItem(ctx, actor, cartItemID)
	if err != nil {
		return CartItemOutput{}, err
	}

	p, err := u.products.FindByID(ctx, item.ProductID)
	if err != nil {
		return CartItemOutput{}, failWith(ctx, u.log, "find product", "product not found", err)
	}
	if quantity > p.Stock {
		return CartItemOutput{}, errInsufficientStock(map[string]any{
			"product_id": p.ID,
			"available":  p.Stock,
			"requested":  quantity,
		})
	}

	subtotal := LineSubtotal(p.Price, quantity)
	if err := u.cartItems.UpdateQuantity(ctx, item.ID, quantity, subtotal); err != nil {
		return CartItemOutput{}, failWith(ctx, u.log, "update cart item", "cart item not found", err)
	}
	item.Quantity = quantity
	item.Subtotal = subtotal
	return toCartItemOutput(item, p), nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, actor ActingCustomer, cartItemID int64) error {
	item, err := u.findOwnedItem(ctx, actor, cartItemID)
	if err != nil {
		return err
	}
	if err := u.cartItems.DeleteByID(ctx, item.ID); err != nil {
		return failWith(ctx, u.log, "delete cart item", "cart item not found", err)
	}
	return nil
}

// カートが無ければ何もしない
func (u *CartUsecase) Clear(ctx context.Context, actor ActingCustomer) error {
	if err := actor.requireCustomer(); err != nil {
		return err
	}
	cart, err := u.carts.FindByCustomerID(ctx, actor.CustomerID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return failWith(ctx, u.log, "find cart", "", err)
	}
	if err := u.carts.Delete(ctx, cart.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return failWith(ctx, u.log, "clear cart", "", err)
	}
	return nil
}
