package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderItemOutput struct {
	OrderItemID int64           `json:"order_item_id"`
	ProductID   int64           `json:"product_id"`
	SellerID    int64           `json:"seller_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	OrderID         int64               `json:"order_id"`
	CustomerID      int64               `json:"customer_id"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	Status          model.OrderStatus   `json:"status"`
	BillingStatus   model.BillingStatus `json:"billing_status"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []OrderItemOutput   `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	out := OrderOutput{
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status,
		BillingStatus:   o.BillingStatus,
		CreatedAt:       o.CreatedAt,
		Items:           make([]OrderItemOutput, 0, len(items)),
	}
	for _, it := range items {
		out.Items = append(out.Items, OrderItemOutput{
			OrderItemID: it.ID,
			ProductID:   it.ProductID,
			SellerID:    it.SellerID,
			ProductName: it.ProductNameSnapshot,
			UnitPrice:   it.UnitPriceSnapshot,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
		})
	}
	return out
}

type OrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	tx         repo.TransactionManager
	log        *slog.Logger
}

// DI
func NewOrderUsecase(orders repo.OrderRepository, orderItems repo.OrderItemRepository, tx repo.TransactionManager, log *slog.Logger) *OrderUsecase {
	return &OrderUsecase{orders: orders, orderItems: orderItems, tx: tx, log: log}
}

type ListOrdersInput struct {
	Page  int
	Limit int
}

func (in ListOrdersInput) validate() error {
	if in.Page < 1 {
		return errInvalidInput("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return errInvalidInput("invalid limit")
	}
	return nil
}

// 新しい順
func (u *OrderUsecase) ListForCustomer(ctx context.Context, actor ActingCustomer, in ListOrdersInput) (OrderListOutput, error) {
	if err := actor.requireCustomer(); err != nil {
		return OrderListOutput{}, err
	}
	if err := in.validate(); err != nil {
		return OrderListOutput{}, err
	}
	orders, total, err := u.orders.ListByCustomerID(ctx, actor.CustomerID, in.Page, in.Limit)
	if err != nil {
		return OrderListOutput{}, failWith(ctx, u.log, "list orders", "", err)
	}
	return u.withItems(ctx, orders, total, in, 0)
}

// 出品者の明細だけを含めて返す
func (u *OrderUsecase) ListForSeller(ctx context.Context, actor ActingCustomer, in ListOrdersInput) (OrderListOutput, error) {
	if err := actor.requireSeller(); err != nil {
		return OrderListOutput{}, err
	}
	if err := in.validate(); err != nil {
		return OrderListOutput{}, err
	}
	orders, total, err := u.orders.ListBySellerID(ctx, actor.SellerID, in.Page, in.Limit)
	if err != nil {
		return OrderListOutput{}, failWith(ctx, u.log, "list seller orders", "", err)
	}
	return u.withItems(ctx, orders, total, in, actor.SellerID)
}

// sellerID>0ならその出品者の明細に絞る
func (u *OrderUsecase) withItems(ctx context.Context, orders []model.Order, total int64, in ListOrdersInput, sellerID int64) (OrderListOutput, error) {
	out := OrderListOutput{Items: make([]OrderOutput, 0, len(orders)), Total: total, Page: in.Page, Limit: in.Limit}
	for _, o := range orders {
		items, err := u.orderItems.ListByOrderID(ctx, o.ID)
		if err != nil {
			return OrderListOutput{}, failWith(ctx, u.log, "list order items", "", err)
		}
		if sellerID > 0 {
			items = itemsOfSeller(items, sellerID)
		}
		out.Items = append(out.Items, toOrderOutput(o, items))
	}
	return out, nil
}

// 他人の注文はNotFound
func (u *OrderUsecase) GetForCustomer(ctx context.Context, actor ActingCustomer, orderID int64) (OrderOutput, error) {
	if err := actor.requireCustomer(); err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, errInvalidInput("invalid order id")
	}
	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, failWith(ctx, u.log, "get order", "order not found", err)
	}
	if o.CustomerID != actor.CustomerID {
		return OrderOutput{}, errNotFound("order not found")
	}
	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, failWith(ctx, u.log, "list order items", "", err)
	}
	return toOrderOutput(o, items), nil
}

// 出品者によるステータス更新。自分の明細を含まない注文はForbidden。
func (u *OrderUsecase) UpdateStatusAsSeller(ctx context.Context, actor ActingCustomer, orderID int64, status string) (OrderOutput, error) {
	if err := actor.requireSeller(); err != nil {
		return OrderOutput{}, err
	}
	next := model.OrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !next.Valid() {
		return OrderOutput{}, errInvalidInput("invalid status")
	}
	return u.transition(ctx, actor, orderID, next, func(o model.Order, items []model.OrderItem) error {
		if len(itemsOfSeller(items, actor.SellerID)) == 0 {
			return errForbidden("order has no items from your store")
		}
		return nil
	}, actor.SellerID)
}

// 購入者によるキャンセル
func (u *OrderUsecase) CancelAsCustomer(ctx context.Context, actor ActingCustomer, orderID int64) (OrderOutput, error) {
	if err := actor.requireCustomer(); err != nil {
		return OrderOutput{}, err
	}
	return u.transition(ctx, actor, orderID, model.OrderStatusCancelled, func(o model.Order, _ []model.OrderItem) error {
		if o.CustomerID != actor.CustomerID {
			return errNotFound("order not found")
		}
		return nil
	}, 0)
}

// 状態遷移表に従って更新する。
// CANCELLEDは全明細の在庫を戻し、DELIVEREDは支払い済みにする。同じstatusへの更新は何もしない。
func (u *OrderUsecase) transition(
	ctx context.Context,
	actor ActingCustomer,
	orderID int64,
	next model.OrderStatus,
	authorize func(o model.Order, items []model.OrderItem) error,
	viewSellerID int64,
) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, errInvalidInput("invalid order id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じ注文への同時更新(二重キャンセルなど)はここで直列化される
		o, err := r.Orders().LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		if err := authorize(o, items); err != nil {
			return err
		}

		view := items
		if viewSellerID > 0 {
			view = itemsOfSeller(items, viewSellerID)
		}

		if o.Status == next {
			out = toOrderOutput(o, view)
			return nil
		}
		if !o.Status.CanTransitionTo(next) {
			return errInvalidInput(fmt.Sprintf("invalid transition from %s to %s", o.Status, next))
		}

		billing := o.BillingStatus
		if next == model.OrderStatusDelivered {
			billing = model.BillingStatusPaid
		}
		if next == model.OrderStatusCancelled {
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, o.Status, next, billing); err != nil {
			return err
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q,"billing_status":%q}`, o.Status, o.BillingStatus),
			AfterJSON:    fmt.Sprintf(`{"status":%q,"billing_status":%q}`, next, billing),
			CreatedAt:    nowUTC(),
		}); err != nil {
			return err
		}

		o.Status = next
		o.BillingStatus = billing
		out = toOrderOutput(o, view)
		return nil
	})
	if err != nil {
		return OrderOutput{}, failWith(ctx, u.log, "update order status", "order not found", err)
	}
	return out, nil
}

func itemsOfSeller(items []model.OrderItem, sellerID int64) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		if it.SellerID == sellerID {
			out = append(out, it)
		}
	}
	return out
}
