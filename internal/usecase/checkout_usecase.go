package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var checkoutTracer = otel.Tracer("marketplace/checkout")

// チェックアウトの段階。スパンのイベントとして残す。
type CheckoutState string

const (
	CheckoutValidating    CheckoutState = "validating"
	CheckoutStockVerified CheckoutState = "stock_verified"
	CheckoutMaterializing CheckoutState = "materializing"
	CheckoutCommitted     CheckoutState = "committed"
)

// order.placedの送信先。nilなら送らない。
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error
}

type CheckoutInput struct {
	PaymentMethod   string
	ShippingAddress string
	// nilは未指定
	TotalAmount    *decimal.Decimal
	IdempotencyKey string
}

type CheckoutUsecase struct {
	tx          repo.TransactionManager
	publisher   OrderEventPublisher
	log         *slog.Logger
	maxAttempts int
	metrics     checkoutMetrics
}

// DI
func NewCheckoutUsecase(tx repo.TransactionManager, publisher OrderEventPublisher, log *slog.Logger, maxAttempts int) *CheckoutUsecase {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CheckoutUsecase{
		tx:          tx,
		publisher:   publisher,
		log:         log,
		maxAttempts: maxAttempts,
		metrics:     newCheckoutMetrics(),
	}
}

type validCheckout struct {
	method   model.PaymentMethod
	address  string
	declared decimal.Decimal
	key      string
}

func (in CheckoutInput) validate() (validCheckout, error) {
	method := model.PaymentMethod(strings.ToUpper(strings.TrimSpace(in.PaymentMethod)))
	address := strings.TrimSpace(in.ShippingAddress)

	if method == "" {
		return validCheckout{}, errInvalidInput("payment_method is required")
	}
	if !method.Valid() {
		return validCheckout{}, errInvalidInput("unknown payment_method")
	}
	if address == "" {
		return validCheckout{}, errInvalidInput("shipping_address is required")
	}
	if in.TotalAmount == nil {
		return validCheckout{}, errInvalidInput("total_amount is required")
	}
	if in.TotalAmount.IsNegative() {
		return validCheckout{}, errInvalidInput("total_amount must be >= 0")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return validCheckout{}, errInvalidInput("idempotency key too long")
	}
	return validCheckout{method: method, address: address, declared: *in.TotalAmount, key: key}, nil
}

// カートを注文に変換する。在庫確認から在庫減算・カート削除までは1トランザクション。
// 競合(ErrConflict)はトランザクションごと最大maxAttempts回まで試す。
func (u *CheckoutUsecase) Checkout(ctx context.Context, actor ActingCustomer, in CheckoutInput) (OrderOutput, error) {
	start := time.Now()
	ctx, span := checkoutTracer.Start(ctx, "checkout",
		trace.WithAttributes(attribute.Int64("customer.id", actor.CustomerID)))
	defer span.End()

	out, replayed, err := u.checkout(ctx, actor, in)

	outcome := "committed"
	switch {
	case err != nil:
		outcome = "error"
		if he, ok := AsHTTPError(err); ok {
			outcome = strings.ToLower(string(he.Code))
		}
		span.SetStatus(codes.Error, err.Error())
	case replayed:
		outcome = "replayed"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	u.metrics.attempts.Add(ctx, 1, attrs)
	u.metrics.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		return OrderOutput{}, err
	}
	span.SetAttributes(attribute.Int64("order.id", out.OrderID))

	if !replayed {
		u.publishPlaced(ctx, out)
	}
	return out, nil
}

func (u *CheckoutUsecase) checkout(ctx context.Context, actor ActingCustomer, in CheckoutInput) (OrderOutput, bool, error) {
	if err := actor.requireCustomer(); err != nil {
		return OrderOutput{}, false, err
	}
	v, err := in.validate()
	if err != nil {
		return OrderOutput{}, false, err
	}

	for attempt := 1; ; attempt++ {
		out, replayed, err := u.attempt(ctx, actor.CustomerID, v)
		if err == nil {
			return out, replayed, nil
		}
		if errors.Is(err, repo.ErrConflict) && attempt < u.maxAttempts {
			u.metrics.retries.Add(ctx, 1)
			u.log.WarnContext(ctx, "checkout conflict, retrying",
				slog.Int64("customer_id", actor.CustomerID),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			continue
		}
		if errors.Is(err, repo.ErrConflict) {
			return OrderOutput{}, false, errConflict("checkout conflicted with concurrent orders, please retry")
		}
		return OrderOutput{}, false, failWith(ctx, u.log, "checkout", "not found", err)
	}
}

func (u *CheckoutUsecase) attempt(ctx context.Context, customerID int64, v validCheckout) (OrderOutput, bool, error) {
	span := trace.SpanFromContext(ctx)
	advance := func(s CheckoutState) { span.AddEvent(string(s)) }

	var out OrderOutput
	var replayed bool

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		advance(CheckoutValidating)

		//同じ購入者のチェックアウトはカート行のロックで直列になる
		cart, err := r.Carts().LockByCustomerID(ctx, customerID)
		hasCart := err == nil
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		//同じキーで作成済みなら、その注文を返す
		if v.key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, customerID, v.key)
			if err != nil {
				return err
			}
			if found {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return err
				}
				out = toOrderOutput(existing, items)
				replayed = true
				return nil
			}
		}

		if !hasCart {
			return errEmptyCart()
		}
		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errEmptyCart()
		}

		//価格と在庫はロックした行で見る
		ids := productIDsOf(items)
		locked, err := r.Inventory().LockForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int64]model.Product, len(locked))
		for _, p := range locked {
			byID[p.ID] = p
		}

		quote, err := ComputeCartTotal(items, byID)
		if err != nil {
			return err
		}
		if err := VerifyDeclaredTotal(quote.Total, v.declared); err != nil {
			return err
		}

		for _, line := range quote.Lines {
			if line.Quantity > line.Product.Stock {
				return errInsufficientStock(map[string]any{
					"product_id":   line.Product.ID,
					"product_name": line.Product.Name,
					"available":    line.Product.Stock,
					"requested":    line.Quantity,
				})
			}
		}
		advance(CheckoutStockVerified)

		advance(CheckoutMaterializing)
		order := model.Order{
			CustomerID:      customerID,
			TotalAmount:     quote.Total,
			ShippingAddress: v.address,
			PaymentMethod:   v.method,
			Status:          model.OrderStatusPending,
			BillingStatus:   v.method.InitialBillingStatus(),
		}
		if v.key != "" {
			key := v.key
			order.IdempotencyKey = &key
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			//同じキーの同時リクエスト。やり直せば作成済みの注文が見える。
			if errors.Is(err, repo.ErrDuplicate) && v.key != "" {
				return repo.ErrConflict
			}
			return err
		}

		orderItems := make([]model.OrderItem, 0, len(quote.Lines))
		for _, line := range quote.Lines {
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           line.Product.ID,
				SellerID:            line.Product.SellerID,
				ProductNameSnapshot: line.Product.Name,
				UnitPriceSnapshot:   line.Product.Price,
				Quantity:            line.Quantity,
				Subtotal:            line.Subtotal,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return err
		}

		for _, line := range quote.Lines {
			if err := r.Inventory().DecreaseStock(ctx, line.Product.ID, line.Quantity); err != nil {
				return err
			}
		}

		if err := r.Carts().Delete(ctx, cart.ID); err != nil {
			return err
		}

		out = toOrderOutput(order, orderItems)
		return nil
	})
	if err != nil {
		return OrderOutput{}, false, err
	}
	advance(CheckoutCommitted)
	return out, replayed, nil
}

// 送信失敗は注文に影響させない
func (u *CheckoutUsecase) publishPlaced(ctx context.Context, out OrderOutput) {
	if u.publisher == nil {
		return
	}
	ev := model.OrderPlacedEvent{
		EventID:       uuid.NewString(),
		OrderID:       out.OrderID,
		CustomerID:    out.CustomerID,
		TotalAmount:   out.TotalAmount,
		PaymentMethod: out.PaymentMethod,
		BillingStatus: out.BillingStatus,
		Items:         make([]model.OrderPlacedLine, 0, len(out.Items)),
		Timestamp:     nowUTC(),
	}
	for _, it := range out.Items {
		ev.Items = append(ev.Items, model.OrderPlacedLine{
			ProductID: it.ProductID,
			SellerID:  it.SellerID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	if err := u.publisher.PublishOrderPlaced(ctx, ev); err != nil {
		u.log.ErrorContext(ctx, "failed to publish order.placed",
			slog.Int64("order_id", out.OrderID),
			slog.String("error", err.Error()))
	}
}

// ロック順を揃えるため昇順・重複なし
func productIDsOf(items []model.CartItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
