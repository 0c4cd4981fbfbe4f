package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderPlacedLine struct {
	ProductID int64           `json:"product_id"`
	SellerID  int64           `json:"seller_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// コミット後に送る。受け手は冪等に扱うこと(EventIDで重複排除)。
type OrderPlacedEvent struct {
	EventID       string            `json:"event_id"`
	OrderID       int64             `json:"order_id"`
	CustomerID    int64             `json:"customer_id"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	BillingStatus BillingStatus     `json:"billing_status"`
	Items         []OrderPlacedLine `json:"items"`
	Timestamp     time.Time         `json:"timestamp"`
}
