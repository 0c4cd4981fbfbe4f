package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type BillingStatus string

const (
	BillingStatusUnpaid BillingStatus = "UNPAID"
	BillingStatusPaid   BillingStatus = "PAID"
)

// 支払い方法はラベルだけ記録する
type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "ONLINE"
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodCOD    PaymentMethod = "COD"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodOnline, PaymentMethodWallet, PaymentMethodCOD:
		return true
	}
	return false
}

// 前払いの方法は注文時点で支払い済み
func (m PaymentMethod) IsPrepaid() bool {
	return m == PaymentMethodOnline || m == PaymentMethodWallet
}

func (m PaymentMethod) InitialBillingStatus() BillingStatus {
	if m.IsPrepaid() {
		return BillingStatusPaid
	}
	return BillingStatusUnpaid
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// 作成後は明細も合計も変わらない。変わるのはstatusとbilling_statusだけ。
type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID      int64           `gorm:"not null;index" json:"customer_id"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(30);not null" json:"payment_method"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	BillingStatus   BillingStatus   `gorm:"type:varchar(20);not null" json:"billing_status"`
	IdempotencyKey  *string         `gorm:"type:varchar(255)" json:"-"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
