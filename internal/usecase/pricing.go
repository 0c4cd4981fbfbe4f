package usecase

import (
	"marketplace/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 申告された合計とサーバー計算の差の許容幅（両端含む）
var TotalTolerance = decimal.New(1, -2)

type PricedLine struct {
	CartItemID int64
	Product    model.Product
	Quantity   int64
	Subtotal   decimal.Decimal
}

type PriceQuote struct {
	Lines []PricedLine
	Total decimal.Decimal
}

func LineSubtotal(price decimal.Decimal, qty int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(qty))
}

// 現在価格で合計を出す。商品が無い明細があればNotFound。
func ComputeCartTotal(items []model.CartItem, products map[int64]model.Product) (PriceQuote, error) {
	quote := PriceQuote{Lines: make([]PricedLine, 0, len(items)), Total: decimal.Zero}

	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return PriceQuote{}, productNotFound(it.ProductID)
		}
		sub := LineSubtotal(p.Price, it.Quantity)
		quote.Lines = append(quote.Lines, PricedLine{
			CartItemID: it.ID,
			Product:    p,
			Quantity:   it.Quantity,
			Subtotal:   sub,
		})
		quote.Total = quote.Total.Add(sub)
	}
	return quote, nil
}

// |computed - declared| <= 0.01 なら通す
func VerifyDeclaredTotal(computed, declared decimal.Decimal) error {
	if computed.Sub(declared).Abs().GreaterThan(TotalTolerance) {
		return errTotalMismatch(computed, declared)
	}
	return nil
}
