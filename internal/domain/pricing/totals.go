// Package pricing は注文金額（小計・送料・税・合計）の計算だけを持つ。
// DBにもHTTPにも依存しない。
package pricing

import "github.com/shopspring/decimal"

var (
	// この金額以上で送料無料
	FreeShippingThreshold = decimal.NewFromInt(75)
	// 一律送料
	FlatShippingFee = decimal.RequireFromString("9.99")
	// 税率 8%
	TaxRate = decimal.RequireFromString("0.08")
)

// 計算の入力（数量と単価）
type Line struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Calculate は明細から金額を出す。注文作成時も表示時も必ずこれを通す。
func Calculate(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.Quantity, l.UnitPrice))
	}

	shipping := FlatShippingFee
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(TaxRate).Round(2)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// 1明細の金額
func LineTotal(qty int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(qty))
}

// 決済ウィジェットに渡す最小通貨単位（セント等）
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
