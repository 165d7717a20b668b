package pricing

import "github.com/shopspring/decimal"

// DiscountPolicy computes the order-level discount from the subtotal.
type DiscountPolicy interface {
	Discount(subTotal decimal.Decimal) decimal.Decimal
}

// TaxPolicy computes the order-level tax from the subtotal and the discount
// already applied to it.
type TaxPolicy interface {
	Tax(subTotal, discount decimal.Decimal) decimal.Decimal
}

// ZeroDiscount applies no discount.
type ZeroDiscount struct{}

func (ZeroDiscount) Discount(decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// ZeroTax applies no tax.
type ZeroTax struct{}

func (ZeroTax) Tax(decimal.Decimal, decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// RateDiscount applies a flat percentage of the subtotal, rounded to two
// decimal places.
type RateDiscount struct {
	Rate decimal.Decimal
}

func (p RateDiscount) Discount(subTotal decimal.Decimal) decimal.Decimal {
	return subTotal.Mul(p.Rate).Round(2)
}

// RateTax applies a flat percentage of the discounted subtotal, rounded to
// two decimal places.
type RateTax struct {
	Rate decimal.Decimal
}

func (p RateTax) Tax(subTotal, discount decimal.Decimal) decimal.Decimal {
	return subTotal.Sub(discount).Mul(p.Rate).Round(2)
}
