package commission_fee

// FixedRateCommissionFee charges a fixed fraction of the fill notional,
// e.g. a rate of 0.001 charges 0.1% per leg.
type FixedRateCommissionFee struct {
	rate float64
}

// NewFixedRateCommissionFee creates a fixed-rate commission fee.
func NewFixedRateCommissionFee(rate float64) CommissionFee {
	return &FixedRateCommissionFee{rate: rate}
}

// Calculate returns rate * quantity * price.
func (c *FixedRateCommissionFee) Calculate(quantity float64, price float64) float64 {
	return c.rate * quantity * price
}
