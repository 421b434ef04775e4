package commission_fee

// InteractiveBrokerCommissionFee charges per share with a $1 minimum per fill.
type InteractiveBrokerCommissionFee struct {
}

// NewInteractiveBrokerCommissionFee creates the Interactive Brokers fee model.
func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

func (c *InteractiveBrokerCommissionFee) Calculate(quantity float64, price float64) float64 {
	fee := 0.005 * quantity
	if fee < 1.0 {
		return 1.0
	}

	return fee
}
