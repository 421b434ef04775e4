package commission_fee

// CommissionFee calculates the commission for one fill, in account currency.
type CommissionFee interface {
	// Calculate returns the fee for filling the given quantity at the given price.
	Calculate(quantity float64, price float64) float64
}

type Broker string

const (
	BrokerZero              Broker = "zero_commission"
	BrokerFixedRate         Broker = "fixed_rate"
	BrokerInteractiveBroker Broker = "interactive_broker"
)

var AllBrokers = []any{
	BrokerZero,
	BrokerFixedRate,
	BrokerInteractiveBroker,
}

// GetCommissionFeeHandler returns the commission model for the given broker.
// The rate parameter only applies to the fixed-rate broker.
func GetCommissionFeeHandler(broker Broker, rate float64) CommissionFee {
	switch broker {
	case BrokerFixedRate:
		return NewFixedRateCommissionFee(rate)
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
