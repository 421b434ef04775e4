package indicator

import (
	"math"

	"github.com/rxtech-lab/strategy-lab/internal/types"
	"github.com/rxtech-lab/strategy-lab/pkg/errors"
)

// Default parameters applied when a spec omits them, matching common
// charting conventions.
const (
	defaultMAPeriod        = 20
	defaultRSIPeriod       = 14
	defaultMACDFast        = 12
	defaultMACDSlow        = 26
	defaultMACDSignal      = 9
	defaultBollingerPeriod = 20
	defaultBollingerStdDev = 2.0
	defaultATRPeriod       = 14
	defaultStochPeriod     = 14
	defaultStochSmoothK    = 3
	defaultStochSmoothD    = 3
)

// periodParam extracts an integral, positive period parameter, applying the
// given default when the parameter is absent.
func periodParam(spec types.IndicatorSpec, name string, fallback int) (int, error) {
	raw, ok := spec.Params[name]
	if !ok {
		return fallback, nil
	}

	period := int(raw)
	if float64(period) != raw || period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod,
			"indicator %s: parameter %q must be a positive integer, got %g", spec.Key(), name, raw)
	}

	return period, nil
}

// floatParam extracts a positive float parameter, applying the given default
// when the parameter is absent.
func floatParam(spec types.IndicatorSpec, name string, fallback float64) (float64, error) {
	raw, ok := spec.Params[name]
	if !ok {
		return fallback, nil
	}

	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter,
			"indicator %s: parameter %q must be positive and finite, got %g", spec.Key(), name, raw)
	}

	return raw, nil
}

// Compute calculates the series for a single indicator spec over the bar
// series. Multi-output indicators compute all their lines and return the one
// the spec's kind selects.
func Compute(spec types.IndicatorSpec, series types.BarSeries) (Series, error) {
	closes := Series(series.Closes())

	switch spec.Kind {
	case types.IndicatorTypeSMA, types.IndicatorTypeEMA:
		period, err := periodParam(spec, "period", defaultMAPeriod)
		if err != nil {
			return nil, err
		}

		if spec.Kind == types.IndicatorTypeSMA {
			return SMA(closes, period), nil
		}

		return EMA(closes, period), nil

	case types.IndicatorTypeRSI:
		period, err := periodParam(spec, "period", defaultRSIPeriod)
		if err != nil {
			return nil, err
		}

		return RSI(closes, period), nil

	case types.IndicatorTypeMACD, types.IndicatorTypeMACDSignal, types.IndicatorTypeMACDHistogram:
		fast, err := periodParam(spec, "fast", defaultMACDFast)
		if err != nil {
			return nil, err
		}

		slow, err := periodParam(spec, "slow", defaultMACDSlow)
		if err != nil {
			return nil, err
		}

		signal, err := periodParam(spec, "signal", defaultMACDSignal)
		if err != nil {
			return nil, err
		}

		line, signalLine, histogram := MACD(closes, fast, slow, signal)

		switch spec.Kind {
		case types.IndicatorTypeMACDSignal:
			return signalLine, nil
		case types.IndicatorTypeMACDHistogram:
			return histogram, nil
		default:
			return line, nil
		}

	case types.IndicatorTypeBollingerUpper, types.IndicatorTypeBollingerMiddle, types.IndicatorTypeBollingerLower:
		period, err := periodParam(spec, "period", defaultBollingerPeriod)
		if err != nil {
			return nil, err
		}

		stdDev, err := floatParam(spec, "std_dev", defaultBollingerStdDev)
		if err != nil {
			return nil, err
		}

		upper, middle, lower := BollingerBands(closes, period, stdDev)

		switch spec.Kind {
		case types.IndicatorTypeBollingerUpper:
			return upper, nil
		case types.IndicatorTypeBollingerLower:
			return lower, nil
		default:
			return middle, nil
		}

	case types.IndicatorTypeATR:
		period, err := periodParam(spec, "period", defaultATRPeriod)
		if err != nil {
			return nil, err
		}

		return ATR(Series(series.Highs()), Series(series.Lows()), closes, period), nil

	case types.IndicatorTypeStochasticK, types.IndicatorTypeStochasticD:
		period, err := periodParam(spec, "period", defaultStochPeriod)
		if err != nil {
			return nil, err
		}

		smoothK, err := periodParam(spec, "smooth_k", defaultStochSmoothK)
		if err != nil {
			return nil, err
		}

		smoothD, err := periodParam(spec, "smooth_d", defaultStochSmoothD)
		if err != nil {
			return nil, err
		}

		k, d := Stochastic(Series(series.Highs()), Series(series.Lows()), closes, period, smoothK, smoothD)

		if spec.Kind == types.IndicatorTypeStochasticD {
			return d, nil
		}

		return k, nil

	default:
		return nil, errors.Newf(errors.ErrCodeUnknownIndicator, "unknown indicator kind %q", spec.Kind)
	}
}

// ComputeAll precomputes every unique indicator referenced by the strategy,
// deduplicated across entry and exit rules and across main vs comparison
// references, keyed by the spec's canonical key. Per-bar recomputation is
// avoided entirely: the simulation loop only performs map lookups.
func ComputeAll(strategy types.StrategyDefinition, series types.BarSeries) (map[string]Series, error) {
	computed := make(map[string]Series)

	for _, rule := range strategy.Rules() {
		specs := []types.IndicatorSpec{rule.Indicator}
		if rule.CompareTo.IsSome() {
			specs = append(specs, rule.CompareTo.Unwrap())
		}

		for _, spec := range specs {
			key := spec.Key()
			if _, exists := computed[key]; exists {
				continue
			}

			result, err := Compute(spec, series)
			if err != nil {
				return nil, err
			}

			computed[key] = result
		}
	}

	return computed, nil
}
