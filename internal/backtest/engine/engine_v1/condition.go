package engine

import (
	"math"

	"github.com/rxtech-lab/strategy-lab/internal/indicator"
	"github.com/rxtech-lab/strategy-lab/internal/types"
	"github.com/rxtech-lab/strategy-lab/pkg/errors"
)

// equalsEpsilon is the absolute tolerance used by the equals condition when
// comparing floats.
const equalsEpsilon = 1e-9

// conditionEvaluator answers whether a rule's condition holds at a bar index,
// given the precomputed indicator series. It is a data-driven interpreter:
// no per-bar recomputation, no control-flow exceptions, just map lookups and
// explicit NaN gating.
type conditionEvaluator struct {
	series map[string]indicator.Series
}

func newConditionEvaluator(series map[string]indicator.Series) *conditionEvaluator {
	return &conditionEvaluator{series: series}
}

// lookup resolves a spec to its precomputed series. A miss is a programming
// error (every referenced spec is computed before the loop starts).
func (e *conditionEvaluator) lookup(spec types.IndicatorSpec) (indicator.Series, error) {
	series, ok := e.series[spec.Key()]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s was not precomputed", spec.Key())
	}

	return series, nil
}

// evaluateRules reports whether every rule in the set holds at bar i
// (logical AND, short-circuit). An empty rule set never holds.
func (e *conditionEvaluator) evaluateRules(rules []types.Rule, i int) (bool, error) {
	if len(rules) == 0 {
		return false, nil
	}

	for _, rule := range rules {
		holds, err := e.evaluateRule(rule, i)
		if err != nil {
			return false, err
		}

		if !holds {
			return false, nil
		}
	}

	return true, nil
}

// evaluateRule reports whether a single rule holds at bar i. The strategy
// cannot act before its indicators are ready: a NaN at i, a NaN at i-1 for
// crossover conditions, or i being the first bar all evaluate to false.
func (e *conditionEvaluator) evaluateRule(rule types.Rule, i int) (bool, error) {
	series, err := e.lookup(rule.Indicator)
	if err != nil {
		return false, err
	}

	if i == 0 || math.IsNaN(series[i]) {
		return false, nil
	}

	// Resolve the comparison target at bars i and i-1. For a constant
	// target both are the constant itself.
	var target, prevTarget float64

	if rule.CompareTo.IsSome() {
		targetSeries, err := e.lookup(rule.CompareTo.Unwrap())
		if err != nil {
			return false, err
		}

		if math.IsNaN(targetSeries[i]) {
			return false, nil
		}

		target = targetSeries[i]
		prevTarget = targetSeries[i-1]
	} else {
		target = rule.Value.Unwrap()
		prevTarget = target
	}

	current := series[i]
	previous := series[i-1]

	switch rule.Condition {
	case types.ConditionGreaterThan:
		return current > target, nil
	case types.ConditionLessThan:
		return current < target, nil
	case types.ConditionEquals:
		return math.Abs(current-target) <= equalsEpsilon, nil
	case types.ConditionCrossesAbove:
		if math.IsNaN(previous) || math.IsNaN(prevTarget) {
			return false, nil
		}

		return previous <= prevTarget && current > target, nil
	case types.ConditionCrossesBelow:
		if math.IsNaN(previous) || math.IsNaN(prevTarget) {
			return false, nil
		}

		return previous >= prevTarget && current < target, nil
	default:
		return false, errors.Newf(errors.ErrCodeUnknownCondition, "unknown condition %q", rule.Condition)
	}
}
