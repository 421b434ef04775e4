package engine

import (
	"math"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/strategy-lab/internal/indicator"
	"github.com/rxtech-lab/strategy-lab/internal/types"
	"github.com/rxtech-lab/strategy-lab/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConditionTestSuite struct {
	suite.Suite
}

func TestConditionSuite(t *testing.T) {
	suite.Run(t, new(ConditionTestSuite))
}

var (
	fastSpec = types.IndicatorSpec{Kind: types.IndicatorTypeSMA, Params: map[string]float64{"period": 5}}
	slowSpec = types.IndicatorSpec{Kind: types.IndicatorTypeSMA, Params: map[string]float64{"period": 20}}
)

func (suite *ConditionTestSuite) newEvaluator(fast, slow indicator.Series) *conditionEvaluator {
	series := map[string]indicator.Series{
		fastSpec.Key(): fast,
	}

	if slow != nil {
		series[slowSpec.Key()] = slow
	}

	return newConditionEvaluator(series)
}

func valueRule(condition types.ConditionType, value float64) types.Rule {
	return types.Rule{
		Indicator: fastSpec,
		Condition: condition,
		Value:     optional.Some(value),
	}
}

func indicatorRule(condition types.ConditionType) types.Rule {
	return types.Rule{
		Indicator: fastSpec,
		Condition: condition,
		CompareTo: optional.Some(slowSpec),
	}
}

func (suite *ConditionTestSuite) TestGreaterThan() {
	evaluator := suite.newEvaluator(indicator.Series{10, 20, 30}, nil)

	holds, err := evaluator.evaluateRule(valueRule(types.ConditionGreaterThan, 15), 1)
	suite.NoError(err)
	suite.True(holds)

	holds, err = evaluator.evaluateRule(valueRule(types.ConditionGreaterThan, 25), 1)
	suite.NoError(err)
	suite.False(holds)
}

func (suite *ConditionTestSuite) TestLessThan() {
	evaluator := suite.newEvaluator(indicator.Series{10, 20, 30}, nil)

	holds, err := evaluator.evaluateRule(valueRule(types.ConditionLessThan, 25), 1)
	suite.NoError(err)
	suite.True(holds)
}

func (suite *ConditionTestSuite) TestEqualsEpsilon() {
	evaluator := suite.newEvaluator(indicator.Series{10, 50.0 + 1e-12}, nil)

	holds, err := evaluator.evaluateRule(valueRule(types.ConditionEquals, 50), 1)
	suite.NoError(err)
	suite.True(holds)

	evaluator = suite.newEvaluator(indicator.Series{10, 50.001}, nil)

	holds, err = evaluator.evaluateRule(valueRule(types.ConditionEquals, 50), 1)
	suite.NoError(err)
	suite.False(holds)
}

func (suite *ConditionTestSuite) TestFirstBarNeverHolds() {
	evaluator := suite.newEvaluator(indicator.Series{100, 100}, nil)

	holds, err := evaluator.evaluateRule(valueRule(types.ConditionGreaterThan, 0), 0)
	suite.NoError(err)
	suite.False(holds)
}

func (suite *ConditionTestSuite) TestNaNCurrentNeverHolds() {
	evaluator := suite.newEvaluator(indicator.Series{100, math.NaN()}, nil)

	holds, err := evaluator.evaluateRule(valueRule(types.ConditionGreaterThan, 0), 1)
	suite.NoError(err)
	suite.False(holds)
}

func (suite *ConditionTestSuite) TestCrossoverRequiresPreviousValue() {
	evaluator := suite.newEvaluator(indicator.Series{math.NaN(), 110}, nil)

	holds, err := evaluator.evaluateRule(valueRule(types.ConditionCrossesAbove, 100), 1)
	suite.NoError(err)
	suite.False(holds)
}

func (suite *ConditionTestSuite) TestCrossesAboveConstant() {
	evaluator := suite.newEvaluator(indicator.Series{95, 105, 110}, nil)

	holds, err := evaluator.evaluateRule(valueRule(types.ConditionCrossesAbove, 100), 1)
	suite.NoError(err)
	suite.True(holds)

	// Already above on the previous bar: no new cross.
	holds, err = evaluator.evaluateRule(valueRule(types.ConditionCrossesAbove, 100), 2)
	suite.NoError(err)
	suite.False(holds)
}

func (suite *ConditionTestSuite) TestCrossesAboveFromExactTouch() {
	evaluator := suite.newEvaluator(indicator.Series{100, 105}, nil)

	holds, err := evaluator.evaluateRule(valueRule(types.ConditionCrossesAbove, 100), 1)
	suite.NoError(err)
	suite.True(holds)
}

func (suite *ConditionTestSuite) TestCrossesBelowConstant() {
	evaluator := suite.newEvaluator(indicator.Series{105, 95}, nil)

	holds, err := evaluator.evaluateRule(valueRule(types.ConditionCrossesBelow, 100), 1)
	suite.NoError(err)
	suite.True(holds)
}

func (suite *ConditionTestSuite) TestCrossesMutuallyExclusive() {
	evaluator := suite.newEvaluator(indicator.Series{95, 105}, nil)

	above, err := evaluator.evaluateRule(valueRule(types.ConditionCrossesAbove, 100), 1)
	suite.NoError(err)

	below, err := evaluator.evaluateRule(valueRule(types.ConditionCrossesBelow, 100), 1)
	suite.NoError(err)

	suite.True(above)
	suite.False(below)
}

func (suite *ConditionTestSuite) TestCrossesAboveIndicatorTarget() {
	fast := indicator.Series{10, 12}
	slow := indicator.Series{11, 11}

	evaluator := suite.newEvaluator(fast, slow)

	holds, err := evaluator.evaluateRule(indicatorRule(types.ConditionCrossesAbove), 1)
	suite.NoError(err)
	suite.True(holds)
}

func (suite *ConditionTestSuite) TestIndicatorTargetNaNGates() {
	fast := indicator.Series{10, 12}
	slow := indicator.Series{11, math.NaN()}

	evaluator := suite.newEvaluator(fast, slow)

	holds, err := evaluator.evaluateRule(indicatorRule(types.ConditionGreaterThan), 1)
	suite.NoError(err)
	suite.False(holds)
}

func (suite *ConditionTestSuite) TestEvaluateRulesConjunction() {
	evaluator := suite.newEvaluator(indicator.Series{10, 20}, nil)

	rules := []types.Rule{
		valueRule(types.ConditionGreaterThan, 15),
		valueRule(types.ConditionLessThan, 25),
	}

	holds, err := evaluator.evaluateRules(rules, 1)
	suite.NoError(err)
	suite.True(holds)

	rules[1] = valueRule(types.ConditionLessThan, 5)

	holds, err = evaluator.evaluateRules(rules, 1)
	suite.NoError(err)
	suite.False(holds)
}

func (suite *ConditionTestSuite) TestEvaluateRulesEmptyNeverHolds() {
	evaluator := suite.newEvaluator(indicator.Series{10, 20}, nil)

	holds, err := evaluator.evaluateRules(nil, 1)
	suite.NoError(err)
	suite.False(holds)
}

func (suite *ConditionTestSuite) TestMissingIndicatorIsError() {
	evaluator := newConditionEvaluator(map[string]indicator.Series{})

	_, err := evaluator.evaluateRule(valueRule(types.ConditionGreaterThan, 0), 1)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}
