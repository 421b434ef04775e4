package types

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/strategy-lab/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func smaSpec(period float64) IndicatorSpec {
	return IndicatorSpec{
		Kind:   IndicatorTypeSMA,
		Params: map[string]float64{"period": period},
	}
}

func validDefinition() StrategyDefinition {
	return StrategyDefinition{
		Name: "sma crossover",
		EntryRules: []Rule{
			{
				Indicator: smaSpec(5),
				Condition: ConditionCrossesAbove,
				CompareTo: optional.Some(smaSpec(20)),
			},
		},
		ExitRules: []Rule{
			{
				Indicator: smaSpec(5),
				Condition: ConditionCrossesBelow,
				CompareTo: optional.Some(smaSpec(20)),
			},
		},
		PositionSize: 1.0,
		MaxPositions: 1,
	}
}

func (suite *StrategyTestSuite) TestSpecKeyCanonical() {
	a := IndicatorSpec{Kind: IndicatorTypeMACD, Params: map[string]float64{"slow": 26, "fast": 12, "signal": 9}}
	b := IndicatorSpec{Kind: IndicatorTypeMACD, Params: map[string]float64{"fast": 12, "signal": 9, "slow": 26}}

	suite.Equal(a.Key(), b.Key())
	suite.Equal("macd(fast=12,signal=9,slow=26)", a.Key())
}

func (suite *StrategyTestSuite) TestSpecKeyDistinguishesParams() {
	suite.NotEqual(smaSpec(50).Key(), smaSpec(200).Key())
}

func (suite *StrategyTestSuite) TestSpecKeyNoParams() {
	spec := IndicatorSpec{Kind: IndicatorTypeMACD}
	suite.Equal("macd()", spec.Key())
}

func (suite *StrategyTestSuite) TestValidateOK() {
	definition := validDefinition()
	suite.NoError(definition.Validate())
}

func (suite *StrategyTestSuite) TestValidateEmptyRules() {
	definition := validDefinition()
	definition.ExitRules = nil

	err := definition.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidStrategy))
}

func (suite *StrategyTestSuite) TestValidateUnknownIndicator() {
	definition := validDefinition()
	definition.EntryRules[0].Indicator.Kind = "wma"

	err := definition.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownIndicator))
}

func (suite *StrategyTestSuite) TestValidateUnknownCondition() {
	definition := validDefinition()
	definition.EntryRules[0].Condition = "diverges"

	err := definition.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownCondition))
}

func (suite *StrategyTestSuite) TestValidateMissingTarget() {
	definition := validDefinition()
	definition.EntryRules[0].CompareTo = optional.None[IndicatorSpec]()

	err := definition.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingCompareTarget))
}

func (suite *StrategyTestSuite) TestValidateBothTargets() {
	definition := validDefinition()
	definition.EntryRules[0].Value = optional.Some(100.0)

	err := definition.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingCompareTarget))
}

func (suite *StrategyTestSuite) TestValidatePositionSize() {
	definition := validDefinition()
	definition.PositionSize = 0

	suite.Error(definition.Validate())

	definition.PositionSize = 1.5
	suite.Error(definition.Validate())
}

func (suite *StrategyTestSuite) TestValidateStopLoss() {
	definition := validDefinition()
	definition.StopLoss = optional.Some(1.5)

	err := definition.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidRiskFraction))
}

func (suite *StrategyTestSuite) TestUnmarshalYAMLDefaults() {
	content := `
name: rsi reversion
entry_rules:
  - indicator: {kind: rsi, params: {period: 14}}
    condition: less_than
    value: 30
exit_rules:
  - indicator: {kind: rsi, params: {period: 14}}
    condition: greater_than
    value: 70
`

	var definition StrategyDefinition
	suite.NoError(yaml.Unmarshal([]byte(content), &definition))

	suite.Equal("rsi reversion", definition.Name)
	suite.Equal(1.0, definition.PositionSize)
	suite.Equal(1, definition.MaxPositions)
	suite.True(definition.StopLoss.IsNone())
	suite.True(definition.TakeProfit.IsNone())
	suite.NoError(definition.Validate())

	rule := definition.EntryRules[0]
	suite.Equal(IndicatorTypeRSI, rule.Indicator.Kind)
	suite.Equal(ConditionLessThan, rule.Condition)
	suite.True(rule.Value.IsSome())
	suite.Equal(30.0, rule.Value.Unwrap())
	suite.True(rule.CompareTo.IsNone())
}

func (suite *StrategyTestSuite) TestUnmarshalYAMLFull() {
	content := `
name: sma crossover
position_size: 0.5
stop_loss: 0.05
take_profit: 0.1
max_positions: 3
entry_rules:
  - indicator: {kind: sma, params: {period: 5}}
    condition: crosses_above
    compare_to: {kind: sma, params: {period: 20}}
exit_rules:
  - indicator: {kind: sma, params: {period: 5}}
    condition: crosses_below
    compare_to: {kind: sma, params: {period: 20}}
`

	var definition StrategyDefinition
	suite.NoError(yaml.Unmarshal([]byte(content), &definition))
	suite.NoError(definition.Validate())

	suite.Equal(0.5, definition.PositionSize)
	suite.Equal(0.05, definition.StopLoss.Unwrap())
	suite.Equal(0.1, definition.TakeProfit.Unwrap())
	suite.Equal(3, definition.MaxPositions)
	suite.Equal(smaSpec(20).Key(), definition.EntryRules[0].CompareTo.Unwrap().Key())
}

func (suite *StrategyTestSuite) TestMarshalRoundTrip() {
	definition := validDefinition()
	definition.StopLoss = optional.Some(0.02)

	data, err := yaml.Marshal(definition)
	suite.NoError(err)

	// Optional fractions must serialize as plain scalars the unmarshaler
	// accepts, never as sequences.
	suite.Contains(string(data), "stop_loss: 0.02")
	suite.NotContains(string(data), "take_profit")

	var decoded StrategyDefinition
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))

	suite.Equal(definition.Name, decoded.Name)
	suite.Require().Len(decoded.EntryRules, 1)
	suite.Equal(definition.EntryRules[0].Indicator.Key(), decoded.EntryRules[0].Indicator.Key())
	suite.Equal(0.02, decoded.StopLoss.Unwrap())
	suite.True(decoded.TakeProfit.IsNone())
	suite.Equal(definition.PositionSize, decoded.PositionSize)
	suite.Equal(definition.MaxPositions, decoded.MaxPositions)
}

func (suite *StrategyTestSuite) TestMarshalRoundTripAllOptionals() {
	definition := validDefinition()
	definition.Description = "fast over slow"
	definition.PositionSize = 0.25
	definition.StopLoss = optional.Some(0.05)
	definition.TakeProfit = optional.Some(0.2)
	definition.MaxPositions = 2

	data, err := yaml.Marshal(definition)
	suite.NoError(err)
	suite.Contains(string(data), "take_profit: 0.2")

	var decoded StrategyDefinition
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.NoError(decoded.Validate())

	suite.Equal("fast over slow", decoded.Description)
	suite.Equal(0.25, decoded.PositionSize)
	suite.Equal(0.05, decoded.StopLoss.Unwrap())
	suite.Equal(0.2, decoded.TakeProfit.Unwrap())
	suite.Equal(2, decoded.MaxPositions)
}
