package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/strategy-lab/internal/types"
	"github.com/rxtech-lab/strategy-lab/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

// rampSeries builds a strictly increasing bar series with a one-point band
// around the close.
func rampSeries(n int) types.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(types.BarSeries, n)

	for i := range series {
		close := 100.0 + float64(i)
		series[i] = types.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   close,
			High:   close + 1,
			Low:    close - 1,
			Close:  close,
			Volume: 1000,
		}
	}

	return series
}

func spec(kind types.IndicatorType, params map[string]float64) types.IndicatorSpec {
	return types.IndicatorSpec{Kind: kind, Params: params}
}

func (suite *RegistryTestSuite) TestComputeSMADefaultPeriod() {
	series := rampSeries(25)
	out, err := Compute(spec(types.IndicatorTypeSMA, nil), series)

	suite.NoError(err)
	suite.Len(out, 25)
	suite.True(math.IsNaN(out[18]))
	suite.False(math.IsNaN(out[19]))
}

func (suite *RegistryTestSuite) TestComputeSMAExplicitPeriod() {
	series := rampSeries(10)
	out, err := Compute(spec(types.IndicatorTypeSMA, map[string]float64{"period": 3}), series)

	suite.NoError(err)
	suite.InDelta(101.0, out[2], 1e-12)
}

func (suite *RegistryTestSuite) TestComputeMACDSelectsLine() {
	series := rampSeries(40)
	params := map[string]float64{"fast": 12, "slow": 26, "signal": 9}

	line, err := Compute(spec(types.IndicatorTypeMACD, params), series)
	suite.NoError(err)

	signalLine, err := Compute(spec(types.IndicatorTypeMACDSignal, params), series)
	suite.NoError(err)

	histogram, err := Compute(spec(types.IndicatorTypeMACDHistogram, params), series)
	suite.NoError(err)

	for i := range series {
		suite.InDelta(line[i]-signalLine[i], histogram[i], 1e-9)
	}
}

func (suite *RegistryTestSuite) TestComputeBollingerSelectsBand() {
	series := rampSeries(10)
	params := map[string]float64{"period": 5, "std_dev": 2}

	upper, err := Compute(spec(types.IndicatorTypeBollingerUpper, params), series)
	suite.NoError(err)

	middle, err := Compute(spec(types.IndicatorTypeBollingerMiddle, params), series)
	suite.NoError(err)

	lower, err := Compute(spec(types.IndicatorTypeBollingerLower, params), series)
	suite.NoError(err)

	for i := 4; i < len(series); i++ {
		suite.True(upper[i] > middle[i])
		suite.True(lower[i] < middle[i])
	}
}

func (suite *RegistryTestSuite) TestComputeRejectsNonIntegerPeriod() {
	_, err := Compute(spec(types.IndicatorTypeSMA, map[string]float64{"period": 2.5}), rampSeries(5))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *RegistryTestSuite) TestComputeRejectsNonPositivePeriod() {
	for _, bad := range []float64{0, -3} {
		_, err := Compute(spec(types.IndicatorTypeRSI, map[string]float64{"period": bad}), rampSeries(5))
		suite.Error(err)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
	}
}

func (suite *RegistryTestSuite) TestComputeRejectsBadStdDev() {
	_, err := Compute(spec(types.IndicatorTypeBollingerUpper, map[string]float64{"std_dev": -1}), rampSeries(5))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *RegistryTestSuite) TestComputeRejectsUnknownKind() {
	_, err := Compute(spec("wma", nil), rampSeries(5))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownIndicator))
}

func (suite *RegistryTestSuite) TestComputeAllDeduplicates() {
	fast := spec(types.IndicatorTypeSMA, map[string]float64{"period": 5})
	slow := spec(types.IndicatorTypeSMA, map[string]float64{"period": 20})

	strategy := types.StrategyDefinition{
		Name: "crossover",
		EntryRules: []types.Rule{
			{Indicator: fast, Condition: types.ConditionCrossesAbove, CompareTo: optional.Some(slow)},
		},
		ExitRules: []types.Rule{
			{Indicator: fast, Condition: types.ConditionCrossesBelow, CompareTo: optional.Some(slow)},
		},
		PositionSize: 1.0,
	}

	computed, err := ComputeAll(strategy, rampSeries(30))
	suite.NoError(err)
	suite.Len(computed, 2)
	suite.Contains(computed, fast.Key())
	suite.Contains(computed, slow.Key())
}

func (suite *RegistryTestSuite) TestComputeAllPropagatesError() {
	bad := spec(types.IndicatorTypeSMA, map[string]float64{"period": -1})

	strategy := types.StrategyDefinition{
		Name: "broken",
		EntryRules: []types.Rule{
			{Indicator: bad, Condition: types.ConditionGreaterThan, Value: optional.Some(0.0)},
		},
		ExitRules: []types.Rule{
			{Indicator: bad, Condition: types.ConditionLessThan, Value: optional.Some(0.0)},
		},
		PositionSize: 1.0,
	}

	_, err := ComputeAll(strategy, rampSeries(10))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}
