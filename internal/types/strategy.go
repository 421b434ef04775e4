package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/strategy-lab/pkg/errors"
)

// IndicatorType identifies one kind of technical indicator series.
// Multi-output indicators (MACD, Bollinger Bands, Stochastic) expose one
// type per output line so that a rule can reference any of them.
type IndicatorType string

const (
	IndicatorTypeSMA             IndicatorType = "sma"
	IndicatorTypeEMA             IndicatorType = "ema"
	IndicatorTypeRSI             IndicatorType = "rsi"
	IndicatorTypeMACD            IndicatorType = "macd"
	IndicatorTypeMACDSignal      IndicatorType = "macd_signal"
	IndicatorTypeMACDHistogram   IndicatorType = "macd_histogram"
	IndicatorTypeBollingerUpper  IndicatorType = "bollinger_upper"
	IndicatorTypeBollingerMiddle IndicatorType = "bollinger_middle"
	IndicatorTypeBollingerLower  IndicatorType = "bollinger_lower"
	IndicatorTypeATR             IndicatorType = "atr"
	IndicatorTypeStochasticK     IndicatorType = "stochastic_k"
	IndicatorTypeStochasticD     IndicatorType = "stochastic_d"
)

// AllIndicatorTypes lists every supported indicator type.
var AllIndicatorTypes = []IndicatorType{
	IndicatorTypeSMA,
	IndicatorTypeEMA,
	IndicatorTypeRSI,
	IndicatorTypeMACD,
	IndicatorTypeMACDSignal,
	IndicatorTypeMACDHistogram,
	IndicatorTypeBollingerUpper,
	IndicatorTypeBollingerMiddle,
	IndicatorTypeBollingerLower,
	IndicatorTypeATR,
	IndicatorTypeStochasticK,
	IndicatorTypeStochasticD,
}

// IsValid reports whether the indicator type is supported.
func (t IndicatorType) IsValid() bool {
	for _, known := range AllIndicatorTypes {
		if t == known {
			return true
		}
	}

	return false
}

// ConditionType identifies the comparison applied by a rule.
type ConditionType string

const (
	ConditionGreaterThan  ConditionType = "greater_than"
	ConditionLessThan     ConditionType = "less_than"
	ConditionCrossesAbove ConditionType = "crosses_above"
	ConditionCrossesBelow ConditionType = "crosses_below"
	ConditionEquals       ConditionType = "equals"
)

// AllConditionTypes lists every supported condition type.
var AllConditionTypes = []ConditionType{
	ConditionGreaterThan,
	ConditionLessThan,
	ConditionCrossesAbove,
	ConditionCrossesBelow,
	ConditionEquals,
}

// IsValid reports whether the condition type is supported.
func (c ConditionType) IsValid() bool {
	for _, known := range AllConditionTypes {
		if c == known {
			return true
		}
	}

	return false
}

// IsCrossover reports whether the condition compares consecutive bars.
func (c ConditionType) IsCrossover() bool {
	return c == ConditionCrossesAbove || c == ConditionCrossesBelow
}

// IndicatorSpec identifies one indicator instance: a kind plus its parameter
// mapping. Distinct specs are distinct series even when mathematically
// related; sma(period=50) and sma(period=200) are independent.
type IndicatorSpec struct {
	Kind   IndicatorType      `yaml:"kind" json:"kind" validate:"required"`
	Params map[string]float64 `yaml:"params" json:"params"`
}

// Key returns a canonical, hashable identity for the spec. Parameters are
// sorted by name so two specs with the same kind and parameters always
// produce the same key.
func (s IndicatorSpec) Key() string {
	if len(s.Params) == 0 {
		return string(s.Kind) + "()"
	}

	names := make([]string, 0, len(s.Params))
	for name := range s.Params {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+strconv.FormatFloat(s.Params[name], 'g', -1, 64))
	}

	return fmt.Sprintf("%s(%s)", s.Kind, strings.Join(parts, ","))
}

// Rule is one declarative condition over an indicator. The comparison target
// is either a numeric constant (Value) or another indicator (CompareTo);
// exactly one of the two must be set.
type Rule struct {
	Indicator IndicatorSpec                  `yaml:"indicator" json:"indicator" validate:"required"`
	Condition ConditionType                  `yaml:"condition" json:"condition" validate:"required"`
	Value     optional.Option[float64]       `yaml:"value" json:"value"`
	CompareTo optional.Option[IndicatorSpec] `yaml:"compare_to" json:"compare_to"`
}

// UnmarshalYAML implements custom unmarshaling for Rule so that optional
// fields round-trip through plain YAML documents.
func (r *Rule) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawRule struct {
		Indicator IndicatorSpec  `yaml:"indicator"`
		Condition ConditionType  `yaml:"condition"`
		Value     *float64       `yaml:"value"`
		CompareTo *IndicatorSpec `yaml:"compare_to"`
	}

	var raw rawRule
	if err := unmarshal(&raw); err != nil {
		return err
	}

	r.Indicator = raw.Indicator
	r.Condition = raw.Condition
	r.Value = optional.None[float64]()
	r.CompareTo = optional.None[IndicatorSpec]()

	if raw.Value != nil {
		r.Value = optional.Some(*raw.Value)
	}

	if raw.CompareTo != nil {
		r.CompareTo = optional.Some(*raw.CompareTo)
	}

	return nil
}

// MarshalYAML implements custom marshaling for Rule.
func (r Rule) MarshalYAML() (interface{}, error) {
	type rawRule struct {
		Indicator IndicatorSpec  `yaml:"indicator"`
		Condition ConditionType  `yaml:"condition"`
		Value     *float64       `yaml:"value,omitempty"`
		CompareTo *IndicatorSpec `yaml:"compare_to,omitempty"`
	}

	raw := rawRule{
		Indicator: r.Indicator,
		Condition: r.Condition,
	}

	if r.Value.IsSome() {
		value := r.Value.Unwrap()
		raw.Value = &value
	}

	if r.CompareTo.IsSome() {
		compareTo := r.CompareTo.Unwrap()
		raw.CompareTo = &compareTo
	}

	return raw, nil
}

// StrategyDefinition is the declarative representation of a strategy: entry
// and exit rule sets (each a conjunction), a position-size fraction in (0,1],
// and optional stop-loss/take-profit fractions. MaxPositions is accepted for
// compatibility but the engine always holds at most one open position.
type StrategyDefinition struct {
	Name         string                   `yaml:"name" json:"name" validate:"required,min=1,max=100"`
	Description  string                   `yaml:"description" json:"description" validate:"max=500"`
	EntryRules   []Rule                   `yaml:"entry_rules" json:"entry_rules" validate:"required,min=1"`
	ExitRules    []Rule                   `yaml:"exit_rules" json:"exit_rules" validate:"required,min=1"`
	PositionSize float64                  `yaml:"position_size" json:"position_size" validate:"gt=0,lte=1"`
	StopLoss     optional.Option[float64] `yaml:"stop_loss" json:"stop_loss"`
	TakeProfit   optional.Option[float64] `yaml:"take_profit" json:"take_profit"`
	MaxPositions int                      `yaml:"max_positions" json:"max_positions" validate:"gte=0"`
}

// UnmarshalYAML implements custom unmarshaling for StrategyDefinition,
// applying defaults for omitted fields.
func (d *StrategyDefinition) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawDefinition struct {
		Name         string   `yaml:"name"`
		Description  string   `yaml:"description"`
		EntryRules   []Rule   `yaml:"entry_rules"`
		ExitRules    []Rule   `yaml:"exit_rules"`
		PositionSize *float64 `yaml:"position_size"`
		StopLoss     *float64 `yaml:"stop_loss"`
		TakeProfit   *float64 `yaml:"take_profit"`
		MaxPositions *int     `yaml:"max_positions"`
	}

	var raw rawDefinition
	if err := unmarshal(&raw); err != nil {
		return err
	}

	d.Name = raw.Name
	d.Description = raw.Description
	d.EntryRules = raw.EntryRules
	d.ExitRules = raw.ExitRules
	d.PositionSize = 1.0
	d.StopLoss = optional.None[float64]()
	d.TakeProfit = optional.None[float64]()
	d.MaxPositions = 1

	if raw.PositionSize != nil {
		d.PositionSize = *raw.PositionSize
	}

	if raw.StopLoss != nil {
		d.StopLoss = optional.Some(*raw.StopLoss)
	}

	if raw.TakeProfit != nil {
		d.TakeProfit = optional.Some(*raw.TakeProfit)
	}

	if raw.MaxPositions != nil {
		d.MaxPositions = *raw.MaxPositions
	}

	return nil
}

// MarshalYAML implements custom marshaling for StrategyDefinition so that
// optional fields serialize as plain scalars (or are omitted) instead of the
// Option internal representation.
func (d StrategyDefinition) MarshalYAML() (interface{}, error) {
	type rawDefinition struct {
		Name         string   `yaml:"name"`
		Description  string   `yaml:"description,omitempty"`
		EntryRules   []Rule   `yaml:"entry_rules"`
		ExitRules    []Rule   `yaml:"exit_rules"`
		PositionSize float64  `yaml:"position_size"`
		StopLoss     *float64 `yaml:"stop_loss,omitempty"`
		TakeProfit   *float64 `yaml:"take_profit,omitempty"`
		MaxPositions int      `yaml:"max_positions"`
	}

	raw := rawDefinition{
		Name:         d.Name,
		Description:  d.Description,
		EntryRules:   d.EntryRules,
		ExitRules:    d.ExitRules,
		PositionSize: d.PositionSize,
		MaxPositions: d.MaxPositions,
	}

	if d.StopLoss.IsSome() {
		stopLoss := d.StopLoss.Unwrap()
		raw.StopLoss = &stopLoss
	}

	if d.TakeProfit.IsSome() {
		takeProfit := d.TakeProfit.Unwrap()
		raw.TakeProfit = &takeProfit
	}

	return raw, nil
}

// Rules returns all entry and exit rules in declaration order.
func (d *StrategyDefinition) Rules() []Rule {
	rules := make([]Rule, 0, len(d.EntryRules)+len(d.ExitRules))
	rules = append(rules, d.EntryRules...)
	rules = append(rules, d.ExitRules...)

	return rules
}

// Validate checks the structural and semantic invariants of the definition.
// Violations are fatal and reported before any simulation starts.
func (d *StrategyDefinition) Validate() error {
	validate := validator.New()
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidStrategy, "invalid strategy definition", err)
	}

	if len(d.EntryRules) == 0 {
		return errors.New(errors.ErrCodeEmptyRuleSet, "entry rule set is empty")
	}

	if len(d.ExitRules) == 0 {
		return errors.New(errors.ErrCodeEmptyRuleSet, "exit rule set is empty")
	}

	for i, rule := range d.Rules() {
		if !rule.Indicator.Kind.IsValid() {
			return errors.Newf(errors.ErrCodeUnknownIndicator, "rule %d references unknown indicator kind %q", i, rule.Indicator.Kind)
		}

		if !rule.Condition.IsValid() {
			return errors.Newf(errors.ErrCodeUnknownCondition, "rule %d uses unknown condition %q", i, rule.Condition)
		}

		if rule.Value.IsNone() && rule.CompareTo.IsNone() {
			return errors.Newf(errors.ErrCodeMissingCompareTarget, "rule %d has no comparison target", i)
		}

		if rule.Value.IsSome() && rule.CompareTo.IsSome() {
			return errors.Newf(errors.ErrCodeMissingCompareTarget, "rule %d has both a constant and an indicator target", i)
		}

		if rule.CompareTo.IsSome() && !rule.CompareTo.Unwrap().Kind.IsValid() {
			return errors.Newf(errors.ErrCodeUnknownIndicator, "rule %d compares against unknown indicator kind %q", i, rule.CompareTo.Unwrap().Kind)
		}
	}

	if d.StopLoss.IsSome() {
		stopLoss := d.StopLoss.Unwrap()
		if stopLoss <= 0 || stopLoss >= 1 {
			return errors.Newf(errors.ErrCodeInvalidRiskFraction, "stop_loss must be in (0,1), got %g", stopLoss)
		}
	}

	if d.TakeProfit.IsSome() {
		takeProfit := d.TakeProfit.Unwrap()
		if takeProfit <= 0 {
			return errors.Newf(errors.ErrCodeInvalidRiskFraction, "take_profit must be positive, got %g", takeProfit)
		}
	}

	return nil
}
