package engine

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/strategy-lab/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/strategy-lab/pkg/errors"
)

// defaultPeriodsPerYear annualizes Sharpe for daily bars.
const defaultPeriodsPerYear = 252

type BacktestEngineV1Config struct {
	InitialCapital float64               `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting capital for the backtest,minimum=0"`
	Broker         commission_fee.Broker `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The commission model applied to every fill"`
	CommissionRate float64               `yaml:"commission_rate" json:"commission_rate" validate:"gte=0" jsonschema:"title=Commission Rate,description=Per-leg commission as a fraction of notional (fixed_rate broker only),minimum=0"`
	PeriodsPerYear int                   `yaml:"periods_per_year" json:"periods_per_year" validate:"gt=0" jsonschema:"title=Periods Per Year,description=Bars per year used to annualize the Sharpe ratio,minimum=1"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config,
// applying defaults for omitted fields.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawConfig struct {
		InitialCapital float64               `yaml:"initial_capital"`
		Broker         commission_fee.Broker `yaml:"broker"`
		CommissionRate float64               `yaml:"commission_rate"`
		PeriodsPerYear *int                  `yaml:"periods_per_year"`
	}

	var raw rawConfig
	if err := unmarshal(&raw); err != nil {
		return err
	}

	c.InitialCapital = raw.InitialCapital
	c.Broker = raw.Broker
	c.CommissionRate = raw.CommissionRate
	c.PeriodsPerYear = defaultPeriodsPerYear

	if c.Broker == "" {
		c.Broker = commission_fee.BrokerFixedRate
	}

	if raw.PeriodsPerYear != nil {
		c.PeriodsPerYear = *raw.PeriodsPerYear
	}

	return nil
}

// Validate checks the configuration before a run starts.
func (c *BacktestEngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid engine configuration", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a configuration suitable for tests.
func TestConfig(initialCapital float64, broker commission_fee.Broker, rate float64) BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital: initialCapital,
		Broker:         broker,
		CommissionRate: rate,
		PeriodsPerYear: defaultPeriodsPerYear,
	}
}

// EmptyConfig returns a BacktestEngineV1Config with default values.
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital: 0,
		Broker:         commission_fee.BrokerFixedRate,
		CommissionRate: 0,
		PeriodsPerYear: defaultPeriodsPerYear,
	}
}
