package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/strategy-lab/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/strategy-lab/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/strategy-lab/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/strategy-lab/internal/logger"
	"github.com/rxtech-lab/strategy-lab/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// runAction loads the bar series and strategy, runs the backtest and writes
// the result file.
func runAction(ctx context.Context, cmd *cli.Command) error {
	dataPath := cmd.String("data")
	strategyPath := cmd.String("strategy")
	configPath := cmd.String("config")
	outputPath := cmd.String("output")

	configContent, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read engine config: %w", err)
	}

	strategyContent, err := os.ReadFile(strategyPath)
	if err != nil {
		return fmt.Errorf("failed to read strategy: %w", err)
	}

	var strategy types.StrategyDefinition
	if err := yaml.Unmarshal(strategyContent, &strategy); err != nil {
		return fmt.Errorf("failed to parse strategy: %w", err)
	}

	zapLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLogger.Sync()

	source, err := datasource.NewDataSource("", zapLogger)
	if err != nil {
		return fmt.Errorf("failed to create data source: %w", err)
	}
	defer source.Close()

	if err := source.Initialize(dataPath); err != nil {
		return fmt.Errorf("failed to initialize data source: %w", err)
	}

	series, err := source.LoadSeries(optional.None[time.Time](), optional.None[time.Time]())
	if err != nil {
		return fmt.Errorf("failed to load bar series: %w", err)
	}

	backtester := enginev1.NewBacktestEngineV1()
	if err := backtester.Initialize(string(configContent)); err != nil {
		return fmt.Errorf("failed to initialize backtest engine: %w", err)
	}

	bar := progressbar.Default(int64(len(series)), "backtesting")
	callback := engine.OnProcessDataCallback(func(current int, total int) error {
		return bar.Set(current)
	})

	result, err := backtester.Run(series, strategy, optional.Some(callback))
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	if err := types.WriteBacktestResult(outputPath, result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	zapLogger.Info("Backtest complete",
		zap.Int("trades", result.Metrics.TotalTrades),
		zap.Float64("final_value", result.Metrics.FinalValue),
		zap.String("output", outputPath),
	)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run a declarative strategy against a historical bar series",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the bar data file (CSV or parquet)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Path to the strategy definition YAML",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the engine configuration YAML",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Path for the result YAML",
				Value:   "result.yaml",
			},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
