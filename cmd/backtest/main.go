package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	yamlv2 "gopkg.in/yaml.v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/chaofengh/tradescan/internal/datasource"
	"github.com/chaofengh/tradescan/internal/detector"
	"github.com/chaofengh/tradescan/internal/engine"
	"github.com/chaofengh/tradescan/internal/grid"
	"github.com/chaofengh/tradescan/internal/indicator"
	"github.com/chaofengh/tradescan/internal/logger"
	"github.com/chaofengh/tradescan/internal/types"
	"github.com/chaofengh/tradescan/internal/version"
)

// runStats is the YAML summary written next to the full scenario dump.
type runStats struct {
	RunID        string                `yaml:"run_id"`
	Timestamp    time.Time             `yaml:"timestamp"`
	DataPath     string                `yaml:"data_path"`
	Symbol       string                `yaml:"symbol,omitempty"`
	Bars         int                   `yaml:"bars"`
	Combinations int                   `yaml:"combinations"`
	Touches      int                   `yaml:"touches"`
	UpperHugs    int                   `yaml:"upper_hugs"`
	LowerHugs    int                   `yaml:"lower_hugs"`
	Scenarios    []grid.ScenarioRecord `yaml:"scenarios"`
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	loggerOpts := []logger.Option{}
	if cmd.Bool("verbose") {
		loggerOpts = append(loggerOpts, logger.WithLevel(zapcore.DebugLevel), logger.WithDevelopment())
	}

	zapLogger, err := logger.NewLogger(loggerOpts...)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	source, err := datasource.NewDuckDBSource(zapLogger)
	if err != nil {
		return err
	}
	defer source.Close()

	symbol := optional.None[string]()
	if cmd.IsSet("symbol") {
		symbol = optional.Some(cmd.String("symbol"))
	}

	if err := source.Initialize(cmd.String("data"), symbol); err != nil {
		return err
	}

	start := optional.None[time.Time]()
	if cmd.IsSet("start") {
		start = optional.Some(cmd.Timestamp("start"))
	}

	end := optional.None[time.Time]()
	if cmd.IsSet("end") {
		end = optional.Some(cmd.Timestamp("end"))
	}

	series, err := source.Load(start, end)
	if err != nil {
		return err
	}

	enriched, err := indicator.Enrich(series, indicator.DefaultConfig(), types.UTCDateKey)
	if err != nil {
		return err
	}

	touches := detector.DetectTouches(enriched)

	upperHugs, lowerHugs, err := detector.DetectHugs(enriched, touches, cmd.Float("tolerance"), 2)
	if err != nil {
		return err
	}

	zapLogger.Info("Band events detected",
		zap.Int("touches", len(touches)),
		zap.Int("upper_hugs", len(upperHugs)),
		zap.Int("lower_hugs", len(lowerHugs)),
	)

	configs, err := buildConfigs(cmd)
	if err != nil {
		return err
	}

	bar := progressbar.Default(int64(len(configs)), "backtesting")
	onProgress := optional.Some[grid.OnScenarioCallback](func(done, total int) {
		_ = bar.Set(done)
	})

	runner := grid.NewRunner(zapLogger, types.UTCDateKey, int(cmd.Int("workers")))

	result, err := runner.Run(ctx, enriched, configs, onProgress)
	if err != nil {
		return err
	}

	ranked := grid.Rank(result.Scenarios, int(cmd.Int("top")))

	records := make([]grid.ScenarioRecord, len(ranked))
	for i, s := range ranked {
		records[i] = s.Record()
	}

	outputDir := cmd.String("output")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	if err := writeScenarios(filepath.Join(outputDir, "scenarios.json"), records); err != nil {
		return err
	}

	stats := runStats{
		RunID:        result.RunID,
		Timestamp:    time.Now().UTC(),
		DataPath:     cmd.String("data"),
		Symbol:       cmd.String("symbol"),
		Bars:         len(enriched),
		Combinations: len(configs),
		Touches:      len(touches),
		UpperHugs:    len(upperHugs),
		LowerHugs:    len(lowerHugs),
		Scenarios:    records,
	}

	if err := writeStats(filepath.Join(outputDir, "stats.yaml"), stats); err != nil {
		return err
	}

	zapLogger.Info("Backtest complete",
		zap.String("run_id", result.RunID),
		zap.Int("combinations", len(configs)),
		zap.Int("ranked", len(records)),
		zap.String("output", outputDir),
	)

	return nil
}

// buildConfigs assembles the parameter combinations: either an explicit list
// from a YAML config file, or the default sweep plus the two single-pass
// families.
func buildConfigs(cmd *cli.Command) ([]engine.StrategyConfig, error) {
	if configPath := cmd.String("config"); configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		var configs []engine.StrategyConfig
		if err := yamlv2.Unmarshal(content, &configs); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}

		return configs, nil
	}

	configs, err := grid.DefaultAxes().Enumerate()
	if err != nil {
		return nil, err
	}

	if cmd.Bool("prune") {
		configs = grid.PruneRedundant(configs)
	}

	return append(configs, grid.SinglePassConfigs()...), nil
}

func writeScenarios(path string, records []grid.ScenarioRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenarios to JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenarios to file: %w", err)
	}

	return nil
}

func writeStats(path string, stats runStats) error {
	data, err := yamlv3.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Scan band events and grid-search trading strategies over a bar series",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the CSV or Parquet bar file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Filter the data file to one symbol (requires a symbol column)",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start time in `YYYY-MM-DD` format (or other RFC3339 compatible)",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End time in `YYYY-MM-DD` format (or other RFC3339 compatible)",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Optional YAML file with an explicit list of strategy configs (overrides the default sweep)",
			},
			&cli.FloatFlag{
				Name:  "tolerance",
				Usage: "Hug tolerance as a percent of the band value",
				Value: 1.0,
			},
			&cli.IntFlag{
				Name:    "top",
				Aliases: []string{"n"},
				Usage:   "Number of top-ranked scenarios to keep",
				Value:   20,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Parallel workers for the grid (0 = GOMAXPROCS)",
				Value:   0,
			},
			&cli.BoolFlag{
				Name:  "prune",
				Usage: "Drop redundant combinations from the default sweep",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Results folder",
				Value:   "results",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
