// Package mocks generates deterministic bar series for tests and benchmarks.
package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/chaofengh/tradescan/internal/types"
)

// DataGenerator generates realistic bar series for testing and benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how bar series are generated.
type GeneratorConfig struct {
	// StartTime is the first bar's timestamp (start of the first session).
	StartTime time.Time
	// Interval is the duration between bars.
	Interval time.Duration
	// Sessions is the number of trading days to generate.
	Sessions int
	// BarsPerSession is the number of bars in each session.
	BarsPerSession int
	// InitialPrice is the starting price.
	InitialPrice float64
	// Volatility controls per-bar price movement (0.002 = 0.2% per bar).
	Volatility float64
	// Trend is the per-session drift factor (-0.01 to 0.01).
	Trend float64
	// VolumeBase is the average volume per bar.
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0).
	VolumeVariance float64
}

// DefaultConfig returns five sessions of five-minute bars covering a regular
// US cash session, starting at a weekday 14:30 UTC open.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC),
		Interval:       5 * time.Minute,
		Sessions:       5,
		BarsPerSession: 78,
		InitialPrice:   100.0,
		Volatility:     0.002,
		Trend:          0.0,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate creates a bar series following geometric Brownian motion, split
// into sessions one calendar day apart so the default UTC date key groups
// them correctly.
func (g *DataGenerator) Generate(config GeneratorConfig) types.Series {
	series := make(types.Series, 0, config.Sessions*config.BarsPerSession)
	currentPrice := config.InitialPrice

	for day := 0; day < config.Sessions; day++ {
		currentTime := config.StartTime.AddDate(0, 0, day)

		for i := 0; i < config.BarsPerSession; i++ {
			open := currentPrice

			// Box-Muller transform for a normally distributed step
			u1 := g.rng.Float64()
			u2 := g.rng.Float64()
			z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

			priceChange := config.Volatility * z
			drift := config.Trend / float64(config.BarsPerSession)

			closePrice := open * (1 + priceChange + drift)
			if closePrice <= 0 {
				closePrice = open * 0.99 // Prevent negative prices
			}

			highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
			lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

			high := math.Max(open, closePrice) + highExtension

			low := math.Min(open, closePrice) - lowExtension
			if low <= 0 {
				low = math.Min(open, closePrice) * 0.99
			}

			volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance

			volume := config.VolumeBase * volumeVariation
			if volume < 0 {
				volume = config.VolumeBase * 0.1
			}

			series = append(series, types.Bar{
				Time:   currentTime,
				Open:   roundToDecimals(open, 4),
				High:   roundToDecimals(high, 4),
				Low:    roundToDecimals(low, 4),
				Close:  roundToDecimals(closePrice, 4),
				Volume: roundToDecimals(volume, 2),
			})

			currentPrice = closePrice
			currentTime = currentTime.Add(config.Interval)
		}
	}

	return series
}

// GenerateWeek is a convenience function: one trading week of five-minute
// bars with a fixed seed for reproducibility.
func GenerateWeek() types.Series {
	gen := NewDataGenerator(42)

	return gen.Generate(DefaultConfig())
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
