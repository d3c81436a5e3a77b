package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction of a trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Trade is one closed round trip. The engine never emits an open trade; a
// position still open at the session's last bar is force-flushed at that
// bar's close.
type Trade struct {
	SessionKey string    `json:"date"`
	Direction  Direction `json:"direction"`
	EntryPrice float64   `json:"entry_price"`
	EntryTime  time.Time `json:"entry_time"`
	ExitPrice  float64   `json:"exit_price"`
	ExitTime   time.Time `json:"exit_time"`
	PnL        float64   `json:"pnl"`
}

// TradeRecord is the JSON-serializable display form of a Trade: ISO-8601
// timestamps and prices rounded to a fixed precision. Rounding here is
// cosmetic only; ranking always happens on the unrounded Trade values.
type TradeRecord struct {
	Date       string  `json:"date"`
	Direction  string  `json:"direction"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	PnL        float64 `json:"pnl"`
	EntryTime  string  `json:"entry_time"`
	ExitTime   string  `json:"exit_time"`
}

// PriceDisplayPrecision is the number of decimal places used when trades are
// serialized for a presentation layer.
const PriceDisplayPrecision = 4

// Record converts the trade to its display form.
func (t Trade) Record() TradeRecord {
	return TradeRecord{
		Date:       t.SessionKey,
		Direction:  string(t.Direction),
		EntryPrice: roundPrice(t.EntryPrice),
		ExitPrice:  roundPrice(t.ExitPrice),
		PnL:        roundPrice(t.PnL),
		EntryTime:  t.EntryTime.Format(time.RFC3339),
		ExitTime:   t.ExitTime.Format(time.RFC3339),
	}
}

// Records converts a trade log to its display form.
func Records(trades []Trade) []TradeRecord {
	records := make([]TradeRecord, len(trades))
	for i, t := range trades {
		records[i] = t.Record()
	}

	return records
}

func roundPrice(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(PriceDisplayPrecision).Float64()

	return rounded
}
