// Package ledger derives time and cost figures from the timestamps of a production record.
// Every function is pure; durations never go below zero whatever the clock says.
package ledger

import (
	"shopfloor/common"
	"shopfloor/domain"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MoneyPlaces   = 2
	MinutesPlaces = 2
)

var (
	millisPerMinute = decimal.NewFromInt(int64(time.Minute / time.Millisecond))
	millisPerHour   = decimal.NewFromInt(int64(time.Hour / time.Millisecond))
)

// ActiveDuration is the wall-clock time between start and end (or now) minus every pause,
// including the pause still open on a PAUSED record.
func ActiveDuration(r *domain.ProductionRecord, now time.Time) time.Duration {
	end := now
	if r.EndTime != nil {
		end = *r.EndTime
	}
	d := end.Sub(r.StartTime) - r.AccumulatedPause
	if r.Status == domain.StatusPaused && r.OpenPauseStart != nil {
		d -= common.NonNegative(now.Sub(*r.OpenPauseStart))
	}
	return common.NonNegative(d)
}

// TimePerPiece returns minutes per piece, defined only for finished records with a positive quantity.
func TimePerPiece(r *domain.ProductionRecord, now time.Time) (decimal.Decimal, bool) {
	if r.Status != domain.StatusFinished || r.Quantity <= 0 {
		return decimal.Zero, false
	}
	perPiece := ExactMinutes(ActiveDuration(r, now)).Div(decimal.NewFromInt(int64(r.Quantity)))
	return perPiece.Round(MinutesPlaces), true
}

// MachineCost is hourlyRate times active hours, defined only for finished records.
func MachineCost(r *domain.ProductionRecord, hourlyRate decimal.Decimal, now time.Time) (decimal.Decimal, bool) {
	if r.Status != domain.StatusFinished {
		return decimal.Zero, false
	}
	return RoundMoney(hourlyRate.Mul(exactHours(ActiveDuration(r, now)))), true
}

// Minutes converts d to minutes rounded half-up to two places.
func Minutes(d time.Duration) decimal.Decimal {
	return ExactMinutes(d).Round(MinutesPlaces)
}

// WholeMinutes converts d to minutes rounded half-up to an integer.
func WholeMinutes(d time.Duration) int64 {
	return ExactMinutes(d).Round(0).IntPart()
}

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ExactMinutes converts d to minutes without rounding.
func ExactMinutes(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(d.Milliseconds()).Div(millisPerMinute)
}

func exactHours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(d.Milliseconds()).Div(millisPerHour)
}
