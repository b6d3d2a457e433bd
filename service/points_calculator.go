package service

import (
	"pitboss/models"

	"github.com/shopspring/decimal"
)

// SeatBaseline is the table occupancy baseline. Each empty seat above it
// grants a 5% bonus on the calculated points.
const SeatBaseline = 7

const emptySeatBonusPerSeat = 0.05

// highVolumeMultiplier applies when the session's rounds strictly exceed the
// game's rounds-per-hour baseline. Equal rounds grant no bonus.
const highVolumeMultiplier = 1.10

// CalculationInput carries everything a points calculation needs. The
// calculation is pure: no I/O, no side effects.
type CalculationInput struct {
	AverageBet  float64
	TotalRounds int
	Config      models.GameConfiguration
	PlayerTier  models.Tier
}

// CalculatePoints computes loyalty points for a gaming session.
//
// The step order is fixed for audit reproducibility:
//
//	theoreticalWin = averageBet * (houseEdgePercent/100) * totalRounds
//	basePoints     = theoreticalWin * conversionRate * pointMultiplier
//	points         = round(basePoints * tierMultiplier * emptySeatBonus * highVolumeBonus)
//
// Rounding happens exactly once, at the end, half up to the nearest integer.
// A zero bet or zero rounds yields zero points regardless of other inputs.
func CalculatePoints(in CalculationInput) (int64, error) {
	if in.AverageBet < 0 {
		return 0, invalidInput("averageBet", "must be non-negative")
	}
	if in.TotalRounds < 0 {
		return 0, invalidInput("totalRounds", "must be non-negative")
	}
	if !in.PlayerTier.Valid() {
		return 0, invalidInput("playerTier", "unknown tier "+string(in.PlayerTier))
	}
	if err := in.Config.Validate(); err != nil {
		return 0, invalidInput("gameConfiguration", err.Error())
	}

	if in.AverageBet == 0 || in.TotalRounds == 0 {
		return 0, nil
	}

	theoreticalWin := decimal.NewFromFloat(in.AverageBet).
		Mul(decimal.NewFromFloat(in.Config.HouseEdgePercent).Div(decimal.NewFromInt(100))).
		Mul(decimal.NewFromInt(int64(in.TotalRounds)))

	basePoints := theoreticalWin.
		Mul(decimal.NewFromFloat(in.Config.ConversionRate)).
		Mul(decimal.NewFromFloat(in.Config.PointMultiplier))

	tierMultiplier := decimal.NewFromFloat(in.PlayerTier.Multiplier())

	emptySeats := SeatBaseline - in.Config.SeatsAvailable
	if emptySeats < 0 {
		emptySeats = 0
	}
	emptySeatBonus := decimal.NewFromInt(1).
		Add(decimal.NewFromFloat(emptySeatBonusPerSeat).Mul(decimal.NewFromInt(int64(emptySeats))))

	highVolumeBonus := decimal.NewFromInt(1)
	if in.TotalRounds > in.Config.RoundsPerHourBaseline {
		highVolumeBonus = decimal.NewFromFloat(highVolumeMultiplier)
	}

	points := basePoints.
		Mul(tierMultiplier).
		Mul(emptySeatBonus).
		Mul(highVolumeBonus).
		Round(0)

	return points.IntPart(), nil
}
