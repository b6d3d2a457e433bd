package models

import (
	"fmt"
)

// GameConfiguration carries the per-game settings that drive a points
// calculation. It is supplied per call and never persisted by this
// subsystem. Validate must pass before any calculation uses it.
type GameConfiguration struct {
	HouseEdgePercent      float64 `json:"house_edge_percent"`
	RoundsPerHourBaseline int     `json:"rounds_per_hour_baseline"`
	PointMultiplier       float64 `json:"point_multiplier"`
	ConversionRate        float64 `json:"conversion_rate"`
	SeatsAvailable        int     `json:"seats_available"`
}

// Validate checks that all required numeric fields are present and sane
func (c GameConfiguration) Validate() error {
	if c.HouseEdgePercent < 0 || c.HouseEdgePercent > 100 {
		return fmt.Errorf("house edge percent must be in [0,100], got %v", c.HouseEdgePercent)
	}
	if c.RoundsPerHourBaseline <= 0 {
		return fmt.Errorf("rounds per hour baseline must be positive, got %d", c.RoundsPerHourBaseline)
	}
	if c.PointMultiplier <= 0 {
		return fmt.Errorf("point multiplier must be positive, got %v", c.PointMultiplier)
	}
	if c.ConversionRate <= 0 {
		return fmt.Errorf("conversion rate must be positive, got %v", c.ConversionRate)
	}
	if c.SeatsAvailable < 0 {
		return fmt.Errorf("seats available must be non-negative, got %d", c.SeatsAvailable)
	}
	return nil
}
