package models

import "math"

// Tier represents a loyalty rank derived from lifetime points
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// Lifetime-point floors for each tier. Bands are half-open: a lifetime total
// exactly at a floor belongs to that tier.
const (
	SilverFloor   int64 = 1000
	GoldFloor     int64 = 5000
	PlatinumFloor int64 = 20000
)

// Valid reports whether t is a known tier
func (t Tier) Valid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return true
	}
	return false
}

// Multiplier returns the points multiplier applied for this tier
func (t Tier) Multiplier() float64 {
	switch t {
	case TierSilver:
		return 1.25
	case TierGold:
		return 1.5
	case TierPlatinum:
		return 2.0
	default:
		return 1.0
	}
}

// TierForLifetime resolves the tier for a lifetime point total
func TierForLifetime(lifetimePoints int64) Tier {
	switch {
	case lifetimePoints >= PlatinumFloor:
		return TierPlatinum
	case lifetimePoints >= GoldFloor:
		return TierGold
	case lifetimePoints >= SilverFloor:
		return TierSilver
	default:
		return TierBronze
	}
}

// TierProgress returns the integer percentage [0,100] of progress through the
// current tier's span toward the next tier's floor. Platinum has no next tier
// and always reports 100.
func TierProgress(lifetimePoints int64) int {
	if lifetimePoints < 0 {
		return 0
	}

	var floor, next int64
	switch TierForLifetime(lifetimePoints) {
	case TierPlatinum:
		return 100
	case TierGold:
		floor, next = GoldFloor, PlatinumFloor
	case TierSilver:
		floor, next = SilverFloor, GoldFloor
	default:
		floor, next = 0, SilverFloor
	}

	progress := int(math.Round(float64(lifetimePoints-floor) * 100 / float64(next-floor)))
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}
