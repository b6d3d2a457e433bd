package models

import (
	"time"
)

// LoyaltyAccount represents a player's loyalty balance and tier standing.
// One row per player; mutated only through atomic increments so that
// lifetime_points never decreases and tier always matches lifetime_points.
type LoyaltyAccount struct {
	PlayerID       string    `db:"player_id"`
	CurrentBalance int64     `db:"current_balance"`
	LifetimePoints int64     `db:"lifetime_points"`
	Tier           Tier      `db:"tier"`
	TierProgress   int       `db:"tier_progress"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
