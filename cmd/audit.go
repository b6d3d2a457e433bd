package cmd

import (
	"context"

	"pitboss/events"

	log "github.com/sirupsen/logrus"
)

// subscribeAuditLog wires structured audit logging for domain events. Events
// are published only after the owning transaction commits, so every entry
// here reflects durable state.
func subscribeAuditLog(bus *events.Bus) {
	bus.Subscribe(events.EventTypePointsAccrued, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.PointsAccruedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"playerID":        e.PlayerID,
			"pointsChange":    e.PointsChange,
			"transactionType": e.TransactionType,
			"newBalance":      e.NewBalance,
		}).Info("Points accrued")
	})

	bus.Subscribe(events.EventTypeTierChanged, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.TierChangedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"playerID": e.PlayerID,
			"oldTier":  e.OldTier,
			"newTier":  e.NewTier,
		}).Info("Tier changed")
	})
}
