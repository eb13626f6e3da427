package matching

import (
	"time"

	"github.com/bara/backend/internal/domain/ordering"
	"github.com/google/uuid"
)

// OrderFingerprint is the behavioral feature vector extracted from one
// order. Extraction is pure; the weekday and time bucket come from the
// order's denormalized columns captured at creation, never re-derived from
// the timestamp.
type OrderFingerprint struct {
	PartySize        *int // nil when the party size was not observed
	PartyComposition string
	Weekday          time.Weekday
	TimeBucket       ordering.TimeBucket
	ItemQuantities   map[uuid.UUID]int
}

// ExtractFingerprint builds the feature vector from an order and its items
func ExtractFingerprint(order *ordering.Order) OrderFingerprint {
	items := make(map[uuid.UUID]int, len(order.Items))
	for i := range order.Items {
		items[order.Items[i].MenuItemID] += order.Items[i].Quantity
	}

	return OrderFingerprint{
		PartySize:        order.PartySize,
		PartyComposition: order.PartyComposition,
		Weekday:          order.Weekday,
		TimeBucket:       order.TimeBucket,
		ItemQuantities:   items,
	}
}
