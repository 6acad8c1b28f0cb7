package reconcile

import (
	"github.com/mauv0809/courtside/internal/availability"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// Reconciler answers the availability questions the booking surfaces
// are built on: which slots are free, which dates they fall on, and
// whether a player has opted out of (or into) a slot or date. It owns
// the interest-gating policy: a slot preference can only be recorded
// while the slot's date is not marked unavailable.
type Reconciler struct {
	source  MatchSource
	avail   availability.Store
	metrics metrics.Metrics
	pubsub  pubsub.PubSubClient
}

func New(source MatchSource, avail availability.Store, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Reconciler {
	return &Reconciler{
		source:  source,
		avail:   avail,
		metrics: metrics,
		pubsub:  pubsub,
	}
}
