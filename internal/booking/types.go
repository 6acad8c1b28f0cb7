package booking

import (
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// Engine drives a match through its scheduling lifecycle:
//
//	pending -> scheduled (book)
//	scheduled -> scheduled (reschedule)
//	scheduled -> pending (cancel)
//	pending|scheduled -> completed (enter result)
//	completed -> pending (delete result, full reset)
//
// Every transition re-checks its guard against freshly read state and
// fails closed: no mutation happens unless every guard passes.
type Engine struct {
	store    Store
	notifier notifier.Notifier
	metrics  metrics.Metrics
	pubsub   pubsub.PubSubClient
}
