package http

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/availability"
	"github.com/mauv0809/courtside/internal/booking"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/event"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/reconcile"
	"github.com/mauv0809/courtside/internal/ws"
)

type Server struct {
	Store          event.EventStore
	Avail          availability.Store
	Engine         *booking.Engine
	Reconciler     *reconcile.Reconciler
	Notifier       notifier.Notifier
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Hub            *ws.Hub
	Router         *http.ServeMux
}
