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

func NewServer(store event.EventStore, avail availability.Store, engine *booking.Engine, reconciler *reconcile.Reconciler, notifierSvc notifier.Notifier, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, hub *ws.Hub) *Server {
	server := &Server{
		Store:          store,
		Avail:          avail,
		Engine:         engine,
		Reconciler:     reconciler,
		Notifier:       notifierSvc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Hub:            hub,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/slots", Chain(s.ListSlotsHandler(), paramsMiddleware))
	s.Router.Handle("/dates", Chain(s.ScheduleDatesHandler(), paramsMiddleware))
	s.Router.Handle("/digest", Chain(s.ScheduleDigestHandler(), paramsMiddleware))
	s.Router.Handle("/counts", Chain(s.MatchCountsHandler(), paramsMiddleware))
	s.Router.Handle("/matches/candidates", Chain(s.CandidateSlotsHandler(), paramsMiddleware))
	s.Router.Handle("/matches/book", Chain(s.BookMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/reschedule", Chain(s.RescheduleMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/cancel", Chain(s.CancelBookingHandler(), paramsMiddleware))
	s.Router.Handle("/matches/result", Chain(s.EnterResultHandler(), paramsMiddleware))
	s.Router.Handle("/matches/result/delete", Chain(s.DeleteResultHandler(), paramsMiddleware))
	s.Router.Handle("/availability/global", Chain(s.GlobalAvailabilityHandler(), paramsMiddleware))
	s.Router.Handle("/availability/date", Chain(s.DateUnavailabilityHandler(), paramsMiddleware))
	s.Router.Handle("/availability/preference", Chain(s.SlotPreferenceHandler(), paramsMiddleware))
	s.Router.HandleFunc("/ws", s.Hub.ServeWs)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
