package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/booking"
	"github.com/mauv0809/courtside/internal/counts"
	"github.com/mauv0809/courtside/internal/event"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetAllMatches()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(matches); err != nil {
			log.Error("Failed to encode matches to JSON", "error", err)
		}
	}
}

// ListSlotsHandler serves the current free slots: future, not claimed by
// any match.
func (s *Server) ListSlotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		free, err := s.Reconciler.AvailableSlots(time.Now())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(free); err != nil {
			log.Error("Failed to encode slots to JSON", "error", err)
		}
	}
}

// ScheduleDatesHandler serves the distinct calendar dates that still
// have free slots.
func (s *Server) ScheduleDatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dates, err := s.Reconciler.ScheduleDates(time.Now())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(dates); err != nil {
			log.Error("Failed to encode dates to JSON", "error", err)
		}
	}
}

// ScheduleDigestHandler pushes a digest of the remaining free slots to
// the notification channel.
func (s *Server) ScheduleDigestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		free, err := s.Reconciler.AvailableSlots(now)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		dates, err := s.Reconciler.ScheduleDates(now)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if err := s.Notifier.SendScheduleDigest(dates, free, isDryRunFromContext(r)); err != nil {
			http.Error(w, "Failed to send schedule digest", http.StatusInternalServerError)
			log.Error("Failed to send schedule digest", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"dates": dates, "free_slots": len(free)}); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// MatchCountsHandler serves per-player match progress. Optional filters:
// playerID narrows to one player's placement group, maxPlayed keeps
// players with at most N played matches, completed=true keeps players
// with nothing left to play.
func (s *Server) MatchCountsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournaments, err := s.Store.GetTournaments()
		if err != nil {
			http.Error(w, "Failed to get tournaments", http.StatusInternalServerError)
			log.Error("Failed to get tournaments from store", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if playerID := r.URL.Query().Get("playerID"); playerID != "" {
			pc, ok := counts.ForPlayer(tournaments, playerID)
			if !ok {
				http.Error(w, fmt.Sprintf("player %s is not in any group", playerID), http.StatusNotFound)
				return
			}
			if err := json.NewEncoder(w).Encode(pc); err != nil {
				log.Error("Failed to encode counts to JSON", "error", err)
			}
			return
		}

		groups := counts.ForTournaments(tournaments)
		if maxPlayedStr := r.URL.Query().Get("maxPlayed"); maxPlayedStr != "" {
			maxPlayed, err := strconv.Atoi(maxPlayedStr)
			if err != nil {
				http.Error(w, "maxPlayed must be an integer", http.StatusBadRequest)
				return
			}
			for i := range groups {
				groups[i].Players = counts.FilterMaxPlayed(groups[i].Players, maxPlayed)
			}
		}
		if r.URL.Query().Get("completed") == "true" {
			for i := range groups {
				groups[i].Players = counts.FilterFullyCompleted(groups[i].Players)
			}
		}

		if err := json.NewEncoder(w).Encode(groups); err != nil {
			log.Error("Failed to encode counts to JSON", "error", err)
		}
	}
}

// CandidateSlotsHandler serves the slots a match could be booked into.
func (s *Server) CandidateSlotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}
		candidates, err := s.Reconciler.CandidateSlotsForMatch(matchID, time.Now())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(candidates); err != nil {
			log.Error("Failed to encode slots to JSON", "error", err)
		}
	}
}

func (s *Server) BookMatchHandler() http.HandlerFunc {
	return s.bookingMutation(func(r *http.Request) (*event.Match, error) {
		return s.Engine.Book(r.URL.Query().Get("matchID"), r.URL.Query().Get("slotID"), isDryRunFromContext(r))
	})
}

func (s *Server) RescheduleMatchHandler() http.HandlerFunc {
	return s.bookingMutation(func(r *http.Request) (*event.Match, error) {
		return s.Engine.Reschedule(r.URL.Query().Get("matchID"), r.URL.Query().Get("slotID"), isDryRunFromContext(r))
	})
}

func (s *Server) CancelBookingHandler() http.HandlerFunc {
	return s.bookingMutation(func(r *http.Request) (*event.Match, error) {
		return s.Engine.CancelBooking(r.URL.Query().Get("matchID"), isDryRunFromContext(r))
	})
}

func (s *Server) EnterResultHandler() http.HandlerFunc {
	return s.bookingMutation(func(r *http.Request) (*event.Match, error) {
		score1, err := strconv.Atoi(r.URL.Query().Get("score1"))
		if err != nil {
			return nil, &booking.ValidationError{Reason: "score1 must be a non-negative integer"}
		}
		score2, err := strconv.Atoi(r.URL.Query().Get("score2"))
		if err != nil {
			return nil, &booking.ValidationError{Reason: "score2 must be a non-negative integer"}
		}
		return s.Engine.EnterResult(r.URL.Query().Get("matchID"), score1, score2, isDryRunFromContext(r))
	})
}

func (s *Server) DeleteResultHandler() http.HandlerFunc {
	return s.bookingMutation(func(r *http.Request) (*event.Match, error) {
		return s.Engine.DeleteResult(r.URL.Query().Get("matchID"), isDryRunFromContext(r))
	})
}

// bookingMutation wraps a booking state transition: on success the
// updated match is returned to the caller and every connected client is
// told to refresh its slot view.
func (s *Server) bookingMutation(mutate func(r *http.Request) (*event.Match, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := mutate(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !isDryRunFromContext(r) {
			s.Hub.BroadcastSlotsChanged()
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(match); err != nil {
			log.Error("Failed to encode match to JSON", "error", err)
		}
	}
}

// GlobalAvailabilityHandler sets whether a player takes part in
// scheduling at all.
func (s *Server) GlobalAvailabilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		if playerID == "" {
			http.Error(w, "playerID is required", http.StatusBadRequest)
			return
		}
		available := r.URL.Query().Get("available") != "false"
		if err := s.Reconciler.SetGlobalAvailability(playerID, available); err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"player_id": playerID, "available": available}); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// DateUnavailabilityHandler toggles a player's unavailability for a
// calendar date.
func (s *Server) DateUnavailabilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		date := r.URL.Query().Get("date")
		if playerID == "" || date == "" {
			http.Error(w, "playerID and date are required", http.StatusBadRequest)
			return
		}
		unavailable, err := s.Reconciler.ToggleDateUnavailability(playerID, date)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"player_id": playerID, "date": date, "unavailable": unavailable}); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// SlotPreferenceHandler toggles a player's interest in a slot. The
// toggle is rejected while the player is unavailable on the slot's date.
func (s *Server) SlotPreferenceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		slotID := r.URL.Query().Get("slotID")
		if playerID == "" || slotID == "" {
			http.Error(w, "playerID and slotID are required", http.StatusBadRequest)
			return
		}
		preferred, err := s.Reconciler.ToggleSlotPreference(playerID, slotID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"player_id": playerID, "slot_id": slotID, "preferred": preferred}); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		validation *booking.ValidationError
		conflict   *booking.ConflictError
		notFound   *booking.NotFoundError
		transient  *booking.TransientIOError
	)
	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.As(err, &conflict):
		http.Error(w, conflict.Error(), http.StatusConflict)
	case errors.As(err, &notFound):
		http.Error(w, notFound.Error(), http.StatusNotFound)
	case errors.As(err, &transient):
		http.Error(w, transient.Error(), http.StatusServiceUnavailable)
		log.Error("Store unavailable", "error", err)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Error("Unhandled error", "error", err)
	}
}
