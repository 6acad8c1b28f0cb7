// Package counts projects match state into per-player progress numbers.
// The projection is pure: it never mutates the matches it reads.
package counts

import (
	"github.com/mauv0809/courtside/internal/event"
)

// PlayerCounts summarizes one player's progress inside one group.
type PlayerCounts struct {
	PlayerID  string `json:"player_id"`
	Expected  int    `json:"expected"`
	Played    int    `json:"played"`
	Scheduled int    `json:"scheduled"`
	Remaining int    `json:"remaining"`
}

// GroupCounts holds the per-player summaries for one group, ordered the
// way the group lists its players.
type GroupCounts struct {
	GroupID   string         `json:"group_id"`
	GroupName string         `json:"group_name"`
	Players   []PlayerCounts `json:"players"`
}

// ForGroup computes the progress summary for every player the group
// lists.
func ForGroup(g *event.Group) GroupCounts {
	out := GroupCounts{GroupID: g.ID, GroupName: g.Name}
	for _, playerID := range g.PlayerIDs {
		pc := PlayerCounts{PlayerID: playerID}
		for _, m := range g.Matches {
			if !m.Involves(playerID) {
				continue
			}
			pc.Expected++
			switch {
			case m.IsCompleted():
				pc.Played++
			case isBooked(m):
				pc.Scheduled++
			}
		}
		pc.Remaining = pc.Expected - pc.Played
		if pc.Remaining < 0 {
			pc.Remaining = 0
		}
		out.Players = append(out.Players, pc)
	}
	return out
}

// ForTournaments computes group summaries across every group of every
// tournament.
func ForTournaments(tournaments []*event.Tournament) []GroupCounts {
	var out []GroupCounts
	for _, t := range tournaments {
		for _, g := range t.Groups {
			out = append(out, ForGroup(g))
		}
	}
	return out
}

// ForPlayer returns the player's summary from their placement group,
// the first group across the tournaments that lists them.
func ForPlayer(tournaments []*event.Tournament, playerID string) (PlayerCounts, bool) {
	for _, gc := range ForTournaments(tournaments) {
		for _, pc := range gc.Players {
			if pc.PlayerID == playerID {
				return pc, true
			}
		}
	}
	return PlayerCounts{}, false
}

// FilterMaxPlayed keeps the players who have played at most n matches.
func FilterMaxPlayed(in []PlayerCounts, n int) []PlayerCounts {
	out := make([]PlayerCounts, 0, len(in))
	for _, pc := range in {
		if pc.Played <= n {
			out = append(out, pc)
		}
	}
	return out
}

// FilterFullyCompleted keeps the players with no matches left to play.
func FilterFullyCompleted(in []PlayerCounts) []PlayerCounts {
	out := make([]PlayerCounts, 0, len(in))
	for _, pc := range in {
		if pc.Remaining == 0 {
			out = append(out, pc)
		}
	}
	return out
}

// isBooked decides whether a non-completed match counts as scheduled.
// The booking index derives from these same match rows, so it carries no
// extra information here; the heuristic reads the row directly. Either
// signal alone counts: older imported rows may carry a scheduled time
// without a slot reference, or a slot reference that no longer resolves.
func isBooked(m *event.Match) bool {
	if m.ScheduledTime != nil {
		return true
	}
	return m.SlotID != nil && *m.SlotID != ""
}
