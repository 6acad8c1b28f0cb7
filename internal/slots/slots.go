// Package slots is the single ingestion boundary for time slot records.
// Slot documents come from two sources (tournament-scoped lists and the
// event-global list) and were written by several generations of admin
// tooling, so the id and start-time fields appear under different names
// and encodings. Everything is converted to the canonical TimeSlot here;
// nothing downstream ever branches on raw field names.
package slots

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// TimeSlot is the canonical internal slot representation.
type TimeSlot struct {
	ID       string `json:"id"`
	Start    int64  `json:"start"` // epoch ms
	Location string `json:"location"`
	Field    string `json:"field,omitempty"`
}

// DateKey projects the slot's start onto its local calendar date.
func (s TimeSlot) DateKey() string {
	return DateKey(s.Start)
}

// DateKey converts an epoch-ms timestamp to a YYYY-MM-DD local date key.
func DateKey(startMs int64) string {
	return time.UnixMilli(startMs).Local().Format("2006-01-02")
}

// idFields and startFields are the legacy field names, in lookup order.
var idFields = []string{"id", "slotId", "timeSlotId"}
var startFields = []string{"start", "time", "date"}

// epochMsThreshold separates epoch seconds from epoch milliseconds.
// Anything above it is taken as milliseconds (year 2001 in ms).
const epochMsThreshold = 1e12

// Normalize converts one raw slot document into the canonical form.
// A slot whose start cannot be parsed is dropped (ok=false): it cannot
// be reasoned about safely and must never become a booking candidate.
func Normalize(raw []byte) (TimeSlot, bool) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warn("Dropping unparseable slot document", "error", err)
		return TimeSlot{}, false
	}

	var slot TimeSlot
	for _, field := range idFields {
		if id, ok := stringValue(doc[field]); ok {
			slot.ID = id
			break
		}
	}

	start, ok := parseStart(doc)
	if !ok {
		log.Warn("Dropping slot with unparseable start", "id", slot.ID)
		return TimeSlot{}, false
	}
	slot.Start = start

	if loc, ok := stringValue(doc["location"]); ok {
		slot.Location = loc
	}
	if field, ok := stringValue(doc["field"]); ok {
		slot.Field = field
	}

	// A record without an explicit id is still addressable through the
	// composite of its observable attributes.
	if slot.ID == "" {
		slot.ID = compositeKey(slot)
	}
	return slot, true
}

// NormalizeAll converts a batch of raw documents, dropping what cannot
// be parsed.
func NormalizeAll(raws [][]byte) []TimeSlot {
	out := make([]TimeSlot, 0, len(raws))
	for _, raw := range raws {
		if slot, ok := Normalize(raw); ok {
			out = append(out, slot)
		}
	}
	return out
}

func parseStart(doc map[string]any) (int64, bool) {
	for _, field := range startFields {
		v, present := doc[field]
		if !present {
			continue
		}
		switch t := v.(type) {
		case float64:
			return normalizeEpoch(int64(t)), true
		case string:
			if t == "" {
				continue
			}
			if n, err := strconv.ParseInt(t, 10, 64); err == nil {
				return normalizeEpoch(n), true
			}
			for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
				if ts, err := time.ParseInLocation(layout, t, time.Local); err == nil {
					return ts.UnixMilli(), true
				}
			}
		}
	}
	return 0, false
}

func normalizeEpoch(n int64) int64 {
	if n < epochMsThreshold {
		return n * 1000
	}
	return n
}

func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case float64:
		return strconv.FormatInt(int64(t), 10), true
	}
	return "", false
}

func compositeKey(s TimeSlot) string {
	return fmt.Sprintf("%d|%s|%s", s.Start, s.Location, s.Field)
}

// Dedupe collapses duplicate slots. Duplicates by id keep the earliest
// valid start; records with distinct ids but the same (start, location,
// field) are collapsed into one logical slot, tolerating double entry
// across the tournament-scoped and event-global lists. The raw records
// themselves stay in storage untouched.
func Dedupe(in []TimeSlot) []TimeSlot {
	byID := make(map[string]int)
	byComposite := make(map[string]int)
	out := make([]TimeSlot, 0, len(in))

	for _, s := range in {
		if i, seen := byID[s.ID]; seen {
			if s.Start < out[i].Start {
				out[i].Start = s.Start
			}
			continue
		}
		ck := compositeKey(s)
		if _, seen := byComposite[ck]; seen {
			continue
		}
		byID[s.ID] = len(out)
		byComposite[ck] = len(out)
		out = append(out, s)
	}
	return out
}

// FutureUnbooked filters to slots that start after now and are not
// claimed. The booked set may reference a slot by its id, by the
// epoch-ms string of its start or by its RFC3339 start, tolerating
// inconsistent legacy encodings.
func FutureUnbooked(in []TimeSlot, booked map[string]struct{}, now time.Time) []TimeSlot {
	nowMs := now.UnixMilli()
	out := make([]TimeSlot, 0, len(in))
	for _, s := range in {
		if s.Start <= nowMs {
			continue
		}
		if isBooked(s, booked) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func isBooked(s TimeSlot, booked map[string]struct{}) bool {
	if _, ok := booked[s.ID]; ok {
		return true
	}
	if _, ok := booked[strconv.FormatInt(s.Start, 10)]; ok {
		return true
	}
	if _, ok := booked[time.UnixMilli(s.Start).Local().Format(time.RFC3339)]; ok {
		return true
	}
	return false
}

// ScheduleDates returns the distinct calendar-date keys of the given
// slots, sorted ascending. This is the reconciliation surface shown to
// admins and players.
func ScheduleDates(in []TimeSlot) []string {
	seen := make(map[string]struct{})
	var dates []string
	for _, s := range in {
		key := s.DateKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dates = append(dates, key)
	}
	sort.Strings(dates)
	return dates
}

// FindByID returns the slot with the given id, if present.
func FindByID(in []TimeSlot, id string) (TimeSlot, bool) {
	for _, s := range in {
		if s.ID == id {
			return s, true
		}
	}
	return TimeSlot{}, false
}
