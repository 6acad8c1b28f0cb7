package availability

import "sync"

// Projection is an in-memory view of override state built from feed
// snapshots. Each snapshot owns the players it names: applying it
// replaces those players' partitions wholesale, so an override removed
// upstream can never linger here.
type Projection struct {
	mu         sync.RWMutex
	partitions map[string]partition // keyed by player id
}

type partition struct {
	globalOff      bool
	unavailDates   map[string]bool
	preferredSlots map[string]bool
}

// NewProjection creates an empty projection.
func NewProjection() *Projection {
	return &Projection{
		partitions: make(map[string]partition),
	}
}

// Apply replaces the partitions of every player the snapshot covers.
func (p *Projection) Apply(snap Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range snap.PlayerIDs {
		p.partitions[id] = partition{
			unavailDates:   make(map[string]bool),
			preferredSlots: make(map[string]bool),
		}
	}
	for _, id := range snap.GlobalOff {
		part := p.partitions[id]
		part.globalOff = true
		p.partitions[id] = part
	}
	for _, u := range snap.Unavailabilities {
		if part, ok := p.partitions[u.PlayerID]; ok {
			part.unavailDates[u.Date] = u.Unavailable
		}
	}
	for _, pref := range snap.Preferences {
		if part, ok := p.partitions[pref.PlayerID]; ok {
			part.preferredSlots[pref.SlotID] = pref.Preferred
		}
	}
}

// IsGloballyAvailable defaults to true for unknown players.
func (p *Projection) IsGloballyAvailable(playerID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	part, ok := p.partitions[playerID]
	return !ok || !part.globalOff
}

// IsDateUnavailable defaults to false for unknown keys.
func (p *Projection) IsDateUnavailable(playerID, date string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	part, ok := p.partitions[playerID]
	return ok && part.unavailDates[date]
}

// IsInterested defaults to false for unknown keys.
func (p *Projection) IsInterested(playerID, slotID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	part, ok := p.partitions[playerID]
	return ok && part.preferredSlots[slotID]
}
