// Package provisional keeps the unconfirmed print tallies the shop floor
// UI reports while jobs are still on the printer. The tallies are
// advisory and process-local; confirmed counts live in the database.
package provisional

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

type entry struct {
	dayKey  string
	weekKey string
	daily   map[snowflake.ID]int64
	weekly  map[snowflake.ID]int64
}

type Store struct {
	mu      sync.Mutex
	entries map[snowflake.ID]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[snowflake.ID]*entry)}
}

// Add adjusts the item's tally by units and returns the seller's resulting
// daily and weekly totals. Stale window keys reset the tallies first, and
// each item's count floors at zero so over-cancelling is a no-op.
func (s *Store) Add(sellerID, itemID snowflake.ID, units int64, dayKey, weekKey string) (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[sellerID]
	if e == nil {
		e = &entry{
			dayKey:  dayKey,
			weekKey: weekKey,
			daily:   make(map[snowflake.ID]int64),
			weekly:  make(map[snowflake.ID]int64),
		}
		s.entries[sellerID] = e
	}
	e.roll(dayKey, weekKey)

	bump(e.daily, itemID, units)
	bump(e.weekly, itemID, units)

	return sum(e.daily), sum(e.weekly)
}

// Get returns the seller's current totals without modifying them.
func (s *Store) Get(sellerID snowflake.ID, dayKey, weekKey string) (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[sellerID]
	if e == nil {
		return 0, 0
	}
	e.roll(dayKey, weekKey)
	return sum(e.daily), sum(e.weekly)
}

func (e *entry) roll(dayKey, weekKey string) {
	if e.dayKey != dayKey {
		e.dayKey = dayKey
		e.daily = make(map[snowflake.ID]int64)
	}
	if e.weekKey != weekKey {
		e.weekKey = weekKey
		e.weekly = make(map[snowflake.ID]int64)
	}
}

func bump(tally map[snowflake.ID]int64, itemID snowflake.ID, units int64) {
	next := tally[itemID] + units
	if next <= 0 {
		delete(tally, itemID)
		return
	}
	tally[itemID] = next
}

func sum(tally map[snowflake.ID]int64) int64 {
	var total int64
	for _, units := range tally {
		total += units
	}
	return total
}
