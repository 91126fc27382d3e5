package core

import "sort"

// Store holds the deduplicated result set: a map keyed by code for O(1)
// lookups and an ordered slice (newest FirstSeen first) capped at max, used
// for presentation and eviction. Both views always agree on membership.
//
// Store is not safe for concurrent use; the owning service serializes access
// with a single lock held for whole scan passes and reads.
type Store struct {
	byCode  map[string]CodeEntry
	ordered []CodeEntry
	max     int
}

func NewStore(max int) *Store {
	return &Store{
		byCode: map[string]CodeEntry{},
		max:    max,
	}
}

func (s *Store) Len() int {
	return len(s.ordered)
}

func (s *Store) Contains(code string) bool {
	_, ok := s.byCode[code]
	return ok
}

// Add records entry in the lookup map only, so later sources within the same
// pass dedup against it. It reports whether the entry was new. The ordered
// view picks the entry up at Commit time.
func (s *Store) Add(entry CodeEntry) bool {
	if _, ok := s.byCode[entry.Code]; ok {
		return false
	}
	s.byCode[entry.Code] = entry
	return true
}

// Commit merges a pass's new entries into the ordered view, re-sorts newest
// first and evicts the oldest surplus from both views when the cap is
// exceeded. It returns the number of evicted entries.
func (s *Store) Commit(entries []CodeEntry) int {
	if len(entries) == 0 {
		return 0
	}
	s.ordered = append(s.ordered, entries...)
	sort.SliceStable(s.ordered, func(i, j int) bool {
		return s.ordered[i].FirstSeen > s.ordered[j].FirstSeen
	})

	if len(s.ordered) <= s.max {
		return 0
	}
	evicted := s.ordered[s.max:]
	for _, entry := range evicted {
		delete(s.byCode, entry.Code)
	}
	s.ordered = s.ordered[:s.max:s.max]
	return len(evicted)
}

// Snapshot returns a copy of the ordered view.
func (s *Store) Snapshot() []CodeEntry {
	out := make([]CodeEntry, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Prune drops every entry whose code no longer passes valid, from both views.
// This covers validation rules tightening between releases while entries from
// the old rule set remain cached. Returns the number of removed entries.
func (s *Store) Prune(valid func(string) bool) int {
	kept := s.ordered[:0]
	var removed int
	for _, entry := range s.ordered {
		if valid(entry.Code) {
			kept = append(kept, entry)
			continue
		}
		delete(s.byCode, entry.Code)
		removed++
	}
	s.ordered = kept
	return removed
}
