package engine

import (
	"sync"

	"github.com/kakaalameda/telegram-rolebot/internal/models"
)

// AdminSet is the mutable set of elevated senders. It is seeded from
// configuration, grows via elevation, never shrinks, and is not persisted.
type AdminSet struct {
	mu      sync.RWMutex
	members map[models.SenderID]struct{}
}

func NewAdminSet(initial []models.SenderID) *AdminSet {
	s := &AdminSet{members: make(map[models.SenderID]struct{}, len(initial))}
	for _, id := range initial {
		s.members[id] = struct{}{}
	}
	return s
}

func (s *AdminSet) Contains(id models.SenderID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[id]
	return ok
}

// Add inserts id and reports whether it was newly added. Adding an existing
// member is a no-op.
func (s *AdminSet) Add(id models.SenderID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	return true
}

func (s *AdminSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// Tier resolves a sender's privilege tier by membership.
func (s *AdminSet) Tier(id models.SenderID) models.PrivilegeTier {
	if s.Contains(id) {
		return models.TierElevated
	}
	return models.TierStandard
}
