package profile

import (
	"strings"
	"sync"
)

// Default is the profile summary active until the CV upload step replaces it.
const Default = "Experienced Frontend Developer with strong React skills and background in Fintech."

// Store holds the process-wide user profile summary. Exactly one profile is
// active at a time; writes are last-write-wins with no per-request snapshot
// isolation. That race is acceptable for the single-user scope and is kept
// visible here instead of hiding behind an implicit global.
type Store struct {
	mu      sync.RWMutex
	summary string
}

func NewStore() *Store {
	return &Store{summary: Default}
}

// Current returns the active profile summary.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Set replaces the active profile summary. Empty input is ignored so a failed
// upstream extraction cannot blank the profile.
func (s *Store) Set(summary string) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
}
