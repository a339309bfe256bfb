package cache

import "time"

// SetClock replaces the time source used for expiry.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
