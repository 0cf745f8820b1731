package hvsp

import (
	"time"

	"github.com/moffa90/go-hvsp/protocol"
)

// awaitReady reads SDO until the target reports ready. It gives up with
// ErrTimeout after PollAttempts reads; there is no further retry.
func (s *Session) awaitReady() error {
	for attempt := 1; attempt <= s.config.PollAttempts; attempt++ {
		ready, err := s.bus.Read(protocol.SDO)
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		if s.config.PollInterval > 0 {
			time.Sleep(s.config.PollInterval)
		}
	}
	s.logError("device not ready", "attempts", s.config.PollAttempts)
	return ErrTimeout
}
