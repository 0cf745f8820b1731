package hvsp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/moffa90/go-hvsp/part"
	"github.com/moffa90/go-hvsp/protocol"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// noAddress marks the high-address cache as empty.
const noAddress = -1

// Session drives one AVR target in HVSP mode over a Bus.
//
// Operations are serialized in FIFO order: each completes before the next
// one touches the bus. Session is safe for concurrent use.
type Session struct {
	bus    Bus
	config Config

	// queue admits one operation at a time; waiters are served in order.
	queue *semaphore.Weighted

	mu         sync.RWMutex
	state      State
	part       *part.Part
	memories   part.MemoryMap
	configured bool
	energized  bool

	// highAddr is only touched while holding queue.
	highAddr int
}

// New creates a Session on bus with the given options.
//
// Example:
//
//	bus, _ := gpiobus.Open(gpiobus.PinNames{...})
//	sess := hvsp.New(bus,
//	    hvsp.WithLogger(hvsp.NewZapLogger(logger)),
//	    hvsp.WithSettleDelay(100*time.Millisecond),
//	)
func New(bus Bus, opts ...Option) *Session {
	if bus == nil {
		panic("bus cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		bus:      bus,
		config:   cfg,
		queue:    semaphore.NewWeighted(1),
		highAddr: noAddress,
	}
}

// Start powers the target, enters HVSP mode and identifies the part:
//  1. Configure the bus for push-pull drive (first start only)
//  2. Enable power and wait for the supply to settle
//  3. Drive SDI, SII and SCI low, then apply 12V to reset
//  4. Read the 3-byte signature and look it up in the catalog
//  5. Build the memory map
//
// An unknown signature fails with *UnrecognizedPartError and leaves the
// memory map empty. Power stays applied until Stop.
func (s *Session) Start(ctx context.Context) error {
	return s.exclusive(ctx, func() error {
		if s.State() == StateRunning {
			return ErrAlreadyRunning
		}

		if !s.configured {
			if err := s.bus.Configure(false); err != nil {
				return errors.WithMessage(err, "configure bus")
			}
			s.configured = true
		}

		s.energized = true
		if err := s.bus.SetPower(true); err != nil {
			return errors.WithMessage(err, "enable power")
		}
		if err := sleep(ctx, s.config.SettleDelay); err != nil {
			return err
		}
		if err := s.bus.Write(protocol.Lines{protocol.SDI: false, protocol.SII: false, protocol.SCI: false}); err != nil {
			return errors.WithMessage(err, "reset lines")
		}
		if err := s.bus.SetHighVoltage(true); err != nil {
			return errors.WithMessage(err, "enable high voltage")
		}

		sig, err := s.readSignature()
		if err != nil {
			return errors.WithMessage(err, "read signature")
		}

		p, ok := s.config.Catalog.Lookup(sig)
		if !ok {
			s.logError("unrecognized part", "signature", part.SignatureString(sig))
			return &UnrecognizedPartError{Signature: sig}
		}

		s.mu.Lock()
		s.part = p
		s.memories = part.BuildMemoryMap(p)
		s.state = StateRunning
		s.mu.Unlock()

		s.logInfo("part detected",
			"part", p.Name,
			"signature", part.SignatureString(sig),
			"memories", len(s.memories),
		)
		return nil
	})
}

// Stop removes 12V and power from the target. It is idempotent and valid in
// any state, including after a failed Start.
func (s *Session) Stop(ctx context.Context) error {
	return s.exclusive(ctx, func() error {
		if !s.energized {
			s.mu.Lock()
			s.state = StateStopped
			s.mu.Unlock()
			return nil
		}

		var g errgroup.Group
		g.Go(func() error { return s.bus.SetHighVoltage(false) })
		g.Go(func() error { return s.bus.SetPower(false) })
		err := g.Wait()

		s.mu.Lock()
		s.state = StateStopped
		s.part = nil
		s.memories = nil
		s.mu.Unlock()
		s.energized = false

		if err != nil {
			s.logError("stop failed", "error", err)
			return errors.WithMessage(err, "stop")
		}
		s.logDebug("stopped")
		return nil
	})
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// PartName returns the catalog name of the attached part.
func (s *Session) PartName() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.part == nil {
		return "", false
	}
	return s.part.Name, true
}

// Part returns a copy of the attached part, or nil before Start.
func (s *Session) Part() *part.Part {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.part == nil {
		return nil
	}
	p := *s.part
	return &p
}

// MemoryInfo returns the geometry of a named memory.
func (s *Session) MemoryInfo(name string) (part.MemoryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.memories.Lookup(name)
	if !ok {
		return part.MemoryInfo{}, &UnknownMemoryError{Name: name}
	}
	return info, nil
}

// MemoryInfos returns the memory map in its fixed order. It is empty before
// a successful Start.
func (s *Session) MemoryInfos() part.MemoryMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(part.MemoryMap, len(s.memories))
	copy(out, s.memories)
	return out
}

// exclusive runs fn once every earlier operation has finished.
// ctx bounds the wait only; fn itself is never interrupted.
func (s *Session) exclusive(ctx context.Context, fn func() error) error {
	if err := s.queue.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.queue.Release(1)
	return fn()
}

// running is exclusive plus the Running state check.
func (s *Session) running(ctx context.Context, fn func() error) error {
	return s.exclusive(ctx, func() error {
		if s.State() != StateRunning {
			return ErrNotRunning
		}
		return fn()
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
