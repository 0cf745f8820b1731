package hvsp

import (
	"context"

	"github.com/pkg/errors"

	"github.com/moffa90/go-hvsp/part"
	"github.com/moffa90/go-hvsp/protocol"
)

// readSignature reads the three signature bytes.
func (s *Session) readSignature() ([3]byte, error) {
	var sig [3]byte
	for i := range sig {
		seq, err := protocol.BuildReadSignatureCmd(byte(i))
		if err != nil {
			return sig, err
		}
		b, err := s.run(seq)
		if err != nil {
			return sig, err
		}
		sig[i] = b
	}
	return sig, nil
}

// ReadSignature reads the 3-byte device signature.
func (s *Session) ReadSignature(ctx context.Context) ([3]byte, error) {
	var sig [3]byte
	err := s.running(ctx, func() error {
		var err error
		sig, err = s.readSignature()
		return errors.WithMessage(err, "read signature")
	})
	return sig, err
}

// ReadCalibration reads the oscillator calibration byte.
func (s *Session) ReadCalibration(ctx context.Context) (byte, error) {
	var b byte
	err := s.running(ctx, func() error {
		var err error
		b, err = s.run(protocol.BuildReadCalibrationCmd())
		return errors.WithMessage(err, "read calibration")
	})
	return b, err
}

// ReadLock reads the lock bits. Only the low two bits are returned.
func (s *Session) ReadLock(ctx context.Context) (byte, error) {
	var b byte
	err := s.running(ctx, func() error {
		v, err := s.run(protocol.BuildReadLockCmd())
		if err != nil {
			return errors.WithMessage(err, "read lock")
		}
		b = v & protocol.LockMask
		return nil
	})
	return b, err
}

// WriteLock programs the lock byte and waits for completion.
// Lock bits can only be cleared again by ChipErase.
func (s *Session) WriteLock(ctx context.Context, value byte) error {
	return s.running(ctx, func() error {
		if err := s.strobeWrite(protocol.BuildWriteLockCmd(value)); err != nil {
			return errors.WithMessage(err, "write lock")
		}
		s.logDebug("lock written", "value", value)
		return nil
	})
}

// ReadFuse reads a fuse byte by memory name: "lfuse", "hfuse" or "efuse".
func (s *Session) ReadFuse(ctx context.Context, name string) (byte, error) {
	var b byte
	err := s.running(ctx, func() error {
		fuse, err := s.checkFuse(name)
		if err != nil {
			return err
		}
		seq, err := protocol.BuildReadFuseCmd(fuse)
		if err != nil {
			return err
		}
		b, err = s.run(seq)
		return errors.WithMessagef(err, "read %s", name)
	})
	return b, err
}

// WriteFuse programs a fuse byte by memory name and waits for completion.
// Values are raw bytes; a programmed fuse bit reads as 0.
func (s *Session) WriteFuse(ctx context.Context, name string, value byte) error {
	return s.running(ctx, func() error {
		fuse, err := s.checkFuse(name)
		if err != nil {
			return err
		}
		seq, err := protocol.BuildWriteFuseCmd(fuse, value)
		if err != nil {
			return err
		}
		if err := s.strobeWrite(seq); err != nil {
			return errors.WithMessagef(err, "write %s", name)
		}
		s.logDebug("fuse written", "fuse", name, "value", value)
		return nil
	})
}

// ChipErase erases flash and EEPROM to 0xFF and clears the lock bits.
// Fuses are not affected.
func (s *Session) ChipErase(ctx context.Context) error {
	return s.running(ctx, func() error {
		if err := s.strobeWrite(protocol.BuildChipEraseCmd()); err != nil {
			return errors.WithMessage(err, "chip erase")
		}
		s.logInfo("chip erased")
		return nil
	})
}

// strobeWrite issues a write sequence and waits for the target to finish.
func (s *Session) strobeWrite(seq []protocol.Instruction) error {
	if _, err := s.run(seq); err != nil {
		return err
	}
	return s.awaitReady()
}

// checkFuse validates a fuse name against the attached part before any bus traffic.
func (s *Session) checkFuse(name string) (protocol.Fuse, error) {
	fuse, ok := protocol.ParseFuse(name)
	if !ok {
		return 0, &UnknownMemoryError{Name: name}
	}
	p := s.Part()
	if fuse == protocol.FuseExtended && !p.HasExtendedFuse {
		return 0, &UnsupportedMemoryError{Name: part.MemExtFuse, Part: p.Name}
	}
	return fuse, nil
}
