package hvsp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/moffa90/go-hvsp/hvsptest"
	"github.com/moffa90/go-hvsp/part"
	"github.com/moffa90/go-hvsp/protocol"
)

// MockLogger records messages for assertions.
type MockLogger struct {
	mu        sync.Mutex
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorMsgs = append(l.errorMsgs, msg)
}

func newDevice(t *testing.T, name string, opts ...hvsptest.Option) *hvsptest.Device {
	t.Helper()
	p, ok := part.Default.ByName(name)
	if !ok {
		t.Fatalf("unknown part %s", name)
	}
	return hvsptest.New(*p, opts...)
}

// startSession starts a session on a fresh simulated part and clears the
// device counters afterwards.
func startSession(t *testing.T, name string, devOpts []hvsptest.Option, opts ...Option) (*Session, *hvsptest.Device) {
	t.Helper()
	dev := newDevice(t, name, devOpts...)
	sess := New(dev, append([]Option{WithSettleDelay(0)}, opts...)...)
	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	dev.ResetStats()
	return sess, dev
}

func TestNew(t *testing.T) {
	dev := newDevice(t, "ATtiny85")

	tests := []struct {
		name    string
		options []Option
	}{
		{
			name:    "with no options",
			options: nil,
		},
		{
			name: "with all options",
			options: []Option{
				WithProgressCallback(func(p Progress) {}),
				WithLogger(&MockLogger{}),
				WithCatalog(part.Default),
				WithSettleDelay(0),
				WithPollAttempts(10),
				WithPollInterval(0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := New(dev, tt.options...)
			if sess == nil {
				t.Fatal("New() returned nil")
			}
			if sess.State() != StateNotStarted {
				t.Errorf("State() = %v, want %v", sess.State(), StateNotStarted)
			}
			if len(sess.MemoryInfos()) != 0 {
				t.Error("memory map should be empty before Start")
			}
		})
	}
}

func TestNewNilBusPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New(nil)
}

func TestOptionDefaults(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []Option{WithPollAttempts(0), WithSettleDelay(-1), WithCatalog(nil)} {
		opt(&cfg)
	}
	if cfg.PollAttempts != DefaultPollAttempts {
		t.Errorf("PollAttempts = %d, want %d", cfg.PollAttempts, DefaultPollAttempts)
	}
	if cfg.SettleDelay != DefaultSettleDelay {
		t.Errorf("SettleDelay = %v, want %v", cfg.SettleDelay, DefaultSettleDelay)
	}
	if cfg.Catalog != part.Default {
		t.Error("Catalog should stay the default")
	}
}

func TestStartEveryPart(t *testing.T) {
	for _, p := range part.Default.Parts() {
		p := p
		t.Run(p.Name, func(t *testing.T) {
			sess, dev := startSession(t, p.Name, nil)

			name, ok := sess.PartName()
			if !ok || name != p.Name {
				t.Errorf("PartName() = %q, %v; want %q", name, ok, p.Name)
			}

			want := []string{"signature", "calibration", "lock", "lfuse", "hfuse"}
			if p.HasExtendedFuse {
				want = append(want, "efuse")
			}
			want = append(want, "flash", "eeprom")
			if diff := cmp.Diff(want, sess.MemoryInfos().Names()); diff != "" {
				t.Errorf("memory order mismatch (-want +got):\n%s", diff)
			}

			flash, err := sess.MemoryInfo("flash")
			if err != nil {
				t.Fatalf("MemoryInfo(flash) error = %v", err)
			}
			if flash.Words != p.FlashWords || flash.PageWords != p.FlashPageWords || flash.WordBits != 16 {
				t.Errorf("flash = %+v", flash)
			}

			eeprom, _ := sess.MemoryInfo("eeprom")
			if eeprom.Words != p.EEPROMBytes || eeprom.PageWords != p.EEPROMPageBytes || eeprom.WordBits != 8 {
				t.Errorf("eeprom = %+v", eeprom)
			}

			if !dev.Powered() || !dev.HighVoltage() {
				t.Error("device should be powered with high voltage applied")
			}
			if configured, openDrain := dev.Configured(); !configured || openDrain {
				t.Errorf("Configured() = %v, %v; want true, false", configured, openDrain)
			}
		})
	}
}

func TestStartUnrecognizedPart(t *testing.T) {
	sig := [3]byte{0x1E, 0x95, 0x0F}
	dev := newDevice(t, "ATtiny85", hvsptest.WithSignature(sig))
	logger := &MockLogger{}
	sess := New(dev, WithSettleDelay(0), WithLogger(logger))

	err := sess.Start(context.Background())

	var unrecognized *UnrecognizedPartError
	if !errors.As(err, &unrecognized) {
		t.Fatalf("Start() error = %v, want UnrecognizedPartError", err)
	}
	if unrecognized.Signature != sig {
		t.Errorf("Signature = % X, want % X", unrecognized.Signature, sig)
	}
	if len(sess.MemoryInfos()) != 0 {
		t.Error("memory map should stay empty")
	}
	if _, ok := sess.PartName(); ok {
		t.Error("PartName() should be undefined")
	}
	if sess.State() != StateNotStarted {
		t.Errorf("State() = %v, want %v", sess.State(), StateNotStarted)
	}
	if _, err := sess.ReadFuse(context.Background(), "lfuse"); !errors.Is(err, ErrNotRunning) {
		t.Errorf("ReadFuse() error = %v, want ErrNotRunning", err)
	}
	if len(logger.errorMsgs) == 0 {
		t.Error("expected an error log entry")
	}

	if err := sess.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if dev.Powered() || dev.HighVoltage() {
		t.Error("Stop() after failed Start should remove power")
	}
}

func TestStartCustomCatalog(t *testing.T) {
	custom := part.MustCatalog(part.Part{
		Name:            "ATtiny85-custom",
		Signature:       [3]byte{0x1E, 0x93, 0x0B},
		FlashWords:      4096,
		FlashPageWords:  32,
		EEPROMBytes:     512,
		EEPROMPageBytes: 4,
	})
	sess, _ := startSession(t, "ATtiny85", nil, WithCatalog(custom))

	if name, _ := sess.PartName(); name != "ATtiny85-custom" {
		t.Errorf("PartName() = %q", name)
	}
	if _, err := sess.MemoryInfo("efuse"); err == nil {
		t.Error("custom part has no efuse")
	}
}

func TestStartTwice(t *testing.T) {
	sess, _ := startSession(t, "ATtiny45", nil)
	if err := sess.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestStopLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("never started", func(t *testing.T) {
		dev := newDevice(t, "ATtiny85")
		sess := New(dev, WithSettleDelay(0))
		if err := sess.Stop(ctx); err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
		if sess.State() != StateStopped {
			t.Errorf("State() = %v", sess.State())
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		sess, dev := startSession(t, "ATtiny85", nil)
		for i := 0; i < 3; i++ {
			if err := sess.Stop(ctx); err != nil {
				t.Fatalf("Stop() #%d error = %v", i, err)
			}
		}
		if dev.Powered() || dev.HighVoltage() {
			t.Error("device still energized")
		}
		if len(sess.MemoryInfos()) != 0 {
			t.Error("memory map should be cleared")
		}
	})

	t.Run("restart", func(t *testing.T) {
		sess, dev := startSession(t, "ATtiny24", nil)
		if err := sess.Stop(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := sess.ReadLock(ctx); !errors.Is(err, ErrNotRunning) {
			t.Errorf("ReadLock() after Stop error = %v, want ErrNotRunning", err)
		}
		if err := sess.Start(ctx); err != nil {
			t.Fatalf("restart error = %v", err)
		}
		if !dev.Powered() {
			t.Error("device should be powered after restart")
		}
	})

	t.Run("bus failure", func(t *testing.T) {
		boom := errors.New("adapter unplugged")
		dev := newDevice(t, "ATtiny85", hvsptest.WithFailAfter(0, boom))
		sess := New(dev, WithSettleDelay(0))
		if err := sess.Stop(ctx); err != nil {
			t.Fatalf("Stop() on idle session error = %v", err)
		}
		if err := sess.Start(ctx); !errors.Is(err, boom) {
			t.Errorf("Start() error = %v, want %v", err, boom)
		}
	})
}

func TestOperationsRequireRunning(t *testing.T) {
	ctx := context.Background()
	sess := New(newDevice(t, "ATtiny85"), WithSettleDelay(0))

	ops := map[string]func() error{
		"ReadSignature":   func() error { _, err := sess.ReadSignature(ctx); return err },
		"ReadCalibration": func() error { _, err := sess.ReadCalibration(ctx); return err },
		"ReadLock":        func() error { _, err := sess.ReadLock(ctx); return err },
		"WriteLock":       func() error { return sess.WriteLock(ctx, 0) },
		"ReadFuse":        func() error { _, err := sess.ReadFuse(ctx, "hfuse"); return err },
		"WriteFuse":       func() error { return sess.WriteFuse(ctx, "hfuse", 0) },
		"ChipErase":       func() error { return sess.ChipErase(ctx) },
		"ReadFlash":       func() error { _, err := sess.ReadFlash(ctx); return err },
		"WriteFlash":      func() error { return sess.WriteFlash(ctx, []byte{1}) },
		"ReadEEPROM":      func() error { _, err := sess.ReadEEPROM(ctx); return err },
		"WriteEEPROM":     func() error { return sess.WriteEEPROM(ctx, []byte{1}) },
		"Verify":          func() error { return sess.Verify(ctx, "flash", []byte{1}) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, ErrNotRunning) {
				t.Errorf("error = %v, want ErrNotRunning", err)
			}
		})
	}

	if _, err := sess.MemoryInfo("flash"); err == nil {
		t.Error("MemoryInfo before Start should fail")
	}
}

func TestMemoryInfoUnknown(t *testing.T) {
	sess, _ := startSession(t, "ATtiny13", nil)

	_, err := sess.MemoryInfo("efuse")
	var unknown *UnknownMemoryError
	if !errors.As(err, &unknown) || unknown.Name != "efuse" {
		t.Errorf("MemoryInfo(efuse) error = %v, want UnknownMemoryError", err)
	}
}

func TestContextCancelledWhileQueued(t *testing.T) {
	sess, _ := startSession(t, "ATtiny85", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Hold the queue so the cancelled caller has to wait.
	if err := sess.queue.Acquire(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	_, err := sess.ReadLock(ctx)
	sess.queue.Release(1)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("ReadLock() error = %v, want context.Canceled", err)
	}
}

func TestConcurrentOperationsAreSerialized(t *testing.T) {
	sess, _ := startSession(t, "ATtiny85", nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(v byte) {
			defer wg.Done()
			if err := sess.WriteEEPROM(ctx, []byte{v, v, v, v}); err != nil {
				errs <- err
				return
			}
			sig, err := sess.ReadSignature(ctx)
			if err != nil {
				errs <- err
				return
			}
			if sig != [3]byte{0x1E, 0x93, 0x0B} {
				errs <- errors.New("corrupted signature read")
			}
		}(byte(i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	data, err := sess.ReadEEPROM(ctx, Bytes(4))
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != data[1] || data[1] != data[2] || data[2] != data[3] {
		t.Errorf("interleaved page write: % X", data)
	}
}

func TestQueuedOperationsRunInOrder(t *testing.T) {
	sess, dev := startSession(t, "ATtiny85", nil)
	ctx := context.Background()

	// Hold the queue so every caller has to wait for its turn.
	if err := sess.queue.Acquire(ctx, 1); err != nil {
		t.Fatal(err)
	}

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(v byte) {
			defer wg.Done()
			if err := sess.WriteEEPROM(ctx, []byte{v}); err != nil {
				errs <- err
			}
		}(byte(i))
		// Let this caller join the queue before the next one is issued.
		time.Sleep(20 * time.Millisecond)
	}
	sess.queue.Release(1)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	var order []byte
	for _, in := range dev.Instructions() {
		if in.SII == protocol.InstrLoadDataLow {
			order = append(order, in.SDI)
		}
	}
	want := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("execution order mismatch (-want +got):\n%s", diff)
	}
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, _ = startSession(t, "ATtiny85", nil, WithLogger(NewZapLogger(zap.New(core))))

	entries := logs.FilterMessage("part detected").All()
	if len(entries) != 1 {
		t.Fatalf("got %d \"part detected\" entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["part"]; got != "ATtiny85" {
		t.Errorf("part field = %v, want ATtiny85", got)
	}
}

func TestZapLoggerNil(t *testing.T) {
	l := NewZapLogger(nil)
	l.Debug("ignored")
	l.Info("ignored")
	l.Error("ignored")
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateNotStarted: "not started",
		StateRunning:    "running",
		StateStopped:    "stopped",
		State(9):        "State(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
