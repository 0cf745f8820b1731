package hvsp

import (
	"context"
	"errors"
	"testing"

	"github.com/moffa90/go-hvsp/hvsptest"
)

func TestAwaitReady(t *testing.T) {
	tests := []struct {
		name      string
		ready     []bool
		attempts  int
		wantErr   error
		wantReads int
	}{
		{
			name:      "ready at once",
			ready:     []bool{true},
			attempts:  DefaultPollAttempts,
			wantReads: 1,
		},
		{
			name:      "ready after busy",
			ready:     []bool{false, false, false, true},
			attempts:  DefaultPollAttempts,
			wantReads: 4,
		},
		{
			name:      "never ready",
			attempts:  DefaultPollAttempts,
			wantErr:   ErrTimeout,
			wantReads: DefaultPollAttempts,
		},
		{
			name:      "custom budget",
			attempts:  3,
			wantErr:   ErrTimeout,
			wantReads: 3,
		},
		{
			name:      "ready on last attempt",
			ready:     []bool{false, false, true},
			attempts:  3,
			wantReads: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &recordingBus{ready: tt.ready}
			sess := New(bus, WithPollAttempts(tt.attempts))

			err := sess.awaitReady()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("awaitReady() error = %v, want %v", err, tt.wantErr)
			}
			if len(bus.ops) != tt.wantReads {
				t.Errorf("reads = %d, want %d", len(bus.ops), tt.wantReads)
			}
		})
	}
}

func TestAwaitReadyBusError(t *testing.T) {
	boom := errors.New("boom")
	sess := New(&recordingBus{failOn: 1, failErr: boom})
	if err := sess.awaitReady(); !errors.Is(err, boom) {
		t.Errorf("awaitReady() error = %v, want %v", err, boom)
	}
}

func TestWriteTimesOutAfterFiftyPolls(t *testing.T) {
	logger := &MockLogger{}
	sess, dev := startSession(t, "ATtiny85", []hvsptest.Option{hvsptest.WithStuckBusy()}, WithLogger(logger))

	err := sess.WriteFuse(context.Background(), "lfuse", 0xE2)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WriteFuse() error = %v, want ErrTimeout", err)
	}
	if got := dev.Polls(); got != 50 {
		t.Errorf("polls = %d, want exactly 50", got)
	}
	if len(logger.errorMsgs) == 0 {
		t.Error("timeout should be logged")
	}
}

func TestWriteWaitsForBusyDevice(t *testing.T) {
	sess, dev := startSession(t, "ATtiny85", []hvsptest.Option{hvsptest.WithBusyPolls(7)})

	if err := sess.WriteFuse(context.Background(), "hfuse", 0x5F); err != nil {
		t.Fatalf("WriteFuse() error = %v", err)
	}
	if got := dev.Polls(); got != 8 {
		t.Errorf("polls = %d, want 8", got)
	}
}
