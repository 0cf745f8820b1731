package hvsp

import "time"

// Progress phases.
const (
	PhaseWriting  = "writing"
	PhaseComplete = "complete"
)

// Progress contains information about a paged write.
// Passed to ProgressCallback once per committed page.
type Progress struct {
	// Memory is "flash" or "eeprom"
	Memory string

	// Phase is PhaseWriting while pages are committed, then PhaseComplete
	Phase string

	// Page is the number of pages committed so far
	Page int

	// TotalPages is the number of pages in the write
	TotalPages int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the total number of bytes committed so far
	BytesWritten int

	// ElapsedTime is the time elapsed since the write started
	ElapsedTime time.Duration
}

// ProgressCallback is called during paged writes to report progress.
// Implementations should return quickly; the bus is held while it runs.
//
// Example:
//
//	sess := hvsp.New(bus,
//	    hvsp.WithProgressCallback(func(p hvsp.Progress) {
//	        fmt.Printf("[%s] %.1f%% - page %d/%d\n",
//	            p.Memory, p.Percentage, p.Page, p.TotalPages)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the session.
// This allows integration with any logging framework; NewZapLogger adapts zap.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	sess := hvsp.New(bus, hvsp.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
