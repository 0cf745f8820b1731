package hvsptest

// Option configures a simulated Device.
type Option func(*Device)

// WithSignature overrides the signature the device reports.
func WithSignature(sig [3]byte) Option {
	return func(d *Device) {
		d.Signature = sig
	}
}

// WithCalibration sets the oscillator calibration byte.
func WithCalibration(b byte) Option {
	return func(d *Device) {
		d.Calibration = b
	}
}

// WithBusyPolls makes the device report busy for n polls after each write.
func WithBusyPolls(n int) Option {
	return func(d *Device) {
		if n >= 0 {
			d.busyPolls = n
		}
	}
}

// WithStuckBusy makes SDO never rise during ready polling.
func WithStuckBusy() Option {
	return func(d *Device) {
		d.stuckBusy = true
	}
}

// WithFailAfter makes every bus call after the first n return err.
func WithFailAfter(n int, err error) Option {
	return func(d *Device) {
		d.failAfter = n
		d.failErr = err
	}
}
