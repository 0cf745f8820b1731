// Package hvsp provides a high-level API for programming AVR microcontrollers
// in High-Voltage Serial Programming mode.
//
// # Overview
//
// A Session owns one target on a Bus and sequences HVSP instructions for:
//   - Entering programming mode and detecting the part by signature
//   - Reading and writing fuses and lock bits
//   - Reading flash and EEPROM ranges
//   - Paged flash and EEPROM writes with ready polling
//   - Chip erase
//
// # Basic Usage
//
//	// User provides the bus (see package gpiobus for GPIO pins)
//	bus, err := gpiobus.Open(names)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sess := hvsp.New(bus)
//	if err := sess.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Stop(ctx)
//
//	name, _ := sess.PartName()
//	lfuse, err := sess.ReadFuse(ctx, "lfuse")
//	fmt.Printf("%s lfuse=0x%02X\n", name, lfuse)
//
// # Memories
//
// After Start, MemoryInfos lists the memories of the part in a fixed order:
// signature, calibration, lock, lfuse, hfuse, efuse (if present), flash,
// eeprom. Flash is addressed in 16-bit words; EEPROM in bytes.
//
//	data, err := sess.ReadFlash(ctx, hvsp.From(0x100), hvsp.Bytes(64))
//	err = sess.WriteEEPROM(ctx, []byte{0xDE, 0xAD, 0xBE, 0xEF})
//
// Flash pages can only be programmed from the erased state. Call ChipErase
// before WriteFlash unless the flash is known to be blank.
//
// # Configuration Options
//
//	sess := hvsp.New(bus,
//	    hvsp.WithLogger(hvsp.NewZapLogger(logger)),
//	    hvsp.WithProgressCallback(progressFunc),
//	    hvsp.WithSettleDelay(100*time.Millisecond),
//	    hvsp.WithPollAttempts(50),
//	)
//
// # Concurrency
//
// Operations on one Session are serialized in FIFO order. The context passed
// to an operation bounds only the wait for its turn; a sequence that has
// started runs to completion or to its first bus error.
//
// # Error Handling
//
// Validation errors (*UnknownMemoryError, *UnsupportedMemoryError,
// *OversizeWriteError, *AddressRangeError) are returned before any bus
// traffic. ErrTimeout and bus errors abort the current sequence and leave
// the target in an unspecified state:
//
//	err := sess.WriteFlash(ctx, image)
//	var oversize *hvsp.OversizeWriteError
//	switch {
//	case errors.As(err, &oversize):
//	    // image too large, nothing was written
//	case errors.Is(err, hvsp.ErrTimeout):
//	    // re-read flash before trusting it
//	}
package hvsp
