// Package hvsptest provides a simulated AVR device for testing HVSP code.
//
// The simulated Device implements the same line-level bus methods a real
// adapter does (Configure, Read, Write, WriteRead, SetPower,
// SetHighVoltage). It decodes frames from SCI edges, runs the HVSP
// instruction state machine, and reflects programmed data back on read.
//
//	p, _ := part.Default.ByName("ATtiny85")
//	dev := hvsptest.New(*p, hvsptest.WithBusyPolls(3))
//	sess := hvsp.New(dev, hvsp.WithSettleDelay(0))
//
// Counters and the instruction log (Instructions, Count, Calls, Polls) make
// bus traffic observable from tests.
package hvsptest
