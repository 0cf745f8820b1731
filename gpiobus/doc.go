// Package gpiobus implements the hvsp bus on host GPIO pins through periph.io.
//
// Wire SDI, SII and SCI to host outputs, SDO to a host input, and drive the
// target supply and the 12V RESET switch from two more outputs:
//
//	bus, err := gpiobus.Open(gpiobus.PinNames{
//	    SDI: "GPIO17", SII: "GPIO27", SCI: "GPIO22", SDO: "GPIO23",
//	    Power: "GPIO24", HighVoltage: "GPIO25",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sess := hvsp.New(bus)
package gpiobus
