// Package ihex parses Intel HEX files into a contiguous memory image.
//
// # Record Format
//
// Every line is a record:
//
//	:[Count(2)][Offset(4)][Type(2)][Data(2*Count)][Checksum(2)]
//
// Example:
//
//	:0400000001020304F2
//	  04 = Data byte count
//	  0000 = Load offset (big-endian)
//	  00 = Record type (data)
//	  01020304 = Data
//	  F2 = Checksum (two's complement of the byte sum)
//
// Extended segment (02) and extended linear (04) records move the base
// address of the data records that follow. The file ends with an
// end-of-file (01) record.
//
// # Usage
//
//	img, err := ihex.Parse("blink.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	flash, err := img.From(0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = sess.WriteFlash(ctx, flash)
//
// Addresses between data records are filled with 0xFF, the erased value
// of AVR flash and EEPROM.
package ihex
