package ihex

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Constants for record parsing.
const (
	// MinimumRecordBytes is count + offset + type + checksum
	MinimumRecordBytes = 5

	// RecordHeaderSize is count + offset + type
	RecordHeaderSize = 4

	// MaxImageSize bounds the span between the lowest and highest address
	MaxImageSize = 16 << 20
)

// Parse parses an Intel HEX file from the given path.
//
// Example:
//
//	img, err := ihex.Parse("blink.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d bytes at 0x%04X\n", len(img.Data), img.Base)
func Parse(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses Intel HEX from any io.Reader.
//
// Record types 00 (data), 01 (end of file), 02 (extended segment address)
// and 04 (extended linear address) are supported; start address records
// (03, 05) are accepted and ignored. Lines after the end-of-file record
// are ignored. Later records overwrite earlier ones at the same address.
func ParseReader(r io.Reader) (*Image, error) {
	scanner := bufio.NewScanner(r)

	img := &Image{}
	var base, low, high uint32
	haveData := false
	sawEOF := false

	lineNum := 0
	for !sawEOF && scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines
		if line == "" {
			continue
		}

		rec, err := parseRecord(line, lineNum)
		if err != nil {
			return nil, err
		}
		img.Records = append(img.Records, rec)

		switch rec.Type {
		case RecordData:
			if len(rec.Data) == 0 {
				continue
			}
			addr := base + uint32(rec.Offset)
			end := addr + uint32(len(rec.Data))
			if !haveData || addr < low {
				low = addr
			}
			if !haveData || end > high {
				high = end
			}
			haveData = true
		case RecordEOF:
			sawEOF = true
		case RecordExtendedSegment, RecordExtendedLinear:
			if len(rec.Data) != 2 {
				return nil, errors.Errorf("line %d: address record has %d data bytes, expected 2", lineNum, len(rec.Data))
			}
			base = extendedBase(rec)
		case 0x03, 0x05:
			// start address, irrelevant for programming
		default:
			return nil, errors.Errorf("line %d: unsupported record type 0x%02X", lineNum, rec.Type)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	if !sawEOF {
		return nil, errors.New("missing end-of-file record")
	}
	if !haveData {
		return nil, errors.New("no data records found in file")
	}
	if high-low > MaxImageSize {
		return nil, errors.Errorf("image spans %d bytes, maximum is %d", high-low, MaxImageSize)
	}

	img.Base = low
	img.Data = make([]byte, high-low)
	for i := range img.Data {
		img.Data[i] = FillByte
	}

	// Second pass in file order so later records win.
	base = 0
	for _, rec := range img.Records {
		switch rec.Type {
		case RecordData:
			if len(rec.Data) > 0 {
				copy(img.Data[base+uint32(rec.Offset)-low:], rec.Data)
			}
		case RecordExtendedSegment, RecordExtendedLinear:
			base = extendedBase(rec)
		}
	}

	return img, nil
}

func extendedBase(rec *Record) uint32 {
	v := uint32(rec.Data[0])<<8 | uint32(rec.Data[1])
	if rec.Type == RecordExtendedSegment {
		return v << 4
	}
	return v << 16
}

// parseRecord decodes one line.
//
// Record format:
//
//	:[Count(1)][Offset(2)][Type(1)][Data(Count)][Checksum(1)]
//
// All values are hex-encoded. Offset is big-endian.
//
// Example: ":0300300002337A1E"
//
//	Count: 0x03
//	Offset: 0x0030
//	Type: 0x00 (data)
//	Data: [0x02, 0x33, 0x7A]
//	Checksum: 0x1E
func parseRecord(line string, lineNum int) (*Record, error) {
	if line[0] != ':' {
		return nil, errors.Errorf("line %d: record must start with ':'", lineNum)
	}

	data, err := hex.DecodeString(line[1:])
	if err != nil {
		return nil, errors.Wrapf(err, "line %d: invalid hex data", lineNum)
	}

	if len(data) < MinimumRecordBytes {
		return nil, errors.Errorf("line %d: record too short: got %d bytes, minimum is %d",
			lineNum, len(data), MinimumRecordBytes)
	}

	count := int(data[0])
	if expected := RecordHeaderSize + count + 1; len(data) != expected {
		return nil, errors.Errorf("line %d: length mismatch: got %d bytes, expected %d",
			lineNum, len(data), expected)
	}

	checksum := data[len(data)-1]
	if calculated := calculateChecksum(data[:len(data)-1]); checksum != calculated {
		return nil, &ChecksumError{Line: lineNum, Expected: calculated, Actual: checksum}
	}

	rec := &Record{
		Type:     data[3],
		Offset:   uint16(data[1])<<8 | uint16(data[2]),
		Data:     make([]byte, count),
		Checksum: checksum,
	}
	copy(rec.Data, data[RecordHeaderSize:RecordHeaderSize+count])

	return rec, nil
}

// calculateChecksum computes the two's complement of the byte sum.
func calculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}
