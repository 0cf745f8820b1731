package hvsp

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/moffa90/go-hvsp/part"
	"github.com/moffa90/go-hvsp/protocol"
)

// ReadOption narrows a ranged read. Addresses are word addresses: 16-bit
// words for flash, bytes for EEPROM.
type ReadOption func(*readRange)

type readRange struct {
	start    int
	stop     int
	count    int
	hasCount bool
}

// From sets the first address to read. Default is 0.
func From(addr int) ReadOption {
	return func(r *readRange) {
		r.start = addr
	}
}

// To sets the address after the last one to read. Default is the end of the memory.
func To(addr int) ReadOption {
	return func(r *readRange) {
		r.stop = addr
	}
}

// Bytes reads n bytes starting at From. It takes precedence over To.
// A flash read of an odd byte count drops the final high byte.
func Bytes(n int) ReadOption {
	return func(r *readRange) {
		r.count = n
		r.hasCount = true
	}
}

// pagedMemory holds what the sequencer needs about flash or EEPROM.
type pagedMemory struct {
	name     string
	info     part.MemoryInfo
	readCmd  byte
	writeCmd byte
}

func (s *Session) pagedMemory(name string) (pagedMemory, error) {
	m := pagedMemory{name: name}
	switch name {
	case part.MemFlash:
		m.readCmd, m.writeCmd = protocol.CmdReadFlash, protocol.CmdWriteFlash
	case part.MemEEPROM:
		m.readCmd, m.writeCmd = protocol.CmdReadEEPROM, protocol.CmdWriteEEPROM
	default:
		return m, &UnknownMemoryError{Name: name}
	}
	info, err := s.MemoryInfo(name)
	if err != nil {
		return m, err
	}
	m.info = info
	return m, nil
}

func (m pagedMemory) flash() bool {
	return m.info.WordBits == 16
}

func (m pagedMemory) resolve(opts []ReadOption) (readRange, error) {
	r := readRange{stop: m.info.Words}
	for _, opt := range opts {
		opt(&r)
	}
	if r.hasCount {
		wb := m.info.WordBytes()
		r.stop = r.start + (r.count+wb-1)/wb
	}
	if r.start < 0 || r.stop < r.start || r.stop > m.info.Words || (r.hasCount && r.count < 0) {
		return r, &AddressRangeError{Memory: m.name, Start: r.start, Stop: r.stop, Words: m.info.Words}
	}
	return r, nil
}

// Read reads a range of "flash" or "eeprom". The default range is the whole
// memory. Flash bytes are returned low byte first for each word.
func (s *Session) Read(ctx context.Context, memory string, opts ...ReadOption) ([]byte, error) {
	var out []byte
	err := s.running(ctx, func() error {
		m, err := s.pagedMemory(memory)
		if err != nil {
			return err
		}
		r, err := m.resolve(opts)
		if err != nil {
			return err
		}
		out, err = s.read(m, r)
		return errors.WithMessagef(err, "read %s", memory)
	})
	return out, err
}

// ReadFlash reads flash. See Read.
func (s *Session) ReadFlash(ctx context.Context, opts ...ReadOption) ([]byte, error) {
	return s.Read(ctx, part.MemFlash, opts...)
}

// ReadEEPROM reads EEPROM. See Read.
func (s *Session) ReadEEPROM(ctx context.Context, opts ...ReadOption) ([]byte, error) {
	return s.Read(ctx, part.MemEEPROM, opts...)
}

func (s *Session) read(m pagedMemory, r readRange) ([]byte, error) {
	s.highAddr = noAddress
	if _, err := s.transfer(protocol.LoadCommand(m.readCmd)); err != nil {
		return nil, err
	}

	out := make([]byte, 0, (r.stop-r.start)*m.info.WordBytes())
	for addr := r.start; addr < r.stop; addr++ {
		if err := s.loadAddress(addr); err != nil {
			return nil, err
		}
		lo, err := s.run(protocol.Strobe(protocol.InstrReadLow))
		if err != nil {
			return nil, err
		}
		out = append(out, lo)
		if !m.flash() {
			continue
		}
		hi, err := s.run(protocol.Strobe(protocol.InstrReadHigh))
		if err != nil {
			return nil, err
		}
		out = append(out, hi)
	}

	if r.hasCount && len(out) > r.count {
		out = out[:r.count]
	}
	return out, nil
}

// Write programs "flash" or "eeprom" from address 0, one page at a time.
//
// The payload is checked against the memory capacity before any bus
// traffic. Each page is staged into the page buffer, committed, and waited
// on before the next one. An odd flash payload is padded with 0xFF.
//
// A failure mid-write leaves the memory partially programmed; read it back
// before trusting its contents.
func (s *Session) Write(ctx context.Context, memory string, data []byte) error {
	return s.running(ctx, func() error {
		m, err := s.pagedMemory(memory)
		if err != nil {
			return err
		}
		if capacity := m.info.SizeBytes(); len(data) > capacity {
			return &OversizeWriteError{Memory: memory, Requested: len(data), Capacity: capacity}
		}
		if len(data) == 0 {
			return nil
		}
		if err := s.write(m, data); err != nil {
			s.logError("write failed", "memory", memory, "error", err)
			return errors.WithMessagef(err, "write %s", memory)
		}
		return nil
	})
}

// WriteFlash programs flash. See Write.
func (s *Session) WriteFlash(ctx context.Context, data []byte) error {
	return s.Write(ctx, part.MemFlash, data)
}

// WriteEEPROM programs EEPROM. See Write.
func (s *Session) WriteEEPROM(ctx context.Context, data []byte) error {
	return s.Write(ctx, part.MemEEPROM, data)
}

func (s *Session) write(m pagedMemory, data []byte) error {
	startTime := time.Now()
	pageBytes := m.info.PageBytes()
	wordBytes := m.info.WordBytes()
	totalPages := (len(data) + pageBytes - 1) / pageBytes

	s.highAddr = noAddress
	if _, err := s.transfer(protocol.LoadCommand(m.writeCmd)); err != nil {
		return err
	}

	for page := 0; page < totalPages; page++ {
		off := page * pageBytes
		end := off + pageBytes
		if end > len(data) {
			end = len(data)
		}
		base := off / wordBytes

		var err error
		if m.flash() {
			err = s.stageFlashPage(base, data[off:end])
		} else {
			err = s.stageEEPROMPage(base, data[off:end])
		}
		if err != nil {
			return err
		}

		if err := s.commitPage(base); err != nil {
			return errors.WithMessagef(err, "page %d", page)
		}

		s.reportProgress(Progress{
			Memory:       m.name,
			Phase:        PhaseWriting,
			Page:         page + 1,
			TotalPages:   totalPages,
			Percentage:   float64(page+1) / float64(totalPages) * 100,
			BytesWritten: end,
			ElapsedTime:  time.Since(startTime),
		})
	}

	if _, err := s.transfer(protocol.LoadCommand(protocol.CmdNoOperation)); err != nil {
		return err
	}

	s.reportProgress(Progress{
		Memory:       m.name,
		Phase:        PhaseComplete,
		Page:         totalPages,
		TotalPages:   totalPages,
		Percentage:   100,
		BytesWritten: len(data),
		ElapsedTime:  time.Since(startTime),
	})

	s.logInfo("write complete",
		"memory", m.name,
		"bytes", len(data),
		"pages", totalPages,
		"elapsed", time.Since(startTime).String(),
	)
	return nil
}

// stageFlashPage loads word pairs into the flash page buffer. Only the low
// address byte is loaded per word; the high byte follows at commit.
func (s *Session) stageFlashPage(base int, chunk []byte) error {
	for i := 0; i < len(chunk); i += 2 {
		lo := chunk[i]
		hi := byte(protocol.ErasedByte)
		if i+1 < len(chunk) {
			hi = chunk[i+1]
		}

		seq := []protocol.Instruction{
			protocol.LoadAddressLow(byte(base + i/2)),
			protocol.LoadDataHigh(hi),
		}
		seq = append(seq, protocol.ProgramPulse(protocol.InstrProgramHigh)...)
		seq = append(seq, protocol.LoadDataLow(lo))
		seq = append(seq, protocol.ProgramPulse(protocol.InstrProgramLow)...)
		if _, err := s.run(seq); err != nil {
			return err
		}
	}
	return nil
}

// stageEEPROMPage loads bytes into the EEPROM page buffer, with the full
// address for every byte.
func (s *Session) stageEEPROMPage(base int, chunk []byte) error {
	for i, b := range chunk {
		addr := base + i
		seq := []protocol.Instruction{
			protocol.LoadAddressLow(byte(addr)),
			protocol.LoadAddressHigh(byte(addr >> 8)),
			protocol.LoadDataLow(b),
		}
		seq = append(seq, protocol.ProgramPulse(protocol.InstrProgramLow)...)
		if _, err := s.run(seq); err != nil {
			return err
		}
	}
	return nil
}

// commitPage loads the page's high address byte, strobes WR and waits.
func (s *Session) commitPage(base int) error {
	high := base >> 8
	if _, err := s.transfer(protocol.LoadAddressHigh(byte(high))); err != nil {
		return err
	}
	s.highAddr = high
	return s.strobeWrite(protocol.Strobe(protocol.InstrWriteLow))
}

// Verify reads back len(data) bytes of memory from address 0 and compares
// them with data. Empty data is checked without bus traffic.
func (s *Session) Verify(ctx context.Context, memory string, data []byte) error {
	return s.running(ctx, func() error {
		m, err := s.pagedMemory(memory)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return nil
		}
		r, err := m.resolve([]ReadOption{Bytes(len(data))})
		if err != nil {
			return err
		}
		got, err := s.read(m, r)
		if err != nil {
			return errors.WithMessagef(err, "verify %s", memory)
		}
		for i := range data {
			if got[i] != data[i] {
				return &VerifyError{Memory: memory, Offset: i, Expected: data[i], Actual: got[i]}
			}
		}
		s.logDebug("verified", "memory", memory, "bytes", len(data))
		return nil
	})
}

// reportProgress calls the progress callback if configured.
func (s *Session) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}
