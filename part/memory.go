package part

// Memory names, in memory map order.
const (
	MemSignature   = "signature"
	MemCalibration = "calibration"
	MemLock        = "lock"
	MemLowFuse     = "lfuse"
	MemHighFuse    = "hfuse"
	MemExtFuse     = "efuse"
	MemFlash       = "flash"
	MemEEPROM      = "eeprom"
)

// MemoryInfo describes the geometry of one memory of an attached part.
type MemoryInfo struct {
	// WordBits is 8 or 16
	WordBits int

	// PageWords is the write granularity in words (1 for unpaged memories)
	PageWords int

	// Words is the total size in words
	Words int

	// Writable reports whether the memory can be programmed
	Writable bool
}

// WordBytes returns the number of bytes per word.
func (m MemoryInfo) WordBytes() int {
	return m.WordBits / 8
}

// SizeBytes returns the capacity in bytes.
func (m MemoryInfo) SizeBytes() int {
	return m.Words * m.WordBytes()
}

// PageBytes returns the page size in bytes.
func (m MemoryInfo) PageBytes() int {
	return m.PageWords * m.WordBytes()
}

// Memory is a named entry of a MemoryMap.
type Memory struct {
	Name string
	Info MemoryInfo
}

// MemoryMap is the ordered set of memories of a part.
type MemoryMap []Memory

// Lookup returns the MemoryInfo registered under name.
func (m MemoryMap) Lookup(name string) (MemoryInfo, bool) {
	for _, mem := range m {
		if mem.Name == name {
			return mem.Info, true
		}
	}
	return MemoryInfo{}, false
}

// Names returns the memory names in map order.
func (m MemoryMap) Names() []string {
	names := make([]string, len(m))
	for i, mem := range m {
		names[i] = mem.Name
	}
	return names
}

var byteRegister = MemoryInfo{WordBits: 8, PageWords: 1, Words: 1, Writable: true}

// BuildMemoryMap derives the memory map of a part.
//
// The order is fixed: signature, calibration, lock, lfuse, hfuse, [efuse],
// flash, eeprom.
func BuildMemoryMap(p *Part) MemoryMap {
	m := MemoryMap{
		{Name: MemSignature, Info: MemoryInfo{WordBits: 8, PageWords: 1, Words: 3}},
		{Name: MemCalibration, Info: MemoryInfo{WordBits: 8, PageWords: 1, Words: 1}},
		{Name: MemLock, Info: byteRegister},
		{Name: MemLowFuse, Info: byteRegister},
		{Name: MemHighFuse, Info: byteRegister},
	}
	if p.HasExtendedFuse {
		m = append(m, Memory{Name: MemExtFuse, Info: byteRegister})
	}
	return append(m,
		Memory{Name: MemFlash, Info: MemoryInfo{WordBits: 16, PageWords: p.FlashPageWords, Words: p.FlashWords, Writable: true}},
		Memory{Name: MemEEPROM, Info: MemoryInfo{WordBits: 8, PageWords: p.EEPROMPageBytes, Words: p.EEPROMBytes, Writable: true}},
	)
}
