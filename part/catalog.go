package part

import (
	"fmt"

	"github.com/pkg/errors"
)

// Part describes an HVSP-programmable AVR device.
type Part struct {
	// Name is the catalog key, e.g. "ATtiny85"
	Name string

	// Signature is the 3-byte device signature
	Signature [3]byte

	// FlashWords is the flash size in 16-bit words
	FlashWords int

	// FlashPageWords is the flash page size in words
	FlashPageWords int

	// EEPROMBytes is the EEPROM size in bytes
	EEPROMBytes int

	// EEPROMPageBytes is the EEPROM page size in bytes
	EEPROMPageBytes int

	// HasExtendedFuse reports whether the part has an efuse byte
	HasExtendedFuse bool
}

// SignatureString formats a signature the way datasheets print it.
func SignatureString(sig [3]byte) string {
	return fmt.Sprintf("%02X %02X %02X", sig[0], sig[1], sig[2])
}

// Catalog is a read-only registry of parts keyed by signature.
type Catalog struct {
	parts []Part
	index map[[3]byte]int
}

// NewCatalog builds a catalog. Duplicate signatures or names are rejected.
func NewCatalog(parts ...Part) (*Catalog, error) {
	c := &Catalog{
		parts: make([]Part, 0, len(parts)),
		index: make(map[[3]byte]int, len(parts)),
	}
	names := make(map[string]bool, len(parts))

	for _, p := range parts {
		if p.Name == "" {
			return nil, errors.Errorf("part with signature %s has no name", SignatureString(p.Signature))
		}
		if names[p.Name] {
			return nil, errors.Errorf("duplicate part name %q", p.Name)
		}
		if i, ok := c.index[p.Signature]; ok {
			return nil, errors.Errorf("duplicate signature %s: %s and %s",
				SignatureString(p.Signature), c.parts[i].Name, p.Name)
		}
		if err := validate(p); err != nil {
			return nil, errors.Wrapf(err, "part %s", p.Name)
		}
		names[p.Name] = true
		c.index[p.Signature] = len(c.parts)
		c.parts = append(c.parts, p)
	}

	return c, nil
}

// MustCatalog is like NewCatalog but panics on error.
func MustCatalog(parts ...Part) *Catalog {
	c, err := NewCatalog(parts...)
	if err != nil {
		panic(err)
	}
	return c
}

func validate(p Part) error {
	if p.FlashWords <= 0 || p.FlashPageWords <= 0 || p.FlashWords%p.FlashPageWords != 0 {
		return errors.Errorf("invalid flash geometry %d/%d words", p.FlashWords, p.FlashPageWords)
	}
	if p.EEPROMBytes <= 0 || p.EEPROMPageBytes <= 0 || p.EEPROMBytes%p.EEPROMPageBytes != 0 {
		return errors.Errorf("invalid EEPROM geometry %d/%d bytes", p.EEPROMBytes, p.EEPROMPageBytes)
	}
	if p.FlashWords > 1<<16 || p.EEPROMBytes > 1<<16 {
		return errors.New("memory exceeds 16-bit address space")
	}
	return nil
}

// Lookup returns the part with an exactly matching signature.
func (c *Catalog) Lookup(sig [3]byte) (*Part, bool) {
	i, ok := c.index[sig]
	if !ok {
		return nil, false
	}
	p := c.parts[i]
	return &p, true
}

// ByName returns the part registered under name.
func (c *Catalog) ByName(name string) (*Part, bool) {
	for i := range c.parts {
		if c.parts[i].Name == name {
			p := c.parts[i]
			return &p, true
		}
	}
	return nil, false
}

// Parts returns a copy of the catalog entries in registration order.
func (c *Catalog) Parts() []Part {
	out := make([]Part, len(c.parts))
	copy(out, c.parts)
	return out
}

// Default is the built-in catalog of HVSP parts.
var Default = MustCatalog(
	Part{Name: "ATtiny13", Signature: [3]byte{0x1E, 0x90, 0x07}, FlashWords: 512, FlashPageWords: 16, EEPROMBytes: 64, EEPROMPageBytes: 4},
	Part{Name: "ATtiny24", Signature: [3]byte{0x1E, 0x91, 0x0B}, FlashWords: 1024, FlashPageWords: 16, EEPROMBytes: 128, EEPROMPageBytes: 4, HasExtendedFuse: true},
	Part{Name: "ATtiny44", Signature: [3]byte{0x1E, 0x92, 0x07}, FlashWords: 2048, FlashPageWords: 32, EEPROMBytes: 256, EEPROMPageBytes: 4, HasExtendedFuse: true},
	Part{Name: "ATtiny84", Signature: [3]byte{0x1E, 0x93, 0x0C}, FlashWords: 4096, FlashPageWords: 32, EEPROMBytes: 512, EEPROMPageBytes: 4, HasExtendedFuse: true},
	Part{Name: "ATtiny25", Signature: [3]byte{0x1E, 0x91, 0x08}, FlashWords: 1024, FlashPageWords: 16, EEPROMBytes: 128, EEPROMPageBytes: 4, HasExtendedFuse: true},
	Part{Name: "ATtiny45", Signature: [3]byte{0x1E, 0x92, 0x06}, FlashWords: 2048, FlashPageWords: 32, EEPROMBytes: 256, EEPROMPageBytes: 4, HasExtendedFuse: true},
	Part{Name: "ATtiny85", Signature: [3]byte{0x1E, 0x93, 0x0B}, FlashWords: 4096, FlashPageWords: 32, EEPROMBytes: 512, EEPROMPageBytes: 4, HasExtendedFuse: true},
)
