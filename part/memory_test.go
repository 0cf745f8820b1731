package part

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildMemoryMapOrder(t *testing.T) {
	for _, p := range Default.Parts() {
		p := p
		t.Run(p.Name, func(t *testing.T) {
			m := BuildMemoryMap(&p)

			want := []string{MemSignature, MemCalibration, MemLock, MemLowFuse, MemHighFuse}
			if p.HasExtendedFuse {
				want = append(want, MemExtFuse)
			}
			want = append(want, MemFlash, MemEEPROM)

			if diff := cmp.Diff(want, m.Names()); diff != "" {
				t.Errorf("memory order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildMemoryMapGeometry(t *testing.T) {
	p, _ := Default.ByName("ATtiny85")
	m := BuildMemoryMap(p)

	flash, ok := m.Lookup(MemFlash)
	if !ok {
		t.Fatal("flash missing")
	}
	want := MemoryInfo{WordBits: 16, PageWords: 32, Words: 4096, Writable: true}
	if diff := cmp.Diff(want, flash); diff != "" {
		t.Errorf("flash mismatch (-want +got):\n%s", diff)
	}
	if flash.SizeBytes() != 8192 || flash.PageBytes() != 64 {
		t.Errorf("flash bytes = %d/%d, want 8192/64", flash.SizeBytes(), flash.PageBytes())
	}

	eeprom, _ := m.Lookup(MemEEPROM)
	if eeprom.SizeBytes() != 512 || eeprom.PageBytes() != 4 || eeprom.WordBits != 8 {
		t.Errorf("eeprom = %+v", eeprom)
	}

	sig, _ := m.Lookup(MemSignature)
	if sig.Writable || sig.Words != 3 {
		t.Errorf("signature = %+v", sig)
	}

	if _, ok := m.Lookup("fuse"); ok {
		t.Error("unexpected memory \"fuse\"")
	}
}

func TestBuildMemoryMapNoExtendedFuse(t *testing.T) {
	p, _ := Default.ByName("ATtiny13")
	m := BuildMemoryMap(p)
	if len(m) != 7 {
		t.Errorf("len = %d, want 7", len(m))
	}
	if _, ok := m.Lookup(MemExtFuse); ok {
		t.Error("ATtiny13 should not have efuse")
	}
}
