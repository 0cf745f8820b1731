// Package part holds the catalog of HVSP-programmable AVR parts and the
// memory map derived from a detected part.
//
// Parts are looked up by their 3-byte signature:
//
//	p, ok := part.Default.Lookup([3]byte{0x1E, 0x93, 0x0B})
//	if ok {
//	    fmt.Println(p.Name) // ATtiny85
//	}
//
// A memory map lists the memories of a part in a fixed order:
//
//	for _, mem := range part.BuildMemoryMap(p) {
//	    fmt.Printf("%-12s %d words\n", mem.Name, mem.Info.Words)
//	}
//
// Custom catalogs are built with NewCatalog, which rejects duplicate
// signatures and invalid geometry.
package part
