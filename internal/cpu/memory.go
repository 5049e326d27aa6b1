package cpu

import "iquecore/internal/bus"

// Memory is the typed-access surface the execution engine needs from
// internal/bus; *bus.Bus satisfies it structurally. Narrowing the
// dependency to an interface here is a small per-concern capability
// contract.
type Memory interface {
	ReadU8(vaddr uint64, log bus.Logger) (uint8, *bus.AccessFault)
	WriteU8(vaddr uint64, v uint8, log bus.Logger) *bus.AccessFault
	ReadU16(vaddr uint64, log bus.Logger) (uint16, *bus.AccessFault)
	WriteU16(vaddr uint64, v uint16, log bus.Logger) *bus.AccessFault
	ReadU32(vaddr uint64, log bus.Logger) (uint32, *bus.AccessFault)
	WriteU32(vaddr uint64, v uint32, log bus.Logger) *bus.AccessFault
	ReadU64(vaddr uint64, log bus.Logger) (uint64, *bus.AccessFault)
	WriteU64(vaddr uint64, v uint64, log bus.Logger) *bus.AccessFault
}
