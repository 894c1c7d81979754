// Package heap implements the HDF5 local heap.
//
// A local heap (signature "HEAP") is a small block of NUL-terminated
// strings referenced by offset. Datasets stored in external files keep the
// external file names in a local heap pointed to by their external file
// list message.
//
// Local heap structure:
//   - Fixed header with data segment size, free list offset and data address
//   - Data segment of NUL-terminated strings, each padded to 8 bytes
//
// Reading:
//
//	h, err := heap.ReadLocalHeap(reader, heapAddress)
//	name := h.GetString(nameOffset)
//
// Writing:
//
//	h := heap.NewLocalHeap()
//	off := h.Add("ext.dat")
//	raw, err := h.Encode(cfg, address)
package heap
