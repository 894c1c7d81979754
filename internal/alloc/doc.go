// Package alloc manages file space for HDF5 writes.
//
// Object headers, local heaps and contiguous dataset storage are placed at
// addresses handed out by an [Allocator]. New space is taken from the end
// of the file. Blocks released with Free, such as group headers that had to
// move because they outgrew their chunk, are reused first-fit by later
// allocations of the same or smaller size.
//
//	a := alloc.New(sb.EOFAddress)
//	addr := a.AllocTagged(hdrSize, "group header")
//	a.Free(oldAddr, oldSize)
package alloc
