package heap

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-dal/internal/binary"
)

// LocalHeap is an HDF5 local heap of NUL-terminated strings.
type LocalHeap struct {
	DataSize    uint64
	FreeOffset  uint64
	DataAddress uint64
	data        []byte
}

var localHeapSignature = []byte{'H', 'E', 'A', 'P'}

// freeNull marks a heap without free blocks.
const freeNull = 1

// ErrOffset is returned for offsets outside the data segment.
var ErrOffset = errors.New("offset outside local heap")

// NewLocalHeap returns an empty heap ready for Add. Offset 0 holds the empty
// string.
func NewLocalHeap() *LocalHeap {
	return &LocalHeap{FreeOffset: freeNull, data: make([]byte, 8)}
}

// ReadLocalHeap reads a local heap at the given address.
func ReadLocalHeap(r *binary.Reader, address uint64) (*LocalHeap, error) {
	hr := r.At(int64(address))

	sig, err := hr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading local heap signature: %w", err)
	}
	if string(sig) != string(localHeapSignature) {
		return nil, fmt.Errorf("invalid local heap signature: got %q, expected \"HEAP\"", string(sig))
	}

	version, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("unsupported local heap version: %d", version)
	}
	hr.Skip(3)

	dataSize, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	freeOffset, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	dataAddr, err := hr.ReadOffset()
	if err != nil {
		return nil, err
	}

	heap := &LocalHeap{
		DataSize:    dataSize,
		FreeOffset:  freeOffset,
		DataAddress: dataAddr,
	}
	heap.data, err = r.At(int64(dataAddr)).ReadBytes(int(dataSize))
	if err != nil {
		return nil, fmt.Errorf("reading local heap data: %w", err)
	}
	return heap, nil
}

// GetString reads a NUL-terminated string at the given offset in the heap.
func (h *LocalHeap) GetString(offset uint64) string {
	if offset >= uint64(len(h.data)) {
		return ""
	}
	end := offset
	for end < uint64(len(h.data)) && h.data[end] != 0 {
		end++
	}
	return string(h.data[offset:end])
}

// String is like GetString but reports offsets outside the heap.
func (h *LocalHeap) String(offset uint64) (string, error) {
	if offset >= uint64(len(h.data)) {
		return "", fmt.Errorf("%w: %d (size %d)", ErrOffset, offset, len(h.data))
	}
	return h.GetString(offset), nil
}

// Add appends s to the data segment and returns its offset.
func (h *LocalHeap) Add(s string) uint64 {
	off := uint64(len(h.data))
	n := (len(s) + 1 + 7) &^ 7
	h.data = append(h.data, make([]byte, n)...)
	copy(h.data[off:], s)
	h.DataSize = uint64(len(h.data))
	return off
}

// HeaderSize returns the size of the heap header for cfg.
func HeaderSize(cfg binary.Config) int {
	return 8 + 2*cfg.LengthSize + cfg.OffsetSize
}

// Size returns the encoded size of header and data segment.
func (h *LocalHeap) Size(cfg binary.Config) int {
	return HeaderSize(cfg) + len(h.data)
}

// Encode returns the heap laid out at address, data segment directly after
// the header.
func (h *LocalHeap) Encode(cfg binary.Config, address uint64) ([]byte, error) {
	h.DataSize = uint64(len(h.data))
	h.DataAddress = address + uint64(HeaderSize(cfg))

	buf := binary.NewBuffer(h.Size(cfg))
	w := binary.NewWriter(buf, cfg)
	if err := w.WriteBytes(localHeapSignature); err != nil {
		return nil, err
	}
	if err := w.WriteBytes([]byte{0, 0, 0, 0}); err != nil {
		return nil, err
	}
	if err := w.WriteLength(h.DataSize); err != nil {
		return nil, err
	}
	if err := w.WriteLength(h.FreeOffset); err != nil {
		return nil, err
	}
	if err := w.WriteOffset(h.DataAddress); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(h.data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
