package message

import (
	"fmt"

	"github.com/robert-malhotra/go-dal/internal/binary"
)

// LayoutClass is the storage class of a dataset.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
)

func (c LayoutClass) String() string {
	switch c {
	case LayoutCompact:
		return "compact"
	case LayoutContiguous:
		return "contiguous"
	case LayoutChunked:
		return "chunked"
	}
	return fmt.Sprintf("layout(%d)", uint8(c))
}

// DataLayout is the data layout message (0x0008), version 3 or 4.
// Chunked layouts are recognised but not decoded.
type DataLayout struct {
	Class LayoutClass

	// Address is undefined when the raw data lives in external files.
	Address uint64
	Size    uint64

	CompactData []byte
}

func (m *DataLayout) Type() Type { return TypeDataLayout }

// NewContiguousLayout describes size bytes of raw data at addr.
func NewContiguousLayout(addr, size uint64) *DataLayout {
	return &DataLayout{Class: LayoutContiguous, Address: addr, Size: size}
}

func parseDataLayout(r *binary.Reader) (*DataLayout, error) {
	version, err := r.ReadUint8()
	if err != nil {
		return nil, ErrTruncated
	}
	if version != 3 && version != 4 {
		return nil, fmt.Errorf("unsupported data layout version %d", version)
	}
	class, err := r.ReadUint8()
	if err != nil {
		return nil, ErrTruncated
	}

	l := &DataLayout{Class: LayoutClass(class)}
	switch l.Class {
	case LayoutCompact:
		n, err := r.ReadUint16()
		if err != nil {
			return nil, ErrTruncated
		}
		if l.CompactData, err = r.ReadBytes(int(n)); err != nil {
			return nil, ErrTruncated
		}
		l.Size = uint64(n)
	case LayoutContiguous:
		if l.Address, err = r.ReadOffset(); err != nil {
			return nil, ErrTruncated
		}
		if l.Size, err = r.ReadLength(); err != nil {
			return nil, ErrTruncated
		}
	}
	return l, nil
}

// Serialize writes a version 3 layout message.
func (m *DataLayout) Serialize(w *binary.Writer) error {
	if err := w.WriteUint8(3); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(m.Class)); err != nil {
		return err
	}
	switch m.Class {
	case LayoutCompact:
		if err := w.WriteUint16(uint16(len(m.CompactData))); err != nil {
			return err
		}
		return w.WriteBytes(m.CompactData)
	case LayoutContiguous:
		if err := w.WriteOffset(m.Address); err != nil {
			return err
		}
		return w.WriteLength(m.Size)
	}
	return fmt.Errorf("cannot write %s layout", m.Class)
}

// SerializedSize returns the encoded size.
func (m *DataLayout) SerializedSize(w *binary.Writer) int {
	switch m.Class {
	case LayoutCompact:
		return 4 + len(m.CompactData)
	case LayoutContiguous:
		return 2 + w.OffsetSize() + w.LengthSize()
	}
	return 2
}
