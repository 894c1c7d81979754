package message

import (
	"github.com/robert-malhotra/go-dal/internal/binary"
)

// LinkType is the kind of a link message.
type LinkType uint8

const (
	LinkTypeHard     LinkType = 0
	LinkTypeSoft     LinkType = 1
	LinkTypeExternal LinkType = 64
)

// Link is the link message (0x0006). Only hard links carry an address;
// soft and external links keep their encoded value.
type Link struct {
	LinkType      LinkType
	Name          string
	CreationOrder uint64
	HasOrder      bool
	ObjectAddress uint64

	value []byte
}

func (m *Link) Type() Type { return TypeLink }

// IsHard reports whether the link points at an object header.
func (m *Link) IsHard() bool { return m.LinkType == LinkTypeHard }

// NewHardLink returns a hard link to the object header at addr.
func NewHardLink(name string, addr uint64) *Link {
	return &Link{LinkType: LinkTypeHard, Name: name, ObjectAddress: addr}
}

func parseLink(r *binary.Reader) (*Link, error) {
	head, err := r.ReadBytes(2)
	if err != nil {
		return nil, ErrTruncated
	}
	flags := head[1]
	l := &Link{}

	if flags&0x08 != 0 {
		t, err := r.ReadUint8()
		if err != nil {
			return nil, ErrTruncated
		}
		l.LinkType = LinkType(t)
	}
	if flags&0x04 != 0 {
		if l.CreationOrder, err = r.ReadUintN(8); err != nil {
			return nil, ErrTruncated
		}
		l.HasOrder = true
	}
	if flags&0x10 != 0 {
		r.Skip(1) // charset
	}
	nameLen, err := r.ReadUintN(1 << (flags & 0x03))
	if err != nil {
		return nil, ErrTruncated
	}
	name, err := r.ReadBytes(int(nameLen))
	if err != nil {
		return nil, ErrTruncated
	}
	l.Name = string(name)

	if l.IsHard() {
		if l.ObjectAddress, err = r.ReadOffset(); err != nil {
			return nil, ErrTruncated
		}
		return l, nil
	}
	n, err := r.ReadUint16()
	if err != nil {
		return nil, ErrTruncated
	}
	if l.value, err = r.ReadBytes(int(n)); err != nil {
		return nil, ErrTruncated
	}
	return l, nil
}

func nameLengthWidth(n int) (width int, bits uint8) {
	switch {
	case n <= 0xFF:
		return 1, 0
	case n <= 0xFFFF:
		return 2, 1
	case n <= 0xFFFFFFFF:
		return 4, 2
	}
	return 8, 3
}

// Serialize writes a version 1 link message.
func (m *Link) Serialize(w *binary.Writer) error {
	width, flags := nameLengthWidth(len(m.Name))
	if !m.IsHard() {
		flags |= 0x08
	}
	if m.HasOrder {
		flags |= 0x04
	}
	if err := w.WriteBytes([]byte{1, flags}); err != nil {
		return err
	}
	if !m.IsHard() {
		if err := w.WriteUint8(uint8(m.LinkType)); err != nil {
			return err
		}
	}
	if m.HasOrder {
		if err := w.WriteUintN(m.CreationOrder, 8); err != nil {
			return err
		}
	}
	if err := w.WriteUintN(uint64(len(m.Name)), width); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(m.Name)); err != nil {
		return err
	}
	if m.IsHard() {
		return w.WriteOffset(m.ObjectAddress)
	}
	if err := w.WriteUint16(uint16(len(m.value))); err != nil {
		return err
	}
	return w.WriteBytes(m.value)
}

// SerializedSize returns the encoded size.
func (m *Link) SerializedSize(w *binary.Writer) int {
	width, _ := nameLengthWidth(len(m.Name))
	size := 2 + width + len(m.Name)
	if m.HasOrder {
		size += 8
	}
	if m.IsHard() {
		return size + w.OffsetSize()
	}
	return size + 1 + 2 + len(m.value)
}
