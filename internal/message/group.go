package message

import (
	"github.com/robert-malhotra/go-dal/internal/binary"
)

// LinkInfo is the link info message (0x0002) of a group that stores its
// links as link messages. The heap and index addresses stay undefined.
type LinkInfo struct {
	TrackOrder       bool
	MaxCreationIndex uint64

	// Dense is set when a decoded message references a fractal heap.
	Dense bool
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// NewLinkInfo returns a link info message that tracks creation order.
func NewLinkInfo(maxIndex uint64) *LinkInfo {
	return &LinkInfo{TrackOrder: true, MaxCreationIndex: maxIndex}
}

func parseLinkInfo(r *binary.Reader) (*LinkInfo, error) {
	head, err := r.ReadBytes(2)
	if err != nil {
		return nil, ErrTruncated
	}
	m := &LinkInfo{TrackOrder: head[1]&0x01 != 0}
	if m.TrackOrder {
		if m.MaxCreationIndex, err = r.ReadUintN(8); err != nil {
			return nil, ErrTruncated
		}
	}
	heap, err := r.ReadOffset()
	if err != nil {
		return nil, ErrTruncated
	}
	m.Dense = !r.IsUndefinedOffset(heap)
	return m, nil
}

// Serialize writes the message.
func (m *LinkInfo) Serialize(w *binary.Writer) error {
	var flags uint8
	if m.TrackOrder {
		flags = 0x01
	}
	if err := w.WriteBytes([]byte{0, flags}); err != nil {
		return err
	}
	if m.TrackOrder {
		if err := w.WriteUintN(m.MaxCreationIndex, 8); err != nil {
			return err
		}
	}
	// fractal heap and name index B-tree
	if err := w.WriteOffset(w.UndefinedOffset()); err != nil {
		return err
	}
	return w.WriteOffset(w.UndefinedOffset())
}

// SerializedSize returns the encoded size.
func (m *LinkInfo) SerializedSize(w *binary.Writer) int {
	size := 2 + 2*w.OffsetSize()
	if m.TrackOrder {
		size += 8
	}
	return size
}

// GroupInfo is the group info message (0x000A) with default settings.
type GroupInfo struct{}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

// Serialize writes version 0 with no optional fields.
func (m *GroupInfo) Serialize(w *binary.Writer) error {
	return w.WriteBytes([]byte{0, 0})
}

// SerializedSize returns the encoded size.
func (m *GroupInfo) SerializedSize(*binary.Writer) int { return 2 }
