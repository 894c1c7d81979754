package message

import (
	"fmt"

	"github.com/robert-malhotra/go-dal/internal/binary"
)

// ExternalFile is one slot of an external file list: a segment of Size
// bytes starting at Offset in the named file. The name is stored in the
// local heap at NameOffset. Size is the length width's all-ones value for
// a segment without limit.
type ExternalFile struct {
	NameOffset uint64
	Offset     uint64
	Size       uint64
}

// ExternalFileList is the External Data Files message (0x0007).
type ExternalFileList struct {
	HeapAddress uint64
	Files       []ExternalFile
}

func (m *ExternalFileList) Type() Type { return TypeExternalDataFiles }

func parseExternalFileList(r *binary.Reader) (*ExternalFileList, error) {
	head, err := r.ReadBytes(8)
	if err != nil {
		return nil, ErrTruncated
	}
	if head[0] != 1 {
		return nil, fmt.Errorf("unsupported external file list version %d", head[0])
	}
	used := int(head[6]) | int(head[7])<<8

	m := &ExternalFileList{Files: make([]ExternalFile, used)}
	if m.HeapAddress, err = r.ReadOffset(); err != nil {
		return nil, ErrTruncated
	}
	for i := range m.Files {
		slot := &m.Files[i]
		for _, dst := range []*uint64{&slot.NameOffset, &slot.Offset, &slot.Size} {
			if *dst, err = r.ReadLength(); err != nil {
				return nil, ErrTruncated
			}
		}
	}
	return m, nil
}

// Serialize writes a version 1 message with exactly as many slots as files.
func (m *ExternalFileList) Serialize(w *binary.Writer) error {
	n := uint16(len(m.Files))
	if err := w.WriteBytes([]byte{1, 0, 0, 0}); err != nil {
		return err
	}
	if err := w.WriteUint16(n); err != nil {
		return err
	}
	if err := w.WriteUint16(n); err != nil {
		return err
	}
	if err := w.WriteOffset(m.HeapAddress); err != nil {
		return err
	}
	for _, f := range m.Files {
		for _, v := range []uint64{f.NameOffset, f.Offset, f.Size} {
			if err := w.WriteLength(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// SerializedSize returns the encoded size.
func (m *ExternalFileList) SerializedSize(w *binary.Writer) int {
	return 8 + w.OffsetSize() + 3*w.LengthSize()*len(m.Files)
}
