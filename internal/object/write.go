package object

import (
	"errors"
	"fmt"

	binpkg "github.com/robert-malhotra/go-dal/internal/binary"
	"github.com/robert-malhotra/go-dal/internal/message"
)

// MinGroupChunkSize is the minimum message chunk of a group header, which
// leaves room for a few links before the header has to move.
const MinGroupChunkSize = 120

// prefix (signature, version, flags) plus checksum; the chunk size field
// comes on top.
const fixedOverhead = 6 + 4

// nilHeaderSize is the size of a NIL message with no body.
const nilHeaderSize = 4

// ErrDoesNotFit is returned by EncodeSized when the messages need more
// space than is available.
var ErrDoesNotFit = errors.New("messages do not fit in object header")

func messagesSize(cfg binpkg.Config, msgs []message.Message) (int, error) {
	w := binpkg.NewWriter(nil, cfg)
	total := 0
	for _, msg := range msgs {
		s, ok := msg.(message.Serializable)
		if !ok {
			return 0, fmt.Errorf("message 0x%04x cannot be written", uint16(msg.Type()))
		}
		n := s.SerializedSize(w)
		if n > 0xFFFF {
			return 0, fmt.Errorf("message 0x%04x too large (%d bytes)", uint16(msg.Type()), n)
		}
		total += nilHeaderSize + n
	}
	return total, nil
}

func sizeFieldWidth(chunk int) int {
	switch {
	case chunk <= 0xFF:
		return 1
	case chunk <= 0xFFFF:
		return 2
	case chunk <= 0xFFFFFFFF:
		return 4
	}
	return 8
}

// Encode returns a header holding msgs with a message chunk of at least
// minChunk bytes.
func Encode(cfg binpkg.Config, msgs []message.Message, minChunk int) ([]byte, error) {
	used, err := messagesSize(cfg, msgs)
	if err != nil {
		return nil, err
	}
	chunk := max(used, minChunk)
	if pad := chunk - used; pad > 0 && pad < nilHeaderSize {
		chunk = used + nilHeaderSize
	}
	return encode(cfg, msgs, used, chunk, sizeFieldWidth(chunk))
}

// EncodeSized returns a header of exactly total bytes holding msgs.
func EncodeSized(cfg binpkg.Config, msgs []message.Message, total int) ([]byte, error) {
	used, err := messagesSize(cfg, msgs)
	if err != nil {
		return nil, err
	}
	for _, width := range []int{1, 2, 4, 8} {
		chunk := total - fixedOverhead - width
		if chunk < used || sizeFieldWidth(chunk) > width {
			continue
		}
		if pad := chunk - used; pad > 0 && (pad < nilHeaderSize || pad-nilHeaderSize > 0xFFFF) {
			continue
		}
		return encode(cfg, msgs, used, chunk, width)
	}
	return nil, ErrDoesNotFit
}

func encode(cfg binpkg.Config, msgs []message.Message, used, chunk, width int) ([]byte, error) {
	buf := binpkg.NewBuffer(fixedOverhead + width + chunk)
	w := binpkg.NewWriter(buf, cfg)

	var flags uint8
	for 1<<flags < width {
		flags++
	}
	if err := w.WriteBytes(signatureHeader); err != nil {
		return nil, err
	}
	if err := w.WriteBytes([]byte{2, flags}); err != nil {
		return nil, err
	}
	if err := w.WriteUintN(uint64(chunk), width); err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		s := msg.(message.Serializable)
		if err := w.WriteUint8(uint8(msg.Type())); err != nil {
			return nil, err
		}
		if err := w.WriteUint16(uint16(s.SerializedSize(w))); err != nil {
			return nil, err
		}
		if err := w.WriteUint8(0); err != nil {
			return nil, err
		}
		if err := s.Serialize(w); err != nil {
			return nil, err
		}
	}
	if pad := chunk - used; pad > 0 {
		if err := w.WriteBytes([]byte{uint8(message.TypeNIL)}); err != nil {
			return nil, err
		}
		if err := w.WriteUint16(uint16(pad - nilHeaderSize)); err != nil {
			return nil, err
		}
		if err := w.WriteZeros(pad - 3); err != nil {
			return nil, err
		}
	}
	if err := w.WriteUint32(binpkg.Lookup3Checksum(buf.Bytes())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewGroupMessages returns the messages of an empty group.
func NewGroupMessages() []message.Message {
	return []message.Message{message.NewLinkInfo(0), &message.GroupInfo{}}
}

// NewDatasetMessages returns the messages of a dataset header. efl may be nil.
func NewDatasetMessages(space *message.Dataspace, dtype *message.Datatype, efl *message.ExternalFileList, layout *message.DataLayout) []message.Message {
	msgs := []message.Message{space, dtype}
	if efl != nil {
		msgs = append(msgs, efl)
	}
	return append(msgs, layout)
}
