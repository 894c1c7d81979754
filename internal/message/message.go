package message

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-dal/internal/binary"
)

// Type is a header message type.
type Type uint16

const (
	TypeNIL               Type = 0x0000
	TypeDataspace         Type = 0x0001
	TypeLinkInfo          Type = 0x0002
	TypeDatatype          Type = 0x0003
	TypeFillValue         Type = 0x0005
	TypeLink              Type = 0x0006
	TypeExternalDataFiles Type = 0x0007
	TypeDataLayout        Type = 0x0008
	TypeGroupInfo         Type = 0x000A
	TypeFilterPipeline    Type = 0x000B
	TypeAttribute         Type = 0x000C
	TypeContinuation      Type = 0x0010
	TypeSymbolTable       Type = 0x0011
)

// ErrTruncated is returned when a message body ends early.
var ErrTruncated = errors.New("message truncated")

// Message is implemented by every header message.
type Message interface {
	Type() Type
}

// Serializable messages can be written into an object header.
type Serializable interface {
	Message
	Serialize(w *binary.Writer) error
	SerializedSize(w *binary.Writer) int
}

// Parse decodes one message body. cfg supplies the file's field widths.
func Parse(typ Type, data []byte, cfg binary.Config) (Message, error) {
	r := binary.NewReader(bytes.NewReader(data), cfg)
	var (
		msg Message
		err error
	)
	switch typ {
	case TypeDataspace:
		msg, err = parseDataspace(r)
	case TypeLinkInfo:
		msg, err = parseLinkInfo(r)
	case TypeDatatype:
		msg, err = parseDatatype(data)
	case TypeDataLayout:
		msg, err = parseDataLayout(r)
	case TypeLink:
		msg, err = parseLink(r)
	case TypeExternalDataFiles:
		msg, err = parseExternalFileList(r)
	case TypeContinuation:
		msg, err = parseContinuation(r)
	default:
		return &Unknown{typ: typ, data: data}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing message 0x%04x: %w", uint16(typ), err)
	}
	return msg, nil
}

// Unknown is a message this package does not interpret. It round-trips
// byte for byte.
type Unknown struct {
	typ  Type
	data []byte
}

// NewUnknown wraps a raw message body.
func NewUnknown(typ Type, data []byte) *Unknown {
	return &Unknown{typ: typ, data: data}
}

func (m *Unknown) Type() Type   { return m.typ }
func (m *Unknown) Data() []byte { return m.data }

func (m *Unknown) Serialize(w *binary.Writer) error  { return w.WriteBytes(m.data) }
func (m *Unknown) SerializedSize(*binary.Writer) int { return len(m.data) }

// Continuation points to a further block of header messages.
type Continuation struct {
	Offset uint64
	Length uint64
}

func (m *Continuation) Type() Type { return TypeContinuation }

func parseContinuation(r *binary.Reader) (*Continuation, error) {
	off, err := r.ReadOffset()
	if err != nil {
		return nil, ErrTruncated
	}
	n, err := r.ReadLength()
	if err != nil {
		return nil, ErrTruncated
	}
	return &Continuation{Offset: off, Length: n}, nil
}
