package message

import (
	"encoding/binary"
	"errors"
	"fmt"

	binpkg "github.com/robert-malhotra/go-dal/internal/binary"
)

// DatatypeClass is the class nibble of a datatype message.
type DatatypeClass uint8

const (
	ClassFixedPoint DatatypeClass = 0
	ClassFloatPoint DatatypeClass = 1
	ClassString     DatatypeClass = 3
	ClassCompound   DatatypeClass = 6
	ClassArray      DatatypeClass = 10
)

// ByteOrder of a numeric datatype.
type ByteOrder uint8

const (
	OrderLE ByteOrder = 0
	OrderBE ByteOrder = 1
)

func (o ByteOrder) String() string {
	if o == OrderBE {
		return "big-endian"
	}
	return "little-endian"
}

// ErrUnsupportedClass is returned for datatype classes that cannot appear
// inside an array element.
var ErrUnsupportedClass = errors.New("unsupported datatype class")

// Datatype is the datatype message (0x0003). Fixed-point, floating-point and
// array classes are interpreted; other classes keep their raw properties.
type Datatype struct {
	Class     DatatypeClass
	Version   uint8
	ClassBits uint32
	Size      uint32

	Order     ByteOrder
	Signed    bool
	BitOffset uint16
	Precision uint16

	// floating point
	SignLocation uint8
	ExpLocation  uint8
	ExpSize      uint8
	MantLocation uint8
	MantSize     uint8
	ExpBias      uint32

	// array
	ArrayDims []uint32
	Base      *Datatype

	raw []byte
}

func (m *Datatype) Type() Type { return TypeDatatype }

// NewFixedPoint returns an integer type of size bytes.
func NewFixedPoint(size int, signed bool, order ByteOrder) *Datatype {
	bits := uint32(order)
	if signed {
		bits |= 0x08
	}
	return &Datatype{
		Class:     ClassFixedPoint,
		Version:   1,
		ClassBits: bits,
		Size:      uint32(size),
		Order:     order,
		Signed:    signed,
		Precision: uint16(size * 8),
	}
}

// NewFloat returns an IEEE 754 binary32 (size 4) or binary64 (size 8) type.
func NewFloat(size int, order ByteOrder) *Datatype {
	dt := &Datatype{
		Class:     ClassFloatPoint,
		Version:   1,
		Size:      uint32(size),
		Order:     order,
		Precision: uint16(size * 8),
	}
	if size == 4 {
		dt.SignLocation, dt.ExpLocation, dt.ExpSize, dt.MantSize, dt.ExpBias = 31, 23, 8, 23, 127
	} else {
		dt.SignLocation, dt.ExpLocation, dt.ExpSize, dt.MantSize, dt.ExpBias = 63, 52, 11, 52, 1023
	}
	// mantissa normalization 2: most significant bit implied
	dt.ClassBits = uint32(order) | 2<<4 | uint32(dt.SignLocation)<<8
	return dt
}

// NewArray returns a fixed-size array of base.
func NewArray(base *Datatype, dims ...uint32) *Datatype {
	n := uint32(1)
	for _, d := range dims {
		n *= d
	}
	return &Datatype{
		Class:     ClassArray,
		Version:   3,
		Size:      base.Size * n,
		ArrayDims: dims,
		Base:      base,
	}
}

// Elements returns how many base elements one value holds (1 for scalars).
func (m *Datatype) Elements() int {
	if m.Class != ClassArray {
		return 1
	}
	n := 1
	for _, d := range m.ArrayDims {
		n *= int(d)
	}
	return n
}

// Scalar returns the innermost non-array type.
func (m *Datatype) Scalar() *Datatype {
	dt := m
	for dt.Class == ClassArray && dt.Base != nil {
		dt = dt.Base
	}
	return dt
}

// Equal reports whether two datatypes describe the same memory layout.
func (m *Datatype) Equal(o *Datatype) bool {
	if m.Class != o.Class || m.Size != o.Size {
		return false
	}
	switch m.Class {
	case ClassFixedPoint:
		return m.Order == o.Order && m.Signed == o.Signed
	case ClassFloatPoint:
		return m.Order == o.Order
	case ClassArray:
		if len(m.ArrayDims) != len(o.ArrayDims) {
			return false
		}
		for i := range m.ArrayDims {
			if m.ArrayDims[i] != o.ArrayDims[i] {
				return false
			}
		}
		return m.Base.Equal(o.Base)
	}
	return string(m.raw) == string(o.raw) && m.ClassBits == o.ClassBits
}

func (m *Datatype) String() string {
	switch m.Class {
	case ClassFixedPoint:
		sign := "u"
		if m.Signed {
			sign = ""
		}
		return fmt.Sprintf("%sint%d (%s)", sign, m.Size*8, m.Order)
	case ClassFloatPoint:
		return fmt.Sprintf("float%d (%s)", m.Size*8, m.Order)
	case ClassArray:
		return fmt.Sprintf("%v%v", m.ArrayDims, m.Base)
	}
	return fmt.Sprintf("class %d size %d", m.Class, m.Size)
}

func parseDatatype(data []byte) (*Datatype, error) {
	dt, _, err := decodeDatatype(data, true)
	return dt, err
}

// decodeDatatype decodes one datatype and reports the bytes it used. Classes
// other than fixed, float and array are only accepted at the top level,
// where the rest of the message is their property list.
func decodeDatatype(data []byte, top bool) (*Datatype, int, error) {
	if len(data) < 8 {
		return nil, 0, ErrTruncated
	}
	dt := &Datatype{
		Class:     DatatypeClass(data[0] & 0x0F),
		Version:   data[0] >> 4,
		ClassBits: uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16,
		Size:      binary.LittleEndian.Uint32(data[4:8]),
	}
	props := data[8:]

	switch dt.Class {
	case ClassFixedPoint:
		if len(props) < 4 {
			return nil, 0, ErrTruncated
		}
		dt.Order = ByteOrder(dt.ClassBits & 0x01)
		dt.Signed = dt.ClassBits&0x08 != 0
		dt.BitOffset = binary.LittleEndian.Uint16(props[0:])
		dt.Precision = binary.LittleEndian.Uint16(props[2:])
		return dt, 12, nil

	case ClassFloatPoint:
		if len(props) < 12 {
			return nil, 0, ErrTruncated
		}
		dt.Order = ByteOrder(dt.ClassBits & 0x01)
		dt.SignLocation = uint8(dt.ClassBits >> 8)
		dt.BitOffset = binary.LittleEndian.Uint16(props[0:])
		dt.Precision = binary.LittleEndian.Uint16(props[2:])
		dt.ExpLocation, dt.ExpSize = props[4], props[5]
		dt.MantLocation, dt.MantSize = props[6], props[7]
		dt.ExpBias = binary.LittleEndian.Uint32(props[8:])
		return dt, 20, nil

	case ClassArray:
		return decodeArray(dt, props)
	}

	if !top {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedClass, dt.Class)
	}
	dt.raw = append([]byte(nil), props...)
	return dt, len(data), nil
}

func decodeArray(dt *Datatype, props []byte) (*Datatype, int, error) {
	if len(props) < 1 {
		return nil, 0, ErrTruncated
	}
	rank := int(props[0])
	pos := 1
	if dt.Version < 3 {
		pos += 3
	}
	if len(props) < pos+4*rank {
		return nil, 0, ErrTruncated
	}
	dt.ArrayDims = make([]uint32, rank)
	for i := range dt.ArrayDims {
		dt.ArrayDims[i] = binary.LittleEndian.Uint32(props[pos:])
		pos += 4
	}
	if dt.Version < 3 {
		// permutation indices, never used by the library
		pos += 4 * rank
	}
	if len(props) < pos {
		return nil, 0, ErrTruncated
	}
	base, n, err := decodeDatatype(props[pos:], false)
	if err != nil {
		return nil, 0, err
	}
	dt.Base = base
	return dt, 8 + pos + n, nil
}

// Serialize writes the datatype message.
func (m *Datatype) Serialize(w *binpkg.Writer) error {
	version := m.Version
	switch {
	case m.Class == ClassArray:
		version = 3
	case version == 0:
		version = 1
	}
	head := []byte{
		uint8(m.Class) | version<<4,
		byte(m.ClassBits), byte(m.ClassBits >> 8), byte(m.ClassBits >> 16),
	}
	if err := w.WriteBytes(head); err != nil {
		return err
	}
	if err := w.WriteUint32(m.Size); err != nil {
		return err
	}

	switch m.Class {
	case ClassFixedPoint:
		if err := w.WriteUint16(m.BitOffset); err != nil {
			return err
		}
		return w.WriteUint16(m.Precision)

	case ClassFloatPoint:
		if err := w.WriteUint16(m.BitOffset); err != nil {
			return err
		}
		if err := w.WriteUint16(m.Precision); err != nil {
			return err
		}
		if err := w.WriteBytes([]byte{m.ExpLocation, m.ExpSize, m.MantLocation, m.MantSize}); err != nil {
			return err
		}
		return w.WriteUint32(m.ExpBias)

	case ClassArray:
		if err := w.WriteUint8(uint8(len(m.ArrayDims))); err != nil {
			return err
		}
		for _, d := range m.ArrayDims {
			if err := w.WriteUint32(d); err != nil {
				return err
			}
		}
		return m.Base.Serialize(w)
	}
	return w.WriteBytes(m.raw)
}

// SerializedSize returns the encoded size.
func (m *Datatype) SerializedSize(w *binpkg.Writer) int {
	switch m.Class {
	case ClassFixedPoint:
		return 12
	case ClassFloatPoint:
		return 20
	case ClassArray:
		return 8 + 1 + 4*len(m.ArrayDims) + m.Base.SerializedSize(w)
	}
	return 8 + len(m.raw)
}
