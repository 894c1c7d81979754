package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/go-dal/internal/dtype"
	"github.com/robert-malhotra/go-dal/internal/message"
)

// Class is the class of a datatype.
type Class int

const (
	Integer Class = iota
	Float
)

// ByteOrder of a datatype.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// NativeOrder returns the byte order of the running machine.
func NativeOrder() ByteOrder {
	if dtype.NativeOrder() == message.OrderBE {
		return BigEndian
	}
	return LittleEndian
}

// Datatype describes one element. Size is the size of the base number;
// Len > 0 makes the element a fixed array of Len numbers.
type Datatype struct {
	Class  Class
	Size   int
	Order  ByteOrder
	Signed bool
	Len    int
}

func integer(size int, signed bool, order ByteOrder) Datatype {
	return Datatype{Class: Integer, Size: size, Order: order, Signed: signed}
}

func float(size int, order ByteOrder) Datatype {
	return Datatype{Class: Float, Size: size, Order: order}
}

// Predefined types.
var (
	NativeInt8    = integer(1, true, NativeOrder())
	NativeInt16   = integer(2, true, NativeOrder())
	NativeInt32   = integer(4, true, NativeOrder())
	NativeInt64   = integer(8, true, NativeOrder())
	NativeUint8   = integer(1, false, NativeOrder())
	NativeUint16  = integer(2, false, NativeOrder())
	NativeUint32  = integer(4, false, NativeOrder())
	NativeUint64  = integer(8, false, NativeOrder())
	NativeFloat32 = float(4, NativeOrder())
	NativeFloat64 = float(8, NativeOrder())

	StdI8LE  = integer(1, true, LittleEndian)
	StdI16LE = integer(2, true, LittleEndian)
	StdI32LE = integer(4, true, LittleEndian)
	StdI64LE = integer(8, true, LittleEndian)
	StdI16BE = integer(2, true, BigEndian)
	StdI32BE = integer(4, true, BigEndian)
	StdI64BE = integer(8, true, BigEndian)
	StdU8LE  = integer(1, false, LittleEndian)
	StdU16LE = integer(2, false, LittleEndian)
	StdU32LE = integer(4, false, LittleEndian)
	StdU64LE = integer(8, false, LittleEndian)
	StdU16BE = integer(2, false, BigEndian)
	StdU32BE = integer(4, false, BigEndian)
	StdU64BE = integer(8, false, BigEndian)

	IEEEF32LE = float(4, LittleEndian)
	IEEEF64LE = float(8, LittleEndian)
	IEEEF32BE = float(4, BigEndian)
	IEEEF64BE = float(8, BigEndian)
)

// ArrayOf returns a datatype whose elements are n values of base.
func ArrayOf(base Datatype, n int) Datatype {
	base.Len = n
	return base
}

// WithOrder returns d with byte order o.
func (d Datatype) WithOrder(o ByteOrder) Datatype {
	d.Order = o
	return d
}

// ElementSize returns the size in bytes of one element.
func (d Datatype) ElementSize() int {
	if d.Len > 0 {
		return d.Size * d.Len
	}
	return d.Size
}

func (d Datatype) String() string {
	var s string
	switch {
	case d.Class == Float:
		s = fmt.Sprintf("float%d", d.Size*8)
	case d.Signed:
		s = fmt.Sprintf("int%d", d.Size*8)
	default:
		s = fmt.Sprintf("uint%d", d.Size*8)
	}
	if d.Len > 0 {
		s = fmt.Sprintf("[%d]%s", d.Len, s)
	}
	return s + " " + d.Order.String()
}

func (d Datatype) validate() error {
	switch {
	case d.Class == Integer && (d.Size == 1 || d.Size == 2 || d.Size == 4 || d.Size == 8):
	case d.Class == Float && (d.Size == 4 || d.Size == 8):
	default:
		return fmt.Errorf("%w: datatype class %d size %d", ErrUnsupported, d.Class, d.Size)
	}
	if d.Len < 0 {
		return fmt.Errorf("%w: negative array length", ErrUnsupported)
	}
	return nil
}

func (d Datatype) message() *message.Datatype {
	order := message.OrderLE
	if d.Order == BigEndian {
		order = message.OrderBE
	}
	var m *message.Datatype
	if d.Class == Float {
		m = message.NewFloat(d.Size, order)
	} else {
		m = message.NewFixedPoint(d.Size, d.Signed, order)
	}
	if d.Len > 0 {
		m = message.NewArray(m, uint32(d.Len))
	}
	return m
}

func datatypeFromMessage(m *message.Datatype) (Datatype, error) {
	var d Datatype
	if m.Class == message.ClassArray {
		if len(m.ArrayDims) != 1 || m.Base == nil || m.Base.Class == message.ClassArray {
			return d, fmt.Errorf("%w: array datatype %v", ErrUnsupported, m)
		}
		d.Len = int(m.ArrayDims[0])
		m = m.Base
	}
	switch m.Class {
	case message.ClassFixedPoint:
		d.Class, d.Signed = Integer, m.Signed
	case message.ClassFloatPoint:
		d.Class = Float
	default:
		return d, fmt.Errorf("%w: datatype %v", ErrUnsupported, m)
	}
	d.Size = int(m.Size)
	if m.Order == message.OrderBE {
		d.Order = BigEndian
	}
	return d, d.validate()
}
