package dtype

import (
	"encoding/binary"
	"errors"

	"github.com/robert-malhotra/go-dal/internal/message"
)

// ErrUnsupported is returned for datatypes that cannot be converted.
var ErrUnsupported = errors.New("unsupported conversion")

// ByteOrder returns the binary.ByteOrder for the datatype.
func ByteOrder(dt *message.Datatype) binary.ByteOrder {
	if dt.Order == message.OrderBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// NativeOrder returns the byte order of the running machine.
func NativeOrder() message.ByteOrder {
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return message.OrderLE
	}
	return message.OrderBE
}

// IsNumeric reports whether dt is an integer or floating-point type, or an
// array of them.
func IsNumeric(dt *message.Datatype) bool {
	s := dt.Scalar()
	switch s.Class {
	case message.ClassFixedPoint:
		return s.Size == 1 || s.Size == 2 || s.Size == 4 || s.Size == 8
	case message.ClassFloatPoint:
		return s.Size == 4 || s.Size == 8
	}
	return false
}

// Swap reverses the bytes of every size-byte element of buf.
func Swap(buf []byte, size int) {
	if size <= 1 {
		return
	}
	for off := 0; off+size <= len(buf); off += size {
		e := buf[off : off+size]
		for i, j := 0, size-1; i < j; i, j = i+1, j-1 {
			e[i], e[j] = e[j], e[i]
		}
	}
}
