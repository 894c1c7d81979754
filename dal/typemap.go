package dal

import (
	"math/bits"
	"reflect"
	"unsafe"

	"github.com/robert-malhotra/go-dal/hdf5"
)

// storageType holds the engine datatypes of one Go element type.
type storageType struct {
	native      hdf5.Datatype
	little, big hdf5.Datatype
}

func scalar(native hdf5.Datatype) storageType {
	return storageType{
		native: native,
		little: native.WithOrder(hdf5.LittleEndian),
		big:    native.WithOrder(hdf5.BigEndian),
	}
}

func tuple(s storageType, n int) storageType {
	return storageType{
		native: hdf5.ArrayOf(s.native, n),
		little: hdf5.ArrayOf(s.little, n),
		big:    hdf5.ArrayOf(s.big, n),
	}
}

func platformInt(signed bool) hdf5.Datatype {
	if bits.UintSize == 32 {
		if signed {
			return hdf5.NativeInt32
		}
		return hdf5.NativeUint32
	}
	if signed {
		return hdf5.NativeInt64
	}
	return hdf5.NativeUint64
}

var typeMap = map[reflect.Type]storageType{
	reflect.TypeFor[int8]():    scalar(hdf5.NativeInt8),
	reflect.TypeFor[int16]():   scalar(hdf5.NativeInt16),
	reflect.TypeFor[int32]():   scalar(hdf5.NativeInt32),
	reflect.TypeFor[int64]():   scalar(hdf5.NativeInt64),
	reflect.TypeFor[int]():     scalar(platformInt(true)),
	reflect.TypeFor[uint8]():   scalar(hdf5.NativeUint8),
	reflect.TypeFor[uint16]():  scalar(hdf5.NativeUint16),
	reflect.TypeFor[uint32]():  scalar(hdf5.NativeUint32),
	reflect.TypeFor[uint64]():  scalar(hdf5.NativeUint64),
	reflect.TypeFor[uint]():    scalar(platformInt(false)),
	reflect.TypeFor[float32](): scalar(hdf5.NativeFloat32),
	reflect.TypeFor[float64](): scalar(hdf5.NativeFloat64),

	reflect.TypeFor[Coordinate3D[float32]](): tuple(scalar(hdf5.NativeFloat32), 3),
	reflect.TypeFor[Coordinate3D[float64]](): tuple(scalar(hdf5.NativeFloat64), 3),
	reflect.TypeFor[Coordinate3D[int32]]():   tuple(scalar(hdf5.NativeInt32), 3),
	reflect.TypeFor[Coordinate3D[int64]]():   tuple(scalar(hdf5.NativeInt64), 3),
}

// typeOf returns the engine datatypes of T.
func typeOf[T any]() (storageType, error) {
	t := reflect.TypeFor[T]()
	st, ok := typeMap[t]
	if !ok {
		return storageType{}, newError("no storage type for "+t.String(), ErrUnsupportedType)
	}
	return st, nil
}

// fileType returns the on-disk datatype for the byte order e resolves to.
func (s storageType) fileType(e Endianness) hdf5.Datatype {
	if e.order() == hdf5.BigEndian {
		return s.big
	}
	return s.little
}

// asBytes views buf as raw memory.
func asBytes[T any](buf []T) []byte {
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(buf))), len(buf)*int(unsafe.Sizeof(buf[0])))
}
