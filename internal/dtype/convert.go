package dtype

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-dal/internal/message"
)

// Convert converts n elements of src (type st) into dst (type dt).
func Convert(dst []byte, dt *message.Datatype, src []byte, st *message.Datatype, n int) error {
	if !IsNumeric(dt) || !IsNumeric(st) {
		return fmt.Errorf("%w: %v to %v", ErrUnsupported, st, dt)
	}
	if dt.Elements() != st.Elements() {
		return fmt.Errorf("%w: %v holds %d elements, %v holds %d",
			ErrUnsupported, st, st.Elements(), dt, dt.Elements())
	}
	count := n * st.Elements()
	ds, ss := dt.Scalar(), st.Scalar()
	if len(src) < count*int(ss.Size) || len(dst) < count*int(ds.Size) {
		return fmt.Errorf("conversion buffer too small for %d elements", count)
	}

	switch {
	case ds.Equal(ss):
		copy(dst, src[:count*int(ss.Size)])
		return nil
	case ds.Class == ss.Class && ds.Size == ss.Size && ds.Signed == ss.Signed:
		copy(dst, src[:count*int(ss.Size)])
		Swap(dst[:count*int(ds.Size)], int(ds.Size))
		return nil
	}

	for i := 0; i < count; i++ {
		v := load(src[i*int(ss.Size):], ss)
		store(dst[i*int(ds.Size):], ds, v)
	}
	return nil
}

// value holds one element in the widest form of its class.
type value struct {
	isFloat bool
	signed  bool
	f       float64
	i       int64
	u       uint64
}

func load(b []byte, dt *message.Datatype) value {
	order := ByteOrder(dt)
	var raw uint64
	switch dt.Size {
	case 1:
		raw = uint64(b[0])
	case 2:
		raw = uint64(order.Uint16(b))
	case 4:
		raw = uint64(order.Uint32(b))
	case 8:
		raw = order.Uint64(b)
	}

	if dt.Class == message.ClassFloatPoint {
		if dt.Size == 4 {
			return value{isFloat: true, f: float64(math.Float32frombits(uint32(raw)))}
		}
		return value{isFloat: true, f: math.Float64frombits(raw)}
	}
	if !dt.Signed {
		return value{u: raw}
	}
	shift := 64 - 8*uint(dt.Size)
	return value{signed: true, i: int64(raw<<shift) >> shift}
}

func store(b []byte, dt *message.Datatype, v value) {
	var raw uint64
	bits := 8 * uint(dt.Size)
	switch {
	case dt.Class == message.ClassFloatPoint && dt.Size == 4:
		raw = uint64(math.Float32bits(float32(v.float())))
	case dt.Class == message.ClassFloatPoint:
		raw = math.Float64bits(v.float())
	case dt.Signed:
		raw = uint64(v.toInt(bits))
	default:
		raw = v.toUint(bits)
	}

	order := ByteOrder(dt)
	switch dt.Size {
	case 1:
		b[0] = uint8(raw)
	case 2:
		order.PutUint16(b, uint16(raw))
	case 4:
		order.PutUint32(b, uint32(raw))
	case 8:
		order.PutUint64(b, raw)
	}
}

func (v value) float() float64 {
	switch {
	case v.isFloat:
		return v.f
	case v.signed:
		return float64(v.i)
	}
	return float64(v.u)
}

// toInt saturates v into a signed integer of the given width.
func (v value) toInt(bits uint) int64 {
	hi := int64(1)<<(bits-1) - 1
	lo := -hi - 1
	switch {
	case v.isFloat:
		if math.IsNaN(v.f) {
			return 0
		}
		if v.f >= float64(hi) {
			return hi
		}
		if v.f <= float64(lo) {
			return lo
		}
		return int64(v.f)
	case v.signed:
		return min(max(v.i, lo), hi)
	}
	if v.u > uint64(hi) {
		return hi
	}
	return int64(v.u)
}

// toUint saturates v into an unsigned integer of the given width.
func (v value) toUint(bits uint) uint64 {
	hi := ^uint64(0) >> (64 - bits)
	switch {
	case v.isFloat:
		if math.IsNaN(v.f) || v.f <= 0 {
			return 0
		}
		if v.f >= float64(hi) {
			return hi
		}
		return uint64(v.f)
	case v.signed:
		if v.i < 0 {
			return 0
		}
		return min(uint64(v.i), hi)
	}
	return min(v.u, hi)
}
