package message

import (
	"github.com/robert-malhotra/go-dal/internal/binary"
)

// DataspaceType distinguishes scalar, simple and null dataspaces.
type DataspaceType uint8

const (
	DataspaceScalar DataspaceType = 0
	DataspaceSimple DataspaceType = 1
	DataspaceNull   DataspaceType = 2
)

// Dataspace is the dataspace message (0x0001). MaxDims is nil when the
// maximum equals the current size; unlimited entries hold the all-ones
// sentinel of the file's length width.
type Dataspace struct {
	SpaceType  DataspaceType
	Dimensions []uint64
	MaxDims    []uint64
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// NewDataspace returns a simple dataspace.
func NewDataspace(dims, maxDims []uint64) *Dataspace {
	return &Dataspace{SpaceType: DataspaceSimple, Dimensions: dims, MaxDims: maxDims}
}

// Rank returns the number of dimensions.
func (m *Dataspace) Rank() int { return len(m.Dimensions) }

// NumElements returns the number of elements in the current extent.
func (m *Dataspace) NumElements() uint64 {
	switch m.SpaceType {
	case DataspaceNull:
		return 0
	case DataspaceScalar:
		return 1
	}
	n := uint64(1)
	for _, d := range m.Dimensions {
		n *= d
	}
	return n
}

// Max returns the maximum dimensions, defaulting to the current ones.
func (m *Dataspace) Max() []uint64 {
	if m.MaxDims == nil {
		return m.Dimensions
	}
	return m.MaxDims
}

func parseDataspace(r *binary.Reader) (*Dataspace, error) {
	head, err := r.ReadBytes(4)
	if err != nil {
		return nil, ErrTruncated
	}
	version, rank, flags := head[0], int(head[1]), head[2]

	ds := &Dataspace{SpaceType: DataspaceSimple}
	if version >= 2 {
		ds.SpaceType = DataspaceType(head[3])
	} else {
		// version 1 has four more reserved bytes and no type field
		r.Skip(4)
		if rank == 0 {
			ds.SpaceType = DataspaceScalar
		}
	}
	if ds.SpaceType != DataspaceSimple {
		return ds, nil
	}

	if ds.Dimensions, err = readLengths(r, rank); err != nil {
		return nil, err
	}
	if flags&0x01 != 0 {
		if ds.MaxDims, err = readLengths(r, rank); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func readLengths(r *binary.Reader, n int) ([]uint64, error) {
	out := make([]uint64, n)
	for i := range out {
		v, err := r.ReadLength()
		if err != nil {
			return nil, ErrTruncated
		}
		out[i] = v
	}
	return out, nil
}

// Serialize writes a version 2 dataspace message.
func (m *Dataspace) Serialize(w *binary.Writer) error {
	var flags uint8
	if m.MaxDims != nil {
		flags |= 0x01
	}
	for _, b := range []uint8{2, uint8(m.Rank()), flags, uint8(m.SpaceType)} {
		if err := w.WriteUint8(b); err != nil {
			return err
		}
	}
	for _, dims := range [][]uint64{m.Dimensions, m.MaxDims} {
		for _, d := range dims {
			if err := w.WriteLength(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// SerializedSize returns the encoded size.
func (m *Dataspace) SerializedSize(w *binary.Writer) int {
	size := 4 + m.Rank()*w.LengthSize()
	if m.MaxDims != nil {
		size += m.Rank() * w.LengthSize()
	}
	return size
}
