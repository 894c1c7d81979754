// Package binary reads and writes the little-endian, variable-width fields
// that make up HDF5 metadata.
package binary

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrInvalidSize is returned when an offset or length width is not 2, 4 or 8.
var ErrInvalidSize = errors.New("invalid offset/length size: must be 2, 4, or 8")

// Config describes the field widths of one file. It is derived from the
// superblock.
type Config struct {
	ByteOrder  binary.ByteOrder
	OffsetSize int
	LengthSize int
}

// DefaultConfig is used before the superblock has been read and for new files.
func DefaultConfig() Config {
	return Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: 8,
		LengthSize: 8,
	}
}

// Validate checks the field widths.
func (c Config) Validate() error {
	if !validWidth(c.OffsetSize) || !validWidth(c.LengthSize) {
		return ErrInvalidSize
	}
	return nil
}

func validWidth(n int) bool {
	return n == 2 || n == 4 || n == 8
}

// Undefined returns the all-ones sentinel HDF5 uses for undefined addresses
// and unlimited sizes of the given width.
func Undefined(width int) uint64 {
	if width >= 8 {
		return ^uint64(0)
	}
	return uint64(1)<<(8*uint(width)) - 1
}

// Uint decodes an unsigned integer of 1 to 8 bytes.
func Uint(buf []byte, width int, order binary.ByteOrder) uint64 {
	switch width {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(order.Uint16(buf))
	case 4:
		return uint64(order.Uint32(buf))
	case 8:
		return order.Uint64(buf)
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

// PutUint encodes v into the first width bytes of buf.
func PutUint(buf []byte, v uint64, width int, order binary.ByteOrder) {
	switch width {
	case 1:
		buf[0] = byte(v)
	case 2:
		order.PutUint16(buf, uint16(v))
	case 4:
		order.PutUint32(buf, uint32(v))
	case 8:
		order.PutUint64(buf, v)
	default:
		for i := 0; i < width; i++ {
			buf[i] = byte(v >> (8 * i))
		}
	}
}

// Buffer is a growable in-memory io.WriterAt and io.ReaderAt. Metadata blocks are assembled
// in a Buffer so their checksum can be computed before they hit the file.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a Buffer with room for size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{buf: make([]byte, 0, size)}
}

// WriteAt implements io.WriterAt.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// ReadAt implements io.ReaderAt.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Bytes returns the buffered data.
func (b *Buffer) Bytes() []byte {
	return b.buf
}
