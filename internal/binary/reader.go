package binary

import (
	"encoding/binary"
	"io"
)

// Reader decodes HDF5 fields from an io.ReaderAt. Each Reader carries its
// own position; At derives independent readers over the same source.
type Reader struct {
	src io.ReaderAt
	cfg Config
	pos int64
}

// NewReader creates a Reader positioned at offset 0.
func NewReader(src io.ReaderAt, cfg Config) *Reader {
	return &Reader{src: src, cfg: cfg}
}

// At returns a reader over the same source positioned at offset.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{src: r.src, cfg: r.cfg, pos: offset}
}

// Pos returns the current position.
func (r *Reader) Pos() int64 { return r.pos }

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) { r.pos += n }

// Config returns the field widths in use.
func (r *Reader) Config() Config { return r.cfg }

// OffsetSize returns the width of file addresses.
func (r *Reader) OffsetSize() int { return r.cfg.OffsetSize }

// LengthSize returns the width of lengths.
func (r *Reader) LengthSize() int { return r.cfg.LengthSize }

// ByteOrder returns the byte order of metadata fields.
func (r *Reader) ByteOrder() binary.ByteOrder { return r.cfg.ByteOrder }

// Peek reads n bytes without moving.
func (r *Reader) Peek(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := r.src.ReadAt(buf, r.pos); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf, err := r.Peek(n)
	if err != nil {
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadUintN reads an unsigned integer of width bytes.
func (r *Reader) ReadUintN(width int) (uint64, error) {
	buf, err := r.ReadBytes(width)
	if err != nil {
		return 0, err
	}
	return Uint(buf, width, r.cfg.ByteOrder), nil
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	v, err := r.ReadUintN(1)
	return uint8(v), err
}

// ReadUint16 reads a 2-byte integer.
func (r *Reader) ReadUint16() (uint16, error) {
	v, err := r.ReadUintN(2)
	return uint16(v), err
}

// ReadUint32 reads a 4-byte integer.
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.ReadUintN(4)
	return uint32(v), err
}

// ReadOffset reads a file address.
func (r *Reader) ReadOffset() (uint64, error) {
	return r.ReadUintN(r.cfg.OffsetSize)
}

// ReadLength reads a length.
func (r *Reader) ReadLength() (uint64, error) {
	return r.ReadUintN(r.cfg.LengthSize)
}

// IsUndefinedOffset reports whether addr is the undefined address.
func (r *Reader) IsUndefinedOffset(addr uint64) bool {
	return addr == Undefined(r.cfg.OffsetSize)
}

// IsUndefinedLength reports whether n is the unlimited length.
func (r *Reader) IsUndefinedLength(n uint64) bool {
	return n == Undefined(r.cfg.LengthSize)
}
