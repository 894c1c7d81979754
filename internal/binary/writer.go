package binary

import (
	"encoding/binary"
	"io"
)

// Writer encodes HDF5 fields into an io.WriterAt.
type Writer struct {
	dst io.WriterAt
	cfg Config
	pos int64
}

// NewWriter creates a Writer positioned at offset 0.
func NewWriter(dst io.WriterAt, cfg Config) *Writer {
	return &Writer{dst: dst, cfg: cfg}
}

// At returns a writer over the same destination positioned at offset.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{dst: w.dst, cfg: w.cfg, pos: offset}
}

// Pos returns the current position.
func (w *Writer) Pos() int64 { return w.pos }

// Config returns the field widths in use.
func (w *Writer) Config() Config { return w.cfg }

// OffsetSize returns the width of file addresses.
func (w *Writer) OffsetSize() int { return w.cfg.OffsetSize }

// LengthSize returns the width of lengths.
func (w *Writer) LengthSize() int { return w.cfg.LengthSize }

// ByteOrder returns the byte order of metadata fields.
func (w *Writer) ByteOrder() binary.ByteOrder { return w.cfg.ByteOrder }

// WriteBytes writes data at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.dst.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	return w.WriteBytes(make([]byte, n))
}

// WriteUintN writes v as an unsigned integer of width bytes.
func (w *Writer) WriteUintN(v uint64, width int) error {
	buf := make([]byte, width)
	PutUint(buf, v, width, w.cfg.ByteOrder)
	return w.WriteBytes(buf)
}

// WriteUint8 writes one byte.
func (w *Writer) WriteUint8(v uint8) error { return w.WriteUintN(uint64(v), 1) }

// WriteUint16 writes a 2-byte integer.
func (w *Writer) WriteUint16(v uint16) error { return w.WriteUintN(uint64(v), 2) }

// WriteUint32 writes a 4-byte integer.
func (w *Writer) WriteUint32(v uint32) error { return w.WriteUintN(uint64(v), 4) }

// WriteOffset writes a file address.
func (w *Writer) WriteOffset(v uint64) error {
	return w.WriteUintN(v, w.cfg.OffsetSize)
}

// WriteLength writes a length.
func (w *Writer) WriteLength(v uint64) error {
	return w.WriteUintN(v, w.cfg.LengthSize)
}

// UndefinedOffset returns the undefined address for this writer's width.
func (w *Writer) UndefinedOffset() uint64 { return Undefined(w.cfg.OffsetSize) }

// UndefinedLength returns the unlimited length for this writer's width.
func (w *Writer) UndefinedLength() uint64 { return Undefined(w.cfg.LengthSize) }

// WritePadding pads with zeros up to the next multiple of alignment.
func (w *Writer) WritePadding(alignment int64) error {
	if alignment <= 1 {
		return nil
	}
	if rem := w.pos % alignment; rem != 0 {
		return w.WriteZeros(int(alignment - rem))
	}
	return nil
}
