package binary

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestLookup3Checksum(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  uint32
	}{
		{"empty", nil, 0xdeadbeef},
		{"four score", []byte("Four score and seven years ago"), 0x17770551},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lookup3Checksum(tt.input); got != tt.want {
				t.Errorf("Lookup3Checksum = 0x%08x, want 0x%08x", got, tt.want)
			}
		})
	}
}

func TestLookup3ChecksumLengths(t *testing.T) {
	seen := make(map[uint32]int)
	for n := 0; n <= 25; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i)
		}
		seen[Lookup3Checksum(data)] = n
	}
	if len(seen) != 26 {
		t.Errorf("expected 26 distinct checksums, got %d", len(seen))
	}
}

func TestUndefined(t *testing.T) {
	tests := []struct {
		width int
		want  uint64
	}{
		{2, 0xFFFF},
		{4, 0xFFFFFFFF},
		{8, 0xFFFFFFFFFFFFFFFF},
	}
	for _, tt := range tests {
		if got := Undefined(tt.width); got != tt.want {
			t.Errorf("Undefined(%d) = 0x%x, want 0x%x", tt.width, got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg := DefaultConfig()
	cfg.OffsetSize = 3
	if err := cfg.Validate(); err != ErrInvalidSize {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	for _, width := range []int{2, 4, 8} {
		cfg := Config{ByteOrder: binary.LittleEndian, OffsetSize: width, LengthSize: width}
		buf := NewBuffer(0)
		w := NewWriter(buf, cfg)

		if err := w.WriteUint8(0x42); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteUint16(0x0102); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteUint32(0xCAFEBABE); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteOffset(0x1234); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteLength(w.UndefinedLength()); err != nil {
			t.Fatal(err)
		}

		wantLen := 1 + 2 + 4 + 2*width
		if len(buf.Bytes()) != wantLen {
			t.Fatalf("width %d: wrote %d bytes, want %d", width, len(buf.Bytes()), wantLen)
		}

		r := NewReader(bytes.NewReader(buf.Bytes()), cfg)
		if v, _ := r.ReadUint8(); v != 0x42 {
			t.Errorf("ReadUint8 = 0x%x", v)
		}
		if v, _ := r.ReadUint16(); v != 0x0102 {
			t.Errorf("ReadUint16 = 0x%x", v)
		}
		if v, _ := r.ReadUint32(); v != 0xCAFEBABE {
			t.Errorf("ReadUint32 = 0x%x", v)
		}
		if v, _ := r.ReadOffset(); v != 0x1234 {
			t.Errorf("ReadOffset = 0x%x", v)
		}
		v, err := r.ReadLength()
		if err != nil {
			t.Fatal(err)
		}
		if !r.IsUndefinedLength(v) {
			t.Errorf("width %d: expected unlimited length, got 0x%x", width, v)
		}
	}
}

func TestReaderAtIsIndependent(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2, 3, 4}), DefaultConfig())
	sub := r.At(2)
	if v, _ := sub.ReadUint8(); v != 3 {
		t.Errorf("sub reader read %d, want 3", v)
	}
	if r.Pos() != 0 {
		t.Errorf("parent position moved to %d", r.Pos())
	}
	if _, err := sub.ReadBytes(4); err == nil {
		t.Error("expected error reading past end")
	}
}

func TestWritePadding(t *testing.T) {
	buf := NewBuffer(0)
	w := NewWriter(buf, DefaultConfig())
	_ = w.WriteBytes([]byte("abc"))
	if err := w.WritePadding(8); err != nil {
		t.Fatal(err)
	}
	if w.Pos() != 8 || len(buf.Bytes()) != 8 {
		t.Errorf("padding ended at %d (len %d), want 8", w.Pos(), len(buf.Bytes()))
	}
}

func TestBufferOutOfOrderWrites(t *testing.T) {
	buf := NewBuffer(2)
	_, _ = buf.WriteAt([]byte{9}, 5)
	_, _ = buf.WriteAt([]byte{1, 2}, 0)
	want := []byte{1, 2, 0, 0, 0, 9}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("buffer = %v, want %v", buf.Bytes(), want)
	}
}
