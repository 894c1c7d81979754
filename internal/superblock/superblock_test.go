package superblock

import (
	"bytes"
	"errors"
	"testing"

	binpkg "github.com/robert-malhotra/go-dal/internal/binary"
)

func TestSignature(t *testing.T) {
	expected := []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}
	if !bytes.Equal(Signature, expected) {
		t.Errorf("Signature mismatch: got %v, expected %v", Signature, expected)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, width := range []int{4, 8} {
		sb := New(width, width)
		sb.EOFAddress = 4096
		sb.RootGroupAddress = 48

		raw, err := sb.Encode()
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if len(raw) != sb.Size() {
			t.Fatalf("encoded %d bytes, Size() = %d", len(raw), sb.Size())
		}

		got, err := Read(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if got.Version != 3 || int(got.OffsetSize) != width || int(got.LengthSize) != width {
			t.Errorf("header fields = %d/%d/%d", got.Version, got.OffsetSize, got.LengthSize)
		}
		if got.EOFAddress != 4096 || got.RootGroupAddress != 48 {
			t.Errorf("addresses = eof %d root %d", got.EOFAddress, got.RootGroupAddress)
		}
		if got.ExtensionAddress != binpkg.Undefined(width) {
			t.Errorf("extension address = 0x%x, want undefined", got.ExtensionAddress)
		}
	}
}

func TestReadErrors(t *testing.T) {
	valid, err := New(8, 8).Encode()
	if err != nil {
		t.Fatal(err)
	}

	corrupt := append([]byte(nil), valid...)
	corrupt[20] ^= 0xFF

	oldVersion := append([]byte(nil), valid...)
	oldVersion[8] = 0

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"no signature", make([]byte, 4096), ErrNotHDF5},
		{"short file", []byte{1, 2, 3}, ErrNotHDF5},
		{"checksum", corrupt, ErrChecksum},
		{"version 0", oldVersion, ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Read error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadAtUserBlockOffset(t *testing.T) {
	sb := New(8, 8)
	raw, err := sb.Encode()
	if err != nil {
		t.Fatal(err)
	}
	file := make([]byte, 512+len(raw))
	copy(file[512:], raw)

	got, err := Read(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.FileOffset != 512 {
		t.Errorf("FileOffset = %d, want 512", got.FileOffset)
	}
}
