package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-dal/internal/binary"
)

// Signature is the 8-byte HDF5 format signature.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// Offsets searched for the signature, in order.
var searchOffsets = []int64{0, 512, 1024, 2048}

var (
	ErrNotHDF5            = errors.New("not an HDF5 file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrChecksum           = errors.New("superblock checksum mismatch")
)

// Superblock holds the fields of a version 2/3 superblock.
type Superblock struct {
	Version          uint8
	OffsetSize       uint8
	LengthSize       uint8
	ConsistencyFlags uint8
	BaseAddress      uint64
	ExtensionAddress uint64
	EOFAddress       uint64
	RootGroupAddress uint64

	// FileOffset is where the signature was found.
	FileOffset int64
}

// New returns a version 3 superblock with the given field widths.
func New(offsetSize, lengthSize int) *Superblock {
	return &Superblock{
		Version:          3,
		OffsetSize:       uint8(offsetSize),
		LengthSize:       uint8(lengthSize),
		ExtensionAddress: binpkg.Undefined(offsetSize),
	}
}

// Config returns the binary configuration for the rest of the file.
func (sb *Superblock) Config() binpkg.Config {
	return binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: int(sb.OffsetSize),
		LengthSize: int(sb.LengthSize),
	}
}

// Size returns the encoded size in bytes.
func (sb *Superblock) Size() int {
	return 12 + 4*int(sb.OffsetSize) + 4
}

// Read locates and decodes the superblock.
func Read(r io.ReaderAt) (*Superblock, error) {
	sig := make([]byte, len(Signature)+1)
	for _, off := range searchOffsets {
		if _, err := r.ReadAt(sig, off); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if !bytes.Equal(sig[:len(Signature)], Signature) {
			continue
		}
		switch version := sig[len(Signature)]; version {
		case 2, 3:
			sb, err := decode(r, off)
			if err != nil {
				return nil, err
			}
			sb.FileOffset = off
			return sb, nil
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
		}
	}
	return nil, ErrNotHDF5
}

func decode(r io.ReaderAt, off int64) (*Superblock, error) {
	head := make([]byte, 12)
	if _, err := r.ReadAt(head, off); err != nil {
		return nil, err
	}
	sb := &Superblock{
		Version:          head[8],
		OffsetSize:       head[9],
		LengthSize:       head[10],
		ConsistencyFlags: head[11],
	}
	if err := sb.Config().Validate(); err != nil {
		return nil, err
	}

	raw := make([]byte, sb.Size())
	if _, err := r.ReadAt(raw, off); err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	body := len(raw) - 4
	stored := binary.LittleEndian.Uint32(raw[body:])
	if binpkg.Lookup3Checksum(raw[:body]) != stored {
		return nil, ErrChecksum
	}

	fr := binpkg.NewReader(bytes.NewReader(raw), sb.Config()).At(12)
	addrs := []*uint64{&sb.BaseAddress, &sb.ExtensionAddress, &sb.EOFAddress, &sb.RootGroupAddress}
	for _, dst := range addrs {
		v, err := fr.ReadOffset()
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	return sb, nil
}

// Encode returns the checksummed superblock bytes.
func (sb *Superblock) Encode() ([]byte, error) {
	buf := binpkg.NewBuffer(sb.Size())
	w := binpkg.NewWriter(buf, sb.Config())

	version := sb.Version
	if version < 2 {
		version = 3
	}
	if err := w.WriteBytes(Signature); err != nil {
		return nil, err
	}
	for _, b := range []uint8{version, sb.OffsetSize, sb.LengthSize, sb.ConsistencyFlags} {
		if err := w.WriteUint8(b); err != nil {
			return nil, err
		}
	}
	for _, addr := range []uint64{sb.BaseAddress, sb.ExtensionAddress, sb.EOFAddress, sb.RootGroupAddress} {
		if err := w.WriteOffset(addr); err != nil {
			return nil, err
		}
	}
	if err := w.WriteUint32(binpkg.Lookup3Checksum(buf.Bytes())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes the superblock at offset 0 of dst.
func (sb *Superblock) Write(dst io.WriterAt) error {
	raw, err := sb.Encode()
	if err != nil {
		return err
	}
	_, err = dst.WriteAt(raw, sb.FileOffset)
	return err
}
