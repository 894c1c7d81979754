package object

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	binpkg "github.com/robert-malhotra/go-dal/internal/binary"
	"github.com/robert-malhotra/go-dal/internal/message"
)

var (
	signatureHeader       = []byte("OHDR")
	signatureContinuation = []byte("OCHK")
)

var (
	ErrInvalidHeader      = errors.New("invalid object header")
	ErrUnsupportedVersion = errors.New("unsupported object header version")
	ErrChecksumMismatch   = errors.New("object header checksum mismatch")
)

const (
	flagSizeMask   = 0x03
	flagTrackOrder = 0x04
	flagPhase      = 0x10
	flagTimes      = 0x20
)

// Header is a decoded object header.
type Header struct {
	Address uint64
	// Size is the number of bytes of the first chunk, prefix and checksum
	// included. A rewrite must not exceed it.
	Size     int
	Messages []message.Message
}

// Read decodes the object header at address.
func Read(r *binpkg.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address))
	prefix, err := hr.ReadBytes(6)
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}
	if !bytes.Equal(prefix[:4], signatureHeader) {
		return nil, fmt.Errorf("%w at address %d", ErrInvalidHeader, address)
	}
	if prefix[4] != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, prefix[4])
	}
	flags := prefix[5]
	if flags&flagTimes != 0 {
		hr.Skip(16)
	}
	if flags&flagPhase != 0 {
		hr.Skip(4)
	}
	chunkSize, err := hr.ReadUintN(1 << (flags & flagSizeMask))
	if err != nil {
		return nil, err
	}

	start := hr.Pos()
	end := start + int64(chunkSize)
	if err := verify(r, int64(address), end); err != nil {
		return nil, err
	}

	h := &Header{Address: address, Size: int(end-int64(address)) + 4}
	if err := readMessages(r, hr, end, flags, h, 0); err != nil {
		return nil, err
	}
	return h, nil
}

// verify checks the lookup3 checksum stored right after [from, to).
func verify(r *binpkg.Reader, from, to int64) error {
	raw, err := r.At(from).ReadBytes(int(to-from) + 4)
	if err != nil {
		return fmt.Errorf("reading object header: %w", err)
	}
	body := len(raw) - 4
	if binpkg.Lookup3Checksum(raw[:body]) != binary.LittleEndian.Uint32(raw[body:]) {
		return ErrChecksumMismatch
	}
	return nil
}

const maxContinuationDepth = 64

func readMessages(r, mr *binpkg.Reader, end int64, flags uint8, h *Header, depth int) error {
	headerLen := int64(4)
	if flags&flagTrackOrder != 0 {
		headerLen += 2
	}
	for end-mr.Pos() >= headerLen {
		typ, _ := mr.ReadUint8()
		size, err := mr.ReadUint16()
		if err != nil {
			return err
		}
		mr.Skip(headerLen - 3)
		data, err := mr.ReadBytes(int(size))
		if err != nil {
			return fmt.Errorf("reading message 0x%02x: %w", typ, err)
		}
		if message.Type(typ) == message.TypeNIL {
			continue
		}
		msg, err := message.Parse(message.Type(typ), data, r.Config())
		if err != nil {
			return err
		}
		if cont, ok := msg.(*message.Continuation); ok {
			if depth >= maxContinuationDepth {
				return fmt.Errorf("%w: continuation chain too long", ErrInvalidHeader)
			}
			if err := readContinuation(r, cont, flags, h, depth+1); err != nil {
				return err
			}
			continue
		}
		h.Messages = append(h.Messages, msg)
	}
	return nil
}

func readContinuation(r *binpkg.Reader, cont *message.Continuation, flags uint8, h *Header, depth int) error {
	cr := r.At(int64(cont.Offset))
	sig, err := cr.ReadBytes(4)
	if err != nil {
		return err
	}
	if !bytes.Equal(sig, signatureContinuation) {
		return fmt.Errorf("%w: bad continuation signature %q", ErrInvalidHeader, sig)
	}
	end := int64(cont.Offset + cont.Length - 4)
	if err := verify(r, int64(cont.Offset), end); err != nil {
		return err
	}
	return readMessages(r, cr, end, flags, h, depth)
}

// Get returns the first message of the given type, or nil.
func (h *Header) Get(typ message.Type) message.Message {
	for _, msg := range h.Messages {
		if msg.Type() == typ {
			return msg
		}
	}
	return nil
}

// IsDataset reports whether the header describes a dataset.
func (h *Header) IsDataset() bool {
	return h.Get(message.TypeDataspace) != nil && h.Get(message.TypeDataLayout) != nil
}

// Dataspace returns the dataspace message, if any.
func (h *Header) Dataspace() *message.Dataspace {
	m, _ := h.Get(message.TypeDataspace).(*message.Dataspace)
	return m
}

// Datatype returns the datatype message, if any.
func (h *Header) Datatype() *message.Datatype {
	m, _ := h.Get(message.TypeDatatype).(*message.Datatype)
	return m
}

// Layout returns the data layout message, if any.
func (h *Header) Layout() *message.DataLayout {
	m, _ := h.Get(message.TypeDataLayout).(*message.DataLayout)
	return m
}

// ExternalFiles returns the external file list message, if any.
func (h *Header) ExternalFiles() *message.ExternalFileList {
	m, _ := h.Get(message.TypeExternalDataFiles).(*message.ExternalFileList)
	return m
}

// LinkInfo returns the link info message, if any.
func (h *Header) LinkInfo() *message.LinkInfo {
	m, _ := h.Get(message.TypeLinkInfo).(*message.LinkInfo)
	return m
}

// Links returns all link messages in header order.
func (h *Header) Links() []*message.Link {
	var links []*message.Link
	for _, msg := range h.Messages {
		if l, ok := msg.(*message.Link); ok {
			links = append(links, l)
		}
	}
	return links
}
