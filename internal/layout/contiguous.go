package layout

import (
	"fmt"

	"github.com/robert-malhotra/go-dal/internal/binary"
	"github.com/robert-malhotra/go-dal/internal/message"
)

// Contiguous is a single block of the HDF5 file.
type Contiguous struct {
	f       File
	address uint64
	size    uint64
}

// NewContiguous returns the contiguous storage of lay inside f.
func NewContiguous(lay *message.DataLayout, f File) *Contiguous {
	return &Contiguous{f: f, address: lay.Address, size: lay.Size}
}

func (c *Contiguous) Class() message.LayoutClass { return message.LayoutContiguous }

// Address returns the data address.
func (c *Contiguous) Address() uint64 { return c.address }

// Size returns the data size in bytes.
func (c *Contiguous) Size() uint64 { return c.size }

func (c *Contiguous) allocated() bool {
	for _, w := range []int{2, 4, 8} {
		if c.address == binary.Undefined(w) {
			return false
		}
	}
	return true
}

func (c *Contiguous) ReadAt(p []byte, off int64) (int, error) {
	if err := check(off, len(p), c.size); err != nil {
		return 0, err
	}
	if !c.allocated() {
		clear(p)
		return len(p), nil
	}
	if err := readFull(c.f, p, int64(c.address)+off); err != nil {
		return 0, fmt.Errorf("reading contiguous data: %w", err)
	}
	return len(p), nil
}

func (c *Contiguous) WriteAt(p []byte, off int64) (int, error) {
	if err := check(off, len(p), c.size); err != nil {
		return 0, err
	}
	if !c.allocated() {
		return 0, fmt.Errorf("contiguous data not allocated")
	}
	n, err := c.f.WriteAt(p, int64(c.address)+off)
	if err != nil {
		return n, fmt.Errorf("writing contiguous data: %w", err)
	}
	return n, nil
}

// Close does nothing; the HDF5 file belongs to its owner.
func (c *Contiguous) Close() error { return nil }
