package layout

import (
	"github.com/robert-malhotra/go-dal/internal/message"
)

// Compact is storage held in the layout message itself.
type Compact struct {
	data []byte
}

// NewCompact returns the compact storage of lay.
func NewCompact(lay *message.DataLayout) *Compact {
	return &Compact{data: lay.CompactData}
}

func (c *Compact) Class() message.LayoutClass { return message.LayoutCompact }

// Size returns the size of the compact data.
func (c *Compact) Size() int { return len(c.data) }

func (c *Compact) ReadAt(p []byte, off int64) (int, error) {
	if err := check(off, len(p), uint64(len(c.data))); err != nil {
		return 0, err
	}
	return copy(p, c.data[off:]), nil
}

// WriteAt always fails; compact datasets are never written.
func (c *Compact) WriteAt([]byte, int64) (int, error) { return 0, ErrReadOnly }

func (c *Compact) Close() error { return nil }
