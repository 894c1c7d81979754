package hdf5

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-dal/internal/message"
)

// Layout is the storage layout of a dataset.
type Layout int

const (
	Compact Layout = iota
	Contiguous
	Chunked
)

// MaxExternalNameLen is the longest accepted external file name in bytes.
const MaxExternalNameLen = 1023

// UnlimitedSize marks an external file segment without size limit.
const UnlimitedSize = ^uint64(0)

// External is one external file segment of a dataset.
type External struct {
	Name   string
	Offset int64
	Size   uint64
}

// plist is a dataset creation property list.
type plist struct {
	layout   Layout
	external []External
}

func (p *plist) release() error { return nil }

func (p *plist) clone() *plist {
	return &plist{layout: p.layout, external: slices.Clone(p.external)}
}

// externalSize returns the total external size, UnlimitedSize if any
// segment is unlimited.
func (p *plist) externalSize() uint64 {
	var total uint64
	for _, e := range p.external {
		if e.Size == UnlimitedSize {
			return UnlimitedSize
		}
		total += e.Size
	}
	return total
}

// CreateDatasetPlist creates a dataset creation property list with
// contiguous layout and no external files.
func CreateDatasetPlist() (ID, error) {
	mu.Lock()
	defer mu.Unlock()
	return register(TypePlist, &plist{layout: Contiguous}), nil
}

func getPlist(id ID) (*plist, error) {
	e, err := lookup(id, TypePlist)
	if err != nil {
		return nil, err
	}
	return e.obj.(*plist), nil
}

// ClosePlist releases a property list ID.
func ClosePlist(id ID) error {
	mu.Lock()
	defer mu.Unlock()
	_, err := decRef(id, TypePlist)
	return err
}

// SetLayout sets the storage layout. Only Contiguous is supported.
func SetLayout(id ID, l Layout) error {
	mu.Lock()
	defer mu.Unlock()
	p, err := getPlist(id)
	if err != nil {
		return err
	}
	if l != Contiguous {
		return fmt.Errorf("%w: layout %d", ErrUnsupported, l)
	}
	p.layout = l
	return nil
}

// GetLayout returns the storage layout.
func GetLayout(id ID) (Layout, error) {
	mu.Lock()
	defer mu.Unlock()
	p, err := getPlist(id)
	if err != nil {
		return 0, err
	}
	return p.layout, nil
}

// SetExternal appends an external file segment of size bytes starting at
// offset in name. Nothing may follow a segment of UnlimitedSize.
func SetExternal(id ID, name string, offset int64, size uint64) error {
	mu.Lock()
	defer mu.Unlock()
	p, err := getPlist(id)
	if err != nil {
		return err
	}
	switch {
	case name == "":
		return fmt.Errorf("%w: empty external file name", ErrInvalidName)
	case len(name) > MaxExternalNameLen:
		return fmt.Errorf("%w: external file name is %d bytes, limit %d", ErrNameTooLong, len(name), MaxExternalNameLen)
	case offset < 0:
		return fmt.Errorf("%w: negative external file offset", ErrExtent)
	case size == 0:
		return fmt.Errorf("%w: empty external file segment", ErrExtent)
	case p.externalSize() == UnlimitedSize:
		return fmt.Errorf("%w: previous external file has unlimited size", ErrExtent)
	}
	p.external = append(p.external, External{Name: name, Offset: offset, Size: size})
	return nil
}

// ExternalCount returns the number of external file segments.
func ExternalCount(id ID) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	p, err := getPlist(id)
	if err != nil {
		return 0, err
	}
	return len(p.external), nil
}

// GetExternal returns external file segment idx.
func GetExternal(id ID, idx int) (External, error) {
	mu.Lock()
	defer mu.Unlock()
	p, err := getPlist(id)
	if err != nil {
		return External{}, err
	}
	if idx < 0 || idx >= len(p.external) {
		return External{}, fmt.Errorf("%w: external file %d of %d", ErrOutOfBounds, idx, len(p.external))
	}
	return p.external[idx], nil
}

func layoutOf(c message.LayoutClass) Layout {
	switch c {
	case message.LayoutCompact:
		return Compact
	case message.LayoutChunked:
		return Chunked
	}
	return Contiguous
}
