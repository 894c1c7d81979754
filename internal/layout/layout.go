package layout

import (
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-dal/internal/message"
)

var (
	ErrReadOnly   = errors.New("storage is read only")
	ErrOutOfRange = errors.New("access outside dataset storage")
)

// Storage is the raw data of one dataset.
type Storage interface {
	io.ReaderAt
	io.WriterAt
	Class() message.LayoutClass
	Close() error
}

// File is the HDF5 file as seen by Contiguous storage.
type File interface {
	io.ReaderAt
	io.WriterAt
}

// New returns the storage described by lay. efl and names are set for
// datasets with external files, names[i] being the name of efl.Files[i].
// dir is the directory relative external names resolve against.
func New(lay *message.DataLayout, efl *message.ExternalFileList, names []string, dir string, f File) (Storage, error) {
	if lay == nil {
		return nil, fmt.Errorf("nil layout message")
	}
	if efl != nil && len(efl.Files) > 0 {
		if lay.Class != message.LayoutContiguous {
			return nil, fmt.Errorf("external files with %s layout", lay.Class)
		}
		return NewExternal(efl, names, dir)
	}
	switch lay.Class {
	case message.LayoutCompact:
		return NewCompact(lay), nil
	case message.LayoutContiguous:
		return NewContiguous(lay, f), nil
	}
	return nil, fmt.Errorf("unsupported layout class: %s", lay.Class)
}

// check validates an access of n bytes at off against a storage of size
// bytes.
func check(off int64, n int, size uint64) error {
	if off < 0 || uint64(off)+uint64(n) > size {
		return fmt.Errorf("%w: [%d, %d) of %d bytes", ErrOutOfRange, off, off+int64(n), size)
	}
	return nil
}

// readFull reads into p and zero-fills whatever r cannot supply.
func readFull(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	clear(p[n:])
	return nil
}
