package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/robert-malhotra/go-dal/internal/binary"
	"github.com/robert-malhotra/go-dal/internal/message"
)

// Segment is one external file region.
type Segment struct {
	Name   string
	Path   string
	Offset int64
	// Size is the segment length in bytes; 0 means unlimited.
	Size uint64
}

// External stores data in files outside the HDF5 file. Files are opened on
// first access and created on first write.
type External struct {
	segments []Segment
	files    map[string]*os.File
	writable map[string]bool

	// Created, if set, is called after an external file was created.
	Created func(path string)
}

// NewExternal returns storage over the files of efl.
func NewExternal(efl *message.ExternalFileList, names []string, dir string) (*External, error) {
	if len(names) != len(efl.Files) {
		return nil, fmt.Errorf("%d external file names for %d entries", len(names), len(efl.Files))
	}
	e := &External{
		files:    make(map[string]*os.File),
		writable: make(map[string]bool),
	}
	for i, ef := range efl.Files {
		size := ef.Size
		for _, w := range []int{2, 4, 8} {
			if size == binary.Undefined(w) {
				size = 0
			}
		}
		e.segments = append(e.segments, Segment{
			Name:   names[i],
			Path:   ResolvePath(dir, names[i]),
			Offset: int64(ef.Offset),
			Size:   size,
		})
	}
	return e, nil
}

// ResolvePath returns name if absolute, otherwise name joined to dir.
func ResolvePath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// Segments returns the segments in file list order.
func (e *External) Segments() []Segment { return e.segments }

func (e *External) Class() message.LayoutClass { return message.LayoutContiguous }

func (e *External) ReadAt(p []byte, off int64) (int, error) {
	err := e.walk(p, off, func(s Segment, chunk []byte, at int64) error {
		f, err := e.open(s.Path, false)
		if err != nil {
			return err
		}
		if f == nil {
			clear(chunk)
			return nil
		}
		return readFull(f, chunk, at)
	})
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (e *External) WriteAt(p []byte, off int64) (int, error) {
	err := e.walk(p, off, func(s Segment, chunk []byte, at int64) error {
		f, err := e.open(s.Path, true)
		if err != nil {
			return err
		}
		_, err = f.WriteAt(chunk, at)
		return err
	})
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// walk splits [off, off+len(p)) over the segments and calls fn with each
// piece and its offset inside the segment's file.
func (e *External) walk(p []byte, off int64, fn func(s Segment, chunk []byte, at int64) error) error {
	if off < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrOutOfRange, off)
	}
	var start int64
	for _, s := range e.segments {
		if len(p) == 0 {
			return nil
		}
		if s.Size != 0 && off >= start+int64(s.Size) {
			start += int64(s.Size)
			continue
		}
		n := int64(len(p))
		if s.Size != 0 {
			n = min(n, start+int64(s.Size)-off)
		}
		if err := fn(s, p[:n], s.Offset+off-start); err != nil {
			return fmt.Errorf("external file %s: %w", s.Name, err)
		}
		p, off = p[n:], off+n
		if s.Size == 0 {
			break
		}
		start += int64(s.Size)
	}
	if len(p) > 0 {
		return fmt.Errorf("%w: %d bytes past the last external file", ErrOutOfRange, len(p))
	}
	return nil
}

// open returns the cached file for path. For reads a missing file yields
// nil, nil.
func (e *External) open(path string, write bool) (*os.File, error) {
	if f, ok := e.files[path]; ok && (!write || e.writable[path]) {
		return f, nil
	}
	if !write {
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		e.files[path] = f
		return f, nil
	}

	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if old, ok := e.files[path]; ok {
		old.Close()
	}
	e.files[path] = f
	e.writable[path] = true
	if errors.Is(statErr, fs.ErrNotExist) && e.Created != nil {
		e.Created(path)
	}
	return f, nil
}

// Close closes every opened external file.
func (e *External) Close() error {
	var errs []error
	for path, f := range e.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", path, err))
		}
	}
	clear(e.files)
	clear(e.writable)
	return errors.Join(errs...)
}
