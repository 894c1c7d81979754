package hdf5

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-dal/internal/dtype"
	"github.com/robert-malhotra/go-dal/internal/layout"
)

// Read reads the fileSpace selection of a dataset into the memSpace
// selection of buf, converting from the file datatype to memType. All for
// fileSpace selects the whole dataset; All for memSpace lays buf out like
// the file selection within the dataset extent.
func Read(id ID, memType Datatype, memSpace, fileSpace ID, buf []byte) error {
	return transfer(id, memType, memSpace, fileSpace, buf, false)
}

// Write writes the memSpace selection of buf into the fileSpace selection
// of a dataset, converting from memType to the file datatype.
func Write(id ID, memType Datatype, memSpace, fileSpace ID, buf []byte) error {
	return transfer(id, memType, memSpace, fileSpace, buf, true)
}

func transfer(id ID, memType Datatype, memSpace, fileSpace ID, buf []byte, write bool) error {
	if err := memType.validate(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	d, err := getDataset(id)
	if err != nil {
		return err
	}
	st := d.st
	if write && !d.f.writable {
		return ErrReadOnly
	}

	fspace := &dataspace{dims: st.space.Dimensions, all: true}
	if fileSpace != All {
		if fspace, err = getSpace(fileSpace); err != nil {
			return err
		}
		if !slices.Equal(fspace.dims, st.space.Dimensions) {
			return fmt.Errorf("%w: file dataspace %v does not match dataset extent %v", ErrOutOfBounds, fspace.dims, st.space.Dimensions)
		}
	}
	mspace := fspace
	if memSpace != All {
		if mspace, err = getSpace(memSpace); err != nil {
			return err
		}
	}
	n := fspace.points()
	if m := mspace.points(); m != n {
		return fmt.Errorf("%w: memory selects %d elements, file selects %d", ErrOutOfBounds, m, n)
	}

	memDT, fileDT := memType.message(), st.ftype
	memSize, fileSize := uint64(memType.ElementSize()), uint64(fileDT.Size)
	if need := mspace.span() * memSize; uint64(len(buf)) < need {
		return fmt.Errorf("%w: buffer holds %d bytes, selection needs %d", ErrOutOfBounds, len(buf), need)
	}
	if n == 0 {
		return nil
	}

	raw := make([]byte, n*fileSize)
	start, count := fspace.selection()
	walk := func(io func([]byte, int64) (int, error)) error {
		var pos uint64
		return layout.Runs(st.space.Dimensions, start, count, fileSize, func(off, ln uint64) error {
			_, err := io(raw[pos:pos+ln], int64(off))
			pos += ln
			return err
		})
	}

	if !write {
		if err := walk(st.storage.ReadAt); err != nil {
			return fmt.Errorf("reading %s: %w", st.path, err)
		}
		if mspace.dense() {
			return dtype.Convert(buf, memDT, raw, fileDT, int(n))
		}
		conv := make([]byte, n*memSize)
		if err := dtype.Convert(conv, memDT, raw, fileDT, int(n)); err != nil {
			return err
		}
		var i uint64
		mspace.offsets(func(off uint64) {
			copy(buf[off*memSize:(off+1)*memSize], conv[i*memSize:(i+1)*memSize])
			i++
		})
		return nil
	}

	src := buf
	if !mspace.dense() {
		src = make([]byte, n*memSize)
		var i uint64
		mspace.offsets(func(off uint64) {
			copy(src[i*memSize:(i+1)*memSize], buf[off*memSize:(off+1)*memSize])
			i++
		})
	}
	if err := dtype.Convert(raw, fileDT, src, memDT, int(n)); err != nil {
		return err
	}
	if err := walk(st.storage.WriteAt); err != nil {
		return fmt.Errorf("writing %s: %w", st.path, err)
	}
	return nil
}
