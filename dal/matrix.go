package dal

import (
	"fmt"

	"github.com/robert-malhotra/go-dal/hdf5"
)

// matrixIO transfers the block at pos of extent size between the dataset
// and buf. strides are the element strides of buf per dimension; empty
// strides lay buf out densely in row-major order.
func (d *Dataset[T]) matrixIO(pos, size, strides []uint64, buf []T, read bool) error {
	rank, err := d.Ndims()
	if err != nil {
		return err
	}
	if len(pos) != rank || len(size) != rank {
		return newError("could not select hyperslab",
			fmt.Errorf("%w: pos has %d and size %d dimensions, dataset %d", ErrRankMismatch, len(pos), len(size), rank))
	}
	if len(strides) != 0 && len(strides) != rank {
		return newError("could not create memory dataspace",
			fmt.Errorf("%w: %d strides, dataset rank %d", ErrRankMismatch, len(strides), rank))
	}
	if len(strides) == 0 {
		strides = nil
	}
	st, err := typeOf[T]()
	if err != nil {
		return err
	}
	if need := span(size, strides); uint64(len(buf)) < need {
		return newError(fmt.Sprintf("buffer holds %d elements, selection needs %d", len(buf), need), ErrBufferTooSmall)
	}

	did, err := d.id()
	if err != nil {
		return err
	}
	fileSpace, err := d.space()
	if err != nil {
		return err
	}
	defer fileSpace.Close()
	if err := hdf5.SelectHyperslab(fileSpace.ID(), pos, size); err != nil {
		return newError("could not select hyperslab", err)
	}

	id, err := hdf5.CreateMemory(size, strides)
	memSpace, err := tempGuard(id, err, hdf5.CloseDataspace, "could not create memory dataspace")
	if err != nil {
		return err
	}
	defer memSpace.Close()
	if err := hdf5.SelectHyperslab(memSpace.ID(), make([]uint64, rank), size); err != nil {
		return newError("could not select memory hyperslab", err)
	}

	if read {
		if err := hdf5.Read(did, st.native, memSpace.ID(), fileSpace.ID(), asBytes(buf)); err != nil {
			return newError("could not read data from "+d.Path(), err)
		}
		return nil
	}
	if err := hdf5.Write(did, st.native, memSpace.ID(), fileSpace.ID(), asBytes(buf)); err != nil {
		return newError("could not write data to "+d.Path(), err)
	}
	return nil
}

// span returns the number of elements a buffer needs for a block of
// extent size laid out with strides.
func span(size, strides []uint64) uint64 {
	if strides == nil {
		n := uint64(1)
		for _, s := range size {
			n *= s
		}
		return n
	}
	last := uint64(0)
	for d, s := range size {
		if s == 0 {
			return 0
		}
		last += (s - 1) * strides[d]
	}
	return last + 1
}

// GetMatrix reads the block at pos of extent size into buf, densely packed.
func (d *Dataset[T]) GetMatrix(pos, size []uint64, buf []T) error {
	return d.matrixIO(pos, size, nil, buf, true)
}

// SetMatrix writes the densely packed buf to the block at pos of extent
// size.
func (d *Dataset[T]) SetMatrix(pos, size []uint64, buf []T) error {
	return d.matrixIO(pos, size, nil, buf, false)
}

// project returns size and strides of a block that varies only in the
// dimensions idx, with extents n, laid out densely in that order.
func project(pos []uint64, idx []int, n []uint64) (size, strides []uint64) {
	size = ones(len(pos))
	strides = make([]uint64, len(pos))
	stride := uint64(1)
	for k := len(idx) - 1; k >= 0; k-- {
		size[idx[k]] = n[k]
		strides[idx[k]] = stride
		stride *= n[k]
	}
	return size, strides
}

func check2D(pos []uint64, dim1index, dim2index int) error {
	if dim1index < 0 || dim1index >= dim2index || dim2index >= len(pos) {
		return newError("could not select 2D block",
			fmt.Errorf("%w: dimensions %d and %d of rank %d", ErrRankMismatch, dim1index, dim2index, len(pos)))
	}
	return nil
}

func check1D(pos []uint64, dim1index int) error {
	if dim1index < 0 || dim1index >= len(pos) {
		return newError("could not select 1D block",
			fmt.Errorf("%w: dimension %d of rank %d", ErrRankMismatch, dim1index, len(pos)))
	}
	return nil
}

// Get2D reads a dim1 x dim2 matrix starting at pos into buf. The matrix
// runs along dimensions dim1index and dim2index; the others stay at pos.
func (d *Dataset[T]) Get2D(pos []uint64, dim1, dim2 uint64, buf []T, dim1index, dim2index int) error {
	if err := check2D(pos, dim1index, dim2index); err != nil {
		return err
	}
	size, strides := project(pos, []int{dim1index, dim2index}, []uint64{dim1, dim2})
	return d.matrixIO(pos, size, strides, buf, true)
}

// Set2D writes a dim1 x dim2 matrix from buf starting at pos, along
// dimensions dim1index and dim2index.
func (d *Dataset[T]) Set2D(pos []uint64, dim1, dim2 uint64, buf []T, dim1index, dim2index int) error {
	if err := check2D(pos, dim1index, dim2index); err != nil {
		return err
	}
	size, strides := project(pos, []int{dim1index, dim2index}, []uint64{dim1, dim2})
	return d.matrixIO(pos, size, strides, buf, false)
}

// Get1D reads dim1 values along dimension dim1index starting at pos.
func (d *Dataset[T]) Get1D(pos []uint64, dim1 uint64, buf []T, dim1index int) error {
	if err := check1D(pos, dim1index); err != nil {
		return err
	}
	size, strides := project(pos, []int{dim1index}, []uint64{dim1})
	return d.matrixIO(pos, size, strides, buf, true)
}

// Set1D writes dim1 values along dimension dim1index starting at pos.
func (d *Dataset[T]) Set1D(pos []uint64, dim1 uint64, buf []T, dim1index int) error {
	if err := check1D(pos, dim1index); err != nil {
		return err
	}
	size, strides := project(pos, []int{dim1index}, []uint64{dim1})
	return d.matrixIO(pos, size, strides, buf, false)
}

func ones(n int) []uint64 {
	s := make([]uint64, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

// GetScalar reads the value at pos.
func (d *Dataset[T]) GetScalar(pos []uint64) (T, error) {
	var v [1]T
	err := d.GetMatrix(pos, ones(len(pos)), v[:])
	return v[0], err
}

// SetScalar writes v at pos.
func (d *Dataset[T]) SetScalar(pos []uint64, v T) error {
	return d.SetMatrix(pos, ones(len(pos)), []T{v})
}
