package hdf5

import (
	"fmt"
	"slices"
)

// Unlimited marks a dimension without maximum.
const Unlimited = ^uint64(0)

type dataspace struct {
	dims    []uint64
	maxdims []uint64
	// strides are element strides of a memory layout; nil is dense
	// row-major.
	strides []uint64

	all          bool
	start, count []uint64
}

func (s *dataspace) release() error { return nil }

func (s *dataspace) rank() int { return len(s.dims) }

func (s *dataspace) clone() *dataspace {
	return &dataspace{
		dims:    slices.Clone(s.dims),
		maxdims: slices.Clone(s.maxdims),
		strides: slices.Clone(s.strides),
		all:     s.all,
		start:   slices.Clone(s.start),
		count:   slices.Clone(s.count),
	}
}

// selection returns the selected block.
func (s *dataspace) selection() (start, count []uint64) {
	if s.all {
		return make([]uint64, len(s.dims)), s.dims
	}
	return s.start, s.count
}

func (s *dataspace) points() uint64 {
	_, count := s.selection()
	n := uint64(1)
	for _, c := range count {
		n *= c
	}
	return n
}

// elementStrides returns the element stride of every dimension.
func (s *dataspace) elementStrides() []uint64 {
	if s.strides != nil {
		return s.strides
	}
	st := make([]uint64, len(s.dims))
	acc := uint64(1)
	for d := len(s.dims) - 1; d >= 0; d-- {
		st[d] = acc
		acc *= s.dims[d]
	}
	return st
}

// offsets calls fn with the element offset of every selected point, in
// row-major order of the selection.
func (s *dataspace) offsets(fn func(off uint64)) {
	start, count := s.selection()
	if slices.Contains(count, 0) {
		return
	}
	strides := s.elementStrides()
	idx := make([]uint64, len(count))
	for {
		off := uint64(0)
		for d := range idx {
			off += (start[d] + idx[d]) * strides[d]
		}
		fn(off)

		d := len(idx) - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < count[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}

// span returns the number of elements a buffer needs to hold the selection.
func (s *dataspace) span() uint64 {
	if s.points() == 0 {
		return 0
	}
	start, count := s.selection()
	strides := s.elementStrides()
	last := uint64(0)
	for d := range count {
		last += (start[d] + count[d] - 1) * strides[d]
	}
	return last + 1
}

// dense reports whether the selection covers the whole space with a
// row-major layout, so its elements are consecutive from offset 0.
func (s *dataspace) dense() bool {
	if s.strides != nil {
		return false
	}
	start, count := s.selection()
	for d := range s.dims {
		if start[d] != 0 || count[d] != s.dims[d] {
			return false
		}
	}
	return true
}

func checkDims(dims, maxdims []uint64) error {
	if maxdims != nil && len(maxdims) != len(dims) {
		return fmt.Errorf("%w: rank %d with %d maximum dimensions", ErrExtent, len(dims), len(maxdims))
	}
	for i := range maxdims {
		if maxdims[i] != Unlimited && dims[i] > maxdims[i] {
			return fmt.Errorf("%w: dimension %d is %d, maximum %d", ErrExtent, i, dims[i], maxdims[i])
		}
	}
	return nil
}

// CreateSimple creates a dataspace with the given extent. A nil maxdims
// fixes the maximum to dims; Unlimited marks an unlimited dimension.
func CreateSimple(dims, maxdims []uint64) (ID, error) {
	if err := checkDims(dims, maxdims); err != nil {
		return 0, err
	}
	if maxdims == nil {
		maxdims = dims
	}
	s := &dataspace{dims: slices.Clone(dims), maxdims: slices.Clone(maxdims), all: true}

	mu.Lock()
	defer mu.Unlock()
	return register(TypeDataspace, s), nil
}

// CreateMemory creates a dataspace describing a memory buffer of count
// elements per dimension, laid out with the given element strides. A nil
// strides is dense row-major.
func CreateMemory(count, strides []uint64) (ID, error) {
	if strides != nil && len(strides) != len(count) {
		return 0, fmt.Errorf("%w: %d strides for rank %d", ErrExtent, len(strides), len(count))
	}
	s := &dataspace{
		dims:    slices.Clone(count),
		maxdims: slices.Clone(count),
		strides: slices.Clone(strides),
		all:     true,
	}

	mu.Lock()
	defer mu.Unlock()
	return register(TypeDataspace, s), nil
}

func getSpace(id ID) (*dataspace, error) {
	e, err := lookup(id, TypeDataspace)
	if err != nil {
		return nil, err
	}
	return e.obj.(*dataspace), nil
}

// CloseDataspace releases a dataspace ID.
func CloseDataspace(id ID) error {
	mu.Lock()
	defer mu.Unlock()
	_, err := decRef(id, TypeDataspace)
	return err
}

// SpaceRank returns the rank of a dataspace.
func SpaceRank(id ID) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	s, err := getSpace(id)
	if err != nil {
		return 0, err
	}
	return s.rank(), nil
}

// SpaceDims returns the current and maximum extent of a dataspace.
func SpaceDims(id ID) (dims, maxdims []uint64, err error) {
	mu.Lock()
	defer mu.Unlock()
	s, err := getSpace(id)
	if err != nil {
		return nil, nil, err
	}
	return slices.Clone(s.dims), slices.Clone(s.maxdims), nil
}

// SelectHyperslab selects the block start/count of a dataspace.
func SelectHyperslab(id ID, start, count []uint64) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := getSpace(id)
	if err != nil {
		return err
	}
	if len(start) != s.rank() || len(count) != s.rank() {
		return fmt.Errorf("%w: selection rank %d/%d, dataspace rank %d", ErrOutOfBounds, len(start), len(count), s.rank())
	}
	for d := range start {
		if count[d] > s.dims[d] || start[d] > s.dims[d]-count[d] {
			return fmt.Errorf("%w: dimension %d selects [%d, %d) of %d", ErrOutOfBounds, d, start[d], start[d]+count[d], s.dims[d])
		}
	}
	s.all = false
	s.start, s.count = slices.Clone(start), slices.Clone(count)
	return nil
}

// SelectAll selects the whole dataspace.
func SelectAll(id ID) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := getSpace(id)
	if err != nil {
		return err
	}
	s.all, s.start, s.count = true, nil, nil
	return nil
}

// SelectedPoints returns the number of selected elements.
func SelectedPoints(id ID) (uint64, error) {
	mu.Lock()
	defer mu.Unlock()
	s, err := getSpace(id)
	if err != nil {
		return 0, err
	}
	return s.points(), nil
}
