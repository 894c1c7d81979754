package layout

import "fmt"

// Runs reports the selection start/count of a row-major array of shape dims
// as contiguous byte runs, in row-major order. fn receives the byte offset
// of each run and its length.
func Runs(dims, start, count []uint64, elemSize uint64, fn func(off, n uint64) error) error {
	ndims := len(dims)
	if len(start) != ndims || len(count) != ndims {
		return fmt.Errorf("selection rank %d/%d does not match dataspace rank %d", len(start), len(count), ndims)
	}
	for d := range dims {
		if count[d] == 0 {
			return nil
		}
		if start[d]+count[d] > dims[d] {
			return fmt.Errorf("%w: dimension %d selects [%d, %d) of %d", ErrOutOfRange, d, start[d], start[d]+count[d], dims[d])
		}
	}
	if ndims == 0 {
		return fn(0, elemSize)
	}

	strides := make([]uint64, ndims)
	strides[ndims-1] = elemSize
	for d := ndims - 2; d >= 0; d-- {
		strides[d] = strides[d+1] * dims[d+1]
	}

	// Merge trailing fully selected dimensions into the run.
	inner := ndims - 1
	for inner > 0 && start[inner] == 0 && count[inner] == dims[inner] {
		inner--
	}
	runLen := count[inner] * strides[inner]

	return runsRecursive(start, count, strides, inner, runLen, 0, 0, fn)
}

func runsRecursive(start, count, strides []uint64, inner int, runLen, offset uint64, dim int, fn func(off, n uint64) error) error {
	if dim == inner {
		return fn(offset+start[dim]*strides[dim], runLen)
	}
	for i := uint64(0); i < count[dim]; i++ {
		next := offset + (start[dim]+i)*strides[dim]
		if err := runsRecursive(start, count, strides, inner, runLen, next, dim+1, fn); err != nil {
			return err
		}
	}
	return nil
}
