package dal

import (
	"fmt"

	"github.com/robert-malhotra/go-dal/hdf5"
)

type datasetNode struct{}

func (datasetNode) open(parent hdf5.ID, name string) (HID, error) {
	id, err := hdf5.OpenDataset(parent, name)
	return guard(id, err, hdf5.CloseDataset, "could not open dataset")
}

func (datasetNode) create(hdf5.ID, string) (HID, error) {
	return HID{}, newError("create without extent not supported on a dataset", ErrNotSupported)
}

// Dataset is a dataset node with elements of type T. T must be one of the
// fixed-size numbers or a Coordinate3D.
type Dataset[T any] struct {
	Group
}

// NewDataset returns the dataset name below parent without touching the
// file.
func NewDataset[T any](parent Parent, name string) *Dataset[T] {
	return &Dataset[T]{Group: Group{parent: parent, name: name, kind: datasetNode{}}}
}

// Create creates the dataset with extent dims and maximum extent maxdims,
// where -1 is unbounded, and opens it. A non-empty filename stores the
// data in that external file, relative to the HDF5 file's directory.
// Unbounded dimensions need an external file. The previous handle is kept
// when creation fails.
func (d *Dataset[T]) Create(dims, maxdims []int64, filename string, endianness Endianness) error {
	if len(dims) != len(maxdims) {
		return newError("could not create simple dataspace",
			fmt.Errorf("%w: %d dims, %d maxdims", ErrRankMismatch, len(dims), len(maxdims)))
	}
	st, err := typeOf[T]()
	if err != nil {
		return err
	}
	udims := make([]uint64, len(dims))
	umax := make([]uint64, len(dims))
	for i := range dims {
		if dims[i] < 0 || maxdims[i] < -1 {
			return newError("could not create simple dataspace",
				fmt.Errorf("%w: dimension %d is %d, maximum %d", hdf5.ErrExtent, i, dims[i], maxdims[i]))
		}
		udims[i] = uint64(dims[i])
		if maxdims[i] == -1 {
			if filename == "" {
				return newError("could not create dataset "+d.Path(), ErrUnboundedInternal)
			}
			umax[i] = hdf5.Unlimited
		} else {
			umax[i] = uint64(maxdims[i])
		}
	}

	pid, err := d.parent.id()
	if err != nil {
		return err
	}

	id, err := hdf5.CreateSimple(udims, umax)
	space, err := tempGuard(id, err, hdf5.CloseDataspace, "could not create simple dataspace")
	if err != nil {
		return err
	}
	defer space.Close()

	id, err = hdf5.CreateDatasetPlist()
	dcpl, err := tempGuard(id, err, hdf5.ClosePlist, "could not create dataset creation property list (dcpl)")
	if err != nil {
		return err
	}
	defer dcpl.Close()

	if err := hdf5.SetLayout(dcpl.ID(), hdf5.Contiguous); err != nil {
		return newError("could not set contiguous layout", err)
	}
	if filename != "" {
		if err := hdf5.SetExternal(dcpl.ID(), filename, 0, hdf5.UnlimitedSize); err != nil {
			return newError("could not add external file to dataset", err)
		}
	}

	id, err = hdf5.CreateDataset(pid, d.name, st.fileType(endianness), space.ID(), dcpl.ID())
	h, err := guard(id, err, hdf5.CloseDataset, "could not create dataset")
	if err != nil {
		return err
	}
	log().Debug("dal: dataset created", "path", d.Path(), "dims", dims, "maxdims", maxdims,
		"external", filename, "endianness", endianness)
	return d.replace(h)
}

// space returns a copy of the dataset's dataspace.
func (d *Dataset[T]) space() (*TempHID, error) {
	did, err := d.id()
	if err != nil {
		return nil, err
	}
	id, err := hdf5.DatasetSpace(did)
	return tempGuard(id, err, hdf5.CloseDataspace, "could not obtain dataspace")
}

// Ndims returns the rank of the dataset.
func (d *Dataset[T]) Ndims() (int, error) {
	space, err := d.space()
	if err != nil {
		return 0, err
	}
	defer space.Close()

	rank, err := hdf5.SpaceRank(space.ID())
	if err != nil {
		return 0, newError("could not obtain rank", err)
	}
	return rank, nil
}

func (d *Dataset[T]) extent() (dims, maxdims []uint64, err error) {
	space, err := d.space()
	if err != nil {
		return nil, nil, err
	}
	defer space.Close()

	dims, maxdims, err = hdf5.SpaceDims(space.ID())
	if err != nil {
		return nil, nil, newError("could not obtain dimensions", err)
	}
	return dims, maxdims, nil
}

// Dims returns the current extent of the dataset.
func (d *Dataset[T]) Dims() ([]int64, error) {
	dims, _, err := d.extent()
	if err != nil {
		return nil, err
	}
	return signed(dims), nil
}

// MaxDims returns the maximum extent of the dataset, -1 for unbounded
// dimensions.
func (d *Dataset[T]) MaxDims() ([]int64, error) {
	_, maxdims, err := d.extent()
	if err != nil {
		return nil, err
	}
	return signed(maxdims), nil
}

func signed(dims []uint64) []int64 {
	out := make([]int64, len(dims))
	for i, v := range dims {
		if v == hdf5.Unlimited {
			out[i] = -1
		} else {
			out[i] = int64(v)
		}
	}
	return out
}

// ExternalFiles returns the external files of the dataset in the order
// they were added.
func (d *Dataset[T]) ExternalFiles() ([]string, error) {
	did, err := d.id()
	if err != nil {
		return nil, err
	}
	id, err := hdf5.DatasetCreatePlist(did)
	dcpl, err := tempGuard(id, err, hdf5.ClosePlist, "could not obtain dataset creation property list (dcpl)")
	if err != nil {
		return nil, err
	}
	defer dcpl.Close()

	n, err := hdf5.ExternalCount(dcpl.ID())
	if err != nil {
		return nil, newError("could not obtain external file count", err)
	}
	names := make([]string, n)
	for i := range names {
		ext, err := hdf5.GetExternal(dcpl.ID(), i)
		if err != nil {
			return nil, newError(fmt.Sprintf("could not obtain external file %d", i), err)
		}
		names[i] = ext.Name
	}
	return names, nil
}

// Resize changes the extent of the dataset to newdims. Only datasets
// stored in external files can be resized.
func (d *Dataset[T]) Resize(newdims []int64) error {
	files, err := d.ExternalFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return newError("could not resize dataset "+d.Path(), ErrResizeInternal)
	}
	dims, maxdims, err := d.extent()
	if err != nil {
		return err
	}
	if len(newdims) != len(dims) {
		return newError("could not resize dataset "+d.Path(),
			fmt.Errorf("%w: rank %d, dataset rank %d", ErrRankMismatch, len(newdims), len(dims)))
	}
	udims := make([]uint64, len(newdims))
	for i, v := range newdims {
		if v < 0 || (maxdims[i] != hdf5.Unlimited && uint64(v) > maxdims[i]) {
			return newError("could not resize dataset "+d.Path(),
				fmt.Errorf("%w: dimension %d to %d exceeds maximum", hdf5.ErrExtent, i, v))
		}
		udims[i] = uint64(v)
	}

	did, err := d.id()
	if err != nil {
		return err
	}
	if err := hdf5.SetExtent(did, udims); err != nil {
		return newError("could not resize dataset "+d.Path(), err)
	}
	log().Debug("dal: dataset resized", "path", d.Path(), "dims", newdims)
	return nil
}
